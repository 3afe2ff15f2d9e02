package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"osm-relatify/internal/database"
	"osm-relatify/internal/models"
)

// DefaultListLimit is used when ListByRelation is called without a positive limit
const DefaultListLimit = 20

type routeRepository struct {
	store *Store
}

func (r *routeRepository) Create(ctx context.Context, rec *models.RouteRecord) (*models.RouteRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	routeJSON, err := json.Marshal(rec.Route)
	if err != nil {
		return nil, fmt.Errorf("failed to encode route: %w", err)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()

	query := `INSERT INTO routes (id, relation_id, start_way, end_way, reached, stop_count, route_json, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.store.db.ExecContext(ctx, query,
		rec.ID, rec.RelationID, string(rec.StartWay), string(rec.EndWay),
		rec.Reached, rec.StopCount, string(routeJSON), rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return rec, nil
}

func (r *routeRepository) GetByID(ctx context.Context, id string) (*models.RouteRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT id, relation_id, start_way, end_way, reached, stop_count, route_json, created_at
	          FROM routes WHERE id = ?`

	rec, err := scanRoute(r.store.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return rec, nil
}

func (r *routeRepository) ListByRelation(ctx context.Context, relationID int64, limit int) ([]models.RouteRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, relation_id, start_way, end_way, reached, stop_count, route_json, created_at
	          FROM routes
	          WHERE relation_id = ?
	          ORDER BY created_at DESC, id
	          LIMIT ?`

	rows, err := r.store.db.QueryContext(ctx, query, relationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := []models.RouteRecord{}
	for rows.Next() {
		rec, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routes: %w", err)
	}

	return routes, nil
}

func (r *routeRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result, err := r.store.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return database.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*models.RouteRecord, error) {
	var rec models.RouteRecord
	var startWay, endWay, routeJSON string

	err := row.Scan(&rec.ID, &rec.RelationID, &startWay, &endWay, &rec.Reached, &rec.StopCount, &routeJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.StartWay = models.ElementID(startWay)
	rec.EndWay = models.ElementID(endWay)

	if err := json.Unmarshal([]byte(routeJSON), &rec.Route); err != nil {
		return nil, fmt.Errorf("failed to decode route %s: %w", rec.ID, err)
	}

	return &rec, nil
}
