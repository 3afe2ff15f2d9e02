package database

import (
	"context"

	"osm-relatify/internal/models"
)

// DataStore is the interface for data persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	Routes() RouteRepository
}

// RouteRepository handles persistence of calculated routes.
// GetByID returns nil, nil when the route does not exist.
type RouteRepository interface {
	Create(ctx context.Context, r *models.RouteRecord) (*models.RouteRecord, error)
	GetByID(ctx context.Context, id string) (*models.RouteRecord, error)
	ListByRelation(ctx context.Context, relationID int64, limit int) ([]models.RouteRecord, error)
	Delete(ctx context.Context, id string) error
}
