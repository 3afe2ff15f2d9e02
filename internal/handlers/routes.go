package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"osm-relatify/internal/models"
	"osm-relatify/internal/relation"
)

// RouteSummary is a saved route without its geometry
type RouteSummary struct {
	ID         string           `json:"id"`
	RelationID int64            `json:"relation_id"`
	StartWay   models.ElementID `json:"start_way"`
	EndWay     models.ElementID `json:"end_way"`
	Reached    bool             `json:"reached"`
	StopCount  int              `json:"stop_count"`
	CreatedAt  time.Time        `json:"created_at"`
}

// RouteListResponse represents the list response
type RouteListResponse struct {
	Routes     []RouteSummary `json:"routes"`
	RelationID int64          `json:"relation_id"`
	Limit      int            `json:"limit"`
}

// HandleCalculateRoute handles POST /api/v1/routes/calculate
func (h *Handler) HandleCalculateRoute(w http.ResponseWriter, r *http.Request) {
	in, err := relation.Decode(r.Body)
	if err != nil {
		log.Printf("[HTTP] POST /api/v1/routes/calculate: invalid_relation err=%v", err)
		h.handleRoutingError(w, err)
		return
	}

	save := r.URL.Query().Get("save") == "true"
	log.Printf("[HTTP] POST /api/v1/routes/calculate: relation=%d ways=%d bus_stops=%d save=%v",
		in.RelationID, len(in.Ways), len(in.BusStops), save)

	route, err := h.Router.CalculateRoute(r.Context(), in.RouteRequest(h.DistanceCalc))
	if err != nil {
		log.Printf("[ERROR] Route calculation failed: relation=%d err=%v", in.RelationID, err)
		h.handleRoutingError(w, err)
		return
	}

	if !route.Reached {
		log.Printf("[HTTP] Route for relation %d does not reach end way %s", in.RelationID, in.EndWay)
	}

	if !save {
		h.writeJSON(w, http.StatusOK, route)
		return
	}

	record, err := h.DB.Routes().Create(r.Context(), &models.RouteRecord{
		RelationID: in.RelationID,
		StartWay:   in.StartWay,
		EndWay:     in.EndWay,
		Reached:    route.Reached,
		StopCount:  len(route.BusStops),
		Route:      *route,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to save route: relation=%d err=%v", in.RelationID, err)
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] Saved route: id=%s relation=%d", record.ID, record.RelationID)
	h.writeJSON(w, http.StatusCreated, record)
}

// HandleListRoutes handles GET /api/v1/routes
func (h *Handler) HandleListRoutes(w http.ResponseWriter, r *http.Request) {
	relationStr := r.URL.Query().Get("relation_id")
	relationID, err := strconv.ParseInt(relationStr, 10, 64)
	if err != nil {
		log.Printf("[HTTP] GET /api/v1/routes: invalid_relation_id=%q err=%v", relationStr, err)
		h.handleValidationError(w, "relation_id is required")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	log.Printf("[HTTP] GET /api/v1/routes: relation=%d limit=%d", relationID, limit)
	records, err := h.DB.Routes().ListByRelation(r.Context(), relationID, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to list routes: relation=%d err=%v", relationID, err)
		h.handleInternalError(w, err)
		return
	}

	summaries := make([]RouteSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, RouteSummary{
			ID:         rec.ID,
			RelationID: rec.RelationID,
			StartWay:   rec.StartWay,
			EndWay:     rec.EndWay,
			Reached:    rec.Reached,
			StopCount:  rec.StopCount,
			CreatedAt:  rec.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, RouteListResponse{
		Routes:     summaries,
		RelationID: relationID,
		Limit:      limit,
	})
}

// HandleGetRoute handles GET /api/v1/routes/{id}
func (h *Handler) HandleGetRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	log.Printf("[HTTP] GET /api/v1/routes/{id}: id=%s", id)
	record, err := h.DB.Routes().GetByID(r.Context(), id)
	if err != nil {
		log.Printf("[ERROR] Failed to get route: id=%s err=%v", id, err)
		h.handleInternalError(w, err)
		return
	}

	if record == nil {
		log.Printf("[HTTP] Route not found: id=%s", id)
		h.handleNotFound(w, "Route not found")
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

// HandleDeleteRoute handles DELETE /api/v1/routes/{id}
func (h *Handler) HandleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	log.Printf("[HTTP] DELETE /api/v1/routes/{id}: id=%s", id)
	err := h.DB.Routes().Delete(r.Context(), id)
	if h.checkNotFound(err) {
		log.Printf("[HTTP] Route not found for delete: id=%s", id)
		h.handleNotFound(w, "Route not found")
		return
	}
	if err != nil {
		log.Printf("[ERROR] Failed to delete route: id=%s err=%v", id, err)
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] Deleted route: id=%s", id)
	w.WriteHeader(http.StatusNoContent)
}

// routeID reads and validates the {id} URL parameter
func (h *Handler) routeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Printf("[HTTP] %s /api/v1/routes/{id}: invalid_id=%s err=%v", r.Method, idStr, err)
		h.handleValidationError(w, "Invalid route ID")
		return "", false
	}
	return id.String(), true
}
