package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/utils"
)

func locationConflict(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "locations_label_key" {
		return "a location with this label already exists"
	}
	return ""
}

// forgetFeed drops a cached feed body when the fetcher keeps one.
func (h *Handler) forgetFeed(feedURL string) {
	if f, ok := h.fetcher.(interface{ Forget(string) }); ok {
		f.Forget(feedURL)
	}
}

func (h *Handler) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "locations loaded", locations)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label   string `json:"label" validate:"required,max=64"`
		FeedURL string `json:"feedURL" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := &domain.Location{Label: req.Label, FeedURL: req.FeedURL}
	if err := utils.ValidateLocation(location); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateLocation(location); err != nil {
		if msg := locationConflict(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "location created", location)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	h.successResponse(w, r, "location loaded", location)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label   *string `json:"label" validate:"omitempty,min=1,max=64"`
		FeedURL *string `json:"feedURL"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := r.Context().Value(LocationCtx).(*domain.Location)
	oldFeedURL := location.FeedURL

	if req.Label != nil {
		location.Label = *req.Label
	}
	if req.FeedURL != nil {
		location.FeedURL = *req.FeedURL
	}

	if err := utils.ValidateLocation(location); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateLocation(location); err != nil {
		if msg := locationConflict(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "location was modified concurrently, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.forgetFeed(oldFeedURL)
	if err := h.bumpCatalogGeneration(r.Context()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "location updated", location)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	if err := h.repository.DeleteLocation(location.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.forgetFeed(location.FeedURL)
	h.successResponse(w, r, "location deleted", nil)
}
