package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/utils"
)

const catalogGenerationKey = "catalog_generation"

// bumpCatalogGeneration invalidates every cached schedule built from the old catalog or locations.
func (h *Handler) bumpCatalogGeneration(ctx context.Context) error {
	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	return h.redisClient.Incr(ctx, catalogGenerationKey).Err()
}

func courseConflict(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.ConstraintName {
	case "courses_name_key":
		return "a course with this name already exists"
	case "courses_uid_key":
		return "a course with this uid already exists"
	default:
		return ""
	}
}

func (h *Handler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	supportedOnly := r.URL.Query().Get("supported") == "true"

	courses, err := h.repository.GetAllCourses(supportedOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "courses loaded", courses)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required"`
		Department   string `json:"department"`
		CourseID     string `json:"courseID"`
		School       string `json:"school"`
		Supported    bool   `json:"supported"`
		Abbreviation string `json:"abbreviation"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	course := &domain.Course{
		Name:         req.Name,
		Department:   req.Department,
		CourseID:     req.CourseID,
		School:       req.School,
		Supported:    req.Supported,
		Abbreviation: req.Abbreviation,
	}
	if err := utils.ValidateCourse(course); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateCourse(course); err != nil {
		if msg := courseConflict(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.bumpCatalogGeneration(r.Context()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "course created", course)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course := r.Context().Value(CourseCtx).(*domain.Course)
	h.successResponse(w, r, "course loaded", course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         *string `json:"name" validate:"omitempty,min=1"`
		Department   *string `json:"department"`
		CourseID     *string `json:"courseID"`
		School       *string `json:"school"`
		Supported    *bool   `json:"supported"`
		Abbreviation *string `json:"abbreviation"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	course := r.Context().Value(CourseCtx).(*domain.Course)

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Department != nil {
		course.Department = *req.Department
	}
	if req.CourseID != nil {
		course.CourseID = *req.CourseID
	}
	if req.School != nil {
		course.School = *req.School
	}
	if req.Supported != nil {
		course.Supported = *req.Supported
	}
	if req.Abbreviation != nil {
		course.Abbreviation = *req.Abbreviation
	}

	if err := utils.ValidateCourse(course); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateCourse(course); err != nil {
		if msg := courseConflict(err); msg != "" {
			h.errorResponse(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "course was modified concurrently, please try again")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.bumpCatalogGeneration(r.Context()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "course updated", course)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	course := r.Context().Value(CourseCtx).(*domain.Course)

	if err := h.repository.DeleteCourse(course.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.bumpCatalogGeneration(r.Context()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "course deleted", nil)
}
