package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/blurb"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/calendar"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/utils"
)

type generatedSchedule struct {
	Run       *domain.ScheduleRun `json:"run"`
	FeedStats *calendar.Stats     `json:"feedStats,omitempty"`
	Cached    bool                `json:"cached"`
}

// collectShifts fetches every location concurrently. Shifts keep the order of locations.
func collectShifts(ctx context.Context, fetcher ShiftFetcher, locations []*domain.Location, week domain.StagingWeek) ([]domain.Shift, *calendar.Stats, error) {
	type feedResult struct {
		shifts []domain.Shift
		stats  *calendar.Stats
		err    error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]feedResult, len(locations))
	wg := sync.WaitGroup{}
	for i, location := range locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shifts, stats, err := fetcher.FetchShifts(ctx, location, week)
			if err != nil {
				cancel()
			}
			results[i] = feedResult{shifts: shifts, stats: stats, err: err}
		}()
	}
	wg.Wait()

	shifts := make([]domain.Shift, 0)
	total := &calendar.Stats{}
	for _, result := range results {
		if result.err != nil && !errors.Is(result.err, context.Canceled) {
			return nil, nil, result.err
		}
	}
	for _, result := range results {
		if result.err != nil {
			// only cancellations caused by another feed failing, or by the client, are left
			return nil, nil, result.err
		}
		shifts = append(shifts, result.shifts...)
		if result.stats != nil {
			total.Add(result.stats)
		}
	}

	return shifts, total, nil
}

func scheduleCacheKey(generation int64, week domain.StagingWeek, locations []*domain.Location) string {
	ids := make([]string, len(locations))
	for i, location := range locations {
		ids[i] = strconv.FormatInt(location.ID, 10)
	}
	return fmt.Sprintf("schedule_%d_%s_%s", generation, week.Start.Format(time.DateOnly), strings.Join(ids, ","))
}

func (h *Handler) catalogGeneration(ctx context.Context) (int64, error) {
	ctx, cancel := h.redisContext(ctx)
	defer cancel()

	generation, err := h.redisClient.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// cachedRun returns the run generated earlier for the same catalog, week and locations, if any.
func (h *Handler) cachedRun(ctx context.Context, key string) (*domain.ScheduleRun, error) {
	redisCtx, cancel := h.redisContext(ctx)
	defer cancel()

	runID, err := h.redisClient.Get(redisCtx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	run, err := h.repository.GetScheduleRunByID(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StagingWeek string  `json:"stagingWeek" validate:"required"`
		LocationIDs []int64 `json:"locationIDs" validate:"required,min=1,dive,gt=0"`
		Refresh     bool    `json:"refresh"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	week, err := utils.ParseStagingWeek(req.StagingWeek, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	locations, err := h.repository.GetLocationsByIDs(req.LocationIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(locations) == 0 {
		h.errorResponse(w, r, "none of the selected locations exist")
		return
	}

	generation, err := h.catalogGeneration(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	cacheKey := scheduleCacheKey(generation, week, locations)

	if !req.Refresh {
		run, err := h.cachedRun(r.Context(), cacheKey)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if run != nil {
			h.successResponse(w, r, "schedule generated", generatedSchedule{Run: run, Cached: true})
			return
		}
	}

	catalog, err := h.repository.GetAllCourses(true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	courses := make([]domain.Course, len(catalog))
	for i, course := range catalog {
		courses[i] = *course
	}

	shifts, stats, err := collectShifts(r.Context(), h.fetcher, locations, week)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrNotICalendar):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, context.Canceled):
			h.internalServerError(w, r, err)
		default:
			slog.Warn("calendar feed unavailable", "error", err)
			h.errorResponse(w, r, "a calendar feed could not be read, check the feed urls of the selected locations")
		}
		return
	}

	labels := make([]string, len(locations))
	for i, location := range locations {
		labels[i] = location.Label
	}

	result, err := h.scheduler.Produce(courses, labels, shifts)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	run := &domain.ScheduleRun{
		StagingWeek: week,
		Locations:   labels,
		Schedule:    result.Schedule,
		Report:      result.Report,
		CreatedBy:   myInfo.ID,
	}

	if err := h.repository.InsertScheduleRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if h.archiver != nil {
		// the run is already stored, a failed snapshot only loses the copy
		if key, err := h.archiver.Put(r.Context(), run); err != nil {
			slog.Warn("schedule snapshot failed", "run", run.ID, "error", err)
		} else {
			slog.Info("schedule snapshot stored", "run", run.ID, "key", key)
		}
	}

	redisCtx, cancel := h.redisContext(r.Context())
	defer cancel()
	if err := h.redisClient.Set(redisCtx, cacheKey, run.ID, time.Duration(h.config.Redis.ScheduleExpiration)*time.Second).Err(); err != nil {
		slog.Warn("schedule cache write failed", "run", run.ID, "error", err)
	}

	slog.Info("schedule generated",
		"run", run.ID,
		"week", week.Start.Format(time.DateOnly),
		"locations", len(labels),
		"shifts", result.Report.ShiftCount,
		"unmatched", len(result.Report.UnmatchedMentions),
		"ambiguous", len(result.Report.AmbiguousMentions),
	)

	h.successResponse(w, r, "schedule generated", generatedSchedule{Run: run, FeedStats: stats})
}

func (h *Handler) GetAllScheduleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repository.GetAllScheduleRuns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedules loaded", runs)
}

func (h *Handler) GetScheduleRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(ScheduleRunCtx).(*domain.ScheduleRun)
	h.successResponse(w, r, "schedule loaded", run)
}

// GetScheduleBlurb answers with the JSON envelope, or with bare text for ?format=text.
func (h *Handler) GetScheduleBlurb(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(ScheduleRunCtx).(*domain.ScheduleRun)
	text := blurb.Render(run.Schedule, h.location)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}

	h.successResponse(w, r, "blurb rendered", map[string]string{"blurb": text})
}

func (h *Handler) EmailScheduleBlurb(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	run := r.Context().Value(ScheduleRunCtx).(*domain.ScheduleRun)

	if err := h.publishMail(&domain.MailMessage{
		Type: domain.MailTypeScheduleBlurb,
		To:   req.To,
		Data: domain.ScheduleBlurbMailData{
			StagingWeek: run.StagingWeek.Start.In(h.location).Format(time.DateOnly),
			Blurb:       blurb.Render(run.Schedule, h.location),
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "blurb e-mail queued", nil)
}
