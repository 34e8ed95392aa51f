package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/archive"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/calendar"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/repository"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/scheduler"
)

// ShiftFetcher reads the shifts of one location for a staging week.
type ShiftFetcher interface {
	FetchShifts(ctx context.Context, location *domain.Location, week domain.StagingWeek) ([]domain.Shift, *calendar.Stats, error)
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	fetcher     ShiftFetcher
	scheduler   *scheduler.Scheduler
	archiver    *archive.Archiver // nil when archiving is disabled
	location    *time.Location

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	mailCh *amqp.Channel,
	rdb *redis.Client,
	fetcher ShiftFetcher,
	archiver *archive.Archiver,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.SchedulerLocation()
	if err != nil {
		return nil, err
	}

	s, err := scheduler.New(&scheduler.Parameters{
		ConfidenceThreshold: cfg.Scheduler.ConfidenceThreshold,
		CaseInsensitive:     cfg.Scheduler.CaseInsensitiveMatch,
		Location:            loc,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		fetcher:     fetcher,
		scheduler:   s,
		archiver:    archiver,
		location:    loc,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below needs a signed-in user
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.GetAllCourses)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateCourse)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.course)
				r.Get("/", h.GetCourse)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateCourse)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteCourse)
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", h.GetAllLocations)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateLocation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.locationInfo)
				r.Get("/", h.GetLocation)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateLocation)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteLocation)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.GetAllScheduleRuns)
			r.With(h.myInfo).With(h.preventInactiveUser).Post("/generate", h.GenerateSchedule)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleRun)
				r.Get("/", h.GetScheduleRun)
				r.Get("/blurb", h.GetScheduleBlurb)
				r.Post("/email", h.EmailScheduleBlurb)
			})
		})
	})
}
