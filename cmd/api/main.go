package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/archive"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/calendar"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/handler"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/migrations"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/repository"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/scheduler"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return
	}

	loc, err := cfg.SchedulerLocation()
	if err != nil {
		logger.Error("failed to load scheduler time zone", "error", err)
		return
	}

	/**********************************************
	 * database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(context.Background(), dbpool); err != nil {
			logger.Error("failed to migrate database", "error", err)
			return
		}
	}

	/**********************************************
	 * repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * initial administrator
	 **********************************************/
	passwordHash, err := utils.HashPassword(cfg.InitialAdmin.Password)
	if err != nil {
		logger.Error("failed to hash initial administrator password", "error", err)
		return
	}
	created, err := repo.EnsureUser(&domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: passwordHash,
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		logger.Error("failed to create initial administrator", "error", err)
		return
	}
	if created {
		logger.Info("initial administrator created", "username", cfg.InitialAdmin.Username)
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to declare queue", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	/**********************************************
	 * calendar feeds and schedule archive
	 **********************************************/
	fetcher := calendar.NewFetcher(cfg, loc, scheduler.DashCommaParser{})

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		archiver, err = archive.New(cfg)
		if err != nil {
			logger.Error("failed to create schedule archive", "error", err)
			return
		}
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			logger.Error("failed to prepare schedule archive", "error", err)
			return
		}
	}

	/**********************************************
	 * handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, ch, rdb, fetcher, archiver)
	if err != nil {
		logger.Error("failed to create handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * http server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "timeZone", loc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
