package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/config"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/migrations"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/repository"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var file string

	flag.IntVar(&op, "op", 0, "operation (1: import supported courses from a .csv/.xlsx sheet, 2: copy a courses.json export, 3: create locations from label=url arguments)")
	flag.StringVar(&file, "file", "", "input file for -op 1 and -op 2")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := migrations.Up(context.Background(), dbpool); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("no operation given")
	case 1:
		if file == "" {
			logger.Error("-file is required")
			return
		}
		if err := seed.ImportSupportedCourses(repo, file); err != nil {
			logger.Error("failed to import supported courses", slog.String("error", err.Error()))
		}
	case 2:
		if file == "" {
			logger.Error("-file is required")
			return
		}
		if err := seed.CopyCourses(repo, file); err != nil {
			logger.Error("failed to copy courses", slog.String("error", err.Error()))
		}
	case 3:
		if flag.NArg() == 0 {
			logger.Error("pass locations as label=url arguments")
			return
		}
		if err := seed.CreateLocations(repo, flag.Args()); err != nil {
			logger.Error("failed to create locations", slog.String("error", err.Error()))
		}
	default:
		logger.Error("unknown operation", slog.Int("op", op))
	}
}
