package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

func (r *Repository) InsertScheduleRun(run *domain.ScheduleRun) error {
	locations, err := json.Marshal(run.Locations)
	if err != nil {
		return err
	}
	schedule, err := json.Marshal(run.Schedule)
	if err != nil {
		return err
	}
	report, err := json.Marshal(run.Report)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO schedule_runs (week_start, week_end, locations, schedule, report, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	createdBy := sql.NullInt64{Int64: run.CreatedBy, Valid: run.CreatedBy != 0}
	args := []any{run.StagingWeek.Start, run.StagingWeek.End, locations, schedule, report, createdBy}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetScheduleRunByID(id int64) (*domain.ScheduleRun, error) {
	query := `
		SELECT week_start, week_end, locations, schedule, report, created_by, created_at
		FROM schedule_runs WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	run := &domain.ScheduleRun{ID: id}

	var locations, schedule, report []byte
	var createdBy sql.NullInt64
	dst := []any{&run.StagingWeek.Start, &run.StagingWeek.End, &locations, &schedule, &report, &createdBy, &run.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	run.CreatedBy = createdBy.Int64

	if err := json.Unmarshal(locations, &run.Locations); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schedule, &run.Schedule); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(report, &run.Report); err != nil {
		return nil, err
	}

	return run, nil
}

// GetAllScheduleRuns lists runs newest first without their schedules.
func (r *Repository) GetAllScheduleRuns() ([]*domain.ScheduleRun, error) {
	query := `
		SELECT id, week_start, week_end, locations, report, created_by, created_at
		FROM schedule_runs
		ORDER BY created_at DESC, id DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.ScheduleRun, 0)
	for rows.Next() {
		run := &domain.ScheduleRun{}
		var locations, report []byte
		var createdBy sql.NullInt64
		dst := []any{&run.ID, &run.StagingWeek.Start, &run.StagingWeek.End, &locations, &report, &createdBy, &run.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		run.CreatedBy = createdBy.Int64

		if err := json.Unmarshal(locations, &run.Locations); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(report, &run.Report); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
