package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/ulc-tools/blurb-scheduler/backend/internal/domain"
)

const courseColumns = `id, uid, name, department, course_id, school, supported, abbreviation, created_at, version`

func courseDst(course *domain.Course) []any {
	return []any{
		&course.ID,
		&course.UID,
		&course.Name,
		&course.Department,
		&course.CourseID,
		&course.School,
		&course.Supported,
		&course.Abbreviation,
		&course.CreatedAt,
		&course.Version,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetAllCourses returns the catalog ordered by id, which is the order the scheduler tries courses in.
func (r *Repository) GetAllCourses(supportedOnly bool) ([]*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	if supportedOnly {
		query += ` WHERE supported`
	}
	query += ` ORDER BY id`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]*domain.Course, 0)
	for rows.Next() {
		course := &domain.Course{}
		if err := rows.Scan(courseDst(course)...); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *Repository) GetCourseByID(id int64) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	course := &domain.Course{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(courseDst(course)...); err != nil {
		return nil, err
	}

	return course, nil
}

// CreateCourse assigns a fresh uid unless the course already carries one.
func (r *Repository) CreateCourse(course *domain.Course) error {
	if course.UID == "" {
		course.UID = uuid.NewString()
	}

	query := `
		INSERT INTO courses (uid, name, department, course_id, school, supported, abbreviation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{course.UID, course.Name, course.Department, course.CourseID, course.School, course.Supported, course.Abbreviation}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&course.ID, &course.CreatedAt, &course.Version); err != nil {
		return err
	}

	return nil
}

// UpdateCourse never touches uid. It fails with sql.ErrNoRows on a version conflict.
func (r *Repository) UpdateCourse(course *domain.Course) error {
	query := `
		UPDATE courses
		SET
			name = $1,
			department = $2,
			course_id = $3,
			school = $4,
			supported = $5,
			abbreviation = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING uid, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{course.Name, course.Department, course.CourseID, course.School, course.Supported, course.Abbreviation, course.ID, course.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&course.UID, &course.CreatedAt, &course.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCourse(id int64) error {
	query := `DELETE FROM courses WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// ImportCourses upserts courses by name in one transaction and returns how many rows were new.
// Existing rows keep their uid and only metadata that the import actually carries is overwritten.
func (r *Repository) ImportCourses(courses []*domain.Course) (int, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO courses (uid, name, department, course_id, school, supported, abbreviation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			department = COALESCE(NULLIF(EXCLUDED.department, ''), courses.department),
			course_id = COALESCE(NULLIF(EXCLUDED.course_id, ''), courses.course_id),
			school = COALESCE(NULLIF(EXCLUDED.school, ''), courses.school),
			supported = EXCLUDED.supported,
			abbreviation = EXCLUDED.abbreviation,
			version = courses.version + 1
		RETURNING id, uid, created_at, version, (xmax = 0)
	`

	created := 0
	for _, course := range courses {
		if course.UID == "" {
			course.UID = uuid.NewString()
		}

		var inserted bool
		args := []any{course.UID, course.Name, course.Department, course.CourseID, course.School, course.Supported, course.Abbreviation}
		dst := []any{&course.ID, &course.UID, &course.CreatedAt, &course.Version, &inserted}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
			return 0, err
		}
		if inserted {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return created, nil
}
