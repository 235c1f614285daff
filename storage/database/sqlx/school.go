package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// school columns with the nullable principal FK flattened back to a string
const schoolCols = `id, name, address, phone, email, owner_id,
	COALESCE(principal_id::text, '') AS principal_id, created_at, updated_at`

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO school (id, name, address, phone, email, owner_id, principal_id, created_at, updated_at)
		VALUES (:id, :name, :address, :phone, :email, :owner_id, NULLIF(:principal_id, '')::uuid, :created_at, :updated_at)`,
		sch,
	)
	if err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	query := `SELECT ` + schoolCols + ` FROM school WHERE id = $1`
	if err := repo.db.GetContext(ctx, &sch, query, id); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "finding school by ID")
	}
	return sch, nil
}

func (repo schoolRepository) GetSchoolByOwner(ctx context.Context, userID string) (school.School, error) {
	var sch school.School
	query := `SELECT ` + schoolCols + ` FROM school WHERE owner_id = $1`
	if err := repo.db.GetContext(ctx, &sch, query, userID); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "finding school by owner")
	}
	return sch, nil
}

func (repo schoolRepository) GetSchoolByPrincipal(ctx context.Context, userID string) (school.School, error) {
	var sch school.School
	query := `SELECT ` + schoolCols + ` FROM school WHERE principal_id = $1`
	if err := repo.db.GetContext(ctx, &sch, query, userID); err != nil {
		return school.School{}, repo.trapNoRowsErr(err, "finding school by principal")
	}
	return sch, nil
}

func (repo schoolRepository) CreateSession(ctx context.Context, sess school.AcademicSession) (school.AcademicSession, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO academic_session (id, school_id, name, start_date, end_date, is_active, created_at, updated_at)
		VALUES (:id, :school_id, :name, :start_date, :end_date, :is_active, :created_at, :updated_at)`,
		sess,
	)
	if err != nil {
		return school.AcademicSession{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo schoolRepository) GetSessionByID(ctx context.Context, id string) (school.AcademicSession, error) {
	var sess school.AcademicSession
	if err := repo.db.GetContext(ctx, &sess, `SELECT * FROM academic_session WHERE id = $1`, id); err != nil {
		return school.AcademicSession{}, repo.trapNoRowsErr(err, "finding session by ID")
	}
	return sess, nil
}

func (repo schoolRepository) GetActiveSession(ctx context.Context, schoolID string) (school.AcademicSession, error) {
	var sess school.AcademicSession
	err := repo.db.GetContext(ctx, &sess,
		`SELECT * FROM academic_session WHERE school_id = $1 AND is_active`, schoolID)
	if err != nil {
		return school.AcademicSession{}, repo.trapNoRowsErr(err, "finding active session")
	}
	return sess, nil
}

func (repo schoolRepository) QuerySessionsBySchool(ctx context.Context, schoolID string) ([]school.AcademicSession, error) {
	sessions := make([]school.AcademicSession, 0)
	err := repo.db.SelectContext(ctx, &sessions,
		`SELECT * FROM academic_session WHERE school_id = $1 ORDER BY start_date DESC`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions by school")
	}
	return sessions, nil
}

func (repo schoolRepository) ActivateSession(ctx context.Context, schoolID, sessionID string) (school.AcademicSession, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return school.AcademicSession{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`UPDATE academic_session SET is_active = false, updated_at = now() WHERE school_id = $1 AND is_active AND id <> $2`,
		schoolID, sessionID,
	)
	if err != nil {
		return school.AcademicSession{}, errors.Wrap(err, "deactivating sessions")
	}

	var sess school.AcademicSession
	err = tx.GetContext(ctx, &sess,
		`UPDATE academic_session SET is_active = true, updated_at = now() WHERE school_id = $1 AND id = $2 RETURNING *`,
		schoolID, sessionID,
	)
	if err != nil {
		return school.AcademicSession{}, repo.trapNoRowsErr(err, "activating session")
	}

	if err := tx.Commit(); err != nil {
		return school.AcademicSession{}, errors.Wrap(err, "committing transaction")
	}
	return sess, nil
}

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, school_id, name, level, capacity, teacher_id, created_at, updated_at)
		VALUES (:id, :school_id, :name, :level, :capacity, :teacher_id, :created_at, :updated_at)`,
		cls,
	)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo schoolRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	var cls school.Class
	if err := repo.db.GetContext(ctx, &cls, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		return school.Class{}, repo.trapNoRowsErr(err, "finding class by ID")
	}
	return cls, nil
}

func (repo schoolRepository) QueryClassesBySchool(ctx context.Context, schoolID string) ([]school.Class, error) {
	classes := make([]school.Class, 0)
	err := repo.db.SelectContext(ctx, &classes,
		`SELECT * FROM class WHERE school_id = $1 ORDER BY name`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes by school")
	}
	return classes, nil
}

func (repo schoolRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO subject (id, school_id, name, code, created_at, updated_at)
		VALUES (:id, :school_id, :name, :code, :created_at, :updated_at)`,
		sub,
	)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo schoolRepository) GetSubjectByID(ctx context.Context, id string) (school.Subject, error) {
	var sub school.Subject
	if err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		return school.Subject{}, repo.trapNoRowsErr(err, "finding subject by ID")
	}
	return sub, nil
}

func (repo schoolRepository) QuerySubjectsBySchool(ctx context.Context, schoolID string) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	err := repo.db.SelectContext(ctx, &subjects,
		`SELECT * FROM subject WHERE school_id = $1 ORDER BY name`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects by school")
	}
	return subjects, nil
}
