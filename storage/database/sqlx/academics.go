package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/academics"
)

type academicsRepository struct {
	db *sqlx.DB
}

var _ academics.Repository = (*academicsRepository)(nil) // interface compliance check

func NewAcademicsRepository(db *sqlx.DB) *academicsRepository {
	return &academicsRepository{db: db}
}

func (repo academicsRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo academicsRepository) CreateGrade(ctx context.Context, g academics.Grade) (academics.Grade, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO grade (id, student_id, subject_id, teacher_id, session_id, term, assessment_type, score, max_score, status, created_at, updated_at)
		VALUES (:id, :student_id, :subject_id, :teacher_id, :session_id, :term, :assessment_type, :score, :max_score, :status, :created_at, :updated_at)`,
		g,
	)
	if err != nil {
		return academics.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo academicsRepository) GetGradeByID(ctx context.Context, id string) (academics.Grade, error) {
	var g academics.Grade
	if err := repo.db.GetContext(ctx, &g, `SELECT * FROM grade WHERE id = $1`, id); err != nil {
		return academics.Grade{}, repo.trapNoRowsErr(err, academics.ErrGradeNotFound, "finding grade by ID")
	}
	return g, nil
}

func (repo academicsRepository) UpdateGrade(ctx context.Context, g academics.Grade) (academics.Grade, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE grade SET
			assessment_type = :assessment_type,
			score           = :score,
			max_score       = :max_score,
			status          = :status,
			updated_at      = :updated_at
		WHERE id = :id`,
		g,
	)
	if err != nil {
		return academics.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return academics.Grade{}, academics.ErrGradeNotFound
	}
	return g, nil
}

func (repo academicsRepository) QueryGradesByStudent(ctx context.Context, studentID string, filter academics.GradeFilter) ([]academics.Grade, error) {
	query := `SELECT * FROM grade WHERE student_id = $1`
	args := []interface{}{studentID}
	if filter.Term != "" {
		args = append(args, filter.Term)
		query += ` AND term = $2`
	}
	if filter.SessionID != "" {
		args = append(args, filter.SessionID)
		query += ` AND session_id = $` + itoa(len(args))
	}
	if filter.PublishedOnly {
		query += ` AND status = 'published'`
	}
	query += ` ORDER BY created_at DESC`

	grades := make([]academics.Grade, 0)
	if err := repo.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades by student")
	}
	return grades, nil
}

func (repo academicsRepository) QueryPublishedGradesByStudents(ctx context.Context, studentIDs []string, term academics.Term, sessionID string) ([]academics.Grade, error) {
	grades := make([]academics.Grade, 0)
	if len(studentIDs) == 0 {
		return grades, nil
	}
	query, args, err := sqlx.In(
		`SELECT * FROM grade WHERE student_id IN (?) AND term = ? AND session_id = ? AND status = 'published'`,
		studentIDs, term, sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building grades query")
	}
	if err := repo.db.SelectContext(ctx, &grades, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying published grades")
	}
	return grades, nil
}

func (repo academicsRepository) UpsertAttendance(ctx context.Context, att academics.Attendance) (academics.Attendance, error) {
	var saved academics.Attendance
	err := repo.db.GetContext(ctx, &saved, `
		INSERT INTO attendance (id, student_id, class_id, recorded_by, date, status, remark, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (student_id, date) DO UPDATE SET
			class_id    = EXCLUDED.class_id,
			recorded_by = EXCLUDED.recorded_by,
			status      = EXCLUDED.status,
			remark      = EXCLUDED.remark,
			updated_at  = EXCLUDED.updated_at
		RETURNING *`,
		att.ID, att.StudentID, att.ClassID, att.RecordedBy, att.Date, att.Status, att.Remark, att.CreatedAt, att.UpdatedAt,
	)
	if err != nil {
		return academics.Attendance{}, errors.Wrap(err, "upserting attendance")
	}
	return saved, nil
}

func (repo academicsRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]academics.Attendance, error) {
	records := make([]academics.Attendance, 0)
	err := repo.db.SelectContext(ctx, &records,
		`SELECT * FROM attendance WHERE student_id = $1 ORDER BY date DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance by student")
	}
	return records, nil
}

func (repo academicsRepository) QueryAttendanceByClassDate(ctx context.Context, classID string, date time.Time) ([]academics.Attendance, error) {
	records := make([]academics.Attendance, 0)
	err := repo.db.SelectContext(ctx, &records, `
		SELECT a.* FROM attendance a
		JOIN student s ON s.id = a.student_id
		WHERE a.class_id = $1 AND a.date = $2
		ORDER BY s.student_no`, classID, date)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance by class and date")
	}
	return records, nil
}

func (repo academicsRepository) CreateAssignment(ctx context.Context, asg academics.Assignment) (academics.Assignment, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignment (id, class_id, subject_id, teacher_id, title, description, due_date, max_score, created_at, updated_at)
		VALUES (:id, :class_id, :subject_id, :teacher_id, :title, :description, :due_date, :max_score, :created_at, :updated_at)`,
		asg,
	)
	if err != nil {
		return academics.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo academicsRepository) QueryAssignmentsByClass(ctx context.Context, classID string) ([]academics.Assignment, error) {
	assignments := make([]academics.Assignment, 0)
	err := repo.db.SelectContext(ctx, &assignments,
		`SELECT * FROM assignment WHERE class_id = $1 ORDER BY due_date`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by class")
	}
	return assignments, nil
}

func (repo academicsRepository) SaveReportCard(ctx context.Context, rc academics.ReportCard) (academics.ReportCard, error) {
	var saved academics.ReportCard
	err := repo.db.GetContext(ctx, &saved, `
		INSERT INTO report_card (id, student_id, session_id, term, total_score, total_possible, average, rank, class_size, remark, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (student_id, session_id, term) DO UPDATE SET
			total_score    = EXCLUDED.total_score,
			total_possible = EXCLUDED.total_possible,
			average        = EXCLUDED.average,
			rank           = EXCLUDED.rank,
			class_size     = EXCLUDED.class_size,
			remark         = EXCLUDED.remark,
			is_published   = EXCLUDED.is_published,
			updated_at     = EXCLUDED.updated_at
		RETURNING *`,
		rc.ID, rc.StudentID, rc.SessionID, rc.Term, rc.TotalScore, rc.TotalPossible, rc.Average,
		rc.Rank, rc.ClassSize, rc.Remark, rc.IsPublished, rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		return academics.ReportCard{}, errors.Wrap(err, "saving report card")
	}
	return saved, nil
}

func (repo academicsRepository) GetReportCard(ctx context.Context, studentID string, term academics.Term, sessionID string) (academics.ReportCard, error) {
	var rc academics.ReportCard
	err := repo.db.GetContext(ctx, &rc,
		`SELECT * FROM report_card WHERE student_id = $1 AND term = $2 AND session_id = $3`,
		studentID, term, sessionID,
	)
	if err != nil {
		return academics.ReportCard{}, repo.trapNoRowsErr(err, academics.ErrReportCardNotFound, "finding report card")
	}
	return rc, nil
}

func (repo academicsRepository) GetReportCardByID(ctx context.Context, id string) (academics.ReportCard, error) {
	var rc academics.ReportCard
	if err := repo.db.GetContext(ctx, &rc, `SELECT * FROM report_card WHERE id = $1`, id); err != nil {
		return academics.ReportCard{}, repo.trapNoRowsErr(err, academics.ErrReportCardNotFound, "finding report card by ID")
	}
	return rc, nil
}

func (repo academicsRepository) QueryReportCardsByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]academics.ReportCard, error) {
	query := `SELECT * FROM report_card WHERE student_id = $1`
	if publishedOnly {
		query += ` AND is_published`
	}
	query += ` ORDER BY created_at DESC`

	cards := make([]academics.ReportCard, 0)
	if err := repo.db.SelectContext(ctx, &cards, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying report cards by student")
	}
	return cards, nil
}

func (repo academicsRepository) SetReportCardPublished(ctx context.Context, id string, published bool) (academics.ReportCard, error) {
	var rc academics.ReportCard
	err := repo.db.GetContext(ctx, &rc,
		`UPDATE report_card SET is_published = $2, updated_at = now() WHERE id = $1 RETURNING *`,
		id, published,
	)
	if err != nil {
		return academics.ReportCard{}, repo.trapNoRowsErr(err, academics.ErrReportCardNotFound, "publishing report card")
	}
	return rc, nil
}
