package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids = append(ids, fmt.Sprintf("$%d", i+2))
			args = append(args, usr.ID)
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, email, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :email, :role, :is_active, :password_hash, :created_at, :updated_at, 'epoch')`,
		usr,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	// absent fields keep their stored values
	var upd user.User
	err := repo.db.GetContext(ctx, &upd, `
		UPDATE "user" SET
			name          = COALESCE(NULLIF($2, ''), name),
			email         = COALESCE(NULLIF($3, ''), email),
			password_hash = CASE WHEN length($4) > 0 THEN $4 ELSE password_hash END,
			is_active     = COALESCE($5, is_active),
			last_login    = CASE WHEN $6::timestamptz > 'epoch' THEN $6 ELSE last_login END,
			updated_at    = $7
		WHERE id = $1
		RETURNING *`,
		usr.ID, usr.Name, usr.Email, usr.PasswordHash, isActive, usr.LastLogin, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return upd, nil
}

func (repo userRepository) CheckStudentNoUniqueness(ctx context.Context, schoolID, studentNo string) error {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM student WHERE school_id = $1 AND student_no = $2`,
		schoolID, studentNo,
	)
	if err != nil {
		return errors.Wrap(err, "checking student number uniqueness")
	}
	if count > 0 {
		return user.ErrStudentNoExists
	}
	return nil
}

func (repo userRepository) CreateStudent(ctx context.Context, std user.Student) (user.Student, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, user_id, school_id, class_id, guardian_id, student_no, birth_date, admission_date, created_at, updated_at)
		VALUES (:id, :user_id, :school_id, :class_id, NULLIF(:guardian_id, '')::uuid, :student_no, :birth_date, :admission_date, :created_at, :updated_at)`,
		std,
	)
	if err != nil {
		return user.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

// student columns with the nullable guardian FK flattened back to a string
const studentCols = `id, user_id, school_id, class_id, COALESCE(guardian_id::text, '') AS guardian_id,
	student_no, birth_date, admission_date, created_at, updated_at`

func (repo userRepository) GetStudentByID(ctx context.Context, id string) (user.Student, error) {
	var std user.Student
	query := `SELECT ` + studentCols + ` FROM student WHERE id = $1`
	if err := repo.db.GetContext(ctx, &std, query, id); err != nil {
		return user.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return std, nil
}

func (repo userRepository) GetStudentByUserID(ctx context.Context, userID string) (user.Student, error) {
	var std user.Student
	query := `SELECT ` + studentCols + ` FROM student WHERE user_id = $1`
	if err := repo.db.GetContext(ctx, &std, query, userID); err != nil {
		return user.Student{}, repo.trapNoRowsErr(err, "finding student by user ID")
	}
	return std, nil
}

func (repo userRepository) QueryStudentsByClass(ctx context.Context, classID string) ([]user.Student, error) {
	students := make([]user.Student, 0)
	query := `SELECT ` + studentCols + ` FROM student WHERE class_id = $1 ORDER BY student_no`
	if err := repo.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, errors.Wrap(err, "querying students by class")
	}
	return students, nil
}

func (repo userRepository) QueryStudentsBySchool(ctx context.Context, schoolID string) ([]user.Student, error) {
	students := make([]user.Student, 0)
	query := `SELECT ` + studentCols + ` FROM student WHERE school_id = $1 ORDER BY student_no`
	if err := repo.db.SelectContext(ctx, &students, query, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying students by school")
	}
	return students, nil
}

func (repo userRepository) UpdateStudent(ctx context.Context, std user.Student) (user.Student, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student SET
			class_id    = :class_id,
			guardian_id = NULLIF(:guardian_id, '')::uuid,
			student_no  = :student_no,
			updated_at  = :updated_at
		WHERE id = :id`,
		std,
	)
	if err != nil {
		return user.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.Student{}, user.ErrNotFound
	}
	return std, nil
}

func (repo userRepository) CreateTeacher(ctx context.Context, tch user.Teacher) (user.Teacher, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO teacher (id, user_id, school_id, staff_no, department, qualification, created_at, updated_at)
		VALUES (:id, :user_id, :school_id, :staff_no, :department, :qualification, :created_at, :updated_at)`,
		tch,
	)
	if err != nil {
		return user.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo userRepository) GetTeacherByID(ctx context.Context, id string) (user.Teacher, error) {
	var tch user.Teacher
	if err := repo.db.GetContext(ctx, &tch, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		return user.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by ID")
	}
	return tch, nil
}

func (repo userRepository) GetTeacherByUserID(ctx context.Context, userID string) (user.Teacher, error) {
	var tch user.Teacher
	if err := repo.db.GetContext(ctx, &tch, `SELECT * FROM teacher WHERE user_id = $1`, userID); err != nil {
		return user.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by user ID")
	}
	return tch, nil
}

func (repo userRepository) QueryTeachersBySchool(ctx context.Context, schoolID string) ([]user.Teacher, error) {
	teachers := make([]user.Teacher, 0)
	err := repo.db.SelectContext(ctx, &teachers,
		`SELECT * FROM teacher WHERE school_id = $1 ORDER BY staff_no`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers by school")
	}
	return teachers, nil
}
