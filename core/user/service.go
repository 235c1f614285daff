package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrStudentNoExists = errors.New("a student with this student number already exists in this school")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)

		CheckStudentNoUniqueness(ctx context.Context, schoolID, studentNo string) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByUserID(ctx context.Context, userID string) (Student, error)
		// QueryStudentsByClass returns a class roster ordered by student number.
		QueryStudentsByClass(ctx context.Context, classID string) ([]Student, error)
		QueryStudentsBySchool(ctx context.Context, schoolID string) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)

		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		GetTeacherByUserID(ctx context.Context, userID string) (Teacher, error)
		QueryTeachersBySchool(ctx context.Context, schoolID string) ([]Teacher, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CheckStudentNoUniqueness(schoolID, studentNo string) error {
	if err := svc.repo.CheckStudentNoUniqueness(context.Background(), schoolID, studentNo); err != nil {
		if errors.Cause(err) == ErrStudentNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "student_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	isActive := true
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update applies a partial update; absent fields keep their stored values and
// the role can never change.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	origUsr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(origUsr, svc); err != nil {
		return User{}, err
	}

	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		Role:      origUsr.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr.UpdatedAt = usr.LastLogin
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc); err != nil {
		return Student{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, ns.UserID)
	if err != nil {
		return Student{}, err
	}
	if !usr.IsStudent() {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "identity is not a student"})
	}

	now := time.Now().UTC()
	std := Student{
		ID:            uuid.New().String(),
		UserID:        ns.UserID,
		SchoolID:      ns.SchoolID,
		ClassID:       ns.ClassID,
		GuardianID:    ns.GuardianID,
		StudentNo:     ns.StudentNo,
		BirthDate:     ns.BirthDate,
		AdmissionDate: ns.AdmissionDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetStudentByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetStudentByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) QueryStudentsByClass(ctx context.Context, classID string) ([]Student, error) {
	return svc.repo.QueryStudentsByClass(ctx, classID)
}

func (svc *Service) QueryStudentsBySchool(ctx context.Context, schoolID string) ([]Student, error) {
	return svc.repo.QueryStudentsBySchool(ctx, schoolID)
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, nt.UserID)
	if err != nil {
		return Teacher{}, err
	}
	if !usr.IsTeacher() {
		return Teacher{}, core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "identity is not a teacher"})
	}

	now := time.Now().UTC()
	tch := Teacher{
		ID:            uuid.New().String(),
		UserID:        nt.UserID,
		SchoolID:      nt.SchoolID,
		StaffNo:       nt.StaffNo,
		Department:    nt.Department,
		Qualification: nt.Qualification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) GetTeacherByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetTeacherByUserID(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacherByUserID(ctx, userID)
}

func (svc *Service) QueryTeachersBySchool(ctx context.Context, schoolID string) ([]Teacher, error) {
	return svc.repo.QueryTeachersBySchool(ctx, schoolID)
}
