package school

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var ErrNotFound = core.NewNotFoundError("school not found")

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		GetSchoolByOwner(ctx context.Context, userID string) (School, error)
		GetSchoolByPrincipal(ctx context.Context, userID string) (School, error)

		CreateSession(ctx context.Context, sess AcademicSession) (AcademicSession, error)
		GetSessionByID(ctx context.Context, id string) (AcademicSession, error)
		GetActiveSession(ctx context.Context, schoolID string) (AcademicSession, error)
		QuerySessionsBySchool(ctx context.Context, schoolID string) ([]AcademicSession, error)
		// ActivateSession deactivates any other active session of the school
		// in the same operation so the one-active invariant holds.
		ActivateSession(ctx context.Context, schoolID, sessionID string) (AcademicSession, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryClassesBySchool(ctx context.Context, schoolID string) ([]Class, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		QuerySubjectsBySchool(ctx context.Context, schoolID string) ([]Subject, error)
	}

	// ProfileResolver looks up role profiles when resolving an identity's
	// school; user.Repository satisfies it.
	ProfileResolver interface {
		GetTeacherByUserID(ctx context.Context, userID string) (user.Teacher, error)
		GetStudentByUserID(ctx context.Context, userID string) (user.Student, error)
	}

	Service struct {
		repo     Repository
		profiles ProfileResolver
	}
)

func NewService(repo Repository, profiles ProfileResolver) *Service {
	return &Service{repo: repo, profiles: profiles}
}

// ResolveSchool determines the school an identity belongs to, checking
// proprietorship, principalship, the teacher profile and the student profile
// in that strict order. Proprietorship must win: a proprietor may also be a
// guardian or teacher elsewhere and their admin dashboard has to resolve to
// the school they own. ErrNotFound is a normal state for a freshly registered
// identity awaiting profile linkage.
func (svc *Service) ResolveSchool(ctx context.Context, userID string) (School, error) {
	sch, err := svc.repo.GetSchoolByOwner(ctx, userID)
	if err == nil {
		return sch, nil
	}
	if !core.IsNotFound(err) {
		return School{}, errors.Wrap(err, "resolving school by owner")
	}

	sch, err = svc.repo.GetSchoolByPrincipal(ctx, userID)
	if err == nil {
		return sch, nil
	}
	if !core.IsNotFound(err) {
		return School{}, errors.Wrap(err, "resolving school by principal")
	}

	tch, err := svc.profiles.GetTeacherByUserID(ctx, userID)
	if err == nil {
		return svc.repo.GetSchoolByID(ctx, tch.SchoolID)
	}
	if !core.IsNotFound(err) {
		return School{}, errors.Wrap(err, "resolving school by teacher profile")
	}

	std, err := svc.profiles.GetStudentByUserID(ctx, userID)
	if err == nil {
		return svc.repo.GetSchoolByID(ctx, std.SchoolID)
	}
	if !core.IsNotFound(err) {
		return School{}, errors.Wrap(err, "resolving school by student profile")
	}

	return School{}, ErrNotFound
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := ns.Validate(); err != nil {
		return School{}, err
	}
	now := time.Now().UTC()
	sch := School{
		ID:          uuid.New().String(),
		Name:        ns.Name,
		Address:     ns.Address,
		Phone:       ns.Phone,
		Email:       ns.Email,
		OwnerID:     ns.OwnerID,
		PrincipalID: ns.PrincipalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *Service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *Service) CreateSession(ctx context.Context, ns NewSession) (AcademicSession, error) {
	if err := ns.Validate(); err != nil {
		return AcademicSession{}, err
	}
	if _, err := svc.repo.GetSchoolByID(ctx, ns.SchoolID); err != nil {
		return AcademicSession{}, err
	}
	now := time.Now().UTC()
	sess := AcademicSession{
		ID:        uuid.New().String(),
		SchoolID:  ns.SchoolID,
		Name:      ns.Name,
		StartDate: ns.StartDate,
		EndDate:   ns.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *Service) GetSessionByID(ctx context.Context, id string) (AcademicSession, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) ActiveSession(ctx context.Context, schoolID string) (AcademicSession, error) {
	return svc.repo.GetActiveSession(ctx, schoolID)
}

func (svc *Service) QuerySessions(ctx context.Context, schoolID string) ([]AcademicSession, error) {
	return svc.repo.QuerySessionsBySchool(ctx, schoolID)
}

func (svc *Service) ActivateSession(ctx context.Context, schoolID, sessionID string) (AcademicSession, error) {
	return svc.repo.ActivateSession(ctx, schoolID, sessionID)
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}
	if _, err := svc.repo.GetSchoolByID(ctx, nc.SchoolID); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	cls := Class{
		ID:        uuid.New().String(),
		SchoolID:  nc.SchoolID,
		Name:      nc.Name,
		Level:     nc.Level,
		Capacity:  nc.Capacity,
		TeacherID: null.NewString(nc.TeacherID, nc.TeacherID != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) GetClassByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context, schoolID string) ([]Class, error) {
	return svc.repo.QueryClassesBySchool(ctx, schoolID)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(); err != nil {
		return Subject{}, err
	}
	if _, err := svc.repo.GetSchoolByID(ctx, ns.SchoolID); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	sub := Subject{
		ID:        uuid.New().String(),
		SchoolID:  ns.SchoolID,
		Name:      ns.Name,
		Code:      ns.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) GetSubjectByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) QuerySubjects(ctx context.Context, schoolID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsBySchool(ctx, schoolID)
}
