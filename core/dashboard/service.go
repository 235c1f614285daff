package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type (
	// Dashboard is the role-conditioned payload: exactly one of the role
	// sections is set, matching Role. An identity whose profile is not yet
	// linked gets the base payload only (graceful mid-onboarding state).
	Dashboard struct {
		Role    string            `json:"role"`
		User    user.User         `json:"user"`
		School  *school.School    `json:"school,omitempty"`
		Student *StudentDashboard `json:"student,omitempty"`
		Teacher *TeacherDashboard `json:"teacher,omitempty"`
		Admin   *AdminDashboard   `json:"admin,omitempty"`
	}

	StudentDashboard struct {
		Profile     user.Student              `json:"profile"`
		Grades      []academics.Grade         `json:"grades"`
		Attendance  []academics.Attendance    `json:"attendance"`
		Assignments []academics.Assignment    `json:"assignments"`
		Inbox       []comms.Message           `json:"inbox"`
		Fees        []finance.StudentFeeState `json:"fees"`
	}

	TeacherDashboard struct {
		Profile  user.Teacher     `json:"profile"`
		Classes  []school.Class   `json:"classes"`
		Subjects []school.Subject `json:"subjects"`
		Inbox    []comms.Message  `json:"inbox"`
	}

	AdminDashboard struct {
		Classes       []school.Class       `json:"classes"`
		Teachers      []user.Teacher       `json:"teachers"`
		Subjects      []school.Subject     `json:"subjects"`
		Announcements []comms.Announcement `json:"announcements"`
	}

	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		GetStudentByUserID(ctx context.Context, userID string) (user.Student, error)
		GetTeacherByUserID(ctx context.Context, userID string) (user.Teacher, error)
		QueryTeachersBySchool(ctx context.Context, schoolID string) ([]user.Teacher, error)
	}

	Schools interface {
		ResolveSchool(ctx context.Context, userID string) (school.School, error)
		ActiveSession(ctx context.Context, schoolID string) (school.AcademicSession, error)
		QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error)
		QuerySubjects(ctx context.Context, schoolID string) ([]school.Subject, error)
	}

	Academics interface {
		QueryGradesByStudent(ctx context.Context, studentID string, filter academics.GradeFilter) ([]academics.Grade, error)
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]academics.Attendance, error)
		QueryAssignmentsByClass(ctx context.Context, classID string) ([]academics.Assignment, error)
	}

	Fees interface {
		StudentFeeStates(ctx context.Context, studentID string) ([]finance.StudentFeeState, error)
	}

	Comms interface {
		QueryInbox(ctx context.Context, recipientID string) ([]comms.Message, error)
		QueryAnnouncements(ctx context.Context, schoolID, role string) ([]comms.Announcement, error)
	}

	Service struct {
		users     Users
		schools   Schools
		academics Academics
		fees      Fees
		comms     Comms
	}
)

func NewService(users Users, schools Schools, acad Academics, fees Fees, cms Comms) *Service {
	return &Service{
		users:     users,
		schools:   schools,
		academics: acad,
		fees:      fees,
		comms:     cms,
	}
}

// Compose builds the caller's dashboard. The role determines which sections
// are fetched; the independent sub-fetches of a section run concurrently and
// join before the payload is assembled.
func (svc *Service) Compose(ctx context.Context, userID string) (Dashboard, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "getting user")
	}
	dash := Dashboard{Role: usr.Role, User: usr}

	sch, err := svc.schools.ResolveSchool(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return dash, nil // no school linkage yet
		}
		return Dashboard{}, errors.Wrap(err, "resolving school")
	}
	dash.School = &sch

	switch {
	case usr.IsStudent():
		err = svc.composeStudent(ctx, &dash, usr, sch)
	case usr.IsTeacher():
		err = svc.composeTeacher(ctx, &dash, usr, sch)
	case usr.IsAdmin():
		err = svc.composeAdmin(ctx, &dash, usr, sch)
	default:
		// guardians get the base payload
	}
	if err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}

func (svc *Service) composeStudent(ctx context.Context, dash *Dashboard, usr user.User, sch school.School) error {
	profile, err := svc.users.GetStudentByUserID(ctx, usr.ID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil // profile not linked yet; keep the base payload
		}
		return errors.Wrap(err, "getting student profile")
	}
	sd := &StudentDashboard{Profile: profile}

	// published grades of the active session only; all terms when the school
	// has no active session
	filter := academics.GradeFilter{PublishedOnly: true}
	if sess, err := svc.schools.ActiveSession(ctx, sch.ID); err == nil {
		filter.SessionID = sess.ID
	} else if !core.IsNotFound(err) {
		return errors.Wrap(err, "getting active session")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sd.Grades, err = svc.academics.QueryGradesByStudent(gctx, profile.ID, filter)
		return errors.Wrap(err, "querying grades")
	})
	g.Go(func() (err error) {
		sd.Attendance, err = svc.academics.QueryAttendanceByStudent(gctx, profile.ID)
		return errors.Wrap(err, "querying attendance")
	})
	g.Go(func() (err error) {
		sd.Assignments, err = svc.academics.QueryAssignmentsByClass(gctx, profile.ClassID)
		return errors.Wrap(err, "querying assignments")
	})
	g.Go(func() (err error) {
		sd.Inbox, err = svc.comms.QueryInbox(gctx, usr.ID)
		return errors.Wrap(err, "querying inbox")
	})
	g.Go(func() (err error) {
		sd.Fees, err = svc.fees.StudentFeeStates(gctx, profile.ID)
		return errors.Wrap(err, "querying fees")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	dash.Student = sd
	return nil
}

func (svc *Service) composeTeacher(ctx context.Context, dash *Dashboard, usr user.User, sch school.School) error {
	profile, err := svc.users.GetTeacherByUserID(ctx, usr.ID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "getting teacher profile")
	}
	td := &TeacherDashboard{Profile: profile}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		td.Classes, err = svc.schools.QueryClasses(gctx, sch.ID)
		return errors.Wrap(err, "querying classes")
	})
	g.Go(func() (err error) {
		td.Subjects, err = svc.schools.QuerySubjects(gctx, sch.ID)
		return errors.Wrap(err, "querying subjects")
	})
	g.Go(func() (err error) {
		td.Inbox, err = svc.comms.QueryInbox(gctx, usr.ID)
		return errors.Wrap(err, "querying inbox")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	dash.Teacher = td
	return nil
}

func (svc *Service) composeAdmin(ctx context.Context, dash *Dashboard, usr user.User, sch school.School) error {
	ad := &AdminDashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ad.Classes, err = svc.schools.QueryClasses(gctx, sch.ID)
		return errors.Wrap(err, "querying classes")
	})
	g.Go(func() (err error) {
		ad.Teachers, err = svc.users.QueryTeachersBySchool(gctx, sch.ID)
		return errors.Wrap(err, "querying teachers")
	})
	g.Go(func() (err error) {
		ad.Subjects, err = svc.schools.QuerySubjects(gctx, sch.ID)
		return errors.Wrap(err, "querying subjects")
	})
	g.Go(func() (err error) {
		ad.Announcements, err = svc.comms.QueryAnnouncements(gctx, sch.ID, usr.Role)
		return errors.Wrap(err, "querying announcements")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	dash.Admin = ad
	return nil
}
