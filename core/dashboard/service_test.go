package dashboard_test

import (
	"context"
	"testing"

	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

type fixture struct {
	usrRepo  user.Repository
	schRepo  school.Repository
	acadRepo academics.Repository
	commsSvc *comms.Service
	svc      *dashboard.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	schRepo := dummydb.NewSchoolRepository(db)
	acadRepo := dummydb.NewAcademicsRepository(db)

	usrSvc := user.NewService(usrRepo)
	schSvc := school.NewService(schRepo, usrRepo)
	acadSvc := academics.NewService(acadRepo, usrSvc, usrSvc, schSvc, nil, 2)
	finSvc := finance.NewService(dummydb.NewFinanceRepository(db), usrSvc)
	commsSvc := comms.NewService(dummydb.NewCommsRepository(db))

	return &fixture{
		usrRepo:  usrRepo,
		schRepo:  schRepo,
		acadRepo: acadRepo,
		commsSvc: commsSvc,
		svc:      dashboard.NewService(usrSvc, schSvc, acadSvc, finSvc, commsSvc),
	}
}

func TestServiceComposeUnlinked(t *testing.T) {
	f := setup(t)

	usr := testutil.CreateUser(t, f.usrRepo, "Newcomer", "new@test.cd", "", user.RoleGuardian, true)

	dash, err := f.svc.Compose(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("Compose() failed: %v", err)
	}
	if dash.Role != user.RoleGuardian {
		t.Errorf("Role = %s, want %s", dash.Role, user.RoleGuardian)
	}
	if dash.School != nil || dash.Student != nil || dash.Teacher != nil || dash.Admin != nil {
		t.Error("unlinked identity got more than the base payload")
	}
}

func TestServiceComposeStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.usrRepo, "Owner", "owner@test.cd", "", user.RoleAdminOwner, true)
	sch := testutil.CreateSchool(t, f.schRepo, "Lycée Bosangani", owner.ID, "")
	active := testutil.CreateSession(t, f.schRepo, sch.ID, "2025/2026", true)
	past := testutil.CreateSession(t, f.schRepo, sch.ID, "2024/2025", false)
	cls := testutil.CreateClass(t, f.schRepo, sch.ID, "6A")
	sub := testutil.CreateSubject(t, f.schRepo, sch.ID, "Mathematics", "MATH")

	tchUsr := testutil.CreateUser(t, f.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher, true)
	tch := testutil.CreateTeacher(t, f.usrRepo, tchUsr.ID, sch.ID, "STF-001")

	stdUsr := testutil.CreateUser(t, f.usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	std := testutil.CreateStudent(t, f.usrRepo, stdUsr.ID, sch.ID, cls.ID, "", "STD-001")

	// only the published, active-session grade must surface
	visible := testutil.CreateGrade(t, f.acadRepo, std.ID, sub.ID, tch.ID, active.ID, academics.TermFirst, 80, 100, true)
	testutil.CreateGrade(t, f.acadRepo, std.ID, sub.ID, tch.ID, active.ID, academics.TermFirst, 50, 100, false)
	testutil.CreateGrade(t, f.acadRepo, std.ID, sub.ID, tch.ID, past.ID, academics.TermThird, 70, 100, true)

	if _, err := f.commsSvc.SendMessage(ctx, comms.NewMessage{
		SenderID:    tchUsr.ID,
		RecipientID: stdUsr.ID,
		Body:        "See me after class.",
	}); err != nil {
		t.Fatalf("SendMessage() failed: %v", err)
	}

	dash, err := f.svc.Compose(ctx, stdUsr.ID)
	if err != nil {
		t.Fatalf("Compose() failed: %v", err)
	}
	if dash.School == nil || dash.School.ID != sch.ID {
		t.Fatal("school section missing")
	}
	if dash.Student == nil {
		t.Fatal("student section missing")
	}
	if dash.Teacher != nil || dash.Admin != nil {
		t.Error("student dashboard carries foreign sections")
	}
	if len(dash.Student.Grades) != 1 || dash.Student.Grades[0].ID != visible.ID {
		t.Errorf("Grades = %v, want only the published active-session grade", dash.Student.Grades)
	}
	if len(dash.Student.Inbox) != 1 {
		t.Errorf("got %d inbox messages, want 1", len(dash.Student.Inbox))
	}
}

func TestServiceComposeAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.usrRepo, "Owner", "owner@test.cd", "", user.RoleAdminOwner, true)
	sch := testutil.CreateSchool(t, f.schRepo, "Institut Mwanga", owner.ID, "")
	testutil.CreateClass(t, f.schRepo, sch.ID, "6A")
	testutil.CreateClass(t, f.schRepo, sch.ID, "6B")
	tchUsr := testutil.CreateUser(t, f.usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher, true)
	testutil.CreateTeacher(t, f.usrRepo, tchUsr.ID, sch.ID, "STF-001")

	if _, err := f.commsSvc.CreateAnnouncement(ctx, user.User{ID: owner.ID, Role: owner.Role}, comms.NewAnnouncement{
		SchoolID: sch.ID,
		Title:    "Term dates",
		Body:     "The first term starts on September 7th.",
	}); err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}

	dash, err := f.svc.Compose(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Compose() failed: %v", err)
	}
	if dash.Admin == nil {
		t.Fatal("admin section missing")
	}
	if len(dash.Admin.Classes) != 2 {
		t.Errorf("got %d classes, want 2", len(dash.Admin.Classes))
	}
	if len(dash.Admin.Teachers) != 1 {
		t.Errorf("got %d teachers, want 1", len(dash.Admin.Teachers))
	}
	if len(dash.Admin.Announcements) != 1 {
		t.Errorf("got %d announcements, want 1", len(dash.Admin.Announcements))
	}
}
