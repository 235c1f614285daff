package school_test

import (
	"context"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func TestServiceResolveSchool(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	schRepo := dummydb.NewSchoolRepository(db)
	svc := school.NewService(schRepo, usrRepo)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner@test.cd", "", user.RoleAdminOwner, true)
	principal := testutil.CreateUser(t, usrRepo, "Principal", "principal@test.cd", "", user.RoleAdminPrincipal, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	unlinked := testutil.CreateUser(t, usrRepo, "Nobody", "nobody@test.cd", "", user.RoleGuardian, true)

	sch := testutil.CreateSchool(t, schRepo, "Lycée Bosangani", owner.ID, principal.ID)
	other := testutil.CreateSchool(t, schRepo, "Institut Mwanga", unlinkedOwnerID(t, usrRepo), "")

	cls := testutil.CreateClass(t, schRepo, sch.ID, "6A")
	testutil.CreateTeacher(t, usrRepo, teacher.ID, sch.ID, "STF-001")
	testutil.CreateStudent(t, usrRepo, student.ID, sch.ID, cls.ID, "", "STD-001")

	// an owner teaching at another school still resolves to the school they own
	testutil.CreateTeacher(t, usrRepo, owner.ID, other.ID, "STF-X01")

	tests := []struct {
		name    string
		userID  string
		want    string // school ID
		wantErr bool
	}{
		{name: "owner wins over teacher profile", userID: owner.ID, want: sch.ID},
		{name: "principal", userID: principal.ID, want: sch.ID},
		{name: "teacher", userID: teacher.ID, want: sch.ID},
		{name: "student", userID: student.ID, want: sch.ID},
		{name: "unlinked identity", userID: unlinked.ID, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveSchool(ctx, tt.userID)
			if tt.wantErr {
				if !core.IsNotFound(err) {
					t.Errorf("ResolveSchool() error = %v, want not found", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSchool() failed: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("ResolveSchool() = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func unlinkedOwnerID(t *testing.T, repo user.Repository) string {
	t.Helper()
	usr := testutil.CreateUser(t, repo, "Other Owner", "other-owner@test.cd", "", user.RoleAdminOwner, true)
	return usr.ID
}

func TestServiceActivateSession(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	schRepo := dummydb.NewSchoolRepository(db)
	svc := school.NewService(schRepo, usrRepo)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner2@test.cd", "", user.RoleAdminOwner, true)
	sch := testutil.CreateSchool(t, schRepo, "Complexe Scolaire Elimu", owner.ID, "")
	prev := testutil.CreateSession(t, schRepo, sch.ID, "2024/2025", true)
	next := testutil.CreateSession(t, schRepo, sch.ID, "2025/2026", false)

	got, err := svc.ActivateSession(ctx, sch.ID, next.ID)
	if err != nil {
		t.Fatalf("ActivateSession() failed: %v", err)
	}
	if !got.IsActive {
		t.Error("ActivateSession() target not active")
	}

	active, err := schRepo.GetActiveSession(ctx, sch.ID)
	if err != nil {
		t.Fatalf("GetActiveSession() failed: %v", err)
	}
	if active.ID != next.ID {
		t.Errorf("active session = %s, want %s", active.Name, next.Name)
	}

	if p, err := schRepo.GetSessionByID(ctx, prev.ID); err != nil {
		t.Fatalf("GetSessionByID() failed: %v", err)
	} else if p.IsActive {
		t.Error("previous session still active")
	}
}
