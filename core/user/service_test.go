package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func newService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo), repo
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:            "Amani Kazadi",
		Email:           "Amani@Test.CD",
		Role:            user.RoleTeacher,
		Password:        "s3cr3t-pwd",
		PasswordConfirm: "s3cr3t-pwd",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if usr.Email != "amani@test.cd" {
		t.Errorf("Email = %s, want lowercased", usr.Email)
	}
	if usr.IsActive == nil || !*usr.IsActive {
		t.Error("new user not active")
	}
	if err := usr.CheckPassword("s3cr3t-pwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	tests := []struct {
		name string
		nu   user.NewUser
	}{
		{
			name: "duplicate email",
			nu: user.NewUser{
				Name: "Dup", Email: "amani@test.cd", Role: user.RoleStudent,
				Password: "s3cr3t-pwd", PasswordConfirm: "s3cr3t-pwd",
			},
		},
		{
			name: "unknown role",
			nu: user.NewUser{
				Name: "Bad Role", Email: "bad-role@test.cd", Role: "janitor",
				Password: "s3cr3t-pwd", PasswordConfirm: "s3cr3t-pwd",
			},
		},
		{
			name: "password mismatch",
			nu: user.NewUser{
				Name: "Mismatch", Email: "mismatch@test.cd", Role: user.RoleStudent,
				Password: "s3cr3t-pwd", PasswordConfirm: "other-pwd",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.nu); err == nil {
				t.Error("Create() accepted invalid input")
			}
		})
	}
}

func TestServiceUpdateKeepsRole(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:            "Bahati",
		Email:           "bahati@test.cd",
		Role:            user.RoleGuardian,
		Password:        "s3cr3t-pwd",
		PasswordConfirm: "s3cr3t-pwd",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Bahati M.", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "Bahati M." {
		t.Errorf("Name = %s, want Bahati M.", updated.Name)
	}
	if updated.Role != user.RoleGuardian {
		t.Errorf("Role = %s, want unchanged", updated.Role)
	}
	if updated.Email != usr.Email {
		t.Errorf("Email = %s, want unchanged", updated.Email)
	}
	if updated.IsActive == nil || *updated.IsActive {
		t.Error("user still active")
	}
}

func TestServiceCreateStudent(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	stdUsr := testutil.CreateUser(t, repo, "Student", "student@test.cd", "", user.RoleStudent, true)
	tchUsr := testutil.CreateUser(t, repo, "Teacher", "teacher@test.cd", "", user.RoleTeacher, true)

	std, err := svc.CreateStudent(ctx, user.NewStudent{
		UserID:    stdUsr.ID,
		SchoolID:  "sch",
		ClassID:   "cls",
		StudentNo: "STD001",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if std.StudentNo != "std001" {
		t.Errorf("StudentNo = %s, want lowercased", std.StudentNo)
	}

	// the linked identity must carry the student role
	if _, err := svc.CreateStudent(ctx, user.NewStudent{
		UserID:    tchUsr.ID,
		SchoolID:  "sch",
		ClassID:   "cls",
		StudentNo: "STD002",
	}); err == nil {
		t.Error("CreateStudent() linked a teacher identity")
	}

	// student numbers are unique within a school
	otherUsr := testutil.CreateUser(t, repo, "Other", "other@test.cd", "", user.RoleStudent, true)
	_, err = svc.CreateStudent(ctx, user.NewStudent{
		UserID:    otherUsr.ID,
		SchoolID:  "sch",
		ClassID:   "cls",
		StudentNo: "std001",
	})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("CreateStudent() error = %v, want validation error", err)
	}
}

func TestServiceGetByEmail(t *testing.T) {
	svc, repo := newService(t)

	usr := testutil.CreateUser(t, repo, "Chiku", "chiku@test.cd", "", user.RoleStudent, true)

	got, err := svc.GetByEmail(context.Background(), "  Chiku@Test.CD ")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if got.ID != usr.ID {
		t.Errorf("GetByEmail() = %s, want %s", got.ID, usr.ID)
	}

	if _, err := svc.GetByEmail(context.Background(), "ghost@test.cd"); !core.IsNotFound(err) {
		t.Errorf("GetByEmail() error = %v, want not found", err)
	}
}
