package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// NewTestConfig returns a self-contained config so tests never depend on the
// environment.
func NewTestConfig() *core.Config {
	return &core.Config{
		AppName:          "Shule",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		DefaultFromEmail: "noreply@test.cd",
		Server: core.ServerConfig{
			Host:               "localhost",
			Port:               "8000",
			JWTExpirationDelta: time.Hour,
		},
		Reporting: core.ReportingConfig{AveragePrecision: 2},
	}
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd, role string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSchool(t *testing.T, repo school.Repository, name, ownerID, principalID string) school.School {
	t.Helper()
	now := time.Now().UTC()
	sch, err := repo.CreateSchool(context.Background(), school.School{
		ID:          uuid.New().String(),
		Name:        name,
		OwnerID:     ownerID,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateSession(t *testing.T, repo school.Repository, schoolID, name string, active bool) school.AcademicSession {
	t.Helper()
	now := time.Now().UTC()
	sess, err := repo.CreateSession(context.Background(), school.AcademicSession{
		ID:        uuid.New().String(),
		SchoolID:  schoolID,
		Name:      name,
		StartDate: now,
		EndDate:   now.AddDate(1, 0, 0),
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func CreateClass(t *testing.T, repo school.Repository, schoolID, name string) school.Class {
	t.Helper()
	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), school.Class{
		ID:        uuid.New().String(),
		SchoolID:  schoolID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, repo school.Repository, schoolID, name, code string) school.Subject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), school.Subject{
		ID:        uuid.New().String(),
		SchoolID:  schoolID,
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateStudent(t *testing.T, repo user.Repository, userID, schoolID, classID, guardianID, studentNo string) user.Student {
	t.Helper()
	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), user.Student{
		ID:         uuid.New().String(),
		UserID:     userID,
		SchoolID:   schoolID,
		ClassID:    classID,
		GuardianID: guardianID,
		StudentNo:  studentNo,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateTeacher(t *testing.T, repo user.Repository, userID, schoolID, staffNo string) user.Teacher {
	t.Helper()
	now := time.Now().UTC()
	tch, err := repo.CreateTeacher(context.Background(), user.Teacher{
		ID:        uuid.New().String(),
		UserID:    userID,
		SchoolID:  schoolID,
		StaffNo:   staffNo,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateGrade(
	t *testing.T,
	repo academics.Repository,
	studentID, subjectID, teacherID, sessionID string,
	term academics.Term,
	score, maxScore int64,
	published bool,
) academics.Grade {
	t.Helper()
	status := academics.GradeDraft
	if published {
		status = academics.GradePublished
	}
	now := time.Now().UTC()
	g, err := repo.CreateGrade(context.Background(), academics.Grade{
		ID:             uuid.New().String(),
		StudentID:      studentID,
		SubjectID:      subjectID,
		TeacherID:      teacherID,
		SessionID:      sessionID,
		Term:           term,
		AssessmentType: "exam",
		Score:          decimal.NewFromInt(score),
		MaxScore:       decimal.NewFromInt(maxScore),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}
