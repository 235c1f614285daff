package finance_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		paid   string
		want   finance.PaymentStatus
	}{
		{name: "nothing paid", amount: "100", paid: "0", want: finance.PaymentPending},
		{name: "partially paid", amount: "100", paid: "40.50", want: finance.PaymentPartial},
		{name: "exactly paid", amount: "100", paid: "100", want: finance.PaymentPaid},
		{name: "overpaid", amount: "100", paid: "120", want: finance.PaymentPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			paid := decimal.RequireFromString(tt.paid)
			if got := finance.DeriveStatus(amount, paid); got != tt.want {
				t.Errorf("DeriveStatus(%s, %s) = %s, want %s", amount, paid, got, tt.want)
			}
		})
	}
}

func TestServiceStudentFeeStates(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	schRepo := dummydb.NewSchoolRepository(db)
	svc := finance.NewService(dummydb.NewFinanceRepository(db), user.NewService(usrRepo))
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner@test.cd", "", user.RoleAdminOwner, true)
	sch := testutil.CreateSchool(t, schRepo, "Institut Mwanga", owner.ID, "")
	sess := testutil.CreateSession(t, schRepo, sch.ID, "2025/2026", true)
	cls := testutil.CreateClass(t, schRepo, sch.ID, "6A")
	stdUsr := testutil.CreateUser(t, usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	std := testutil.CreateStudent(t, usrRepo, stdUsr.ID, sch.ID, cls.ID, "", "STD-001")

	tuition, err := svc.CreateFeeStructure(ctx, finance.NewFeeStructure{
		ClassID:   cls.ID,
		SessionID: sess.ID,
		Term:      academics.TermFirst,
		Name:      "Tuition",
		Amount:    decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("CreateFeeStructure() failed: %v", err)
	}
	uniform, err := svc.CreateFeeStructure(ctx, finance.NewFeeStructure{
		ClassID:   cls.ID,
		SessionID: sess.ID,
		Term:      academics.TermFirst,
		Name:      "Uniform",
		Amount:    decimal.NewFromInt(60),
	})
	if err != nil {
		t.Fatalf("CreateFeeStructure() failed: %v", err)
	}

	for _, amount := range []int64{200, 100} {
		if _, err := svc.RecordPayment(ctx, finance.NewFeePayment{
			StudentID:      std.ID,
			FeeStructureID: tuition.ID,
			Amount:         decimal.NewFromInt(amount),
			Method:         "cash",
		}); err != nil {
			t.Fatalf("RecordPayment() failed: %v", err)
		}
	}
	if _, err := svc.RecordPayment(ctx, finance.NewFeePayment{
		StudentID:      std.ID,
		FeeStructureID: uniform.ID,
		Amount:         decimal.NewFromInt(60),
		Method:         "mobile money",
		Reference:      "MM-123",
	}); err != nil {
		t.Fatalf("RecordPayment() failed: %v", err)
	}

	states, err := svc.StudentFeeStates(ctx, std.ID)
	if err != nil {
		t.Fatalf("StudentFeeStates() failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	byStructure := make(map[string]finance.StudentFeeState, len(states))
	for _, s := range states {
		byStructure[s.Structure.ID] = s
	}

	tuitionState := byStructure[tuition.ID]
	if !tuitionState.Paid.Equal(decimal.NewFromInt(300)) {
		t.Errorf("tuition Paid = %s, want 300", tuitionState.Paid)
	}
	if !tuitionState.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("tuition Balance = %s, want 200", tuitionState.Balance)
	}
	if tuitionState.Status != finance.PaymentPartial {
		t.Errorf("tuition Status = %s, want %s", tuitionState.Status, finance.PaymentPartial)
	}

	uniformState := byStructure[uniform.ID]
	if uniformState.Status != finance.PaymentPaid {
		t.Errorf("uniform Status = %s, want %s", uniformState.Status, finance.PaymentPaid)
	}
	if !uniformState.Balance.IsZero() {
		t.Errorf("uniform Balance = %s, want 0", uniformState.Balance)
	}

	// validation is checked before anything is stored
	if _, err := svc.RecordPayment(ctx, finance.NewFeePayment{
		StudentID:      std.ID,
		FeeStructureID: tuition.ID,
		Amount:         decimal.Zero,
		Method:         "cash",
	}); err == nil {
		t.Error("RecordPayment() accepted a zero amount")
	}
}
