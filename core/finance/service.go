package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var ErrFeeStructureNotFound = core.NewNotFoundError("fee structure not found")

type (
	Repository interface {
		CreateFeeStructure(ctx context.Context, fs FeeStructure) (FeeStructure, error)
		GetFeeStructureByID(ctx context.Context, id string) (FeeStructure, error)
		QueryFeeStructuresByClass(ctx context.Context, classID, sessionID string) ([]FeeStructure, error)

		CreateFeePayment(ctx context.Context, fp FeePayment) (FeePayment, error)
		QueryFeePaymentsByStudent(ctx context.Context, studentID string) ([]FeePayment, error)
	}

	// Roster provides student lookups; user.Service satisfies it.
	Roster interface {
		GetStudentByID(ctx context.Context, id string) (user.Student, error)
	}

	Service struct {
		repo   Repository
		roster Roster
	}
)

func NewService(repo Repository, roster Roster) *Service {
	return &Service{repo: repo, roster: roster}
}

func (svc *Service) CreateFeeStructure(ctx context.Context, nf NewFeeStructure) (FeeStructure, error) {
	if err := nf.Validate(); err != nil {
		return FeeStructure{}, err
	}
	now := time.Now().UTC()
	fs := FeeStructure{
		ID:        uuid.New().String(),
		ClassID:   nf.ClassID,
		SessionID: nf.SessionID,
		Term:      nf.Term,
		Name:      nf.Name,
		Amount:    nf.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateFeeStructure(ctx, fs)
}

func (svc *Service) QueryFeeStructuresByClass(ctx context.Context, classID, sessionID string) ([]FeeStructure, error) {
	return svc.repo.QueryFeeStructuresByClass(ctx, classID, sessionID)
}

func (svc *Service) RecordPayment(ctx context.Context, np NewFeePayment) (FeePayment, error) {
	if err := np.Validate(); err != nil {
		return FeePayment{}, err
	}
	if _, err := svc.roster.GetStudentByID(ctx, np.StudentID); err != nil {
		return FeePayment{}, errors.Wrap(err, "checking student")
	}
	if _, err := svc.repo.GetFeeStructureByID(ctx, np.FeeStructureID); err != nil {
		return FeePayment{}, errors.Wrap(err, "checking fee structure")
	}

	paidAt := np.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	fp := FeePayment{
		ID:             uuid.New().String(),
		StudentID:      np.StudentID,
		FeeStructureID: np.FeeStructureID,
		Amount:         np.Amount,
		Method:         np.Method,
		Reference:      null.NewString(np.Reference, np.Reference != ""),
		PaidAt:         paidAt,
		CreatedAt:      time.Now().UTC(),
	}
	return svc.repo.CreateFeePayment(ctx, fp)
}

func (svc *Service) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]FeePayment, error) {
	return svc.repo.QueryFeePaymentsByStudent(ctx, studentID)
}

// StudentFeeStates rolls up the student's fee structures with what has been
// paid so far; the payment status is derived, never stored.
func (svc *Service) StudentFeeStates(ctx context.Context, studentID string) ([]StudentFeeState, error) {
	std, err := svc.roster.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "checking student")
	}
	structures, err := svc.repo.QueryFeeStructuresByClass(ctx, std.ClassID, "")
	if err != nil {
		return nil, errors.Wrap(err, "querying fee structures")
	}
	payments, err := svc.repo.QueryFeePaymentsByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}

	paidByStructure := make(map[string]decimal.Decimal, len(structures))
	for _, p := range payments {
		paidByStructure[p.FeeStructureID] = paidByStructure[p.FeeStructureID].Add(p.Amount)
	}

	states := make([]StudentFeeState, 0, len(structures))
	for _, fs := range structures {
		paid := paidByStructure[fs.ID]
		states = append(states, StudentFeeState{
			Structure: fs,
			Paid:      paid,
			Balance:   fs.Amount.Sub(paid),
			Status:    DeriveStatus(fs.Amount, paid),
		})
	}
	return states, nil
}

// DeriveStatus maps the cumulative amount paid against the structure amount
// to a payment status.
func DeriveStatus(amount, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return PaymentPaid
	case paid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}
