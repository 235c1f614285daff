package finance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// FeeStructure is a fee charged to every student of a class for a
// session/term.
type FeeStructure struct {
	ID        string          `json:"id" db:"id"`
	ClassID   string          `json:"class_id" db:"class_id"`
	SessionID string          `json:"session_id" db:"session_id"`
	Term      academics.Term  `json:"term" db:"term"`
	Name      string          `json:"name" db:"name"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

type FeePayment struct {
	ID             string          `json:"id" db:"id"`
	StudentID      string          `json:"student_id" db:"student_id"`
	FeeStructureID string          `json:"fee_structure_id" db:"fee_structure_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Method         string          `json:"method" db:"method"`
	Reference      null.String     `json:"reference" db:"reference"`
	PaidAt         time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// StudentFeeState is the derived per-student view of one fee structure:
// status follows the cumulative amount paid against the structure amount.
type StudentFeeState struct {
	Structure FeeStructure    `json:"structure"`
	Paid      decimal.Decimal `json:"paid"`
	Balance   decimal.Decimal `json:"balance"`
	Status    PaymentStatus   `json:"status"`
}

type NewFeeStructure struct {
	ClassID   string          `json:"class_id" validate:"required"`
	SessionID string          `json:"session_id" validate:"required"`
	Term      academics.Term  `json:"term" validate:"required,term"`
	Name      string          `json:"name" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

func (nf *NewFeeStructure) Validate() error {
	nf.Name = core.CleanString(nf.Name)
	if err := core.Validate.Struct(nf); err != nil {
		return err
	}
	if !nf.Amount.IsPositive() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount must be greater than 0"})
	}
	return nil
}

type NewFeePayment struct {
	StudentID      string          `json:"student_id" validate:"required"`
	FeeStructureID string          `json:"fee_structure_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method" validate:"required"`
	Reference      string          `json:"reference"`
	PaidAt         time.Time       `json:"paid_at"`
}

func (np *NewFeePayment) Validate() error {
	np.Method = core.CleanString(np.Method, true /* lower */)
	np.Reference = core.CleanString(np.Reference)
	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	if !np.Amount.IsPositive() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount must be greater than 0"})
	}
	return nil
}
