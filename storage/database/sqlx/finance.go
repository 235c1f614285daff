package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/finance"
)

type financeRepository struct {
	db *sqlx.DB
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *sqlx.DB) *financeRepository {
	return &financeRepository{db: db}
}

func (repo financeRepository) CreateFeeStructure(ctx context.Context, fs finance.FeeStructure) (finance.FeeStructure, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO fee_structure (id, class_id, session_id, term, name, amount, created_at, updated_at)
		VALUES (:id, :class_id, :session_id, :term, :name, :amount, :created_at, :updated_at)`,
		fs,
	)
	if err != nil {
		return finance.FeeStructure{}, errors.Wrap(err, "inserting fee structure")
	}
	return fs, nil
}

func (repo financeRepository) GetFeeStructureByID(ctx context.Context, id string) (finance.FeeStructure, error) {
	var fs finance.FeeStructure
	if err := repo.db.GetContext(ctx, &fs, `SELECT * FROM fee_structure WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return finance.FeeStructure{}, finance.ErrFeeStructureNotFound
		}
		return finance.FeeStructure{}, errors.Wrap(err, "finding fee structure by ID")
	}
	return fs, nil
}

func (repo financeRepository) QueryFeeStructuresByClass(ctx context.Context, classID, sessionID string) ([]finance.FeeStructure, error) {
	query := `SELECT * FROM fee_structure WHERE class_id = $1`
	args := []interface{}{classID}
	if sessionID != "" {
		args = append(args, sessionID)
		query += ` AND session_id = $2`
	}
	query += ` ORDER BY name`

	structures := make([]finance.FeeStructure, 0)
	if err := repo.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying fee structures by class")
	}
	return structures, nil
}

func (repo financeRepository) CreateFeePayment(ctx context.Context, fp finance.FeePayment) (finance.FeePayment, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO fee_payment (id, student_id, fee_structure_id, amount, method, reference, paid_at, created_at)
		VALUES (:id, :student_id, :fee_structure_id, :amount, :method, :reference, :paid_at, :created_at)`,
		fp,
	)
	if err != nil {
		return finance.FeePayment{}, errors.Wrap(err, "inserting fee payment")
	}
	return fp, nil
}

func (repo financeRepository) QueryFeePaymentsByStudent(ctx context.Context, studentID string) ([]finance.FeePayment, error) {
	payments := make([]finance.FeePayment, 0)
	err := repo.db.SelectContext(ctx, &payments,
		`SELECT * FROM fee_payment WHERE student_id = $1 ORDER BY paid_at DESC`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying fee payments by student")
	}
	return payments, nil
}
