package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/finance"
)

type financeRepository struct {
	db *financeTable
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) finance.Repository {
	return &financeRepository{db: db.finance}
}

func (repo *financeRepository) CreateFeeStructure(_ context.Context, fs finance.FeeStructure) (finance.FeeStructure, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.structures[fs.ID] = &fs
	return fs, nil
}

func (repo *financeRepository) GetFeeStructureByID(_ context.Context, id string) (finance.FeeStructure, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fs, ok := repo.db.structures[id]; ok {
		return *fs, nil
	}
	return finance.FeeStructure{}, finance.ErrFeeStructureNotFound
}

func (repo *financeRepository) QueryFeeStructuresByClass(_ context.Context, classID, sessionID string) ([]finance.FeeStructure, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	structures := make([]finance.FeeStructure, 0)
	for _, fs := range repo.db.structures {
		if fs.ClassID != classID {
			continue
		}
		if sessionID != "" && fs.SessionID != sessionID {
			continue
		}
		structures = append(structures, *fs)
	}
	sort.Slice(structures, func(i, j int) bool { return structures[i].Name < structures[j].Name })
	return structures, nil
}

func (repo *financeRepository) CreateFeePayment(_ context.Context, fp finance.FeePayment) (finance.FeePayment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.payments[fp.ID] = &fp
	return fp, nil
}

func (repo *financeRepository) QueryFeePaymentsByStudent(_ context.Context, studentID string) ([]finance.FeePayment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]finance.FeePayment, 0)
	for _, fp := range repo.db.payments {
		if fp.StudentID == studentID {
			payments = append(payments, *fp)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaidAt.After(payments[j].PaidAt) })
	return payments, nil
}
