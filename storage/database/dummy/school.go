package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(_ context.Context, id string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolByOwner(_ context.Context, userID string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.OwnerID == userID {
			return *sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolByPrincipal(_ context.Context, userID string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.PrincipalID == userID && userID != "" {
			return *sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateSession(_ context.Context, sess school.AcademicSession) (school.AcademicSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *schoolRepository) GetSessionByID(_ context.Context, id string) (school.AcademicSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return school.AcademicSession{}, school.ErrNotFound
}

func (repo *schoolRepository) GetActiveSession(_ context.Context, schoolID string) (school.AcademicSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sess := range repo.db.sessions {
		if sess.SchoolID == schoolID && sess.IsActive {
			return *sess, nil
		}
	}
	return school.AcademicSession{}, school.ErrNotFound
}

func (repo *schoolRepository) QuerySessionsBySchool(_ context.Context, schoolID string) ([]school.AcademicSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]school.AcademicSession, 0)
	for _, sess := range repo.db.sessions {
		if sess.SchoolID == schoolID {
			sessions = append(sessions, *sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartDate.After(sessions[j].StartDate) })
	return sessions, nil
}

func (repo *schoolRepository) ActivateSession(_ context.Context, schoolID, sessionID string) (school.AcademicSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	target, ok := repo.db.sessions[sessionID]
	if !ok || target.SchoolID != schoolID {
		return school.AcademicSession{}, school.ErrNotFound
	}

	now := time.Now().UTC()
	for _, sess := range repo.db.sessions {
		if sess.SchoolID == schoolID && sess.IsActive && sess.ID != sessionID {
			sess.IsActive = false
			sess.UpdatedAt = now
		}
	}
	target.IsActive = true
	target.UpdatedAt = now
	return *target, nil
}

func (repo *schoolRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(_ context.Context, id string) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrNotFound
}

func (repo *schoolRepository) QueryClassesBySchool(_ context.Context, schoolID string) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.SchoolID == schoolID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *schoolRepository) CreateSubject(_ context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *schoolRepository) GetSubjectByID(_ context.Context, id string) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return school.Subject{}, school.ErrNotFound
}

func (repo *schoolRepository) QuerySubjectsBySchool(_ context.Context, schoolID string) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.SchoolID == schoolID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}
