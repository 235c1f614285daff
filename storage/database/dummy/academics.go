package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/shule/core/academics"
)

type academicsRepository struct {
	db       *academicsTable
	students *userTable
}

var _ academics.Repository = (*academicsRepository)(nil) // interface compliance check

func NewAcademicsRepository(db *DB) academics.Repository {
	return &academicsRepository{db: db.academics, students: db.user}
}

func (repo *academicsRepository) CreateGrade(_ context.Context, g academics.Grade) (academics.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *academicsRepository) GetGradeByID(_ context.Context, id string) (academics.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return *g, nil
	}
	return academics.Grade{}, academics.ErrGradeNotFound
}

func (repo *academicsRepository) UpdateGrade(_ context.Context, g academics.Grade) (academics.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[g.ID]; !ok {
		return academics.Grade{}, academics.ErrGradeNotFound
	}
	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *academicsRepository) QueryGradesByStudent(_ context.Context, studentID string, filter academics.GradeFilter) ([]academics.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]academics.Grade, 0)
	for _, g := range repo.db.grades {
		if g.StudentID != studentID {
			continue
		}
		if filter.Term != "" && g.Term != filter.Term {
			continue
		}
		if filter.SessionID != "" && g.SessionID != filter.SessionID {
			continue
		}
		if filter.PublishedOnly && g.Status != academics.GradePublished {
			continue
		}
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.After(grades[j].CreatedAt) })
	return grades, nil
}

func (repo *academicsRepository) QueryPublishedGradesByStudents(_ context.Context, studentIDs []string, term academics.Term, sessionID string) ([]academics.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	idSet := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		idSet[id] = struct{}{}
	}

	grades := make([]academics.Grade, 0)
	for _, g := range repo.db.grades {
		if _, ok := idSet[g.StudentID]; !ok {
			continue
		}
		if g.Term != term || g.SessionID != sessionID || g.Status != academics.GradePublished {
			continue
		}
		grades = append(grades, *g)
	}
	return grades, nil
}

func (repo *academicsRepository) UpsertAttendance(_ context.Context, att academics.Attendance) (academics.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == att.StudentID && existing.Date.Equal(att.Date) {
			att.ID = existing.ID
			att.CreatedAt = existing.CreatedAt
			repo.db.attendance[att.ID] = &att
			return att, nil
		}
	}
	repo.db.attendance[att.ID] = &att
	return att, nil
}

func (repo *academicsRepository) QueryAttendanceByStudent(_ context.Context, studentID string) ([]academics.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]academics.Attendance, 0)
	for _, att := range repo.db.attendance {
		if att.StudentID == studentID {
			records = append(records, *att)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}

func (repo *academicsRepository) QueryAttendanceByClassDate(_ context.Context, classID string, date time.Time) ([]academics.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]academics.Attendance, 0)
	for _, att := range repo.db.attendance {
		if att.ClassID == classID && att.Date.Equal(date) {
			records = append(records, *att)
		}
	}

	// register order: the school-local student number
	repo.students.RLock()
	nos := make(map[string]string, len(records))
	for _, att := range records {
		if std, ok := repo.students.students[att.StudentID]; ok {
			nos[att.StudentID] = std.StudentNo
		}
	}
	repo.students.RUnlock()
	sort.Slice(records, func(i, j int) bool { return nos[records[i].StudentID] < nos[records[j].StudentID] })
	return records, nil
}

func (repo *academicsRepository) CreateAssignment(_ context.Context, asg academics.Assignment) (academics.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *academicsRepository) QueryAssignmentsByClass(_ context.Context, classID string) ([]academics.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]academics.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.ClassID == classID {
			assignments = append(assignments, *asg)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].DueDate.Before(assignments[j].DueDate) })
	return assignments, nil
}

func (repo *academicsRepository) SaveReportCard(_ context.Context, rc academics.ReportCard) (academics.ReportCard, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.reportCards {
		if existing.StudentID == rc.StudentID && existing.SessionID == rc.SessionID && existing.Term == rc.Term {
			rc.ID = existing.ID
			break
		}
	}
	repo.db.reportCards[rc.ID] = &rc
	return rc, nil
}

func (repo *academicsRepository) GetReportCard(_ context.Context, studentID string, term academics.Term, sessionID string) (academics.ReportCard, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rc := range repo.db.reportCards {
		if rc.StudentID == studentID && rc.Term == term && rc.SessionID == sessionID {
			return *rc, nil
		}
	}
	return academics.ReportCard{}, academics.ErrReportCardNotFound
}

func (repo *academicsRepository) GetReportCardByID(_ context.Context, id string) (academics.ReportCard, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rc, ok := repo.db.reportCards[id]; ok {
		return *rc, nil
	}
	return academics.ReportCard{}, academics.ErrReportCardNotFound
}

func (repo *academicsRepository) QueryReportCardsByStudent(_ context.Context, studentID string, publishedOnly bool) ([]academics.ReportCard, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cards := make([]academics.ReportCard, 0)
	for _, rc := range repo.db.reportCards {
		if rc.StudentID != studentID {
			continue
		}
		if publishedOnly && !rc.IsPublished {
			continue
		}
		cards = append(cards, *rc)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (repo *academicsRepository) SetReportCardPublished(_ context.Context, id string, published bool) (academics.ReportCard, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rc, ok := repo.db.reportCards[id]
	if !ok {
		return academics.ReportCard{}, academics.ErrReportCardNotFound
	}
	rc.IsPublished = published
	rc.UpdatedAt = time.Now().UTC()
	return *rc, nil
}
