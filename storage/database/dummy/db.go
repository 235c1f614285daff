package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type (
	DB struct {
		user      *userTable
		school    *schoolTable
		academics *academicsTable
		finance   *financeTable
		comms     *commsTable
	}

	userTable struct {
		sync.RWMutex
		users    map[string]*user.User
		students map[string]*user.Student
		teachers map[string]*user.Teacher
	}

	schoolTable struct {
		sync.RWMutex
		schools  map[string]*school.School
		sessions map[string]*school.AcademicSession
		classes  map[string]*school.Class
		subjects map[string]*school.Subject
	}

	academicsTable struct {
		sync.RWMutex
		grades      map[string]*academics.Grade
		attendance  map[string]*academics.Attendance
		assignments map[string]*academics.Assignment
		reportCards map[string]*academics.ReportCard
	}

	financeTable struct {
		sync.RWMutex
		structures map[string]*finance.FeeStructure
		payments   map[string]*finance.FeePayment
	}

	commsTable struct {
		sync.RWMutex
		messages      map[string]*comms.Message
		announcements map[string]*comms.Announcement
		notifications map[string]*comms.Notification
		comments      map[string]*comms.Comment
		posts         map[string]*comms.Post
		timetable     map[string]*comms.TimetableEntry
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{
			users:    make(map[string]*user.User),
			students: make(map[string]*user.Student),
			teachers: make(map[string]*user.Teacher),
		},
		school: &schoolTable{
			schools:  make(map[string]*school.School),
			sessions: make(map[string]*school.AcademicSession),
			classes:  make(map[string]*school.Class),
			subjects: make(map[string]*school.Subject),
		},
		academics: &academicsTable{
			grades:      make(map[string]*academics.Grade),
			attendance:  make(map[string]*academics.Attendance),
			assignments: make(map[string]*academics.Assignment),
			reportCards: make(map[string]*academics.ReportCard),
		},
		finance: &financeTable{
			structures: make(map[string]*finance.FeeStructure),
			payments:   make(map[string]*finance.FeePayment),
		},
		comms: &commsTable{
			messages:      make(map[string]*comms.Message),
			announcements: make(map[string]*comms.Announcement),
			notifications: make(map[string]*comms.Notification),
			comments:      make(map[string]*comms.Comment),
			posts:         make(map[string]*comms.Post),
			timetable:     make(map[string]*comms.TimetableEntry),
		},
	}
	return db, nil
}
