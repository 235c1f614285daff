package academics

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

var (
	ErrGradeNotFound      = core.NewNotFoundError("grade not found")
	ErrReportCardNotFound = core.NewNotFoundError("report card not found")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		// QueryGradesByStudent returns the student's grades, newest first.
		QueryGradesByStudent(ctx context.Context, studentID string, filter GradeFilter) ([]Grade, error)
		// QueryPublishedGradesByStudents returns the published grades of all
		// given students for a term/session in one go (rank computation).
		QueryPublishedGradesByStudents(ctx context.Context, studentIDs []string, term Term, sessionID string) ([]Grade, error)

		// UpsertAttendance overwrites any existing record for the same
		// (student, date), preserving its ID and creation timestamp.
		UpsertAttendance(ctx context.Context, att Attendance) (Attendance, error)
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)
		QueryAttendanceByClassDate(ctx context.Context, classID string, date time.Time) ([]Attendance, error)

		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		QueryAssignmentsByClass(ctx context.Context, classID string) ([]Assignment, error)

		// SaveReportCard upserts on (student, term, session).
		SaveReportCard(ctx context.Context, rc ReportCard) (ReportCard, error)
		GetReportCard(ctx context.Context, studentID string, term Term, sessionID string) (ReportCard, error)
		GetReportCardByID(ctx context.Context, id string) (ReportCard, error)
		QueryReportCardsByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]ReportCard, error)
		SetReportCardPublished(ctx context.Context, id string, published bool) (ReportCard, error)
	}

	// Roster provides student lookups; user.Service satisfies it.
	Roster interface {
		GetStudentByID(ctx context.Context, id string) (user.Student, error)
		QueryStudentsByClass(ctx context.Context, classID string) ([]user.Student, error)
	}

	// Users provides identity lookups for notifications.
	Users interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	// Catalog provides session and subject lookups; school.Service satisfies it.
	Catalog interface {
		GetSessionByID(ctx context.Context, id string) (school.AcademicSession, error)
		GetSubjectByID(ctx context.Context, id string) (school.Subject, error)
	}

	Service struct {
		repo      Repository
		roster    Roster
		users     Users
		catalog   Catalog
		mailSvc   core.EmailService
		precision int32
	}
)

func NewService(repo Repository, roster Roster, users Users, catalog Catalog, mailSvc core.EmailService, precision int32) *Service {
	return &Service{
		repo:      repo,
		roster:    roster,
		users:     users,
		catalog:   catalog,
		mailSvc:   mailSvc,
		precision: precision,
	}
}

// Grades

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := ng.Validate(); err != nil {
		return Grade{}, err
	}
	if _, err := svc.roster.GetStudentByID(ctx, ng.StudentID); err != nil {
		return Grade{}, errors.Wrap(err, "checking student")
	}
	if _, err := svc.catalog.GetSubjectByID(ctx, ng.SubjectID); err != nil {
		return Grade{}, errors.Wrap(err, "checking subject")
	}
	if _, err := svc.catalog.GetSessionByID(ctx, ng.SessionID); err != nil {
		return Grade{}, errors.Wrap(err, "checking session")
	}

	status := GradeDraft
	if ng.Publish {
		status = GradePublished
	}
	now := time.Now().UTC()
	g := Grade{
		ID:             uuid.New().String(),
		StudentID:      ng.StudentID,
		SubjectID:      ng.SubjectID,
		TeacherID:      ng.TeacherID,
		SessionID:      ng.SessionID,
		Term:           ng.Term,
		AssessmentType: ng.AssessmentType,
		Score:          ng.Score,
		MaxScore:       ng.MaxScore,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	g, err := svc.repo.CreateGrade(ctx, g)
	if err != nil {
		return Grade{}, err
	}
	svc.refreshReportCard(ctx, g)
	return g, nil
}

func (svc *Service) GetGradeByID(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *Service) UpdateGrade(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	orig, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	if err := ug.Validate(orig); err != nil {
		return Grade{}, err
	}

	g := orig
	g.AssessmentType = ug.AssessmentType
	g.Score = *ug.Score
	g.MaxScore = *ug.MaxScore
	g.Status = *ug.Status
	g.UpdatedAt = time.Now().UTC()

	g, err = svc.repo.UpdateGrade(ctx, g)
	if err != nil {
		return Grade{}, err
	}
	svc.refreshReportCard(ctx, g)
	return g, nil
}

func (svc *Service) QueryGradesByStudent(ctx context.Context, studentID string, filter GradeFilter) ([]Grade, error) {
	return svc.repo.QueryGradesByStudent(ctx, studentID, filter)
}

// refreshReportCard regenerates an existing report card whose inputs just
// changed. A missing card is fine: cards are generated on demand.
func (svc *Service) refreshReportCard(ctx context.Context, g Grade) {
	if _, err := svc.repo.GetReportCard(ctx, g.StudentID, g.Term, g.SessionID); err != nil {
		return
	}
	_, _ = svc.GenerateReportCard(ctx, g.StudentID, g.Term, g.SessionID)
}

// Attendance

// RecordAttendance records a student's attendance for a day. A second record
// for the same (student, date) deterministically overwrites the first.
func (svc *Service) RecordAttendance(ctx context.Context, na NewAttendance) (Attendance, error) {
	if err := na.Validate(); err != nil {
		return Attendance{}, err
	}
	if _, err := svc.roster.GetStudentByID(ctx, na.StudentID); err != nil {
		return Attendance{}, errors.Wrap(err, "checking student")
	}

	now := time.Now().UTC()
	day := na.Date.UTC().Truncate(24 * time.Hour)
	att := Attendance{
		ID:         uuid.New().String(),
		StudentID:  na.StudentID,
		ClassID:    na.ClassID,
		RecordedBy: na.RecordedBy,
		Date:       day,
		Status:     na.Status,
		Remark:     null.NewString(na.Remark, na.Remark != ""),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.UpsertAttendance(ctx, att)
}

func (svc *Service) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	return svc.repo.QueryAttendanceByStudent(ctx, studentID)
}

func (svc *Service) QueryAttendanceByClassDate(ctx context.Context, classID string, date time.Time) ([]Attendance, error) {
	return svc.repo.QueryAttendanceByClassDate(ctx, classID, date.UTC().Truncate(24*time.Hour))
}

// Assignments

func (svc *Service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}
	now := time.Now().UTC()
	asg := Assignment{
		ID:          uuid.New().String(),
		ClassID:     na.ClassID,
		SubjectID:   na.SubjectID,
		TeacherID:   na.TeacherID,
		Title:       na.Title,
		Description: null.NewString(na.Description, na.Description != ""),
		DueDate:     na.DueDate,
		MaxScore:    na.MaxScore,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) QueryAssignmentsByClass(ctx context.Context, classID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByClass(ctx, classID)
}

// Report cards

type studentAggregate struct {
	totalScore    decimal.Decimal
	totalPossible decimal.Decimal
	average       decimal.Decimal
	hasGrades     bool
}

func (svc *Service) aggregate(grades []Grade) studentAggregate {
	agg := studentAggregate{totalScore: decimal.Zero, totalPossible: decimal.Zero, average: decimal.Zero}
	for _, g := range grades {
		agg.totalScore = agg.totalScore.Add(g.Score)
		agg.totalPossible = agg.totalPossible.Add(g.MaxScore)
	}
	if agg.totalPossible.IsPositive() {
		agg.hasGrades = true
		// half-up at the configured precision
		agg.average = agg.totalScore.Div(agg.totalPossible).Mul(decimal.NewFromInt(100)).Round(svc.precision)
	}
	return agg
}

// GenerateReportCard computes the aggregate of a student's published grades
// for a term/session and their competition rank within the class (tied
// averages share a rank), then persists the result, overwriting any previous
// card for the same key. No published grades is a valid terminal state: the
// totals are zero and the rank fields null. The card is only written once the
// full aggregate is computed, so an aborted generation leaves no partial row.
func (svc *Service) GenerateReportCard(ctx context.Context, studentID string, term Term, sessionID string) (ReportCard, error) {
	if !term.IsValid() {
		return ReportCard{}, core.NewValidationError(fmt.Errorf("invalid term %q", term))
	}
	std, err := svc.roster.GetStudentByID(ctx, studentID)
	if err != nil {
		return ReportCard{}, errors.Wrap(err, "checking student")
	}
	if _, err := svc.catalog.GetSessionByID(ctx, sessionID); err != nil {
		return ReportCard{}, errors.Wrap(err, "checking session")
	}

	classmates, err := svc.roster.QueryStudentsByClass(ctx, std.ClassID)
	if err != nil {
		return ReportCard{}, errors.Wrap(err, "querying class roster")
	}
	ids := make([]string, 0, len(classmates))
	for _, s := range classmates {
		ids = append(ids, s.ID)
	}
	classGrades, err := svc.repo.QueryPublishedGradesByStudents(ctx, ids, term, sessionID)
	if err != nil {
		return ReportCard{}, errors.Wrap(err, "querying class grades")
	}

	byStudent := make(map[string][]Grade, len(classmates))
	for _, g := range classGrades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	agg := svc.aggregate(byStudent[studentID])

	now := time.Now().UTC()
	rc := ReportCard{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		SessionID:     sessionID,
		Term:          term,
		TotalScore:    agg.totalScore,
		TotalPossible: agg.totalPossible,
		Average:       agg.average,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if agg.hasGrades {
		// rank = 1 + number of classmates with a strictly higher average;
		// ties share a rank, classSize is the denominator.
		rank := 1
		for _, s := range classmates {
			if s.ID == studentID {
				continue
			}
			other := svc.aggregate(byStudent[s.ID])
			if other.average.GreaterThan(agg.average) {
				rank++
			}
		}
		rc.Rank = null.IntFrom(rank)
		rc.ClassSize = null.IntFrom(len(classmates))
	}

	if existing, err := svc.repo.GetReportCard(ctx, studentID, term, sessionID); err == nil {
		if existing.aggregateEquals(rc) {
			return existing, nil
		}
		// the numbers changed, so a previous publication no longer stands
		rc.ID = existing.ID
		rc.CreatedAt = existing.CreatedAt
		rc.Remark = existing.Remark
	} else if !core.IsNotFound(err) {
		return ReportCard{}, errors.Wrap(err, "checking existing report card")
	}

	return svc.repo.SaveReportCard(ctx, rc)
}

func (svc *Service) GetReportCardByID(ctx context.Context, id string) (ReportCard, error) {
	return svc.repo.GetReportCardByID(ctx, id)
}

func (svc *Service) QueryReportCardsByStudent(ctx context.Context, studentID string, publishedOnly bool) ([]ReportCard, error) {
	return svc.repo.QueryReportCardsByStudent(ctx, studentID, publishedOnly)
}

// PublishReportCard makes a report card visible to the student and their
// guardian; administrators only. The guardian is notified by email.
func (svc *Service) PublishReportCard(ctx context.Context, actor user.User, id string) (ReportCard, error) {
	if !actor.IsAdmin() {
		return ReportCard{}, core.ErrPermissionDenied
	}
	rc, err := svc.repo.SetReportCardPublished(ctx, id, true)
	if err != nil {
		return ReportCard{}, err
	}
	svc.notifyGuardian(ctx, rc)
	return rc, nil
}

func (svc *Service) notifyGuardian(ctx context.Context, rc ReportCard) {
	if svc.mailSvc == nil {
		return
	}
	std, err := svc.roster.GetStudentByID(ctx, rc.StudentID)
	if err != nil || std.GuardianID == "" {
		return
	}
	guardian, err := svc.users.GetByID(ctx, std.GuardianID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: guardian.Name, Address: guardian.Email}},
		Subject: "Report card published",
		Body: fmt.Sprintf(
			"A %s term report card for student %s has been published. Log in to view it.",
			rc.Term, std.StudentNo,
		),
	})
}
