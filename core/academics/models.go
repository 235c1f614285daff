package academics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// Term is one of the three academic sub-periods of a session.
type Term string

const (
	TermFirst  Term = "first"
	TermSecond Term = "second"
	TermThird  Term = "third"
)

func (t Term) IsValid() bool {
	switch t {
	case TermFirst, TermSecond, TermThird:
		return true
	}
	return false
}

type GradeStatus string

const (
	GradeDraft     GradeStatus = "draft"
	GradePublished GradeStatus = "published"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Grade is a single assessment record. Only published grades are visible to
// students and guardians.
type Grade struct {
	ID             string          `json:"id" db:"id"`
	StudentID      string          `json:"student_id" db:"student_id"`
	SubjectID      string          `json:"subject_id" db:"subject_id"`
	TeacherID      string          `json:"teacher_id" db:"teacher_id"`
	SessionID      string          `json:"session_id" db:"session_id"`
	Term           Term            `json:"term" db:"term"`
	AssessmentType string          `json:"assessment_type" db:"assessment_type"` // e.g. exam, test, homework
	Score          decimal.Decimal `json:"score" db:"score"`
	MaxScore       decimal.Decimal `json:"max_score" db:"max_score"`
	Status         GradeStatus     `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type Attendance struct {
	ID         string           `json:"id" db:"id"`
	StudentID  string           `json:"student_id" db:"student_id"`
	ClassID    string           `json:"class_id" db:"class_id"`
	RecordedBy string           `json:"recorded_by" db:"recorded_by"`
	Date       time.Time        `json:"date" db:"date"` // date-only, UTC midnight
	Status     AttendanceStatus `json:"status" db:"status"`
	Remark     null.String      `json:"remark" db:"remark"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

type Assignment struct {
	ID          string          `json:"id" db:"id"`
	ClassID     string          `json:"class_id" db:"class_id"`
	SubjectID   string          `json:"subject_id" db:"subject_id"`
	TeacherID   string          `json:"teacher_id" db:"teacher_id"`
	Title       string          `json:"title" db:"title"`
	Description null.String     `json:"description" db:"description"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	MaxScore    decimal.Decimal `json:"max_score" db:"max_score"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ReportCard is the per-student, per-term aggregate over published grades.
// Rank and ClassSize are null when the student has no published grades for
// the term. Average is TotalScore/TotalPossible*100 rounded half-up to the
// configured precision. Regeneration with unchanged input grades yields
// identical fields.
type ReportCard struct {
	ID            string          `json:"id" db:"id"`
	StudentID     string          `json:"student_id" db:"student_id"`
	SessionID     string          `json:"session_id" db:"session_id"`
	Term          Term            `json:"term" db:"term"`
	TotalScore    decimal.Decimal `json:"total_score" db:"total_score"`
	TotalPossible decimal.Decimal `json:"total_possible" db:"total_possible"`
	Average       decimal.Decimal `json:"average" db:"average"`
	Rank          null.Int        `json:"rank" db:"rank"`
	ClassSize     null.Int        `json:"class_size" db:"class_size"`
	Remark        null.String     `json:"remark" db:"remark"`
	IsPublished   bool            `json:"is_published" db:"is_published"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// aggregateEquals reports whether two report cards carry the same computed
// fields; regeneration skips the write when nothing changed.
func (rc ReportCard) aggregateEquals(other ReportCard) bool {
	return rc.TotalScore.Equal(other.TotalScore) &&
		rc.TotalPossible.Equal(other.TotalPossible) &&
		rc.Average.Equal(other.Average) &&
		rc.Rank == other.Rank &&
		rc.ClassSize == other.ClassSize
}

// GradeFilter narrows grade reads; a zero filter returns all of a student's
// grades, newest first.
type GradeFilter struct {
	Term          Term
	SessionID     string
	PublishedOnly bool
}

type NewGrade struct {
	StudentID      string          `json:"student_id" validate:"required"`
	SubjectID      string          `json:"subject_id" validate:"required"`
	TeacherID      string          `json:"teacher_id" validate:"required"`
	SessionID      string          `json:"session_id" validate:"required"`
	Term           Term            `json:"term" validate:"required,term"`
	AssessmentType string          `json:"assessment_type" validate:"required"`
	Score          decimal.Decimal `json:"score"`
	MaxScore       decimal.Decimal `json:"max_score"`
	Publish        bool            `json:"publish"`
}

func (ng *NewGrade) Validate() error {
	ng.AssessmentType = core.CleanString(ng.AssessmentType, true /* lower */)
	return core.Validate.Struct(ng)
}

// UpdateGrade applies a partial update; nil fields keep their stored values.
type UpdateGrade struct {
	AssessmentType string           `json:"assessment_type"`
	Score          *decimal.Decimal `json:"score"`
	MaxScore       *decimal.Decimal `json:"max_score"`
	Status         *GradeStatus     `json:"status"`
}

func (ug *UpdateGrade) Validate(orig Grade) error {
	if ug.AssessmentType != "" {
		ug.AssessmentType = core.CleanString(ug.AssessmentType, true /* lower */)
	} else {
		ug.AssessmentType = orig.AssessmentType
	}
	if ug.Score == nil {
		score := orig.Score
		ug.Score = &score
	}
	if ug.MaxScore == nil {
		max := orig.MaxScore
		ug.MaxScore = &max
	}
	if ug.Status == nil {
		status := orig.Status
		ug.Status = &status
	}
	return core.Validate.Struct(ug)
}

type NewAttendance struct {
	StudentID  string           `json:"student_id" validate:"required"`
	ClassID    string           `json:"class_id" validate:"required"`
	RecordedBy string           `json:"recorded_by" validate:"required"`
	Date       time.Time        `json:"date" validate:"required"`
	Status     AttendanceStatus `json:"status" validate:"required,attendancestatus"`
	Remark     string           `json:"remark"`
}

func (na *NewAttendance) Validate() error {
	na.Remark = core.CleanString(na.Remark)
	return core.Validate.Struct(na)
}

type NewAssignment struct {
	ClassID     string          `json:"class_id" validate:"required"`
	SubjectID   string          `json:"subject_id" validate:"required"`
	TeacherID   string          `json:"teacher_id" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
	MaxScore    decimal.Decimal `json:"max_score"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return core.Validate.Struct(na)
}
