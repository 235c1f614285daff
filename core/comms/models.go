package comms

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// ParentKind enumerates the entity kinds a comment can be attached to.
type ParentKind string

const (
	ParentAssignment   ParentKind = "assignment"
	ParentAnnouncement ParentKind = "announcement"
	ParentGrade        ParentKind = "grade"
	ParentPost         ParentKind = "post"
)

func (k ParentKind) IsValid() bool {
	switch k {
	case ParentAssignment, ParentAnnouncement, ParentGrade, ParentPost:
		return true
	}
	return false
}

// ParentRef is a typed reference to a commentable entity; the kind is a
// closed set so an arbitrary (type, id) pair can never be stored.
type ParentRef struct {
	Kind ParentKind `json:"kind" db:"parent_kind"`
	ID   string     `json:"id" db:"parent_id"`
}

type Message struct {
	ID          string      `json:"id" db:"id"`
	SenderID    string      `json:"sender_id" db:"sender_id"`
	RecipientID string      `json:"recipient_id" db:"recipient_id"`
	Subject     null.String `json:"subject" db:"subject"`
	Body        string      `json:"body" db:"body"`
	IsRead      bool        `json:"is_read" db:"is_read"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// Announcement targets a whole school; a null TargetRole makes it visible to
// every role. Deactivated announcements stay in the store so references keep
// resolving.
type Announcement struct {
	ID         string      `json:"id" db:"id"`
	SchoolID   string      `json:"school_id" db:"school_id"`
	AuthorID   string      `json:"author_id" db:"author_id"`
	Title      string      `json:"title" db:"title"`
	Body       string      `json:"body" db:"body"`
	TargetRole null.String `json:"target_role" db:"target_role"`
	IsActive   bool        `json:"is_active" db:"is_active"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Comment struct {
	ID        string      `json:"id" db:"id"`
	Parent    ParentRef   `json:"parent"`
	AuthorID  string      `json:"author_id" db:"author_id"`
	Body      string      `json:"body" db:"body"`
	IsDeleted bool        `json:"is_deleted" db:"is_deleted"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type Post struct {
	ID          string    `json:"id" db:"id"`
	SchoolID    string    `json:"school_id" db:"school_id"`
	AuthorID    string    `json:"author_id" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	IsDeleted   bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type TimetableEntry struct {
	ID        string    `json:"id" db:"id"`
	ClassID   string    `json:"class_id" db:"class_id"`
	SubjectID string    `json:"subject_id" db:"subject_id"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	Weekday   int       `json:"weekday" db:"weekday"` // time.Weekday, Sunday = 0
	StartTime string    `json:"start_time" db:"start_time"` // "15:04"
	EndTime   string    `json:"end_time" db:"end_time"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NewMessage struct {
	SenderID    string `json:"sender_id" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject"`
	Body        string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Body = core.CleanString(nm.Body)
	return core.Validate.Struct(nm)
}

type NewAnnouncement struct {
	SchoolID   string `json:"school_id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Body       string `json:"body" validate:"required"`
	TargetRole string `json:"target_role" validate:"omitempty,role"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	na.TargetRole = core.CleanString(na.TargetRole, true /* lower */)
	return core.Validate.Struct(na)
}

type NewComment struct {
	Parent   ParentRef `json:"parent"`
	AuthorID string    `json:"author_id" validate:"required"`
	Body     string    `json:"body" validate:"required"`
}

func (nc *NewComment) Validate() error {
	nc.Body = core.CleanString(nc.Body)
	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	if !nc.Parent.Kind.IsValid() || nc.Parent.ID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "parent", Error: "invalid parent reference"})
	}
	return nil
}

type NewPost struct {
	SchoolID string `json:"school_id" validate:"required"`
	AuthorID string `json:"author_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Publish  bool   `json:"publish"`
}

func (np *NewPost) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.Body = core.CleanString(np.Body)
	return core.Validate.Struct(np)
}

type NewTimetableEntry struct {
	ClassID   string `json:"class_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (nt *NewTimetableEntry) Validate() error {
	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	start, err := time.Parse("15:04", nt.StartTime)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "start_time", Error: "must be in HH:MM format"})
	}
	end, err := time.Parse("15:04", nt.EndTime)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be in HH:MM format"})
	}
	if !end.After(start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}
	return nil
}
