package comms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	ErrMessageNotFound      = core.NewNotFoundError("message not found")
	ErrAnnouncementNotFound = core.NewNotFoundError("announcement not found")
	ErrNotificationNotFound = core.NewNotFoundError("notification not found")
	ErrCommentNotFound      = core.NewNotFoundError("comment not found")
	ErrPostNotFound         = core.NewNotFoundError("post not found")
	ErrTimetableNotFound    = core.NewNotFoundError("timetable entry not found")
	ErrParentNotFound       = core.NewNotFoundError("comment parent not found")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryInbox returns a user's received messages, newest first.
		QueryInbox(ctx context.Context, recipientID string) ([]Message, error)
		MarkMessageRead(ctx context.Context, id string) (Message, error)

		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		// QueryAnnouncementsBySchool returns active announcements for a
		// school, newest first, keeping those targeting the given role or no
		// role at all. An empty role matches everything (admin view).
		QueryAnnouncementsBySchool(ctx context.Context, schoolID, role string) ([]Announcement, error)
		DeactivateAnnouncement(ctx context.Context, id string) error

		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, userID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)

		CreateComment(ctx context.Context, c Comment) (Comment, error)
		// QueryCommentsByParent returns a parent's comments in conversation
		// order (oldest first), excluding soft-deleted ones.
		QueryCommentsByParent(ctx context.Context, parent ParentRef) ([]Comment, error)
		SoftDeleteComment(ctx context.Context, id string) error
		// ParentExists reports whether the referenced commentable entity is
		// in the store.
		ParentExists(ctx context.Context, parent ParentRef) (bool, error)

		CreatePost(ctx context.Context, p Post) (Post, error)
		// QueryPostsBySchool returns published, non-deleted posts, newest first.
		QueryPostsBySchool(ctx context.Context, schoolID string) ([]Post, error)
		SoftDeletePost(ctx context.Context, id string) error

		CreateTimetableEntry(ctx context.Context, e TimetableEntry) (TimetableEntry, error)
		// QueryTimetableByClass returns active entries ordered by weekday
		// then start time.
		QueryTimetableByClass(ctx context.Context, classID string) ([]TimetableEntry, error)
		DeactivateTimetableEntry(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SendMessage stores a direct message and drops a notification for the
// recipient.
func (svc *Service) SendMessage(ctx context.Context, nm NewMessage) (Message, error) {
	if err := nm.Validate(); err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:          uuid.New().String(),
		SenderID:    nm.SenderID,
		RecipientID: nm.RecipientID,
		Subject:     null.NewString(nm.Subject, nm.Subject != ""),
		Body:        nm.Body,
		CreatedAt:   time.Now().UTC(),
	}
	msg, err := svc.repo.CreateMessage(ctx, msg)
	if err != nil {
		return Message{}, err
	}
	_, _ = svc.repo.CreateNotification(ctx, Notification{
		ID:        uuid.New().String(),
		UserID:    msg.RecipientID,
		Kind:      "message",
		Body:      "You have a new message",
		CreatedAt: time.Now().UTC(),
	})
	return msg, nil
}

func (svc *Service) QueryInbox(ctx context.Context, recipientID string) ([]Message, error) {
	return svc.repo.QueryInbox(ctx, recipientID)
}

func (svc *Service) MarkMessageRead(ctx context.Context, id string) (Message, error) {
	return svc.repo.MarkMessageRead(ctx, id)
}

// CreateAnnouncement is restricted to the school's administrators
// (principal/proprietor).
func (svc *Service) CreateAnnouncement(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	if !actor.IsAdmin() {
		return Announcement{}, core.ErrPermissionDenied
	}
	if err := na.Validate(); err != nil {
		return Announcement{}, err
	}
	now := time.Now().UTC()
	ann := Announcement{
		ID:         uuid.New().String(),
		SchoolID:   na.SchoolID,
		AuthorID:   actor.ID,
		Title:      na.Title,
		Body:       na.Body,
		TargetRole: null.NewString(na.TargetRole, na.TargetRole != ""),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateAnnouncement(ctx, ann)
}

func (svc *Service) QueryAnnouncements(ctx context.Context, schoolID, role string) ([]Announcement, error) {
	return svc.repo.QueryAnnouncementsBySchool(ctx, schoolID, role)
}

func (svc *Service) DeactivateAnnouncement(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeactivateAnnouncement(ctx, id)
}

func (svc *Service) QueryNotifications(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, userID)
}

func (svc *Service) MarkNotificationRead(ctx context.Context, id string) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, id)
}

// AddComment validates the parent reference against the store before
// anything is written.
func (svc *Service) AddComment(ctx context.Context, nc NewComment) (Comment, error) {
	if err := nc.Validate(); err != nil {
		return Comment{}, err
	}
	ok, err := svc.repo.ParentExists(ctx, nc.Parent)
	if err != nil {
		return Comment{}, errors.Wrap(err, "checking comment parent")
	}
	if !ok {
		return Comment{}, ErrParentNotFound
	}

	now := time.Now().UTC()
	c := Comment{
		ID:        uuid.New().String(),
		Parent:    nc.Parent,
		AuthorID:  nc.AuthorID,
		Body:      nc.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateComment(ctx, c)
}

func (svc *Service) QueryComments(ctx context.Context, parent ParentRef) ([]Comment, error) {
	return svc.repo.QueryCommentsByParent(ctx, parent)
}

func (svc *Service) DeleteComment(ctx context.Context, id string) error {
	return svc.repo.SoftDeleteComment(ctx, id)
}

func (svc *Service) CreatePost(ctx context.Context, np NewPost) (Post, error) {
	if err := np.Validate(); err != nil {
		return Post{}, err
	}
	now := time.Now().UTC()
	p := Post{
		ID:          uuid.New().String(),
		SchoolID:    np.SchoolID,
		AuthorID:    np.AuthorID,
		Title:       np.Title,
		Body:        np.Body,
		IsPublished: np.Publish,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreatePost(ctx, p)
}

func (svc *Service) QueryPosts(ctx context.Context, schoolID string) ([]Post, error) {
	return svc.repo.QueryPostsBySchool(ctx, schoolID)
}

func (svc *Service) DeletePost(ctx context.Context, id string) error {
	return svc.repo.SoftDeletePost(ctx, id)
}

func (svc *Service) AddTimetableEntry(ctx context.Context, nt NewTimetableEntry) (TimetableEntry, error) {
	if err := nt.Validate(); err != nil {
		return TimetableEntry{}, err
	}
	now := time.Now().UTC()
	e := TimetableEntry{
		ID:        uuid.New().String(),
		ClassID:   nt.ClassID,
		SubjectID: nt.SubjectID,
		TeacherID: nt.TeacherID,
		Weekday:   nt.Weekday,
		StartTime: nt.StartTime,
		EndTime:   nt.EndTime,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTimetableEntry(ctx, e)
}

func (svc *Service) QueryTimetable(ctx context.Context, classID string) ([]TimetableEntry, error) {
	return svc.repo.QueryTimetableByClass(ctx, classID)
}

func (svc *Service) RemoveTimetableEntry(ctx context.Context, id string) error {
	return svc.repo.DeactivateTimetableEntry(ctx, id)
}
