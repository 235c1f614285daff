package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/comms"
)

type commsRepository struct {
	db *sqlx.DB
}

var _ comms.Repository = (*commsRepository)(nil) // interface compliance check

func NewCommsRepository(db *sqlx.DB) *commsRepository {
	return &commsRepository{db: db}
}

func (repo commsRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo commsRepository) CreateMessage(ctx context.Context, msg comms.Message) (comms.Message, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO message (id, sender_id, recipient_id, subject, body, is_read, created_at)
		VALUES (:id, :sender_id, :recipient_id, :subject, :body, :is_read, :created_at)`,
		msg,
	)
	if err != nil {
		return comms.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo commsRepository) QueryInbox(ctx context.Context, recipientID string) ([]comms.Message, error) {
	msgs := make([]comms.Message, 0)
	err := repo.db.SelectContext(ctx, &msgs,
		`SELECT * FROM message WHERE recipient_id = $1 ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, errors.Wrap(err, "querying inbox")
	}
	return msgs, nil
}

func (repo commsRepository) MarkMessageRead(ctx context.Context, id string) (comms.Message, error) {
	var msg comms.Message
	err := repo.db.GetContext(ctx, &msg,
		`UPDATE message SET is_read = true WHERE id = $1 RETURNING *`, id)
	if err != nil {
		return comms.Message{}, repo.trapNoRowsErr(err, comms.ErrMessageNotFound, "marking message read")
	}
	return msg, nil
}

func (repo commsRepository) CreateAnnouncement(ctx context.Context, ann comms.Announcement) (comms.Announcement, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO announcement (id, school_id, author_id, title, body, target_role, is_active, created_at, updated_at)
		VALUES (:id, :school_id, :author_id, :title, :body, :target_role, :is_active, :created_at, :updated_at)`,
		ann,
	)
	if err != nil {
		return comms.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo commsRepository) QueryAnnouncementsBySchool(ctx context.Context, schoolID, role string) ([]comms.Announcement, error) {
	query := `SELECT * FROM announcement WHERE school_id = $1 AND is_active`
	args := []interface{}{schoolID}
	if role != "" {
		args = append(args, role)
		query += ` AND (target_role IS NULL OR target_role = $2)`
	}
	query += ` ORDER BY created_at DESC`

	anns := make([]comms.Announcement, 0)
	if err := repo.db.SelectContext(ctx, &anns, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying announcements by school")
	}
	return anns, nil
}

func (repo commsRepository) DeactivateAnnouncement(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE announcement SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deactivating announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comms.ErrAnnouncementNotFound
	}
	return nil
}

func (repo commsRepository) CreateNotification(ctx context.Context, n comms.Notification) (comms.Notification, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO notification (id, user_id, kind, body, is_read, created_at)
		VALUES (:id, :user_id, :kind, :body, :is_read, :created_at)`,
		n,
	)
	if err != nil {
		return comms.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo commsRepository) QueryNotificationsByUser(ctx context.Context, userID string) ([]comms.Notification, error) {
	notifs := make([]comms.Notification, 0)
	err := repo.db.SelectContext(ctx, &notifs,
		`SELECT * FROM notification WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications by user")
	}
	return notifs, nil
}

func (repo commsRepository) MarkNotificationRead(ctx context.Context, id string) (comms.Notification, error) {
	var n comms.Notification
	err := repo.db.GetContext(ctx, &n,
		`UPDATE notification SET is_read = true WHERE id = $1 RETURNING *`, id)
	if err != nil {
		return comms.Notification{}, repo.trapNoRowsErr(err, comms.ErrNotificationNotFound, "marking notification read")
	}
	return n, nil
}

// commentRow flattens the typed parent reference for scanning.
type commentRow struct {
	ID         string           `db:"id"`
	ParentKind comms.ParentKind `db:"parent_kind"`
	ParentID   string           `db:"parent_id"`
	AuthorID   string           `db:"author_id"`
	Body       string           `db:"body"`
	IsDeleted  bool             `db:"is_deleted"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

func (r commentRow) comment() comms.Comment {
	return comms.Comment{
		ID:        r.ID,
		Parent:    comms.ParentRef{Kind: r.ParentKind, ID: r.ParentID},
		AuthorID:  r.AuthorID,
		Body:      r.Body,
		IsDeleted: r.IsDeleted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo commsRepository) CreateComment(ctx context.Context, c comms.Comment) (comms.Comment, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO comment (id, parent_kind, parent_id, author_id, body, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Parent.Kind, c.Parent.ID, c.AuthorID, c.Body, c.IsDeleted, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return comms.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return c, nil
}

func (repo commsRepository) QueryCommentsByParent(ctx context.Context, parent comms.ParentRef) ([]comms.Comment, error) {
	rows := make([]commentRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM comment WHERE parent_kind = $1 AND parent_id = $2 AND NOT is_deleted ORDER BY created_at`,
		parent.Kind, parent.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying comments by parent")
	}
	cmts := make([]comms.Comment, 0, len(rows))
	for _, r := range rows {
		cmts = append(cmts, r.comment())
	}
	return cmts, nil
}

func (repo commsRepository) SoftDeleteComment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE comment SET is_deleted = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comms.ErrCommentNotFound
	}
	return nil
}

func (repo commsRepository) ParentExists(ctx context.Context, parent comms.ParentRef) (bool, error) {
	var table string
	switch parent.Kind {
	case comms.ParentAssignment:
		table = "assignment"
	case comms.ParentAnnouncement:
		table = "announcement"
	case comms.ParentGrade:
		table = "grade"
	case comms.ParentPost:
		table = "post"
	default:
		return false, nil
	}

	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, parent.ID)
	if err != nil {
		return false, errors.Wrap(err, "checking comment parent")
	}
	return exists, nil
}

func (repo commsRepository) CreatePost(ctx context.Context, p comms.Post) (comms.Post, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO post (id, school_id, author_id, title, body, is_published, is_deleted, created_at, updated_at)
		VALUES (:id, :school_id, :author_id, :title, :body, :is_published, :is_deleted, :created_at, :updated_at)`,
		p,
	)
	if err != nil {
		return comms.Post{}, errors.Wrap(err, "inserting post")
	}
	return p, nil
}

func (repo commsRepository) QueryPostsBySchool(ctx context.Context, schoolID string) ([]comms.Post, error) {
	posts := make([]comms.Post, 0)
	err := repo.db.SelectContext(ctx, &posts,
		`SELECT * FROM post WHERE school_id = $1 AND is_published AND NOT is_deleted ORDER BY created_at DESC`,
		schoolID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying posts by school")
	}
	return posts, nil
}

func (repo commsRepository) SoftDeletePost(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE post SET is_deleted = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting post")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comms.ErrPostNotFound
	}
	return nil
}

func (repo commsRepository) CreateTimetableEntry(ctx context.Context, e comms.TimetableEntry) (comms.TimetableEntry, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO timetable_entry (id, class_id, subject_id, teacher_id, weekday, start_time, end_time, is_active, created_at, updated_at)
		VALUES (:id, :class_id, :subject_id, :teacher_id, :weekday, :start_time, :end_time, :is_active, :created_at, :updated_at)`,
		e,
	)
	if err != nil {
		return comms.TimetableEntry{}, errors.Wrap(err, "inserting timetable entry")
	}
	return e, nil
}

func (repo commsRepository) QueryTimetableByClass(ctx context.Context, classID string) ([]comms.TimetableEntry, error) {
	entries := make([]comms.TimetableEntry, 0)
	err := repo.db.SelectContext(ctx, &entries,
		`SELECT * FROM timetable_entry WHERE class_id = $1 AND is_active ORDER BY weekday, start_time`,
		classID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetable by class")
	}
	return entries, nil
}

func (repo commsRepository) DeactivateTimetableEntry(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE timetable_entry SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deactivating timetable entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comms.ErrTimetableNotFound
	}
	return nil
}
