package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/shule/core/comms"
)

type commsRepository struct {
	db        *commsTable
	academics *academicsTable
}

var _ comms.Repository = (*commsRepository)(nil) // interface compliance check

func NewCommsRepository(db *DB) comms.Repository {
	return &commsRepository{db: db.comms, academics: db.academics}
}

func (repo *commsRepository) CreateMessage(_ context.Context, msg comms.Message) (comms.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *commsRepository) QueryInbox(_ context.Context, recipientID string) ([]comms.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]comms.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.RecipientID == recipientID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return msgs, nil
}

func (repo *commsRepository) MarkMessageRead(_ context.Context, id string) (comms.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	msg, ok := repo.db.messages[id]
	if !ok {
		return comms.Message{}, comms.ErrMessageNotFound
	}
	msg.IsRead = true
	return *msg, nil
}

func (repo *commsRepository) CreateAnnouncement(_ context.Context, ann comms.Announcement) (comms.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.announcements[ann.ID] = &ann
	return ann, nil
}

func (repo *commsRepository) QueryAnnouncementsBySchool(_ context.Context, schoolID, role string) ([]comms.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]comms.Announcement, 0)
	for _, ann := range repo.db.announcements {
		if ann.SchoolID != schoolID || !ann.IsActive {
			continue
		}
		if role != "" && ann.TargetRole.Valid && ann.TargetRole.String != role {
			continue
		}
		anns = append(anns, *ann)
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *commsRepository) DeactivateAnnouncement(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	ann, ok := repo.db.announcements[id]
	if !ok {
		return comms.ErrAnnouncementNotFound
	}
	ann.IsActive = false
	ann.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *commsRepository) CreateNotification(_ context.Context, n comms.Notification) (comms.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *commsRepository) QueryNotificationsByUser(_ context.Context, userID string) ([]comms.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := make([]comms.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *commsRepository) MarkNotificationRead(_ context.Context, id string) (comms.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok {
		return comms.Notification{}, comms.ErrNotificationNotFound
	}
	n.IsRead = true
	return *n, nil
}

func (repo *commsRepository) CreateComment(_ context.Context, c comms.Comment) (comms.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.comments[c.ID] = &c
	return c, nil
}

func (repo *commsRepository) QueryCommentsByParent(_ context.Context, parent comms.ParentRef) ([]comms.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cmts := make([]comms.Comment, 0)
	for _, c := range repo.db.comments {
		if c.Parent == parent && !c.IsDeleted {
			cmts = append(cmts, *c)
		}
	}
	sort.Slice(cmts, func(i, j int) bool { return cmts[i].CreatedAt.Before(cmts[j].CreatedAt) })
	return cmts, nil
}

func (repo *commsRepository) SoftDeleteComment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.comments[id]
	if !ok {
		return comms.ErrCommentNotFound
	}
	c.IsDeleted = true
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *commsRepository) ParentExists(_ context.Context, parent comms.ParentRef) (bool, error) {
	switch parent.Kind {
	case comms.ParentAssignment:
		repo.academics.RLock()
		defer repo.academics.RUnlock()
		_, ok := repo.academics.assignments[parent.ID]
		return ok, nil
	case comms.ParentGrade:
		repo.academics.RLock()
		defer repo.academics.RUnlock()
		_, ok := repo.academics.grades[parent.ID]
		return ok, nil
	case comms.ParentAnnouncement:
		repo.db.RLock()
		defer repo.db.RUnlock()
		_, ok := repo.db.announcements[parent.ID]
		return ok, nil
	case comms.ParentPost:
		repo.db.RLock()
		defer repo.db.RUnlock()
		_, ok := repo.db.posts[parent.ID]
		return ok, nil
	}
	return false, nil
}

func (repo *commsRepository) CreatePost(_ context.Context, p comms.Post) (comms.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.posts[p.ID] = &p
	return p, nil
}

func (repo *commsRepository) QueryPostsBySchool(_ context.Context, schoolID string) ([]comms.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := make([]comms.Post, 0)
	for _, p := range repo.db.posts {
		if p.SchoolID == schoolID && p.IsPublished && !p.IsDeleted {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (repo *commsRepository) SoftDeletePost(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.posts[id]
	if !ok {
		return comms.ErrPostNotFound
	}
	p.IsDeleted = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *commsRepository) CreateTimetableEntry(_ context.Context, e comms.TimetableEntry) (comms.TimetableEntry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.timetable[e.ID] = &e
	return e, nil
}

func (repo *commsRepository) QueryTimetableByClass(_ context.Context, classID string) ([]comms.TimetableEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]comms.TimetableEntry, 0)
	for _, e := range repo.db.timetable {
		if e.ClassID == classID && e.IsActive {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weekday != entries[j].Weekday {
			return entries[i].Weekday < entries[j].Weekday
		}
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

func (repo *commsRepository) DeactivateTimetableEntry(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.timetable[id]
	if !ok {
		return comms.ErrTimetableNotFound
	}
	e.IsActive = false
	e.UpdatedAt = time.Now().UTC()
	return nil
}
