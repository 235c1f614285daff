package comms_test

import (
	"context"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/user"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

func newService(t *testing.T) *comms.Service {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return comms.NewService(dummydb.NewCommsRepository(db))
}

func TestServiceSendMessage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	msg, err := svc.SendMessage(ctx, comms.NewMessage{
		SenderID:    "sender",
		RecipientID: "recipient",
		Subject:     "Hello",
		Body:        "How are you?",
	})
	if err != nil {
		t.Fatalf("SendMessage() failed: %v", err)
	}

	inbox, err := svc.QueryInbox(ctx, "recipient")
	if err != nil {
		t.Fatalf("QueryInbox() failed: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != msg.ID {
		t.Fatalf("inbox = %v, want the sent message", inbox)
	}
	if inbox[0].IsRead {
		t.Error("new message already read")
	}

	// the recipient is notified
	notifs, err := svc.QueryNotifications(ctx, "recipient")
	if err != nil {
		t.Fatalf("QueryNotifications() failed: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Kind != "message" {
		t.Fatalf("notifications = %v, want one message notification", notifs)
	}

	read, err := svc.MarkMessageRead(ctx, msg.ID)
	if err != nil {
		t.Fatalf("MarkMessageRead() failed: %v", err)
	}
	if !read.IsRead {
		t.Error("message not marked read")
	}
}

func TestServiceAnnouncements(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	admin := user.User{ID: "principal", Role: user.RoleAdminPrincipal}
	teacher := user.User{ID: "teacher", Role: user.RoleTeacher}

	if _, err := svc.CreateAnnouncement(ctx, teacher, comms.NewAnnouncement{
		SchoolID: "sch", Title: "Nope", Body: "non-admins cannot post",
	}); !core.IsPermissionDenied(err) {
		t.Errorf("CreateAnnouncement() as teacher error = %v, want permission denied", err)
	}

	general, err := svc.CreateAnnouncement(ctx, admin, comms.NewAnnouncement{
		SchoolID: "sch", Title: "School closed", Body: "Public holiday on Monday.",
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}
	teachersOnly, err := svc.CreateAnnouncement(ctx, admin, comms.NewAnnouncement{
		SchoolID: "sch", Title: "Staff meeting", Body: "Friday 3pm.", TargetRole: user.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}

	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "admin sees all", role: "", want: 2},
		{name: "teacher sees targeted and general", role: user.RoleTeacher, want: 2},
		{name: "student sees general only", role: user.RoleStudent, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anns, err := svc.QueryAnnouncements(ctx, "sch", tt.role)
			if err != nil {
				t.Fatalf("QueryAnnouncements() failed: %v", err)
			}
			if len(anns) != tt.want {
				t.Errorf("got %d announcements, want %d", len(anns), tt.want)
			}
		})
	}

	if err := svc.DeactivateAnnouncement(ctx, admin, teachersOnly.ID); err != nil {
		t.Fatalf("DeactivateAnnouncement() failed: %v", err)
	}
	anns, err := svc.QueryAnnouncements(ctx, "sch", "")
	if err != nil {
		t.Fatalf("QueryAnnouncements() failed: %v", err)
	}
	if len(anns) != 1 || anns[0].ID != general.ID {
		t.Errorf("announcements after deactivation = %v, want the general one", anns)
	}
}

func TestServiceComments(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	admin := user.User{ID: "principal", Role: user.RoleAdminOwner}
	ann, err := svc.CreateAnnouncement(ctx, admin, comms.NewAnnouncement{
		SchoolID: "sch", Title: "Sports day", Body: "Sign up by Friday.",
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}
	parent := comms.ParentRef{Kind: comms.ParentAnnouncement, ID: ann.ID}

	if _, err := svc.AddComment(ctx, comms.NewComment{
		Parent:   comms.ParentRef{Kind: comms.ParentAnnouncement, ID: "missing"},
		AuthorID: "author",
		Body:     "orphan",
	}); err != comms.ErrParentNotFound {
		t.Errorf("AddComment() error = %v, want %v", err, comms.ErrParentNotFound)
	}

	first, err := svc.AddComment(ctx, comms.NewComment{Parent: parent, AuthorID: "a", Body: "Count me in!"})
	if err != nil {
		t.Fatalf("AddComment() failed: %v", err)
	}
	second, err := svc.AddComment(ctx, comms.NewComment{Parent: parent, AuthorID: "b", Body: "Me too."})
	if err != nil {
		t.Fatalf("AddComment() failed: %v", err)
	}

	cmts, err := svc.QueryComments(ctx, parent)
	if err != nil {
		t.Fatalf("QueryComments() failed: %v", err)
	}
	if len(cmts) != 2 || cmts[0].ID != first.ID || cmts[1].ID != second.ID {
		t.Fatalf("comments = %v, want both in conversation order", cmts)
	}

	if err := svc.DeleteComment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteComment() failed: %v", err)
	}
	cmts, err = svc.QueryComments(ctx, parent)
	if err != nil {
		t.Fatalf("QueryComments() failed: %v", err)
	}
	if len(cmts) != 1 || cmts[0].ID != second.ID {
		t.Errorf("comments after delete = %v, want only the second", cmts)
	}
}
