package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func Test_commsApi_announcements(t *testing.T) {
	f := newAcademicsFixture(t, "ann")

	postBody := marchallObj(t, comms.NewAnnouncement{
		SchoolID: "ignored", // the caller's school wins
		Title:    "Staff meeting",
		Body:     "Friday 3pm in the staff room.",
	})

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/v1/announcements",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required to post", method: http.MethodPost, path: "/v1/announcements",
			body: postBody, token: getToken(t, f.teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "post ok", method: http.MethodPost, path: "/v1/announcements",
			body: postBody, token: getToken(t, f.owner),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var ann comms.Announcement
				if err := json.Unmarshal(rec.Body.Bytes(), &ann); err != nil {
					t.Fatalf("unmarshalling Announcement: %v", err)
				}
				if ann.SchoolID != f.school.ID {
					t.Errorf("SchoolID = %s, want the poster's school %s", ann.SchoolID, f.school.ID)
				}
				if ann.AuthorID != f.owner.ID {
					t.Errorf("AuthorID = %s, want %s", ann.AuthorID, f.owner.ID)
				}
			}
		})
	}
}

func Test_commsApi_announcementRoleFilter(t *testing.T) {
	f := newAcademicsFixture(t, "annf")

	teachersOnly := marchallObj(t, comms.NewAnnouncement{
		Title:      "Grading deadline",
		Body:       "Submit first term grades by Friday.",
		TargetRole: user.RoleTeacher,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", getToken(t, f.owner), teachersOnly)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post: code = %d, body = %s", rec.Code, rec.Body.String())
	}

	counts := []struct {
		name string
		usr  user.User
		want int
	}{
		{name: "teacher sees it", usr: f.teacher, want: 1},
		{name: "student does not", usr: f.student, want: 0},
		{name: "admin sees all", usr: f.owner, want: 1},
	}
	for _, tt := range counts {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/announcements", getToken(t, tt.usr))
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
			}
			var anns []comms.Announcement
			if err := json.Unmarshal(rec.Body.Bytes(), &anns); err != nil {
				t.Fatalf("unmarshalling announcements: %v", err)
			}
			if len(anns) != tt.want {
				t.Errorf("got %d announcements, want %d", len(anns), tt.want)
			}
		})
	}
}

func Test_dashboardApi_retrieve(t *testing.T) {
	f := newAcademicsFixture(t, "dash")
	unlinked := testutil.CreateUser(t, usrRepo, "Unlinked", "dash-unlinked@test.cd", "", user.RoleGuardian, true)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/dashboard")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("unlinked identity gets the base payload", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, unlinked))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var dash map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
			t.Fatalf("unmarshalling dashboard: %v", err)
		}
		for _, section := range []string{"school", "student", "teacher", "admin"} {
			if _, ok := dash[section]; ok {
				t.Errorf("unexpected %s section", section)
			}
		}
	})

	t.Run("student dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard", getToken(t, f.student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
		}
		var dash struct {
			Role    string          `json:"role"`
			School  json.RawMessage `json:"school"`
			Student json.RawMessage `json:"student"`
			Teacher json.RawMessage `json:"teacher"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
			t.Fatalf("unmarshalling dashboard: %v", err)
		}
		if dash.Role != user.RoleStudent {
			t.Errorf("role = %s, want %s", dash.Role, user.RoleStudent)
		}
		if dash.School == nil || dash.Student == nil {
			t.Error("school/student sections missing")
		}
		if dash.Teacher != nil {
			t.Error("unexpected teacher section")
		}
	})
}
