package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

type academicsFixture struct {
	school  school.School
	session school.AcademicSession
	class   school.Class
	subject school.Subject

	owner    user.User
	teacher  user.User
	student  user.User
	guardian user.User

	teacherProfile user.Teacher
	studentProfile user.Student
}

// newAcademicsFixture seeds one school with a teacher and one student in a
// class; the email prefix keeps fixtures of different test functions apart in
// the shared store.
func newAcademicsFixture(t *testing.T, prefix string) *academicsFixture {
	t.Helper()
	f := &academicsFixture{}
	f.owner = testutil.CreateUser(t, usrRepo, "Owner", prefix+"-owner@test.cd", "", user.RoleAdminOwner, true)
	f.teacher = testutil.CreateUser(t, usrRepo, "Teacher", prefix+"-teacher@test.cd", "", user.RoleTeacher, true)
	f.guardian = testutil.CreateUser(t, usrRepo, "Guardian", prefix+"-guardian@test.cd", "", user.RoleGuardian, true)
	f.student = testutil.CreateUser(t, usrRepo, "Student", prefix+"-student@test.cd", "", user.RoleStudent, true)

	f.school = testutil.CreateSchool(t, schRepo, "Lycée Bosangani", f.owner.ID, "")
	f.session = testutil.CreateSession(t, schRepo, f.school.ID, "2025/2026", true)
	f.class = testutil.CreateClass(t, schRepo, f.school.ID, "6A")
	f.subject = testutil.CreateSubject(t, schRepo, f.school.ID, "Mathematics", "MATH")

	f.teacherProfile = testutil.CreateTeacher(t, usrRepo, f.teacher.ID, f.school.ID, prefix+"STF1")
	f.studentProfile = testutil.CreateStudent(t, usrRepo, f.student.ID, f.school.ID, f.class.ID, f.guardian.ID, prefix+"STD1")
	return f
}

func Test_academicsApi_queryGrades(t *testing.T) {
	f := newAcademicsFixture(t, "qg")

	published := testutil.CreateGrade(t, acadRepo, f.studentProfile.ID, f.subject.ID, f.teacherProfile.ID, f.session.ID, academics.TermFirst, 80, 100, true)
	testutil.CreateGrade(t, acadRepo, f.studentProfile.ID, f.subject.ID, f.teacherProfile.ID, f.session.ID, academics.TermFirst, 40, 100, false)

	// a second ward for the guardian mismatch case
	otherUsr := testutil.CreateUser(t, usrRepo, "Other", "qg-other@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateStudent(t, usrRepo, otherUsr.ID, f.school.ID, f.class.ID, "", "qgSTD2")

	tests := []httpTest{
		{name: "auth required", path: "/v1/grades", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student sees published only", path: "/v1/grades", token: getToken(t, f.student),
			wantCode: http.StatusOK, wantData: marchallList(t, published),
		},
		{
			name: "guardian needs student_id", path: "/v1/grades", token: getToken(t, f.guardian),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "guardian ward only", path: "/v1/grades?student_id=" + other.ID, token: getToken(t, f.guardian),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "guardian sees ward", path: "/v1/grades?student_id=" + f.studentProfile.ID, token: getToken(t, f.guardian),
			wantCode: http.StatusOK, wantData: marchallList(t, published),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_academicsApi_createGrade(t *testing.T) {
	f := newAcademicsFixture(t, "cg")

	body := marchallObj(t, academics.NewGrade{
		StudentID:      f.studentProfile.ID,
		SubjectID:      f.subject.ID,
		SessionID:      f.session.ID,
		Term:           academics.TermFirst,
		AssessmentType: "exam",
		Score:          decimal.NewFromInt(72),
		MaxScore:       decimal.NewFromInt(100),
		Publish:        true,
	})

	tests := []httpTest{
		{name: "auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teachers only", body: body, token: getToken(t, f.student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "ok", body: body, token: getToken(t, f.teacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/grades", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var g academics.Grade
				if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
					t.Fatalf("unmarshalling Grade: %v", err)
				}
				// the teacher is the caller, whatever the payload says
				if g.TeacherID != f.teacherProfile.ID {
					t.Errorf("TeacherID = %s, want %s", g.TeacherID, f.teacherProfile.ID)
				}
				if g.Status != academics.GradePublished {
					t.Errorf("Status = %s, want %s", g.Status, academics.GradePublished)
				}
			}
		})
	}
}

func Test_academicsApi_recordAttendance(t *testing.T) {
	f := newAcademicsFixture(t, "ra")

	body := marchallObj(t, academics.NewAttendance{
		StudentID: f.studentProfile.ID,
		ClassID:   f.class.ID,
		Status:    academics.AttendanceAbsent,
	})

	tests := []httpTest{
		{
			name: "staff only", body: body, token: getToken(t, f.student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "teacher ok", body: body, token: getToken(t, f.teacher), wantCode: http.StatusCreated},
		{name: "admin ok", body: body, token: getToken(t, f.owner), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var att academics.Attendance
				if err := json.Unmarshal(rec.Body.Bytes(), &att); err != nil {
					t.Fatalf("unmarshalling Attendance: %v", err)
				}
				if att.RecordedBy == "" {
					t.Error("RecordedBy not set from the caller")
				}
				if att.Date.IsZero() {
					t.Error("Date not defaulted")
				}
			}
		})
	}
}

func Test_academicsApi_queryAttendanceByClass(t *testing.T) {
	f := newAcademicsFixture(t, "la")

	// a classmate whose student number sorts before the fixture student's
	firstUsr := testutil.CreateUser(t, usrRepo, "First", "la-first@test.cd", "", user.RoleStudent, true)
	first := testutil.CreateStudent(t, usrRepo, firstUsr.ID, f.school.ID, f.class.ID, "", "laSTD0")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, std := range []user.Student{f.studentProfile, first} {
		body := marchallObj(t, academics.NewAttendance{
			StudentID: std.ID,
			ClassID:   f.class.ID,
			Date:      day,
			Status:    academics.AttendancePresent,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, f.teacher), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("recording attendance: code = %d, body = %s", rec.Code, rec.Body.String())
		}
	}

	path := "/v1/attendance?class_id=" + f.class.ID + "&date=2026-03-02"

	// class scope is for staff
	req, rec := newAuthRequest(http.MethodGet, path, getToken(t, f.student))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	// the date is not optional
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance?class_id="+f.class.ID, getToken(t, f.teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date: code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req, rec = newAuthRequest(http.MethodGet, path, getToken(t, f.teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("class attendance as teacher: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var records []academics.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("unmarshalling attendance: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// register order: laSTD0 before laSTD1
	if records[0].StudentID != first.ID || records[1].StudentID != f.studentProfile.ID {
		t.Errorf("records ordered %s, %s; want %s, %s",
			records[0].StudentID, records[1].StudentID, first.ID, f.studentProfile.ID)
	}
}

func Test_academicsApi_reportCardFlow(t *testing.T) {
	f := newAcademicsFixture(t, "rc")

	testutil.CreateGrade(t, acadRepo, f.studentProfile.ID, f.subject.ID, f.teacherProfile.ID, f.session.ID, academics.TermFirst, 87, 100, true)
	testutil.CreateGrade(t, acadRepo, f.studentProfile.ID, f.subject.ID, f.teacherProfile.ID, f.session.ID, academics.TermFirst, 90, 100, true)

	genBody := marchallObj(t, GenerateReportCardRequest{
		StudentID: f.studentProfile.ID,
		Term:      string(academics.TermFirst),
		SessionID: f.session.ID,
	})

	// generation takes an admin: not students, not teachers
	for _, usr := range []user.User{f.student, f.teacher} {
		req, rec := newAuthRequest(http.MethodPost, "/v1/report-cards/generate", getToken(t, usr), genBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("generate as %s: code = %d, want %d", usr.Role, rec.Code, http.StatusForbidden)
		}
	}

	req, rec := newAuthRequest(http.MethodPost, "/v1/report-cards/generate", getToken(t, f.owner), genBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate as admin: code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rc academics.ReportCard
	if err := json.Unmarshal(rec.Body.Bytes(), &rc); err != nil {
		t.Fatalf("unmarshalling ReportCard: %v", err)
	}
	if want := decimal.RequireFromString("88.5"); !rc.Average.Equal(want) {
		t.Errorf("Average = %s, want %s", rc.Average, want)
	}

	// the unpublished card is invisible to the student
	req, rec = newAuthRequest(http.MethodGet, "/v1/report-cards", getToken(t, f.student))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}, rec)

	// publication takes an admin
	req, rec = newAuthRequest(http.MethodPost, "/v1/report-cards/"+rc.ID+"/publish", getToken(t, f.teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("publish as teacher: code = %d, want %d", rec.Code, http.StatusForbidden)
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/report-cards/"+rc.ID+"/publish", getToken(t, f.owner))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish as admin: code = %d, body = %s", rec.Code, rec.Body.String())
	}

	// now the student sees it
	req, rec = newAuthRequest(http.MethodGet, "/v1/report-cards", getToken(t, f.student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("report cards as student: code = %d", rec.Code)
	}
	var cards []academics.ReportCard
	if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil {
		t.Fatalf("unmarshalling report cards: %v", err)
	}
	if len(cards) != 1 || !cards[0].IsPublished {
		t.Errorf("cards = %v, want the published card", cards)
	}
}
