package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/user"
)

type academicsApi struct {
	svc     *academics.Service
	userSvc *user.Service
}

func registerAcademicsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := academicsApi{svc: opts.AcademicsSvc, userSvc: opts.UserSvc}

	gg := g.Group("/grades", jwt)
	gg.GET("", api.queryGrades)
	gg.POST("", api.createGrade, requireRoles(user.RoleTeacher))

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.queryAttendance)
	ag.POST("", api.recordAttendance, requireRoles(user.RoleTeacher, user.RoleAdminPrefix))

	rg := g.Group("/report-cards", jwt)
	rg.GET("", api.queryReportCards)
	rg.POST("/generate", api.generateReportCard, adminMiddleware())
	rg.POST("/:id/publish", api.publishReportCard, adminMiddleware())
}

// resolveTargetStudent determines which student's records the caller may
// read. Students read their own records only; guardians their wards'; staff
// name any student via the student_id query param. Students and guardians
// see published records only.
func (api *academicsApi) resolveTargetStudent(ctx echo.Context, claims Claims) (std user.Student, publishedOnly bool, err error) {
	reqCtx := ctx.Request().Context()

	switch {
	case claims.IsStudent:
		std, err = api.userSvc.GetStudentByUserID(reqCtx, claims.Subject)
		if err != nil {
			return std, false, errors.Wrap(err, "getting student profile")
		}
		return std, true, nil

	case claims.Role == user.RoleGuardian:
		studentID := ctx.QueryParam("student_id")
		if studentID == "" {
			return std, false, echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
		}
		std, err = api.userSvc.GetStudentByID(reqCtx, studentID)
		if err != nil {
			return std, false, errors.Wrap(err, "getting student")
		}
		if std.GuardianID != claims.Subject {
			return std, false, errHTTPForbidden
		}
		return std, true, nil

	case claims.IsTeacher || claims.IsAdmin:
		studentID := ctx.QueryParam("student_id")
		if studentID == "" {
			return std, false, echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
		}
		std, err = api.userSvc.GetStudentByID(reqCtx, studentID)
		if err != nil {
			return std, false, errors.Wrap(err, "getting student")
		}
		return std, false, nil
	}
	return std, false, errHTTPForbidden
}

func (api *academicsApi) queryGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	std, publishedOnly, err := api.resolveTargetStudent(ctx, claims)
	if err != nil {
		return err
	}

	filter := academics.GradeFilter{
		Term:          academics.Term(ctx.QueryParam("term")),
		SessionID:     ctx.QueryParam("session_id"),
		PublishedOnly: publishedOnly,
	}
	grades, err := api.svc.QueryGradesByStudent(ctx.Request().Context(), std.ID, filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicsApi) createGrade(ctx echo.Context) error {
	var data academics.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	tch, err := api.userSvc.GetTeacherByUserID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting teacher profile")
	}
	data.TeacherID = tch.ID

	g, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *academicsApi) queryAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// class scope: the day's register, staff only
	if classID := ctx.QueryParam("class_id"); classID != "" {
		if !claims.IsTeacher && !claims.IsAdmin {
			return errHTTPForbidden
		}
		date, err := time.Parse("2006-01-02", ctx.QueryParam("date"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		}
		records, err := api.svc.QueryAttendanceByClassDate(ctx.Request().Context(), classID, date)
		if err != nil {
			return errors.Wrap(err, "querying class attendance")
		}
		return ctx.JSON(http.StatusOK, records)
	}

	std, _, err := api.resolveTargetStudent(ctx, claims)
	if err != nil {
		return err
	}

	records, err := api.svc.QueryAttendanceByStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *academicsApi) recordAttendance(ctx echo.Context) error {
	var data academics.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.RecordedBy = claims.Subject
	if data.Date.IsZero() {
		data.Date = time.Now().UTC()
	}

	att, err := api.svc.RecordAttendance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *academicsApi) queryReportCards(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	std, publishedOnly, err := api.resolveTargetStudent(ctx, claims)
	if err != nil {
		return err
	}

	cards, err := api.svc.QueryReportCardsByStudent(ctx.Request().Context(), std.ID, publishedOnly)
	if err != nil {
		return errors.Wrap(err, "querying report cards")
	}
	return ctx.JSON(http.StatusOK, cards)
}

func (api *academicsApi) generateReportCard(ctx echo.Context) error {
	var data GenerateReportCardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateReportCardRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rc, err := api.svc.GenerateReportCard(ctx.Request().Context(), data.StudentID, academics.Term(data.Term), data.SessionID)
	if err != nil {
		return errors.Wrap(err, "generating report card")
	}
	return ctx.JSON(http.StatusCreated, rc)
}

func (api *academicsApi) publishReportCard(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rc, err := api.svc.PublishReportCard(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "publishing report card")
	}
	return ctx.JSON(http.StatusOK, rc)
}
