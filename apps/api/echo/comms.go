package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type commsApi struct {
	svc       *comms.Service
	userSvc   *user.Service
	schoolSvc *school.Service
}

func registerCommsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := commsApi{svc: opts.CommsSvc, userSvc: opts.UserSvc, schoolSvc: opts.SchoolSvc}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.queryAnnouncements)
	ag.POST("", api.createAnnouncement, adminMiddleware())
}

// queryAnnouncements lists the active announcements of the caller's school,
// filtered to those targeting the caller's role or no role. Admins see all.
func (api *commsApi) queryAnnouncements(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sch, err := api.schoolSvc.ResolveSchool(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "resolving school")
	}

	role := claims.Role
	if claims.IsAdmin {
		role = ""
	}
	anns, err := api.svc.QueryAnnouncements(ctx.Request().Context(), sch.ID, role)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *commsApi) createAnnouncement(ctx echo.Context) error {
	var data comms.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}

	actor, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sch, err := api.schoolSvc.ResolveSchool(ctx.Request().Context(), actor.ID)
	if err != nil {
		return errors.Wrap(err, "resolving school")
	}
	data.SchoolID = sch.ID

	ann, err := api.svc.CreateAnnouncement(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}
