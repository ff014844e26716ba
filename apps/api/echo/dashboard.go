package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, deps ServerDeps) {
	api := dashboardApi{svc: deps.DashSvc}

	dg := g.Group("/courses/:id/dashboards")
	dg.GET("/user", api.self)
	dg.GET("/manager", api.manager)
}

// Handlers

func (api *dashboardApi) self(ctx echo.Context) error {
	courseID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	userID, err := strconv.Atoi(ctx.QueryParam("userid"))
	if err != nil || userID <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "userid", Error: "a valid user id is required"})
	}

	view, err := api.svc.Self(ctx.Request().Context(), courseID, userID)
	if err != nil {
		return errors.Wrap(err, "building user dashboard")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *dashboardApi) manager(ctx echo.Context) error {
	courseID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	// 0 = all assignees
	var assigneeID int
	if raw := ctx.QueryParam("assigneeid"); raw != "" {
		assigneeID, err = strconv.Atoi(raw)
		if err != nil || assigneeID < 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "assigneeid", Error: "a valid assignee id is required"})
		}
	}

	view, err := api.svc.Manager(ctx.Request().Context(), courseID, assigneeID)
	if err != nil {
		return errors.Wrap(err, "building manager dashboard")
	}
	return ctx.JSON(http.StatusOK, view)
}
