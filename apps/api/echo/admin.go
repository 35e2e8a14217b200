package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core/registration"
)

type adminApi struct {
	regSvc registration.ServiceInterface
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{regSvc: opts.RegSvc}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/applications", api.query)
	ag.PUT("/applications/:id/status", api.updateStatus)
}

// Handlers

func (api *adminApi) query(ctx echo.Context) error {
	filter := new(registration.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	apps, err := api.regSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []registration.Applicant{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *adminApi) updateStatus(ctx echo.Context) error {
	var data registration.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}

	app, err := api.regSvc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
