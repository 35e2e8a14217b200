package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core/registration"
	"github.com/trezcool/usajili/core/user"
)

type registrationApi struct {
	regSvc registration.ServiceInterface
	usrSvc user.ServiceInterface
}

func registerRegistrationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := registrationApi{
		regSvc: opts.RegSvc,
		usrSvc: opts.UserSvc,
	}

	g.POST("/registration/submit", api.submit)

	sg := g.Group("/student", jwt)
	sg.GET("/application", api.retrieveApplication)
	sg.POST("/profile", api.updateProfile)
}

// Handlers

func (api *registrationApi) submit(ctx echo.Context) error {
	var data registration.CompleteRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteRegistration")
	}

	// the service re-validates; a submission is never trusted as pre-validated
	refNum, err := api.regSvc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{
		ReferenceNumber: refNum,
		Success:         "Application submitted. Your login credentials have been emailed to you.",
	})
}

func (api *registrationApi) retrieveApplication(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	app, err := api.regSvc.GetByUserID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding application by user ID")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *registrationApi) updateProfile(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data registration.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	app, err := api.regSvc.UpdateProfile(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

type SubmitResponse struct {
	ReferenceNumber string `json:"reference_number"`
	Success         string `json:"success"`
}
