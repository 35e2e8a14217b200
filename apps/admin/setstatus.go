package main

import (
	"context"
	"fmt"

	"github.com/trezcool/usajili/core"
	"github.com/trezcool/usajili/core/registration"
)

// setStatus forces an application's status without notifying the applicant.
// Status-change emails only go out through the API.
func (cli *commandLine) setStatus(id, status string) error {
	status = core.CleanString(status, true /* lower */)

	var known bool
	for _, s := range registration.AllStatuses {
		if s == status {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown status %q; must be one of %v", status, registration.AllStatuses)
	}

	app, err := cli.appRepo.UpdateApplicantStatus(context.Background(), id, status)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) -> %s\n", app.ReferenceNumber, app.Email, app.Status)
	return nil
}
