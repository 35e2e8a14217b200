package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	. "github.com/trezcool/usajili/apps/api/echo"
	"github.com/trezcool/usajili/core/registration"
	"github.com/trezcool/usajili/core/user"
	emailsvc "github.com/trezcool/usajili/services/email"
)

var refNumRegex = regexp.MustCompile(`^APP-\d{4}-\d{6}$`)

func Test_registrationApi_submit(t *testing.T) {
	app := setup(t)

	verifyEmail(t, app, "amani@test.cd")

	req, rec := newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, validRegistration("amani@test.cd")))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}

	var resp SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if !refNumRegex.MatchString(resp.ReferenceNumber) {
		t.Errorf("reference number %q has unexpected format", resp.ReferenceNumber)
	}

	// credentials are emailed; they open the student dashboard
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if !strings.Contains(msg.Subject, resp.ReferenceNumber) {
		t.Errorf("confirmation subject %q does not mention %s", msg.Subject, resp.ReferenceNumber)
	}
	pwd := extractPassword(t, msg.TextContent)

	usr, err := app.usrSvc.Authenticate(context.Background(), "amani@test.cd", pwd)
	if err != nil {
		t.Fatalf("Authenticate(emailed credential): %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/student/application", getToken(t, usr))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("application code = %d: %s", rec.Code, rec.Body.String())
	}
	var got registration.Applicant
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling applicant: %v", err)
	}
	if got.Status != registration.StatusPending {
		t.Errorf("status = %s, want %s", got.Status, registration.StatusPending)
	}
	if got.ReferenceNumber != resp.ReferenceNumber {
		t.Errorf("reference number = %s, want %s", got.ReferenceNumber, resp.ReferenceNumber)
	}

	// duplicate submission is refused
	tt := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"email": "this email is already registered"}),
	}
	req, rec = newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, validRegistration("amani@test.cd")))
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_registrationApi_submit_unverifiedEmail(t *testing.T) {
	app := setup(t)

	tt := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"email": "email has not been verified"}),
	}
	req, rec := newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, validRegistration("stranger@test.cd")))
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_registrationApi_submit_invalidPayload(t *testing.T) {
	app := setup(t)

	verifyEmail(t, app, "amani@test.cd")

	data := validRegistration("amani@test.cd")
	data.Additional.AcceptTerms = false
	data.Education.GraduationYear = 1889

	req, rec := newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, data))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var flds map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &flds); err != nil {
		t.Fatalf("unmarshalling errors: %v", err)
	}
	if flds["accept_terms"] != "you must accept the terms and conditions" {
		t.Errorf("errors = %v, want accept_terms flagged", flds)
	}
	if flds["graduation_year"] == "" {
		t.Errorf("errors = %v, want graduation_year flagged", flds)
	}

	// nothing is provisioned on a failed submission
	if _, err := app.usrSvc.GetByEmail(context.Background(), "amani@test.cd"); err == nil {
		t.Error("a failed submission created an account")
	}
}

func Test_registrationApi_studentEndpoints(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "application: auth required", method: http.MethodGet, path: "/api/student/application",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "profile: auth required", method: http.MethodPost, path: "/api/student/profile",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("no application yet", func(t *testing.T) {
		usr := createUser(t, app, "noapp@test.cd", "G0od#Pa55word", user.RoleStudent)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		req, rec := newAuthRequest(http.MethodGet, "/api/student/application", getToken(t, usr))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_registrationApi_updateProfile(t *testing.T) {
	app := setup(t)

	verifyEmail(t, app, "amani@test.cd")
	req, rec := newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, validRegistration("amani@test.cd")))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit code = %d: %s", rec.Code, rec.Body.String())
	}
	usr, err := app.usrSvc.GetByEmail(context.Background(), "amani@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail(): %v", err)
	}
	token := getToken(t, usr)

	t.Run("short phone is refused", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/student/profile", token, marchallObj(t, map[string]string{"phone": "12345"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/student/profile", token, marchallObj(t, map[string]string{"phone": "+254798765432", "city": "Mombasa"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
		}
		var got registration.Applicant
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling applicant: %v", err)
		}
		if got.Personal.Phone != "+254798765432" || got.Personal.City != "Mombasa" {
			t.Errorf("profile = %+v, want updated phone and city", got.Personal)
		}
	})
}

func extractPassword(t *testing.T, textContent string) string {
	t.Helper()
	for _, line := range strings.Split(textContent, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Password:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Password:"))
		}
	}
	t.Fatalf("no credential found in %q", textContent)
	return ""
}
