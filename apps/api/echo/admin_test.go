package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/trezcool/usajili/core/registration"
	"github.com/trezcool/usajili/core/user"
	emailsvc "github.com/trezcool/usajili/services/email"
)

// submitApplication registers an applicant end to end and returns its record.
func submitApplication(t *testing.T, app *testApp, email, firstName string) registration.Applicant {
	t.Helper()

	verifyEmail(t, app, email)
	data := validRegistration(email)
	data.Personal.FirstName = firstName

	req, rec := newRequest(http.MethodPost, "/api/registration/submit", marchallObj(t, data))
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit code = %d: %s", rec.Code, rec.Body.String())
	}

	apps, err := app.regSvc.Query(req.Context(), registration.QueryFilter{Search: email})
	if err != nil || len(apps) != 1 {
		t.Fatalf("Query(%s) = %v, %v; want exactly 1", email, apps, err)
	}
	return apps[0]
}

func Test_adminApi_query(t *testing.T) {
	app := setup(t)

	admin := createUser(t, app, "admin@test.cd", "G0od#Pa55word", user.RoleAdmin)
	student := createUser(t, app, "student@test.cd", "G0od#Pa55word", user.RoleStudent)
	adminToken := getToken(t, admin)

	app1 := submitApplication(t, app, "amani@test.cd", "Amani")
	app2 := submitApplication(t, app, "zawadi@test.cd", "Zawadi")
	app3 := submitApplication(t, app, "neema@test.cd", "Neema")
	if _, err := app.regSvc.UpdateStatus(context.Background(), app3.ID, registration.UpdateStatus{Status: registration.StatusApproved}); err != nil {
		t.Fatalf("UpdateStatus(): %v", err)
	}
	app3.Status = registration.StatusApproved

	path := func(status, search string) string {
		v := make(url.Values)
		if status != "" {
			v.Add("status", status)
		}
		if search != "" {
			v.Add("search", search)
		}
		return "/api/admin/applications?" + v.Encode()
	}
	empty := marchallList(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/admin/applications", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/api/admin/applications", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "get all", path: "/api/admin/applications", token: adminToken, wantCode: http.StatusOK},
		{name: "status=pending", path: path(registration.StatusPending, ""), token: adminToken, wantCode: http.StatusOK},
		{name: "status=approved", path: path(registration.StatusApproved, ""), token: adminToken, wantCode: http.StatusOK},
		{name: "status (empty result)", path: path(registration.StatusRejected, ""), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{name: "search by name", path: path("", "zawadi"), token: adminToken, wantCode: http.StatusOK},
		{name: "search by reference number", path: path("", app1.ReferenceNumber), token: adminToken, wantCode: http.StatusOK},
		{name: "search (unknown)", path: path("", "lol"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{name: "status + search (empty result)", path: path(registration.StatusApproved, "amani"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
	}
	wantRefs := map[string][]string{
		"get all":                    {app1.ReferenceNumber, app2.ReferenceNumber, app3.ReferenceNumber},
		"status=pending":             {app1.ReferenceNumber, app2.ReferenceNumber},
		"status=approved":            {app3.ReferenceNumber},
		"search by name":             {app2.ReferenceNumber},
		"search by reference number": {app1.ReferenceNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)

			if tt.wantData != nil || tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
			}
			var got []registration.Applicant
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshalling applicants: %v", err)
			}
			refs := make(map[string]bool, len(got))
			for _, a := range got {
				refs[a.ReferenceNumber] = true
			}
			want := wantRefs[tt.name]
			if len(got) != len(want) {
				t.Fatalf("got %d applications, want %d: %v", len(got), len(want), refs)
			}
			for _, ref := range want {
				if !refs[ref] {
					t.Errorf("missing %s in %v", ref, refs)
				}
			}
		})
	}
}

func Test_adminApi_updateStatus(t *testing.T) {
	app := setup(t)

	admin := createUser(t, app, "admin@test.cd", "G0od#Pa55word", user.RoleAdmin)
	adminToken := getToken(t, admin)
	applicant := submitApplication(t, app, "amani@test.cd", "Amani")

	statusPath := "/api/admin/applications/" + applicant.ID + "/status"

	t.Run("unknown status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, statusPath, adminToken, marchallObj(t, map[string]string{"status": "lol"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown application", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/applications/nope/status", adminToken,
			marchallObj(t, map[string]string{"status": registration.StatusApproved}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		sent := len(emailsvc.SentMessages)
		req, rec := newAuthRequest(http.MethodPut, statusPath, adminToken,
			marchallObj(t, map[string]interface{}{"status": registration.StatusUnderReview, "message": "Missing transcript page 2"}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
		}

		var got registration.Applicant
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling applicant: %v", err)
		}
		if got.Status != registration.StatusUnderReview {
			t.Errorf("status = %s, want %s", got.Status, registration.StatusUnderReview)
		}

		// the applicant is notified
		if len(emailsvc.SentMessages) != sent+1 {
			t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages)-sent)
		}
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if msg.To[0].Address != "amani@test.cd" {
			t.Errorf("notified %s, want amani@test.cd", msg.To[0].Address)
		}
		if !strings.Contains(msg.TextContent, "Missing transcript page 2") {
			t.Errorf("status email %q does not carry the admin message", msg.TextContent)
		}
	})
}
