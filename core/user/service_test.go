package user_test

import (
	"context"
	"log"
	"os"
	"regexp"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core"
	"github.com/trezcool/usajili/core/user"
	emailsvc "github.com/trezcool/usajili/services/email"
	logsvc "github.com/trezcool/usajili/services/logger"
	inmemdb "github.com/trezcool/usajili/storage/database/inmem"
)

var (
	conf *core.Config

	resetLinkRegex = regexp.MustCompile(`/password-reset/([A-Za-z0-9_-]+)/([A-Za-z0-9_-]+-[A-Za-z0-9_-]+)`)
)

func TestMain(m *testing.M) {
	conf = core.NewTestConfig()

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	core.ParseEmailTemplates(conf, logger)

	os.Exit(m.Run())
}

func setupService(t *testing.T) (user.ServiceInterface, user.Repository) {
	t.Helper()
	emailsvc.ClearSentMessages()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	repo := inmemdb.NewUserRepository(db)
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(conf), conf), repo
}

func createUser(t *testing.T, svc user.ServiceInterface, email, pwd string) user.User {
	t.Helper()

	usr, err := svc.Create(context.Background(), user.NewUser{Email: email, Role: user.RoleStudent, Password: pwd})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	return usr
}

func Test_service_Authenticate(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	usr := createUser(t, svc, "hero@test.cd", "G0od#Pa55word")

	deactivated := createUser(t, svc, "ndog@test.cd", "G0od#Pa55word")
	deactivated.IsActive = false
	if _, err := repo.UpdateUser(ctx, deactivated); err != nil {
		t.Fatalf("UpdateUser(): %v", err)
	}

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "who@test.cd", pwd: "G0od#Pa55word", wantErr: user.ErrNotFound},
		{name: "wrong password", email: "hero@test.cd", pwd: "nope", wantErr: user.ErrNotFound},
		{name: "deactivated account", email: "ndog@test.cd", pwd: "G0od#Pa55word", wantErr: user.ErrNotFound},
		{name: "ok", email: "Hero@test.cd ", pwd: "G0od#Pa55word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if got.ID != usr.ID {
					t.Errorf("Authenticate() = %v, want %v", got.ID, usr.ID)
				}
				if got.LastLogin.IsZero() {
					t.Error("Authenticate() did not set LastLogin")
				}
			}
		})
	}
}

func Test_service_PasswordReset(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	createUser(t, svc, "hero@test.cd", "G0od#Pa55word")

	if err := svc.RequestPasswordReset(ctx, "who@test.cd"); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("RequestPasswordReset(unknown) error = %v, want %v", err, user.ErrNotFound)
	}

	if err := svc.RequestPasswordReset(ctx, "hero@test.cd"); err != nil {
		t.Fatalf("RequestPasswordReset(): %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages))
	}
	match := resetLinkRegex.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatalf("no reset link in %q", emailsvc.SentMessages[0].TextContent)
	}
	uid, token := match[1], match[2]

	// a weak replacement is refused
	err := svc.ResetPassword(ctx, user.ResetUserPassword{UID: uid, Token: token, Password: "weak", PasswordConfirm: "weak"})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("ResetPassword(weak) error = %v, want *core.ValidationError", err)
	}

	if err = svc.ResetPassword(ctx, user.ResetUserPassword{UID: uid, Token: token, Password: "N3w#Passw0rd", PasswordConfirm: "N3w#Passw0rd"}); err != nil {
		t.Fatalf("ResetPassword(): %v", err)
	}

	// old credential is gone, new one works
	if _, err = svc.Authenticate(ctx, "hero@test.cd", "G0od#Pa55word"); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("Authenticate(old pwd) error = %v, want %v", err, user.ErrNotFound)
	}
	if _, err = svc.Authenticate(ctx, "hero@test.cd", "N3w#Passw0rd"); err != nil {
		t.Errorf("Authenticate(new pwd) error = %v, want nil", err)
	}

	// the used token is invalidated by the password change
	err = svc.ResetPassword(ctx, user.ResetUserPassword{UID: uid, Token: token, Password: "An0ther#Pwd1", PasswordConfirm: "An0ther#Pwd1"})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("ResetPassword(reused token) error = %v, want *core.ValidationError", err)
	}

	// garbage uid
	err = svc.ResetPassword(ctx, user.ResetUserPassword{UID: "!!!", Token: token, Password: "An0ther#Pwd1", PasswordConfirm: "An0ther#Pwd1"})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("ResetPassword(bad uid) error = %v, want *core.ValidationError", err)
	}
}
