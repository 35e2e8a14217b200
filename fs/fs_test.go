package appfs

import "testing"

// The base layouts start with "_" and are excluded by directory embed
// patterns; they must stay explicitly named in the embed directive.
func TestFS_containsEmailTemplatesAndMigrations(t *testing.T) {
	files := []string{
		"migrations/0001_initial.sql",
		"assets/templates/email/_base.txt",
		"assets/templates/email/_base.gohtml",
		"assets/templates/email/otp.txt",
		"assets/templates/email/otp.gohtml",
		"assets/templates/email/registration-confirm.txt",
		"assets/templates/email/registration-confirm.gohtml",
		"assets/templates/email/password-reset.txt",
		"assets/templates/email/password-reset.gohtml",
		"assets/templates/email/status-update.txt",
		"assets/templates/email/status-update.gohtml",
	}
	for _, fname := range files {
		if data, err := FS.ReadFile(fname); err != nil {
			t.Errorf("FS.ReadFile(%q) failed, %v", fname, err)
		} else if len(data) == 0 {
			t.Errorf("FS.ReadFile(%q) is empty", fname)
		}
	}
}
