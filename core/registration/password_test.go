package registration

import (
	"strconv"
	"strings"
	"testing"

	"github.com/trezcool/usajili/core/user"
)

func TestGeneratePassword(t *testing.T) {
	lookAlikes := "l1IO0"

	for i := 0; i < 50; i++ {
		pwd, err := GeneratePassword()
		if err != nil {
			t.Fatalf("GeneratePassword(): %v", err)
		}
		if len(pwd) != 12 {
			t.Fatalf("len = %d, want 12 (%q)", len(pwd), pwd)
		}
		if strings.ContainsAny(pwd, lookAlikes) {
			t.Errorf("%q contains a look-alike character", pwd)
		}
		// the generated credential always satisfies the password policy
		if err := user.CheckPasswordStrength(pwd, ""); err != nil {
			t.Errorf("%q fails the password policy: %v", pwd, err)
		}
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("GenerateOTPCode(): %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("len = %d, want 6 (%q)", len(code), code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("%q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Errorf("%d out of the 6-digit range", n)
		}
	}
}
