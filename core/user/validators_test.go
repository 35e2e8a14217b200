package user

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core"
)

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		email   string
		wantErr string
	}{
		{name: "too short", pwd: "Ab1!x", wantErr: pwdMinLenText},
		{name: "whitespace", pwd: "Abc 123!x", wantErr: pwdNoSpaceText},
		{name: "all numeric", pwd: "12345678", wantErr: pwdNotAllNumText},
		{name: "no uppercase", pwd: "abcd123!", wantErr: pwdComplexityText},
		{name: "no lowercase", pwd: "ABCD123!", wantErr: pwdComplexityText},
		{name: "no digit", pwd: "Abcdefg!", wantErr: pwdComplexityText},
		{name: "no special", pwd: "Abcdefg1", wantErr: pwdComplexityText},
		{name: "similar to email", pwd: "Hero@test.cd1", email: "hero@test.cd", wantErr: pwdAttrSimText},
		{name: "strong", pwd: "G0od#Pa55word", email: "hero@test.cd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordStrength(tt.pwd, tt.email)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckPasswordStrength() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckPasswordStrength() = nil, wantErr %q", tt.wantErr)
			}
			vErr, ok := errors.Cause(err).(*core.ValidationError)
			if !ok {
				t.Fatalf("CheckPasswordStrength() error type = %T, want *core.ValidationError", err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "password" || vErr.Fields[0].Error != tt.wantErr {
				t.Errorf("CheckPasswordStrength() fields = %+v, wantErr %q on password", vErr.Fields, tt.wantErr)
			}
		})
	}
}
