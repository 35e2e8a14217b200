package registration

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/usajili/core"
)

var (
	// custom validation tags & texts
	acceptTermsTag  = "acceptterms"
	acceptTermsText = "you must accept the terms and conditions"

	urlTag  = "url"
	urlText = "a valid uploaded file reference is required"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(acceptTermsTag, acceptTermsValidation)
	core.RegisterCustomTranslation(validate, translator, acceptTermsTag, acceptTermsText)

	core.RegisterCustomTranslation(validate, translator, urlTag, urlText, true)
}

// acceptTermsValidation fails on anything but an explicit true. An unticked
// box gets its own message, distinct from a missing field.
func acceptTermsValidation(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
}
