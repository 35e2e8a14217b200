package registration_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/usajili/core"
	"github.com/trezcool/usajili/core/registration"
)

// fieldErrors validates data and returns the translated errors keyed by field.
func fieldErrors(t *testing.T, data *registration.CompleteRegistration) map[string]string {
	t.Helper()
	err := data.Validate(validate)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("Validate() error type = %T, want validator.ValidationErrors", err)
	}
	flds := make(map[string]string, len(vErrs))
	for _, f := range core.TranslateValidationErrors(vErrs, translator) {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestCompleteRegistration_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		data := validRegistration("Amani@test.cd ")
		if errs := fieldErrors(t, &data); errs != nil {
			t.Errorf("Validate() = %v, want nil", errs)
		}
		if data.Email != "amani@test.cd" {
			t.Errorf("email = %q, want cleaned amani@test.cd", data.Email)
		}
	})

	t.Run("names below min length", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Personal.FirstName = "A"
		data.Personal.LastName = " B "
		errs := fieldErrors(t, &data)
		if _, ok := errs["first_name"]; !ok {
			t.Errorf("errors = %v, want first_name flagged", errs)
		}
		if _, ok := errs["last_name"]; !ok {
			t.Errorf("errors = %v, want last_name flagged", errs)
		}
	})

	t.Run("phone below min length", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Personal.Phone = "12345"
		if errs := fieldErrors(t, &data); errs["phone"] == "" {
			t.Errorf("errors = %v, want phone flagged", errs)
		}
	})

	t.Run("graduation year bounds", func(t *testing.T) {
		for year, wantErr := range map[int]bool{1949: true, 1950: false, 2030: false, 2031: true} {
			data := validRegistration("amani@test.cd")
			data.Education.GraduationYear = year
			errs := fieldErrors(t, &data)
			if gotErr := errs["graduation_year"] != ""; gotErr != wantErr {
				t.Errorf("year %d: errors = %v, wantErr %v", year, errs, wantErr)
			}
		}
	})

	t.Run("enum fields", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Application.DesiredProgramLevel = "doctorate"
		data.Application.PreferredIntake = "winter"
		data.Application.BudgetRange = "1k"
		errs := fieldErrors(t, &data)
		for _, fld := range []string{"desired_program_level", "preferred_intake", "budget_range"} {
			if errs[fld] == "" {
				t.Errorf("errors = %v, want %s flagged", errs, fld)
			}
		}
	})

	t.Run("document list limits", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Documents.RecommendationLetters = []string{
			"https://files.test/1.pdf", "https://files.test/2.pdf", "https://files.test/3.pdf",
		}
		if errs := fieldErrors(t, &data); errs != nil {
			t.Errorf("Validate() = %v, want 3 letters accepted", errs)
		}

		data.Documents.RecommendationLetters = append(data.Documents.RecommendationLetters, "https://files.test/4.pdf")
		if errs := fieldErrors(t, &data); errs["recommendation_letters"] == "" {
			t.Errorf("errors = %v, want recommendation_letters flagged", errs)
		}

		data = validRegistration("amani@test.cd")
		data.Documents.OtherCertificates = []string{
			"https://files.test/1.pdf", "https://files.test/2.pdf", "https://files.test/3.pdf",
			"https://files.test/4.pdf", "https://files.test/5.pdf", "https://files.test/6.pdf",
		}
		if errs := fieldErrors(t, &data); errs["other_certificates"] == "" {
			t.Errorf("errors = %v, want other_certificates flagged", errs)
		}
	})

	t.Run("non-URL document reference", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Documents.PassportURL = "passport.pdf"
		errs := fieldErrors(t, &data)
		if errs["passport_url"] != "a valid uploaded file reference is required" {
			t.Errorf("errors = %v, want passport_url flagged with the upload message", errs)
		}
	})

	t.Run("terms not accepted", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Additional.AcceptTerms = false
		errs := fieldErrors(t, &data)
		if errs["accept_terms"] != "you must accept the terms and conditions" {
			t.Errorf("errors = %v, want accept_terms flagged with the dedicated message", errs)
		}
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		data := validRegistration("amani@test.cd")
		data.Personal.Gender = ""
		data.Personal.City = ""
		data.Personal.PostalCode = ""
		data.Education.InstitutionCountry = ""
		data.Documents.EnglishTestURL = ""
		data.Documents.MotivationLetterURL = ""
		data.Documents.RecommendationLetters = nil
		data.Additional.HowHeardAboutUs = ""
		if errs := fieldErrors(t, &data); errs != nil {
			t.Errorf("Validate() = %v, want nil", errs)
		}
	})
}

func TestUpdateProfile_Validate(t *testing.T) {
	up := registration.UpdateProfile{Phone: "12345"}
	if err := up.Validate(validate); err == nil {
		t.Error("Validate() accepted a short phone")
	}

	up = registration.UpdateProfile{City: " Mombasa "}
	if err := up.Validate(validate); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if up.City != "Mombasa" {
		t.Errorf("city = %q, want cleaned Mombasa", up.City)
	}

	if !(registration.UpdateProfile{}).IsEmpty() {
		t.Error("IsEmpty() = false for a zero update")
	}
}
