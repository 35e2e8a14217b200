package registration

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/usajili/core"
)

// Application statuses
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusSubmitted   = "submitted"
)

var AllStatuses = []string{StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusSubmitted}

// PersonalInfo is the payload of the personal-information step.
type PersonalInfo struct {
	FirstName         string `json:"first_name" validate:"required,min=2"`
	LastName          string `json:"last_name" validate:"required,min=2"`
	DateOfBirth       string `json:"date_of_birth" validate:"required"`
	Gender            string `json:"gender" validate:"omitempty"`
	Phone             string `json:"phone" validate:"required,min=10"`
	Nationality       string `json:"nationality" validate:"required"`
	CurrentCountry    string `json:"current_country" validate:"required"`
	City              string `json:"city" validate:"omitempty"`
	PostalCode        string `json:"postal_code" validate:"omitempty"`
	ProfilePictureURL string `json:"profile_picture_url" validate:"required,url"`
}

func (pi *PersonalInfo) Clean() {
	pi.FirstName = core.CleanString(pi.FirstName)
	pi.LastName = core.CleanString(pi.LastName)
	pi.Phone = core.CleanString(pi.Phone)
}

func (pi PersonalInfo) FullName() string { return pi.FirstName + " " + pi.LastName }

// EducationInfo is the payload of the education-background step.
type EducationInfo struct {
	HighestEducation   string `json:"highest_education" validate:"required"`
	InstitutionName    string `json:"institution_name" validate:"required,min=2"`
	InstitutionCountry string `json:"institution_country" validate:"omitempty"`
	FieldOfStudy       string `json:"field_of_study" validate:"required,min=2"`
	GraduationYear     int    `json:"graduation_year" validate:"required,min=1950,max=2030"`
	GPA                string `json:"gpa" validate:"required"`
	TranscriptURL      string `json:"transcript_url" validate:"required,url"`
}

// ApplicationDetails is the payload of the application-preferences step.
type ApplicationDetails struct {
	DesiredCountry      string `json:"desired_country" validate:"required"`
	DesiredProgramLevel string `json:"desired_program_level" validate:"required,oneof=bachelor master phd diploma certificate"`
	DesiredField        string `json:"desired_field" validate:"required"`
	PreferredIntake     string `json:"preferred_intake" validate:"required,oneof=fall spring summer"`
	BudgetRange         string `json:"budget_range" validate:"required,oneof=under-10k 10k-20k 20k-30k 30k-50k over-50k"`
	NeedScholarship     bool   `json:"need_scholarship"`
}

// DocumentSet is the payload of the documents step. All entries are references
// to already-uploaded files; a missing upload never yields a URL-shaped value.
type DocumentSet struct {
	PassportURL           string   `json:"passport_url" validate:"required,url"`
	EnglishTestURL        string   `json:"english_test_url" validate:"omitempty,url"`
	CVURL                 string   `json:"cv_url" validate:"required,url"`
	MotivationLetterURL   string   `json:"motivation_letter_url" validate:"omitempty,url"`
	RecommendationLetters []string `json:"recommendation_letters" validate:"max=3,dive,url"`
	OtherCertificates     []string `json:"other_certificates" validate:"max=5,dive,url"`
}

// AdditionalInfo is the payload of the additional-information step.
type AdditionalInfo struct {
	HowHeardAboutUs string `json:"how_heard_about_us" validate:"omitempty"`
	ReferrerName    string `json:"referrer_name" validate:"omitempty"`
	SpecialNotes    string `json:"special_notes" validate:"omitempty"`
	AcceptTerms     bool   `json:"accept_terms" validate:"acceptterms"`
}

// CompleteRegistration is the fully assembled draft as submitted to the server.
type CompleteRegistration struct {
	Email       string             `json:"email" validate:"required,email"`
	Personal    PersonalInfo       `json:"personal" validate:"required"`
	Education   EducationInfo      `json:"education" validate:"required"`
	Application ApplicationDetails `json:"application" validate:"required"`
	Documents   DocumentSet        `json:"documents" validate:"required"`
	Additional  AdditionalInfo     `json:"additional" validate:"required"`
}

func (cr *CompleteRegistration) Validate(validate *validator.Validate) error {
	cr.Email = core.CleanString(cr.Email, true /* lower */)
	cr.Personal.Clean()
	return validate.Struct(cr)
}

// Applicant is the persisted application record. It is created exactly once at
// successful submission and owned by the data store afterwards.
type Applicant struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ReferenceNumber string    `json:"reference_number"`
	Status          string    `json:"status"`
	Email           string    `json:"email"`

	Personal    PersonalInfo       `json:"personal"`
	Education   EducationInfo      `json:"education"`
	Application ApplicationDetails `json:"application"`
	Documents   DocumentSet        `json:"documents"`
	Additional  AdditionalInfo     `json:"additional"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// UpdateProfile defines the applicant fields a student may edit after submission.
type UpdateProfile struct {
	Phone      string `json:"phone" validate:"omitempty,min=10"`
	City       string `json:"city" validate:"omitempty"`
	PostalCode string `json:"postal_code" validate:"omitempty"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Phone = core.CleanString(up.Phone)
	up.City = core.CleanString(up.City)
	up.PostalCode = core.CleanString(up.PostalCode)
	return validate.Struct(up)
}

func (up UpdateProfile) IsEmpty() bool {
	return up.Phone == "" && up.City == "" && up.PostalCode == ""
}

// UpdateStatus defines an administrative status change on an application.
type UpdateStatus struct {
	Status  string `json:"status" validate:"required,oneof=pending under_review approved rejected submitted"`
	Message string `json:"message" validate:"omitempty"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Message = core.CleanString(us.Message)
	return validate.Struct(us)
}

// QueryFilter narrows admin application listings.
type QueryFilter struct {
	Status string `query:"status"`
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Status == "" && qf.Search == "" }

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}

// OTP is a one-time email-verification code.
type OTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"` // UTC
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (o OTP) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }
