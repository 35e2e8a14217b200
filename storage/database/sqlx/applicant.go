package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/usajili/core/registration"
)

type applicantRow struct {
	ID              string `db:"id"`
	UserID          string `db:"user_id"`
	ReferenceNumber string `db:"reference_number"`
	Status          string `db:"status"`
	Email           string `db:"email"`

	FirstName         string      `db:"first_name"`
	LastName          string      `db:"last_name"`
	DateOfBirth       string      `db:"date_of_birth"`
	Gender            null.String `db:"gender"`
	Phone             string      `db:"phone"`
	Nationality       string      `db:"nationality"`
	CurrentCountry    string      `db:"current_country"`
	City              null.String `db:"city"`
	PostalCode        null.String `db:"postal_code"`
	ProfilePictureURL string      `db:"profile_picture_url"`

	HighestEducation   string      `db:"highest_education"`
	InstitutionName    string      `db:"institution_name"`
	InstitutionCountry null.String `db:"institution_country"`
	FieldOfStudy       string      `db:"field_of_study"`
	GraduationYear     int         `db:"graduation_year"`
	GPA                string      `db:"gpa"`
	TranscriptURL      string      `db:"transcript_url"`

	DesiredCountry      string `db:"desired_country"`
	DesiredProgramLevel string `db:"desired_program_level"`
	DesiredField        string `db:"desired_field"`
	PreferredIntake     string `db:"preferred_intake"`
	BudgetRange         string `db:"budget_range"`
	NeedScholarship     bool   `db:"need_scholarship"`

	PassportURL           string         `db:"passport_url"`
	EnglishTestURL        null.String    `db:"english_test_url"`
	CVURL                 string         `db:"cv_url"`
	MotivationLetterURL   null.String    `db:"motivation_letter_url"`
	RecommendationLetters pq.StringArray `db:"recommendation_letters"`
	OtherCertificates     pq.StringArray `db:"other_certificates"`

	HowHeardAboutUs null.String `db:"how_heard_about_us"`
	ReferrerName    null.String `db:"referrer_name"`
	SpecialNotes    null.String `db:"special_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func newApplicantRow(app registration.Applicant) applicantRow {
	return applicantRow{
		ID:              app.ID,
		UserID:          app.UserID,
		ReferenceNumber: app.ReferenceNumber,
		Status:          app.Status,
		Email:           app.Email,

		FirstName:         app.Personal.FirstName,
		LastName:          app.Personal.LastName,
		DateOfBirth:       app.Personal.DateOfBirth,
		Gender:            null.NewString(app.Personal.Gender, app.Personal.Gender != ""),
		Phone:             app.Personal.Phone,
		Nationality:       app.Personal.Nationality,
		CurrentCountry:    app.Personal.CurrentCountry,
		City:              null.NewString(app.Personal.City, app.Personal.City != ""),
		PostalCode:        null.NewString(app.Personal.PostalCode, app.Personal.PostalCode != ""),
		ProfilePictureURL: app.Personal.ProfilePictureURL,

		HighestEducation:   app.Education.HighestEducation,
		InstitutionName:    app.Education.InstitutionName,
		InstitutionCountry: null.NewString(app.Education.InstitutionCountry, app.Education.InstitutionCountry != ""),
		FieldOfStudy:       app.Education.FieldOfStudy,
		GraduationYear:     app.Education.GraduationYear,
		GPA:                app.Education.GPA,
		TranscriptURL:      app.Education.TranscriptURL,

		DesiredCountry:      app.Application.DesiredCountry,
		DesiredProgramLevel: app.Application.DesiredProgramLevel,
		DesiredField:        app.Application.DesiredField,
		PreferredIntake:     app.Application.PreferredIntake,
		BudgetRange:         app.Application.BudgetRange,
		NeedScholarship:     app.Application.NeedScholarship,

		PassportURL:           app.Documents.PassportURL,
		EnglishTestURL:        null.NewString(app.Documents.EnglishTestURL, app.Documents.EnglishTestURL != ""),
		CVURL:                 app.Documents.CVURL,
		MotivationLetterURL:   null.NewString(app.Documents.MotivationLetterURL, app.Documents.MotivationLetterURL != ""),
		RecommendationLetters: app.Documents.RecommendationLetters,
		OtherCertificates:     app.Documents.OtherCertificates,

		HowHeardAboutUs: null.NewString(app.Additional.HowHeardAboutUs, app.Additional.HowHeardAboutUs != ""),
		ReferrerName:    null.NewString(app.Additional.ReferrerName, app.Additional.ReferrerName != ""),
		SpecialNotes:    null.NewString(app.Additional.SpecialNotes, app.Additional.SpecialNotes != ""),

		CreatedAt: app.CreatedAt.UTC(),
		UpdatedAt: app.UpdatedAt.UTC(),
	}
}

func (r applicantRow) toApplicant() registration.Applicant {
	return registration.Applicant{
		ID:              r.ID,
		UserID:          r.UserID,
		ReferenceNumber: r.ReferenceNumber,
		Status:          r.Status,
		Email:           r.Email,
		Personal: registration.PersonalInfo{
			FirstName:         r.FirstName,
			LastName:          r.LastName,
			DateOfBirth:       r.DateOfBirth,
			Gender:            r.Gender.String,
			Phone:             r.Phone,
			Nationality:       r.Nationality,
			CurrentCountry:    r.CurrentCountry,
			City:              r.City.String,
			PostalCode:        r.PostalCode.String,
			ProfilePictureURL: r.ProfilePictureURL,
		},
		Education: registration.EducationInfo{
			HighestEducation:   r.HighestEducation,
			InstitutionName:    r.InstitutionName,
			InstitutionCountry: r.InstitutionCountry.String,
			FieldOfStudy:       r.FieldOfStudy,
			GraduationYear:     r.GraduationYear,
			GPA:                r.GPA,
			TranscriptURL:      r.TranscriptURL,
		},
		Application: registration.ApplicationDetails{
			DesiredCountry:      r.DesiredCountry,
			DesiredProgramLevel: r.DesiredProgramLevel,
			DesiredField:        r.DesiredField,
			PreferredIntake:     r.PreferredIntake,
			BudgetRange:         r.BudgetRange,
			NeedScholarship:     r.NeedScholarship,
		},
		Documents: registration.DocumentSet{
			PassportURL:           r.PassportURL,
			EnglishTestURL:        r.EnglishTestURL.String,
			CVURL:                 r.CVURL,
			MotivationLetterURL:   r.MotivationLetterURL.String,
			RecommendationLetters: r.RecommendationLetters,
			OtherCertificates:     r.OtherCertificates,
		},
		Additional: registration.AdditionalInfo{
			HowHeardAboutUs: r.HowHeardAboutUs.String,
			ReferrerName:    r.ReferrerName.String,
			SpecialNotes:    r.SpecialNotes.String,
			AcceptTerms:     true, // only validated drafts are ever persisted
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type applicantRepository struct {
	db *sqlx.DB
}

var _ registration.ApplicantRepository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *sqlx.DB) *applicantRepository {
	return &applicantRepository{db: db}
}

func (repo applicantRepository) CreateApplicant(ctx context.Context, app registration.Applicant) (registration.Applicant, error) {
	row := newApplicantRow(app)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO applicant (id, user_id, reference_number, status, email,
		                       first_name, last_name, date_of_birth, gender, phone, nationality,
		                       current_country, city, postal_code, profile_picture_url,
		                       highest_education, institution_name, institution_country, field_of_study,
		                       graduation_year, gpa, transcript_url,
		                       desired_country, desired_program_level, desired_field, preferred_intake,
		                       budget_range, need_scholarship,
		                       passport_url, english_test_url, cv_url, motivation_letter_url,
		                       recommendation_letters, other_certificates,
		                       how_heard_about_us, referrer_name, special_notes,
		                       created_at, updated_at)
		VALUES (:id, :user_id, :reference_number, :status, :email,
		        :first_name, :last_name, :date_of_birth, :gender, :phone, :nationality,
		        :current_country, :city, :postal_code, :profile_picture_url,
		        :highest_education, :institution_name, :institution_country, :field_of_study,
		        :graduation_year, :gpa, :transcript_url,
		        :desired_country, :desired_program_level, :desired_field, :preferred_intake,
		        :budget_range, :need_scholarship,
		        :passport_url, :english_test_url, :cv_url, :motivation_letter_url,
		        :recommendation_letters, :other_certificates,
		        :how_heard_about_us, :referrer_name, :special_notes,
		        :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return registration.Applicant{}, registration.ErrEmailRegistered
		}
		return registration.Applicant{}, errors.Wrap(err, "inserting applicant")
	}
	return app, nil
}

func (repo applicantRepository) GetApplicantByID(ctx context.Context, id string) (registration.Applicant, error) {
	return repo.get(ctx, `SELECT * FROM applicant WHERE id = $1`, id)
}

func (repo applicantRepository) GetApplicantByUserID(ctx context.Context, userID string) (registration.Applicant, error) {
	return repo.get(ctx, `SELECT * FROM applicant WHERE user_id = $1`, userID)
}

func (repo applicantRepository) get(ctx context.Context, query, arg string) (registration.Applicant, error) {
	var row applicantRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return registration.Applicant{}, registration.ErrNotFound
		}
		return registration.Applicant{}, errors.Wrap(err, "getting applicant")
	}
	return row.toApplicant(), nil
}

func (repo applicantRepository) FilterApplicants(ctx context.Context, filter registration.QueryFilter) ([]registration.Applicant, error) {
	query := `SELECT * FROM applicant`
	var clauses []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, `status = $1`)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		ph := "$1"
		if len(args) == 2 {
			ph = "$2"
		}
		clauses = append(clauses, `(first_name ILIKE `+ph+` OR last_name ILIKE `+ph+` OR email ILIKE `+ph+` OR reference_number ILIKE `+ph+`)`)
	}
	for i, c := range clauses {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY created_at DESC`

	var rows []applicantRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering applicants")
	}
	apps := make([]registration.Applicant, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.toApplicant())
	}
	return apps, nil
}

func (repo applicantRepository) UpdateApplicantProfile(ctx context.Context, userID string, up registration.UpdateProfile) (registration.Applicant, error) {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE applicant
		SET phone       = COALESCE(NULLIF($2, ''), phone),
		    city        = COALESCE(NULLIF($3, ''), city),
		    postal_code = COALESCE(NULLIF($4, ''), postal_code),
		    updated_at  = $5
		WHERE user_id = $1`,
		userID, up.Phone, up.City, up.PostalCode, time.Now().UTC(),
	)
	if err != nil {
		return registration.Applicant{}, errors.Wrap(err, "updating applicant profile")
	}
	return repo.GetApplicantByUserID(ctx, userID)
}

func (repo applicantRepository) UpdateApplicantStatus(ctx context.Context, id, status string) (registration.Applicant, error) {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE applicant SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return registration.Applicant{}, errors.Wrap(err, "updating applicant status")
	}
	return repo.GetApplicantByID(ctx, id)
}
