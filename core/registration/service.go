package registration

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core"
	"github.com/trezcool/usajili/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("application not found")
	ErrEmailRegistered = errors.New("this email is already registered")
	ErrOTPInvalid      = errors.New("invalid verification code")
	ErrOTPExpired      = errors.New("verification code has expired")
	ErrEmailUnverified = errors.New("email has not been verified")
)

type (
	ApplicantRepository interface {
		CreateApplicant(ctx context.Context, app Applicant) (Applicant, error)
		GetApplicantByID(ctx context.Context, id string) (Applicant, error)
		GetApplicantByUserID(ctx context.Context, userID string) (Applicant, error)
		// FilterApplicants applies AND on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of name,
		// email or reference number.
		FilterApplicants(ctx context.Context, filter QueryFilter) ([]Applicant, error)
		UpdateApplicantProfile(ctx context.Context, userID string, up UpdateProfile) (Applicant, error)
		UpdateApplicantStatus(ctx context.Context, id, status string) (Applicant, error)
	}

	ServiceInterface interface {
		RequestOTP(ctx context.Context, email string) error
		VerifyOTP(ctx context.Context, email, code string) error
		Submit(ctx context.Context, data CompleteRegistration) (string, error)
		GetByUserID(ctx context.Context, userID string) (Applicant, error)
		UpdateProfile(ctx context.Context, userID string, up UpdateProfile) (Applicant, error)
		Query(ctx context.Context, filter QueryFilter) ([]Applicant, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Applicant, error)
	}

	service struct {
		repo     ApplicantRepository
		otpRepo  OTPRepository
		usrSvc   user.ServiceInterface
		mailSvc  core.EmailService
		conf     *core.Config
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo ApplicantRepository,
	otpRepo OTPRepository,
	usrSvc user.ServiceInterface,
	mailSvc core.EmailService,
	conf *core.Config,
	validate *validator.Validate,
) ServiceInterface {
	return &service{
		repo:     repo,
		otpRepo:  otpRepo,
		usrSvc:   usrSvc,
		mailSvc:  mailSvc,
		conf:     conf,
		validate: validate,
	}
}

// RequestOTP issues a fresh 6-digit code for the email and mails it.
// Re-requesting does not invalidate outstanding codes; verification matches
// the most recently issued one.
func (svc *service) RequestOTP(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	if err := svc.checkEmailAvailable(email); err != nil {
		return err
	}

	code, err := GenerateOTPCode()
	if err != nil {
		return errors.Wrap(err, "generating code")
	}
	now := time.Now().UTC()
	otp := OTP{
		ID:        uuid.New().String(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(svc.conf.OTPExpirationDelta),
		CreatedAt: now,
	}
	if _, err = svc.otpRepo.CreateOTP(ctx, otp); err != nil {
		return errors.Wrap(err, "storing code")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      "Verify Your Email",
		TemplateName: "otp",
		TemplateData: struct {
			Code    string
			Minutes int
		}{
			Code:    code,
			Minutes: int(svc.conf.OTPExpirationDelta / time.Minute),
		},
	})
	return nil
}

// VerifyOTP checks the most recently issued unused code for the email and
// marks it used on success. Expired codes are rejected distinctly from
// unknown ones.
func (svc *service) VerifyOTP(ctx context.Context, email, code string) error {
	email = core.CleanString(email, true /* lower */)
	code = core.CleanString(code)

	otp, err := svc.otpRepo.GetLatestOTP(ctx, email, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrOTPInvalid
		}
		return errors.Wrap(err, "finding code")
	}
	if otp.Expired(time.Now().UTC()) {
		return ErrOTPExpired
	}
	return errors.Wrap(svc.otpRepo.MarkOTPUsed(ctx, otp.ID), "marking code used")
}

// Submit is the single trust boundary of the registration flow. It
// re-validates the complete payload, provisions the account with a generated
// credential, persists the application record with status pending and sends
// the confirmation email. A failed confirmation email never fails the
// submission; the account and record are kept.
func (svc *service) Submit(ctx context.Context, data CompleteRegistration) (string, error) {
	if err := data.Validate(svc.validate); err != nil {
		return "", err
	}

	verified, err := svc.otpRepo.HasVerifiedOTP(ctx, data.Email)
	if err != nil {
		return "", errors.Wrap(err, "checking email verification")
	}
	if !verified {
		return "", core.NewValidationError(ErrEmailUnverified, core.FieldError{Field: "email", Error: ErrEmailUnverified.Error()})
	}

	// check-then-act; two racing submissions can both pass this check. The
	// unique constraints on users.email and applicants.user_id settle it.
	if err = svc.checkEmailAvailable(data.Email); err != nil {
		return "", err
	}

	pwd, err := GeneratePassword()
	if err != nil {
		return "", err
	}
	usr, err := svc.usrSvc.Create(ctx, user.NewUser{
		Email:    data.Email,
		Role:     user.RoleStudent,
		Password: pwd,
	})
	if err != nil {
		return "", errors.Wrap(err, "creating account")
	}

	refNum, err := GenerateReferenceNumber()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	app := Applicant{
		ID:              uuid.New().String(),
		UserID:          usr.ID,
		ReferenceNumber: refNum,
		Status:          StatusPending,
		Email:           data.Email,
		Personal:        data.Personal,
		Education:       data.Education,
		Application:     data.Application,
		Documents:       data.Documents,
		Additional:      data.Additional,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err = svc.repo.CreateApplicant(ctx, app); err != nil {
		return "", errors.Wrap(err, "creating application")
	}

	// best effort; a lost confirmation email is an operational follow-up,
	// not a failed submission
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: data.Personal.FullName(), Address: data.Email}},
		Subject:      "Application Received - " + refNum,
		TemplateName: "registration-confirm",
		TemplateData: struct {
			Name            string
			ReferenceNumber string
			Email           string
			Password        string
		}{
			Name:            data.Personal.FullName(),
			ReferenceNumber: refNum,
			Email:           data.Email,
			Password:        pwd,
		},
	})

	return refNum, nil
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Applicant, error) {
	return svc.repo.GetApplicantByUserID(ctx, userID)
}

func (svc *service) UpdateProfile(ctx context.Context, userID string, up UpdateProfile) (Applicant, error) {
	if err := up.Validate(svc.validate); err != nil {
		return Applicant{}, err
	}
	if up.IsEmpty() {
		return svc.repo.GetApplicantByUserID(ctx, userID)
	}
	return svc.repo.UpdateApplicantProfile(ctx, userID, up)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Applicant, error) {
	return svc.repo.FilterApplicants(ctx, filter)
}

// UpdateStatus applies an administrative status change and notifies the
// applicant by email (best effort).
func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Applicant, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Applicant{}, err
	}

	app, err := svc.repo.GetApplicantByID(ctx, id)
	if err != nil {
		return Applicant{}, err
	}
	oldStatus := app.Status
	if oldStatus == us.Status {
		return app, nil
	}

	app, err = svc.repo.UpdateApplicantStatus(ctx, id, us.Status)
	if err != nil {
		return Applicant{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: app.Personal.FullName(), Address: app.Email}},
		Subject:      "Application Status Updated - " + us.Status,
		TemplateName: "status-update",
		TemplateData: struct {
			Name            string
			ReferenceNumber string
			OldStatus       string
			NewStatus       string
			Message         string
		}{
			Name:            app.Personal.FullName(),
			ReferenceNumber: app.ReferenceNumber,
			OldStatus:       oldStatus,
			NewStatus:       us.Status,
			Message:         us.Message,
		},
	})
	return app, nil
}

func (svc *service) checkEmailAvailable(email string) error {
	if err := svc.usrSvc.CheckEmailUniqueness(email); err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return core.NewValidationError(ErrEmailRegistered, core.FieldError{Field: "email", Error: ErrEmailRegistered.Error()})
		}
		return err
	}
	return nil
}

// GenerateReferenceNumber returns an application reference of the form
// APP-<year>-<6 digits>.
func GenerateReferenceNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "generating reference number")
	}
	return fmt.Sprintf("APP-%d-%06d", time.Now().UTC().Year(), n.Int64()), nil
}
