package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core/registration"
)

type otpRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	Used      bool      `db:"used"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (r otpRow) toOTP() registration.OTP {
	return registration.OTP{
		ID:        r.ID,
		Email:     r.Email,
		Code:      r.Code,
		Used:      r.Used,
		ExpiresAt: r.ExpiresAt.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type otpRepository struct {
	db *sqlx.DB
}

var _ registration.OTPRepository = (*otpRepository)(nil) // interface compliance check

func NewOTPRepository(db *sqlx.DB) *otpRepository {
	return &otpRepository{db: db}
}

func (repo otpRepository) CreateOTP(ctx context.Context, otp registration.OTP) (registration.OTP, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO otp_code (id, email, code, used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		otp.ID, otp.Email, otp.Code, otp.Used, otp.ExpiresAt.UTC(), otp.CreatedAt.UTC(),
	)
	if err != nil {
		return registration.OTP{}, errors.Wrap(err, "inserting code")
	}
	return otp, nil
}

func (repo otpRepository) GetLatestOTP(ctx context.Context, email, code string) (registration.OTP, error) {
	var row otpRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT * FROM otp_code
		WHERE email = $1 AND code = $2 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1`,
		email, code,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return registration.OTP{}, registration.ErrNotFound
		}
		return registration.OTP{}, errors.Wrap(err, "getting code")
	}
	return row.toOTP(), nil
}

func (repo otpRepository) MarkOTPUsed(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE otp_code SET used = TRUE WHERE id = $1`, id)
	return errors.Wrap(err, "marking code used")
}

func (repo otpRepository) HasVerifiedOTP(ctx context.Context, email string) (bool, error) {
	var verified bool
	err := repo.db.GetContext(ctx, &verified,
		`SELECT EXISTS (SELECT 1 FROM otp_code WHERE email = $1 AND used = TRUE)`, email)
	return verified, errors.Wrap(err, "checking email verification")
}
