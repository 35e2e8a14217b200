package inmemdb

import (
	"context"

	"github.com/trezcool/usajili/core/registration"
)

type otpRepository struct {
	db *otpTable
}

var _ registration.OTPRepository = (*otpRepository)(nil)

func NewOTPRepository(db *DB) *otpRepository {
	return &otpRepository{db: db.otp}
}

func (repo *otpRepository) CreateOTP(_ context.Context, otp registration.OTP) (registration.OTP, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table[otp.ID] = &otp
	return otp, nil
}

func (repo *otpRepository) GetLatestOTP(_ context.Context, email, code string) (registration.OTP, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var latest *registration.OTP
	for _, otp := range repo.db.table {
		if otp.Email != email || otp.Code != code || otp.Used {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) {
			latest = otp
		}
	}
	if latest == nil {
		return registration.OTP{}, registration.ErrNotFound
	}
	return *latest, nil
}

func (repo *otpRepository) MarkOTPUsed(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if otp, ok := repo.db.table[id]; ok {
		otp.Used = true
		return nil
	}
	return registration.ErrNotFound
}

func (repo *otpRepository) HasVerifiedOTP(_ context.Context, email string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, otp := range repo.db.table {
		if otp.Email == email && otp.Used {
			return true, nil
		}
	}
	return false, nil
}
