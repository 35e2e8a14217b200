package inmemdb

import (
	"sync"

	"github.com/trezcool/usajili/core/registration"
	"github.com/trezcool/usajili/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	applicantTable struct {
		mutex sync.RWMutex
		table map[string]*registration.Applicant
	}

	otpTable struct {
		mutex sync.RWMutex
		table map[string]*registration.OTP
	}

	DB struct {
		user      *userTable
		applicant *applicantTable
		otp       *otpTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		applicant: &applicantTable{table: make(map[string]*registration.Applicant)},
		otp:       &otpTable{table: make(map[string]*registration.OTP)},
	}
	return db, nil
}
