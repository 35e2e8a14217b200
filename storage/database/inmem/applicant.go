package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/usajili/core/registration"
)

type applicantRepository struct {
	db *applicantTable
}

var _ registration.ApplicantRepository = (*applicantRepository)(nil)

func NewApplicantRepository(db *DB) *applicantRepository {
	return &applicantRepository{db: db.applicant}
}

func (repo *applicantRepository) CreateApplicant(_ context.Context, app registration.Applicant) (registration.Applicant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, a := range repo.db.table {
		if a.UserID == app.UserID || a.Email == app.Email {
			return registration.Applicant{}, registration.ErrEmailRegistered
		}
	}
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicantRepository) GetApplicantByID(_ context.Context, id string) (registration.Applicant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return registration.Applicant{}, registration.ErrNotFound
}

func (repo *applicantRepository) GetApplicantByUserID(_ context.Context, userID string) (registration.Applicant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, app := range repo.db.table {
		if app.UserID == userID {
			return *app, nil
		}
	}
	return registration.Applicant{}, registration.ErrNotFound
}

func (repo *applicantRepository) FilterApplicants(_ context.Context, filter registration.QueryFilter) ([]registration.Applicant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(app registration.Applicant) bool {
		if filter.Status != "" && app.Status != filter.Status {
			return false
		}
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			if !(strings.Contains(strings.ToLower(app.Personal.FirstName), search) ||
				strings.Contains(strings.ToLower(app.Personal.LastName), search) ||
				strings.Contains(strings.ToLower(app.Email), search) ||
				strings.Contains(strings.ToLower(app.ReferenceNumber), search)) {
				return false
			}
		}
		return true
	}

	apps := make([]registration.Applicant, 0, len(repo.db.table))
	for _, app := range repo.db.table {
		if match(*app) {
			apps = append(apps, *app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (repo *applicantRepository) UpdateApplicantProfile(ctx context.Context, userID string, up registration.UpdateProfile) (registration.Applicant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, app := range repo.db.table {
		if app.UserID == userID {
			if up.Phone != "" {
				app.Personal.Phone = up.Phone
			}
			if up.City != "" {
				app.Personal.City = up.City
			}
			if up.PostalCode != "" {
				app.Personal.PostalCode = up.PostalCode
			}
			app.UpdatedAt = time.Now().UTC()
			return *app, nil
		}
	}
	return registration.Applicant{}, registration.ErrNotFound
}

func (repo *applicantRepository) UpdateApplicantStatus(_ context.Context, id, status string) (registration.Applicant, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if app, ok := repo.db.table[id]; ok {
		app.Status = status
		app.UpdatedAt = time.Now().UTC()
		return *app, nil
	}
	return registration.Applicant{}, registration.ErrNotFound
}
