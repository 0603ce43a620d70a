package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/models"
)

// ResolveProfile maps an authenticated subject id to its UserProfile with
// the owning tenant joined in a single read.
//
// A missing profile is a valid outcome, not an error: the account exists in
// the auth layer but was never provisioned an application profile. In that
// case (nil, nil) is returned and the guard chain treats the caller as
// tenant-unverified. Transport and query failures are logged and returned.
func ResolveProfile(db *gorm.DB, subjectID string) (*models.UserProfile, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		logrus.WithField("subject", subjectID).Warn("profile resolve called with malformed subject id")
		return nil, nil
	}

	var profile models.UserProfile
	if err := db.Preload("Tenant").First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logrus.WithError(err).WithField("subject", subjectID).Error("profile resolve failed")
		return nil, err
	}

	return &profile, nil
}

// TenantID surfaces the active tenant id from a resolved profile, or nil
// when no profile or tenant membership is present. Pure read.
func TenantID(profile *models.UserProfile) *uuid.UUID {
	if profile == nil {
		return nil
	}
	return profile.TenantID
}
