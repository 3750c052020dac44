package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"videoninja/models"
)

// Authorizer gates writes to the media library per subject.
type Authorizer interface {
	// Status returns the current answer without prompting.
	Status(ctx context.Context, subject string) (models.AuthorizationStatus, error)
	// Request prompts for access if the subject has not answered yet and
	// returns the resulting status. A previous answer is returned as is.
	Request(ctx context.Context, subject string) (models.AuthorizationStatus, error)
}

// GrantAuthorizer stores answers in the library database. Subjects that were
// never asked receive the configured default answer on their first request.
type GrantAuthorizer struct {
	db            *gorm.DB
	defaultAnswer models.AuthorizationStatus
}

// NewGrantAuthorizer creates a new authorizer
func NewGrantAuthorizer(db *gorm.DB, defaultAnswer models.AuthorizationStatus) *GrantAuthorizer {
	return &GrantAuthorizer{db: db, defaultAnswer: defaultAnswer}
}

func (ga *GrantAuthorizer) Status(ctx context.Context, subject string) (models.AuthorizationStatus, error) {
	var grant models.LibraryGrant
	err := ga.db.WithContext(ctx).First(&grant, "subject = ?", subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AuthorizationNotDetermined, nil
	}
	if err != nil {
		return models.AuthorizationNotDetermined, fmt.Errorf("failed to read grant: %w", err)
	}
	return grant.AuthorizationStatus(), nil
}

func (ga *GrantAuthorizer) Request(ctx context.Context, subject string) (models.AuthorizationStatus, error) {
	status, err := ga.Status(ctx, subject)
	if err != nil || status != models.AuthorizationNotDetermined {
		return status, err
	}
	if ga.defaultAnswer == models.AuthorizationNotDetermined {
		return status, nil
	}
	if err := ga.Set(ctx, subject, ga.defaultAnswer); err != nil {
		return models.AuthorizationNotDetermined, err
	}
	return ga.defaultAnswer, nil
}

// Set records the subject's answer, replacing any earlier one.
func (ga *GrantAuthorizer) Set(ctx context.Context, subject string, status models.AuthorizationStatus) error {
	grant := models.LibraryGrant{Subject: subject, Status: status.Value, UpdatedAt: time.Now()}
	err := ga.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&grant).Error
	if err != nil {
		return fmt.Errorf("failed to store grant: %w", err)
	}
	return nil
}
