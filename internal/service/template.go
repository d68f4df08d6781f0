package service

import (
	"context"
	"fmt"

	"catty_srv/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TemplateService exposes the template catalog.
type TemplateService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(db *gorm.DB, logger *logrus.Logger) *TemplateService {
	return &TemplateService{db: db, logger: logger}
}

// List returns the active templates visible to the caller: administrators see
// all, everyone else sees public/shared templates plus their own.
func (s *TemplateService) List(ctx context.Context, user *models.User) ([]models.Template, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if !user.IsAdmin {
		q = q.Where("visibility IN ? OR owner_id = ?",
			[]string{models.VisibilityPublic, models.VisibilityShared}, user.ID)
	}

	var templates []models.Template
	if err := q.Order("updated_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}
