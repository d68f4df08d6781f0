package service

import (
	"context"
	"testing"

	"catty_srv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTemplates(t *testing.T, db *gorm.DB, owner *models.User) {
	t.Helper()
	templates := []models.Template{
		{Code: "TPL-PUB", Name: "Pública", Document: models.JSONDoc(`{}`), Version: 1, IsActive: true, Visibility: models.VisibilityPublic},
		{Code: "TPL-SHR", Name: "Compartida", Document: models.JSONDoc(`{}`), Version: 1, IsActive: true, Visibility: models.VisibilityShared},
		{Code: "TPL-PRIV", Name: "Privada", Document: models.JSONDoc(`{}`), Version: 1, IsActive: true, Visibility: models.VisibilityPrivate, OwnerID: &owner.ID},
		{Code: "TPL-OFF", Name: "Inactiva", Document: models.JSONDoc(`{}`), Version: 1, IsActive: false, Visibility: models.VisibilityPublic},
	}
	for i := range templates {
		require.NoError(t, db.Create(&templates[i]).Error)
	}
}

func TestListTemplatesVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTemplateService(db, setupTestLogger())
	owner := createTestUser(t, db, "owner@example.com", false)
	other := createTestUser(t, db, "other@example.com", false)
	seedTemplates(t, db, owner)

	ownerList, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, ownerList, 3)

	// Others see public and shared only; inactive stays hidden for everyone.
	otherList, err := svc.List(context.Background(), other)
	require.NoError(t, err)
	assert.Len(t, otherList, 2)
	for _, tpl := range otherList {
		assert.NotEqual(t, "TPL-PRIV", tpl.Code)
		assert.NotEqual(t, "TPL-OFF", tpl.Code)
	}
}

func TestListTemplatesAdminSeesAllActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTemplateService(db, setupTestLogger())
	owner := createTestUser(t, db, "owner@example.com", false)
	admin := createTestUser(t, db, "admin@example.com", true)
	seedTemplates(t, db, owner)

	list, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
