package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catty_srv/internal/document"
	"catty_srv/internal/export"
	"catty_srv/internal/models"
	"catty_srv/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// exportArchivePrefix is the storage key prefix for archived exports.
const exportArchivePrefix = "exports"

// FileService implements file instantiation, mutation, and export.
//
// Document updates are whole-document replacement with last-writer-wins
// semantics; there is no optimistic concurrency token, so concurrent editors
// can overwrite each other.
type FileService struct {
	db      *gorm.DB
	logger  *logrus.Logger
	archive storage.Storage // nil disables export archiving

	// Injectable for tests; production uses the crypto/rand generators.
	newCode       func() string
	newShareToken func() string
}

// NewFileService creates a new file service. archive may be nil.
func NewFileService(db *gorm.DB, archive storage.Storage, logger *logrus.Logger) *FileService {
	return &FileService{
		db:            db,
		logger:        logger,
		archive:       archive,
		newCode:       func() string { return randomCode(fileCodePrefix, fileCodeLength) },
		newShareToken: randomShareToken,
	}
}

// fileDocument is the canonical stored shape of a file's document.
type fileDocument struct {
	Template templateRef     `json:"template"`
	Data     json.RawMessage `json:"data"`
}

// templateRef is the point-in-time snapshot of the originating template. It
// never updates after creation, even when the template changes.
type templateRef struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Version int    `json:"version"`
}

// List returns the caller's files, newest-updated first.
func (s *FileService) List(ctx context.Context, user *models.User) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", user.ID).
		Order("updated_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// Get fetches one file by id or human code. A UUID-shaped reference is tried
// as id first, then as code. Non-administrators only ever see their own
// files; anything else is NotFound.
func (s *FileService) Get(ctx context.Context, user *models.User, ref string) (*models.File, error) {
	if _, err := uuid.Parse(ref); err == nil {
		f, err := s.lookup(ctx, user, "id", ref)
		if err == nil || !IsNotFound(err) {
			return f, err
		}
	}
	return s.lookup(ctx, user, "code", ref)
}

func (s *FileService) lookup(ctx context.Context, user *models.User, column, value string) (*models.File, error) {
	q := s.db.WithContext(ctx).Where(column+" = ?", value)
	if !user.IsAdmin {
		q = q.Where("owner_id = ?", user.ID)
	}

	var f models.File
	if err := q.First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("file not found")
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}

// GetShared fetches a file by its sharing token. Disabled sharing and unknown
// tokens are indistinguishable to the caller.
func (s *FileService) GetShared(ctx context.Context, token string) (*models.File, error) {
	var f models.File
	err := s.db.WithContext(ctx).
		Where("share_token = ? AND share_enabled = ?", token, true).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("file not found")
		}
		return nil, fmt.Errorf("get shared file: %w", err)
	}
	return &f, nil
}

// Create instantiates a new file from a template. The template's document is
// unwrapped to its canonical flat shape and wrapped with provenance metadata;
// the template itself is never mutated.
func (s *FileService) Create(ctx context.Context, user *models.User, templateID, name string, isPublic bool) (*models.File, error) {
	logger := s.logger.WithFields(logrus.Fields{
		"template_id": templateID,
		"owner_id":    user.ID,
	})

	var tpl models.Template
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", templateID, true).
		First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("template not found")
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	if !tpl.VisibleTo(user) {
		return nil, NewPermissionError("template not allowed")
	}

	flat := document.Unwrap(tpl.Document)
	doc, err := json.Marshal(fileDocument{
		Template: templateRef{ID: tpl.ID, Code: tpl.Code, Version: tpl.Version},
		Data:     json.RawMessage(flat),
	})
	if err != nil {
		return nil, NewValidationError("template document is not serializable")
	}
	doc, size, err := canonicalize(doc)
	if err != nil {
		return nil, NewValidationError("template document is not serializable")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.uniqueShareToken(ctx)
	if err != nil {
		return nil, err
	}

	f := &models.File{
		Code:         code,
		Name:         name,
		OwnerID:      user.ID,
		TemplateID:   tpl.ID,
		IsPublic:     isPublic,
		ShareToken:   token,
		ShareEnabled: true,
		Document:     models.JSONDoc(doc),
		SizeBytes:    size,
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		logger.WithError(err).Error("Failed to persist file")
		return nil, fmt.Errorf("create file: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"file_id":   f.ID,
		"file_code": f.Code,
	}).Info("File created from template")
	return f, nil
}

// UpdateDocument replaces a file's document wholesale. The payload may be a
// full document object (anything carrying a data key) or a bare data payload,
// which gets wrapped as {data: ...}. Size is recomputed from the canonical
// serialization.
func (s *FileService) UpdateDocument(ctx context.Context, user *models.User, ref string, payload []byte) (*models.File, error) {
	f, err := s.Get(ctx, user, ref)
	if err != nil {
		return nil, err
	}

	if !json.Valid(payload) {
		return nil, NewValidationError("document payload is not valid JSON")
	}

	doc := payload
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil || top == nil {
		doc, err = json.Marshal(fileDocument{Data: payload})
		if err != nil {
			return nil, NewValidationError("document payload is not serializable")
		}
	} else if _, hasData := top["data"]; !hasData {
		doc, err = json.Marshal(fileDocument{Data: payload})
		if err != nil {
			return nil, NewValidationError("document payload is not serializable")
		}
	}

	doc, size, err := canonicalize(doc)
	if err != nil {
		return nil, NewValidationError("document payload is not serializable")
	}

	f.Document = models.JSONDoc(doc)
	f.SizeBytes = size
	if err := s.db.WithContext(ctx).Save(f).Error; err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"file_id":    f.ID,
		"size_bytes": size,
	}).Info("File document replaced")
	return f, nil
}

// Delete removes a file. Owner or administrator only.
func (s *FileService) Delete(ctx context.Context, user *models.User, id string) error {
	var f models.File
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("file not found")
		}
		return fmt.Errorf("get file: %w", err)
	}

	if !f.OwnedBy(user) {
		return NewPermissionError("not allowed")
	}

	if err := s.db.WithContext(ctx).Delete(&f).Error; err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	s.logger.WithField("file_id", id).Info("File deleted")
	return nil
}

// Export renders a file's document into an xlsx workbook and returns the
// download filename with the workbook bytes. A file without a document cannot
// be exported.
func (s *FileService) Export(ctx context.Context, user *models.User, ref string) (string, []byte, error) {
	f, err := s.Get(ctx, user, ref)
	if err != nil {
		return "", nil, err
	}

	if f.Document.IsNull() {
		return "", nil, NewValidationError("file has no document to export")
	}

	var wrapper fileDocument
	if err := json.Unmarshal(f.Document, &wrapper); err != nil {
		return "", nil, NewValidationError("file document is malformed")
	}

	doc := document.Parse(document.Unwrap(f.Document))
	info := export.FileInfo{
		ID:              f.ID,
		Code:            f.Code,
		Name:            f.Name,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
		TemplateID:      wrapper.Template.ID,
		TemplateCode:    wrapper.Template.Code,
		TemplateVersion: wrapper.Template.Version,
	}

	data, err := export.Workbook(info, doc)
	if err != nil {
		return "", nil, fmt.Errorf("build workbook: %w", err)
	}

	s.archiveExport(ctx, f, data)

	return export.Filename(f.Code, f.Name), data, nil
}

// archiveExport keeps a copy of the generated workbook in the configured
// storage backend. Best-effort: archive failures never fail the download.
func (s *FileService) archiveExport(ctx context.Context, f *models.File, data []byte) {
	if s.archive == nil {
		return
	}
	key := s.archive.JoinPath(exportArchivePrefix, f.ID+".xlsx")
	if err := s.archive.Save(ctx, key, bytes.NewReader(data)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"file_id": f.ID,
			"key":     key,
		}).Warn("Failed to archive export")
	}
}

// uniqueCode generates a file code that is not yet taken. The retry loop is
// optimistic; the unique index on files.code is what actually guarantees
// uniqueness under concurrent requests.
func (s *FileService) uniqueCode(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := s.newCode()
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.File{}).
			Where("code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check code uniqueness: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
}

func (s *FileService) uniqueShareToken(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token := s.newShareToken()
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.File{}).
			Where("share_token = ?", token).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}
		if count == 0 {
			return token, nil
		}
	}
}

// canonicalize strips extraneous whitespace and returns the compact bytes and
// their length, which is the persisted size of the document.
func canonicalize(doc []byte) ([]byte, int64, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), int64(buf.Len()), nil
}
