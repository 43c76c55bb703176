package repository

import (
	"context"
	"errors"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"gorm.io/gorm"
)

// FormTemplateRepository persists templates and their generic entries.
type FormTemplateRepository struct {
	db *gorm.DB
}

// NewFormTemplateRepository creates the repository.
func NewFormTemplateRepository(db *gorm.DB) *FormTemplateRepository {
	return &FormTemplateRepository{db: db}
}

// FindByID loads a template. Returns (nil, nil) when absent.
func (r *FormTemplateRepository) FindByID(ctx context.Context, id string) (*entity.FormTemplate, error) {
	var tpl entity.FormTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns active templates.
func (r *FormTemplateRepository) List(ctx context.Context) ([]entity.FormTemplate, error) {
	var tpls []entity.FormTemplate
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("title ASC").Find(&tpls).Error
	return tpls, err
}

// Create inserts a template.
func (r *FormTemplateRepository) Create(ctx context.Context, tpl *entity.FormTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

// Update saves a template.
func (r *FormTemplateRepository) Update(ctx context.Context, tpl *entity.FormTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

// CreateEntry inserts a generic entry.
func (r *FormTemplateRepository) CreateEntry(ctx context.Context, e *entity.FormEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// FindEntry loads a generic entry. Returns (nil, nil) when absent.
func (r *FormTemplateRepository) FindEntry(ctx context.Context, id string) (*entity.FormEntry, error) {
	var e entity.FormEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// SaveEntry persists a generic entry.
func (r *FormTemplateRepository) SaveEntry(ctx context.Context, e *entity.FormEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// ListEntries returns the entries of a template, newest first, optionally
// filtered by status.
func (r *FormTemplateRepository) ListEntries(ctx context.Context, templateID, status string) ([]entity.FormEntry, error) {
	q := r.db.WithContext(ctx).Where("template_id = ?", templateID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var entries []entity.FormEntry
	err := q.Order("created_at DESC").Find(&entries).Error
	return entries, err
}
