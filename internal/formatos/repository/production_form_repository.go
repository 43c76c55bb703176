package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionFormRepository persists production forms, their audit trail and
// the folio counters.
type ProductionFormRepository struct {
	db *gorm.DB
}

// NewProductionFormRepository creates the repository.
func NewProductionFormRepository(db *gorm.DB) *ProductionFormRepository {
	return &ProductionFormRepository{db: db}
}

// FindByID loads a form. Returns (nil, nil) when the id does not exist.
func (r *ProductionFormRepository) FindByID(ctx context.Context, id uint) (*entity.ProductionForm, error) {
	var form entity.ProductionForm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

// FindByIDForUpdate loads a form inside tx with a row lock, so a field update
// and the status it triggers are applied atomically against concurrent reads.
func (r *ProductionFormRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*entity.ProductionForm, error) {
	var form entity.ProductionForm
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

// List returns forms of a template, newest first.
func (r *ProductionFormRepository) List(ctx context.Context, templateID string, status string, limit, offset int) ([]entity.ProductionForm, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.ProductionForm{})
	if templateID != "" {
		q = q.Where("template_id = ?", templateID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var forms []entity.ProductionForm
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&forms).Error
	return forms, total, err
}

// FolioExists reports whether a folio is already taken.
func (r *ProductionFormRepository) FolioExists(ctx context.Context, folio string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProductionForm{}).Where("folio = ?", folio).Count(&count).Error
	return count > 0, err
}

// Create inserts a form inside tx.
func (r *ProductionFormRepository) Create(ctx context.Context, tx *gorm.DB, form *entity.ProductionForm) error {
	return tx.WithContext(ctx).Create(form).Error
}

// Save persists the full form row inside tx.
func (r *ProductionFormRepository) Save(ctx context.Context, tx *gorm.DB, form *entity.ProductionForm) error {
	return tx.WithContext(ctx).Save(form).Error
}

// Delete hard-deletes a form and its action logs.
func (r *ProductionFormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&entity.FormActionLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.ProductionForm{}, id).Error
	})
}

// IssueFolio takes the next sequential folio for a template. The counter row
// is locked FOR UPDATE so two concurrent creates never read the same number.
func (r *ProductionFormRepository) IssueFolio(ctx context.Context, tx *gorm.DB, templateID string) (string, error) {
	var counter entity.FolioCounter
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("template_id = ?", templateID).
		First(&counter).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		counter = entity.FolioCounter{TemplateID: templateID, NextNumber: 1}
		if err := tx.WithContext(ctx).Create(&counter).Error; err != nil {
			return "", err
		}
	}
	n := counter.NextNumber
	if err := tx.WithContext(ctx).Model(&entity.FolioCounter{}).
		Where("template_id = ?", templateID).
		Update("next_number", n+1).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("PR-%05d", n), nil
}

// LogAction appends an audit row inside tx. Audit must commit with the
// mutation it describes.
func (r *ProductionFormRepository) LogAction(ctx context.Context, tx *gorm.DB, log *entity.FormActionLog) error {
	return tx.WithContext(ctx).Create(log).Error
}

// ListActions returns the audit trail of a form, newest first.
func (r *ProductionFormRepository) ListActions(ctx context.Context, formID uint) ([]entity.FormActionLog, error) {
	var logs []entity.FormActionLog
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
