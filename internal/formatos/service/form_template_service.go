package service

import (
	"context"
	"encoding/json"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
	"github.com/google/uuid"
)

// FormTemplateService handles administrator-defined templates and their
// generic entries. The flat entry workflow carries no section gating; that
// model belongs to production forms only.
type FormTemplateService struct {
	templates *repository.FormTemplateRepository
}

func NewFormTemplateService(templates *repository.FormTemplateRepository) *FormTemplateService {
	return &FormTemplateService{templates: templates}
}

// CreateTemplate registers a new template. Only managers and superadmins
// define templates.
func (s *FormTemplateService) CreateTemplate(ctx context.Context, title, description string, fields json.RawMessage, actor *workflow.Actor) (*entity.FormTemplate, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	if !actor.Superadmin() && actor.Role() != workflow.RoleProductionManager {
		return nil, permissionf("role %q may not define templates", actor.RawRole)
	}
	if title == "" {
		return nil, validationf("title is required")
	}
	if len(fields) == 0 || !json.Valid(fields) {
		return nil, validationf("fields must be a JSON array")
	}
	tpl := &entity.FormTemplate{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Fields:      fields,
		IsActive:    true,
		CreatedBy:   actor.ID,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// GetTemplate loads one template.
func (s *FormTemplateService) GetTemplate(ctx context.Context, id string) (*entity.FormTemplate, error) {
	tpl, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, notFoundf("template %s not found", id)
	}
	return tpl, nil
}

// ListTemplates returns active templates.
func (s *FormTemplateService) ListTemplates(ctx context.Context) ([]entity.FormTemplate, error) {
	return s.templates.List(ctx)
}

// CreateEntry stores a filled-in instance of a template.
func (s *FormTemplateService) CreateEntry(ctx context.Context, templateID, folio string, data entity.JSONB, actor *workflow.Actor) (*entity.FormEntry, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, notFoundf("template %s not found", templateID)
	}
	if data == nil {
		data = entity.JSONB{}
	}
	e := &entity.FormEntry{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		Folio:      folio,
		Data:       data,
		Status:     entity.EntryStatusDraft,
		CreatedBy:  actor.ID,
	}
	if err := s.templates.CreateEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// SignEntry moves a draft entry to signed, recording the signer.
func (s *FormTemplateService) SignEntry(ctx context.Context, id string, actor *workflow.Actor) (*entity.FormEntry, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	e, err := s.templates.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFoundf("entry %s not found", id)
	}
	if e.Status != entity.EntryStatusDraft {
		return nil, validationf("entry %s is %s, only drafts can be signed", id, e.Status)
	}
	e.Status = entity.EntryStatusSigned
	e.SignedBy = actor.ID
	if err := s.templates.SaveEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ReviewEntry approves or rejects a signed entry. Quality managers and
// superadmins only.
func (s *FormTemplateService) ReviewEntry(ctx context.Context, id string, approve bool, actor *workflow.Actor) (*entity.FormEntry, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	if !actor.Superadmin() && actor.Role() != workflow.RoleQualityManager {
		return nil, permissionf("role %q may not review entries", actor.RawRole)
	}
	e, err := s.templates.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFoundf("entry %s not found", id)
	}
	if e.Status != entity.EntryStatusSigned {
		return nil, validationf("entry %s is %s, only signed entries can be reviewed", id, e.Status)
	}
	if approve {
		e.Status = entity.EntryStatusApproved
	} else {
		e.Status = entity.EntryStatusRejected
	}
	if err := s.templates.SaveEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns a template's entries, optionally filtered by status.
func (s *FormTemplateService) ListEntries(ctx context.Context, templateID, status string) ([]entity.FormEntry, error) {
	return s.templates.ListEntries(ctx, templateID, status)
}
