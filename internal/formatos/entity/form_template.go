package entity

import (
	"encoding/json"
	"time"
)

// FormTemplate is an administrator-defined form: a title plus a JSON field
// set. The backend never interprets field types; the renderer does.
type FormTemplate struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Fields      json.RawMessage `json:"fields" gorm:"type:jsonb;not null;default:'[]'"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedBy   string          `json:"created_by" gorm:"size:64;not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (FormTemplate) TableName() string {
	return "form_templates"
}

// Generic entry statuses. Non-production entries follow this flat workflow
// with no section gating.
const (
	EntryStatusDraft    = "draft"
	EntryStatusSigned   = "signed"
	EntryStatusApproved = "approved"
	EntryStatusRejected = "rejected"
)

// FormEntry is a filled-in instance of a template: a flat key-value record.
type FormEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TemplateID string    `json:"template_id" gorm:"size:36;not null;index"`
	Folio      string    `json:"folio" gorm:"size:32;not null;index"`
	Data       JSONB     `json:"data" gorm:"type:jsonb;not null;default:'{}'"`
	Status     string    `json:"status" gorm:"size:20;not null;default:draft"`
	CreatedBy  string    `json:"created_by" gorm:"size:64;not null"`
	SignedBy   string    `json:"signed_by" gorm:"size:64"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FormEntry) TableName() string {
	return "form_entries"
}
