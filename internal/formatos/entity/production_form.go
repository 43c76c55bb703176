package entity

import (
	"time"
)

// Form statuses, persisted lowercase. draft → in_progress → pending_review →
// completed, with the single backward edge pending_review → in_progress.
const (
	StatusDraft         = "draft"
	StatusInProgress    = "in_progress"
	StatusPendingReview = "pending_review"
	StatusCompleted     = "completed"
)

// ValidStatus reports whether s is one of the four workflow statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusPendingReview, StatusCompleted:
		return true
	}
	return false
}

// Fixed row counts per section. Parallel arrays of a section always share the
// nominal length; index i across them is the same logical time slot.
const (
	ProcessRows     = 7
	QualityRows     = 8
	DestinationRows = 4
)

// ProductionForm is the persisted production form aggregate. Scalar metadata
// lives in typed columns; array-valued sections are jsonb arrays of strings.
type ProductionForm struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TemplateID string `json:"template_id" gorm:"size:36;not null;index;default:produccion"`

	// Folios
	Folio                  string `json:"folio" gorm:"size:32;not null;uniqueIndex"`
	FolioInterno           string `json:"folio_interno" gorm:"size:32"`
	FolioDeduccion         string `json:"folio_deduccion" gorm:"size:32"`
	FolioProductoTerminado string `json:"folio_producto_terminado" gorm:"size:32"`

	// General info
	ProductID   string     `json:"product_id" gorm:"size:64"`
	Liters      float64    `json:"liters"`
	Date        *time.Time `json:"date"`
	Responsible string     `json:"responsible" gorm:"size:128"`
	LotNumber   string     `json:"lot_number" gorm:"size:64"`
	Marmita     string     `json:"marmita" gorm:"size:32"`
	ExpiryDate  *time.Time `json:"expiry_date"`

	Status string `json:"status" gorm:"size:20;not null;default:draft"`

	// Raw materials (derived from the recipe, never edited directly)
	RecipeName  string         `json:"recipe_name" gorm:"size:128"`
	Ingredients IngredientList `json:"ingredients" gorm:"type:jsonb;not null;default:'[]'"`

	// Process tracking
	StartTime    string      `json:"start_time" gorm:"size:16"`
	HourTracking StringArray `json:"hour_tracking" gorm:"type:jsonb;not null;default:'[]'"`
	Temperature  StringArray `json:"temperature" gorm:"type:jsonb;not null;default:'[]'"`
	Pressure     StringArray `json:"pressure" gorm:"type:jsonb;not null;default:'[]'"`

	// Quality verification
	QualityTimes    StringArray `json:"quality_times" gorm:"type:jsonb;not null;default:'[]'"`
	Brix            StringArray `json:"brix" gorm:"type:jsonb;not null;default:'[]'"`
	QualityTemp     StringArray `json:"quality_temp" gorm:"type:jsonb;not null;default:'[]'"`
	Texture         StringArray `json:"texture" gorm:"type:jsonb;not null;default:'[]'"`
	Color           StringArray `json:"color" gorm:"type:jsonb;not null;default:'[]'"`
	Viscosity       StringArray `json:"viscosity" gorm:"type:jsonb;not null;default:'[]'"`
	Smell           StringArray `json:"smell" gorm:"type:jsonb;not null;default:'[]'"`
	Taste           StringArray `json:"taste" gorm:"type:jsonb;not null;default:'[]'"`
	ForeignMaterial StringArray `json:"foreign_material" gorm:"type:jsonb;not null;default:'[]'"`
	StatusCheck     StringArray `json:"status_check" gorm:"type:jsonb;not null;default:'[]'"`
	QualityNotes    string      `json:"quality_notes" gorm:"type:text"`

	// Product destination
	DestinationType       StringArray `json:"destination_type" gorm:"type:jsonb;not null;default:'[]'"`
	DestinationKilos      StringArray `json:"destination_kilos" gorm:"type:jsonb;not null;default:'[]'"`
	DestinationProduct    StringArray `json:"destination_product" gorm:"type:jsonb;not null;default:'[]'"`
	DestinationEstimation StringArray `json:"destination_estimation" gorm:"type:jsonb;not null;default:'[]'"`

	// Final strainer
	TotalKilos string `json:"total_kilos" gorm:"size:32"`
	Yield      string `json:"yield" gorm:"size:32"`
	StartState string `json:"start_state" gorm:"size:8"` // good/bad or empty
	EndState   string `json:"end_state" gorm:"size:8"`   // good/bad or empty

	// Liberation
	LiberationFolio string `json:"liberation_folio" gorm:"size:32"`
	CP              string `json:"cp" gorm:"size:32"`
	Consistometer   string `json:"consistometer" gorm:"size:32"`
	FinalBrix       string `json:"final_brix" gorm:"size:32"`
	SignatureKey    string `json:"signature_key" gorm:"size:256"`

	// Template-specific fields outside the fixed section model
	Extra JSONB `json:"extra" gorm:"type:jsonb;not null;default:'{}'"`

	CreatedBy       string    `json:"created_by" gorm:"size:64;not null"`
	LastUpdatedBy   string    `json:"last_updated_by" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ProductionForm) TableName() string {
	return "production_forms"
}

// NormalizeArrays pads or truncates every section array to its nominal length
// so index alignment holds even for rows never touched.
func (f *ProductionForm) NormalizeArrays() {
	fix := func(a StringArray, n int) StringArray {
		if len(a) == n {
			return a
		}
		out := make(StringArray, n)
		copy(out, a)
		return out
	}
	f.HourTracking = fix(f.HourTracking, ProcessRows)
	f.Temperature = fix(f.Temperature, ProcessRows)
	f.Pressure = fix(f.Pressure, ProcessRows)

	f.QualityTimes = fix(f.QualityTimes, QualityRows)
	f.Brix = fix(f.Brix, QualityRows)
	f.QualityTemp = fix(f.QualityTemp, QualityRows)
	f.Texture = fix(f.Texture, QualityRows)
	f.Color = fix(f.Color, QualityRows)
	f.Viscosity = fix(f.Viscosity, QualityRows)
	f.Smell = fix(f.Smell, QualityRows)
	f.Taste = fix(f.Taste, QualityRows)
	f.ForeignMaterial = fix(f.ForeignMaterial, QualityRows)
	f.StatusCheck = fix(f.StatusCheck, QualityRows)

	f.DestinationType = fix(f.DestinationType, DestinationRows)
	f.DestinationKilos = fix(f.DestinationKilos, DestinationRows)
	f.DestinationProduct = fix(f.DestinationProduct, DestinationRows)
	f.DestinationEstimation = fix(f.DestinationEstimation, DestinationRows)
}

// FolioCounter serializes sequential folio assignment per template. The row
// is locked FOR UPDATE while the next number is issued.
type FolioCounter struct {
	TemplateID string `gorm:"primaryKey;size:36"`
	NextNumber int    `gorm:"not null;default:1"`
}

func (FolioCounter) TableName() string {
	return "folio_counters"
}

// FormActionLog records every status transition and gated mutation on a
// production form.
type FormActionLog struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	FormID     uint      `json:"form_id" gorm:"not null;index"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	Field      string    `json:"field" gorm:"size:64"`
	FromStatus string    `json:"from_status" gorm:"size:20"`
	ToStatus   string    `json:"to_status" gorm:"size:20"`
	OperatorID string    `json:"operator_id" gorm:"size:64;not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	EventData  JSONB     `json:"event_data" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FormActionLog) TableName() string {
	return "form_action_logs"
}
