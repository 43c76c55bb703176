package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const folioRetries = 3

// ProductionFormService owns the production form lifecycle: creation with
// serialized folio assignment, gated field updates with automatic status
// advance and recipe derivation, manual transitions, and deletion.
type ProductionFormService struct {
	db          *gorm.DB
	forms       *repository.ProductionFormRepository
	recipes     RecipeSource
	logger      *zap.Logger
	deleteRoles map[string]bool
}

// NewProductionFormService creates the service. deleteRoles is the raw-role
// allow-list for hard deletes; empty means superadmin only.
func NewProductionFormService(db *gorm.DB, forms *repository.ProductionFormRepository, recipes RecipeSource, logger *zap.Logger, deleteRoles []string) *ProductionFormService {
	allow := make(map[string]bool, len(deleteRoles))
	for _, r := range deleteRoles {
		allow[strings.ToLower(strings.TrimSpace(r))] = true
	}
	if len(allow) == 0 {
		allow["superadmin"] = true
	}
	return &ProductionFormService{
		db:          db,
		forms:       forms,
		recipes:     recipes,
		logger:      logger,
		deleteRoles: allow,
	}
}

// CreateFormInput carries the general-info fields a new form starts with.
type CreateFormInput struct {
	TemplateID  string     `json:"template_id"`
	Folio       string     `json:"folio"`
	ProductID   string     `json:"product_id"`
	Liters      float64    `json:"liters"`
	Date        *time.Time `json:"date"`
	Responsible string     `json:"responsible"`
	LotNumber   string     `json:"lot_number"`
	Marmita     string     `json:"marmita"`
}

// Create opens a new form in draft. The general-info gate decides who may
// create; the folio is caller-supplied (validated unique) or issued from the
// serialized per-template counter. Counter collisions are retried internally.
func (s *ProductionFormService) Create(ctx context.Context, in CreateFormInput, actor *workflow.Actor) (*entity.ProductionForm, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	if !workflow.CanEditSection(actor, workflow.SectionGeneralInfo, false) {
		return nil, permissionf("role %q may not create production forms", actor.RawRole)
	}
	if in.Liters < 0 {
		return nil, validationf("liters must be a positive number")
	}
	// A draft may open without liters, but a batch with a product needs a
	// positive volume to derive from.
	if in.ProductID != "" && in.Liters == 0 {
		return nil, validationf("liters must be a positive number")
	}
	templateID := in.TemplateID
	if templateID == "" {
		templateID = "produccion"
	}
	if in.Folio != "" {
		taken, err := s.forms.FolioExists(ctx, in.Folio)
		if err != nil {
			return nil, fmt.Errorf("check folio: %w", err)
		}
		if taken {
			return nil, validationf("folio %q already exists", in.Folio)
		}
	}

	var form *entity.ProductionForm
	var lastErr error
	for attempt := 0; attempt < folioRetries; attempt++ {
		form = &entity.ProductionForm{
			TemplateID:    templateID,
			Folio:         in.Folio,
			ProductID:     in.ProductID,
			Liters:        in.Liters,
			Date:          in.Date,
			Responsible:   in.Responsible,
			LotNumber:     in.LotNumber,
			Marmita:       in.Marmita,
			Status:        entity.StatusDraft,
			CreatedBy:     actor.ID,
			LastUpdatedBy: actor.ID,
		}
		form.NormalizeArrays()
		if in.ProductID != "" && in.Liters > 0 {
			s.derive(ctx, form)
		}

		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if form.Folio == "" {
				folio, err := s.forms.IssueFolio(ctx, tx, templateID)
				if err != nil {
					return fmt.Errorf("issue folio: %w", err)
				}
				form.Folio = folio
			}
			if err := s.forms.Create(ctx, tx, form); err != nil {
				return err
			}
			return s.forms.LogAction(ctx, tx, &entity.FormActionLog{
				ID:         uuid.New().String(),
				FormID:     form.ID,
				Action:     "create",
				ToStatus:   entity.StatusDraft,
				OperatorID: actor.ID,
			})
		})
		if lastErr == nil {
			return form, nil
		}
		// A counter race surfaces as a duplicate folio; re-request the next
		// number transparently. Caller-supplied folios are not retried.
		if in.Folio == "" && errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			continue
		}
		if errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, validationf("folio %q already exists", in.Folio)
		}
		return nil, fmt.Errorf("create form: %w", lastErr)
	}
	return nil, fmt.Errorf("create form: folio contention not resolved: %w", lastErr)
}

// Get loads one form.
func (s *ProductionFormService) Get(ctx context.Context, id uint) (*entity.ProductionForm, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	if form == nil {
		return nil, notFoundf("form %d not found", id)
	}
	return form, nil
}

// List returns forms filtered by template and status.
func (s *ProductionFormService) List(ctx context.Context, templateID, status string, limit, offset int) ([]entity.ProductionForm, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.forms.List(ctx, templateID, status, limit, offset)
}

// History returns a form's audit trail.
func (s *ProductionFormService) History(ctx context.Context, id uint) ([]entity.FormActionLog, error) {
	return s.forms.ListActions(ctx, id)
}

// UpdateField applies one field mutation: resolve the owning section, gate by
// role, apply the value, re-derive ingredients when product or liters
// changed, evaluate auto-advance, and persist everything in one transaction.
func (s *ProductionFormService) UpdateField(ctx context.Context, id uint, field string, value interface{}, actor *workflow.Actor) (*entity.ProductionForm, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	base, idx, ok := workflow.SplitIndex(field)
	if !ok {
		return nil, validationf("malformed field name %q", field)
	}

	extra := strings.HasPrefix(base, "extra.")
	var section workflow.Section
	if !extra {
		section, ok = workflow.SectionOfField(field)
		if !ok {
			return nil, validationf("unknown field %q", field)
		}
	}

	var updated *entity.ProductionForm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		form, err := s.forms.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load form: %w", err)
		}
		if form == nil {
			return notFoundf("form %d not found", id)
		}

		// Template-specific extension fields sit outside the section model;
		// any authenticated editor may write them.
		if !extra && !workflow.CanEditSection(actor, section, false) {
			return permissionf("role %q may not edit section %s", actor.RawRole, section)
		}

		form.NormalizeArrays()
		strVal, err := s.applyField(form, base, idx, value)
		if err != nil {
			return err
		}

		if base == "product_id" || base == "liters" {
			s.derive(ctx, form)
		}

		fromStatus := form.Status
		if strVal != "" {
			if to, ok := workflow.EvaluateAutoAdvance(form.Status, field, actor.Role(), s.fieldFilled(form)); ok {
				form.Status = to
			}
		}

		form.LastUpdatedBy = actor.ID
		if err := s.forms.Save(ctx, tx, form); err != nil {
			return fmt.Errorf("save form: %w", err)
		}

		action := "update_field"
		if form.Status != fromStatus {
			action = "auto_advance"
		}
		if err := s.forms.LogAction(ctx, tx, &entity.FormActionLog{
			ID:         uuid.New().String(),
			FormID:     form.ID,
			Action:     action,
			Field:      field,
			FromStatus: fromStatus,
			ToStatus:   form.Status,
			OperatorID: actor.ID,
		}); err != nil {
			return fmt.Errorf("log action: %w", err)
		}
		updated = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus performs a manual transition. The (role, from, to) triple must
// appear in the canonical table or the call is rejected with no change.
func (s *ProductionFormService) ChangeStatus(ctx context.Context, id uint, newStatus string, actor *workflow.Actor) (*entity.ProductionForm, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	if !entity.ValidStatus(newStatus) {
		return nil, validationf("invalid status %q", newStatus)
	}
	var updated *entity.ProductionForm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		form, err := s.forms.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load form: %w", err)
		}
		if form == nil {
			return notFoundf("form %d not found", id)
		}

		t, ok := workflow.ManualTransition(form.Status, newStatus, actor.Role())
		if !ok {
			return permissionf("role %q may not move a form from %s to %s", actor.RawRole, form.Status, newStatus)
		}

		fromStatus := form.Status
		form.Status = newStatus
		form.LastUpdatedBy = actor.ID
		if err := s.forms.Save(ctx, tx, form); err != nil {
			return fmt.Errorf("save form: %w", err)
		}
		if err := s.forms.LogAction(ctx, tx, &entity.FormActionLog{
			ID:         uuid.New().String(),
			FormID:     form.ID,
			Action:     t.Event,
			FromStatus: fromStatus,
			ToStatus:   newStatus,
			OperatorID: actor.ID,
		}); err != nil {
			return fmt.Errorf("log action: %w", err)
		}
		updated = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FolioInput carries the folio-management fields.
type FolioInput struct {
	Folio                  *string `json:"folio"`
	FolioInterno           *string `json:"folio_interno"`
	FolioDeduccion         *string `json:"folio_deduccion"`
	FolioProductoTerminado *string `json:"folio_producto_terminado"`
}

// UpdateFolios is the explicit folio-management operation, open to superadmin
// and quality managers only. The primary folio stays unique.
func (s *ProductionFormService) UpdateFolios(ctx context.Context, id uint, in FolioInput, actor *workflow.Actor) (*entity.ProductionForm, error) {
	if actor == nil || actor.ID == "" {
		return nil, permissionf("authentication required")
	}
	if !actor.Superadmin() && actor.Role() != workflow.RoleQualityManager {
		return nil, permissionf("role %q may not manage folios", actor.RawRole)
	}
	var updated *entity.ProductionForm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		form, err := s.forms.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load form: %w", err)
		}
		if form == nil {
			return notFoundf("form %d not found", id)
		}
		if in.Folio != nil && *in.Folio != form.Folio {
			if *in.Folio == "" {
				return validationf("folio may not be empty")
			}
			taken, err := s.forms.FolioExists(ctx, *in.Folio)
			if err != nil {
				return fmt.Errorf("check folio: %w", err)
			}
			if taken {
				return validationf("folio %q already exists", *in.Folio)
			}
			form.Folio = *in.Folio
		}
		if in.FolioInterno != nil {
			form.FolioInterno = *in.FolioInterno
		}
		if in.FolioDeduccion != nil {
			form.FolioDeduccion = *in.FolioDeduccion
		}
		if in.FolioProductoTerminado != nil {
			form.FolioProductoTerminado = *in.FolioProductoTerminado
		}
		form.LastUpdatedBy = actor.ID
		if err := s.forms.Save(ctx, tx, form); err != nil {
			// The uniqueness check above races against concurrent renames;
			// the unique index is the arbiter.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validationf("folio %q already exists", form.Folio)
			}
			return fmt.Errorf("save form: %w", err)
		}
		if err := s.forms.LogAction(ctx, tx, &entity.FormActionLog{
			ID:         uuid.New().String(),
			FormID:     form.ID,
			Action:     "folio_management",
			OperatorID: actor.ID,
		}); err != nil {
			return fmt.Errorf("log action: %w", err)
		}
		updated = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete hard-deletes a form. Only raw roles on the configured allow-list may
// delete, independent of workflow status.
func (s *ProductionFormService) Delete(ctx context.Context, id uint, actor *workflow.Actor) error {
	if actor == nil || actor.ID == "" {
		return permissionf("authentication required")
	}
	if !s.deleteRoles[strings.ToLower(strings.TrimSpace(actor.RawRole))] {
		return permissionf("role %q may not delete production forms", actor.RawRole)
	}
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load form: %w", err)
	}
	if form == nil {
		return notFoundf("form %d not found", id)
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	return nil
}

// SetSignature records the liberation signature object key. Gated like any
// liberation-data field.
func (s *ProductionFormService) SetSignature(ctx context.Context, id uint, objectKey string, actor *workflow.Actor) error {
	_, err := s.UpdateField(ctx, id, "signature_key", objectKey, actor)
	return err
}

// derive recomputes the ingredient list from the active recipe source.
// Failure is logged and swallowed; the prior list stays untouched.
func (s *ProductionFormService) derive(ctx context.Context, form *entity.ProductionForm) {
	if s.recipes == nil || form.ProductID == "" || form.Liters <= 0 {
		return
	}
	name, list, err := s.recipes.Resolve(ctx, form.ProductID, form.Liters)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("recipe derivation failed, keeping previous ingredients",
				zap.String("product", form.ProductID),
				zap.Float64("liters", form.Liters),
				zap.Error(err))
		}
		return
	}
	form.RecipeName = name
	form.Ingredients = list
}

// fieldFilled closes over the aggregate for the transition engine's
// RequireAll checks.
func (s *ProductionFormService) fieldFilled(form *entity.ProductionForm) workflow.FieldFilled {
	anyFilled := func(a entity.StringArray) bool {
		for _, v := range a {
			if v != "" {
				return true
			}
		}
		return false
	}
	return func(base string) bool {
		switch base {
		case "responsible":
			return form.Responsible != ""
		case "lot_number":
			return form.LotNumber != ""
		case "start_time":
			return form.StartTime != ""
		case "temperature":
			return anyFilled(form.Temperature)
		case "pressure":
			return anyFilled(form.Pressure)
		case "final_brix":
			return form.FinalBrix != ""
		case "yield":
			return form.Yield != ""
		case "cp":
			return form.CP != ""
		}
		return false
	}
}

// applyField writes one value into the aggregate and returns its string form
// (empty means the cell was cleared). All coercion failures surface as
// ValidationError before anything is persisted.
func (s *ProductionFormService) applyField(form *entity.ProductionForm, base string, idx int, value interface{}) (string, error) {
	if strings.HasPrefix(base, "extra.") {
		key := strings.TrimPrefix(base, "extra.")
		if key == "" {
			return "", validationf("empty extension field name")
		}
		if form.Extra == nil {
			form.Extra = entity.JSONB{}
		}
		form.Extra[key] = value
		return asString(value), nil
	}

	setCell := func(a entity.StringArray, rows int) (entity.StringArray, string, error) {
		if idx < 0 || idx >= rows {
			return nil, "", validationf("index %d out of range for %s (rows %d)", idx, base, rows)
		}
		v := asString(value)
		a[idx] = v
		return a, v, nil
	}

	switch base {
	case "folio":
		return "", validationf("folio is assigned on creation; use folio management to change it")
	case "ingredients":
		return "", validationf("ingredient quantities are derived from the recipe and cannot be edited directly")

	case "folio_interno":
		form.FolioInterno = asString(value)
		return form.FolioInterno, nil
	case "folio_deduccion":
		form.FolioDeduccion = asString(value)
		return form.FolioDeduccion, nil
	case "folio_producto_terminado":
		form.FolioProductoTerminado = asString(value)
		return form.FolioProductoTerminado, nil
	case "product_id":
		form.ProductID = asString(value)
		return form.ProductID, nil
	case "liters":
		f, err := asFloat(value)
		if err != nil || f <= 0 {
			return "", validationf("liters must be a positive number")
		}
		form.Liters = f
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case "date":
		t, err := asDate(value)
		if err != nil {
			return "", validationf("date must be YYYY-MM-DD or RFC3339")
		}
		form.Date = t
		return asString(value), nil
	case "expiry_date":
		t, err := asDate(value)
		if err != nil {
			return "", validationf("expiry_date must be YYYY-MM-DD or RFC3339")
		}
		form.ExpiryDate = t
		return asString(value), nil
	case "responsible":
		form.Responsible = asString(value)
		return form.Responsible, nil
	case "lot_number":
		form.LotNumber = asString(value)
		return form.LotNumber, nil
	case "marmita":
		form.Marmita = asString(value)
		return form.Marmita, nil

	case "ingredient_added_at":
		if idx < 0 || idx >= len(form.Ingredients) {
			return "", validationf("ingredient index %d out of range", idx)
		}
		t, err := asTime(value)
		if err != nil {
			return "", validationf("ingredient_added_at must be RFC3339 or \"now\"")
		}
		form.Ingredients[idx].AddedAt = t
		return asString(value), nil

	case "start_time":
		form.StartTime = asString(value)
		return form.StartTime, nil
	case "hour_tracking":
		a, v, err := setCell(form.HourTracking, entity.ProcessRows)
		form.HourTracking = a
		return v, err
	case "temperature":
		a, v, err := setCell(form.Temperature, entity.ProcessRows)
		form.Temperature = a
		return v, err
	case "pressure":
		a, v, err := setCell(form.Pressure, entity.ProcessRows)
		form.Pressure = a
		return v, err

	case "quality_times":
		a, v, err := setCell(form.QualityTimes, entity.QualityRows)
		form.QualityTimes = a
		return v, err
	case "brix":
		a, v, err := setCell(form.Brix, entity.QualityRows)
		form.Brix = a
		return v, err
	case "quality_temp":
		a, v, err := setCell(form.QualityTemp, entity.QualityRows)
		form.QualityTemp = a
		return v, err
	case "texture":
		a, v, err := setCell(form.Texture, entity.QualityRows)
		form.Texture = a
		return v, err
	case "color":
		a, v, err := setCell(form.Color, entity.QualityRows)
		form.Color = a
		return v, err
	case "viscosity":
		a, v, err := setCell(form.Viscosity, entity.QualityRows)
		form.Viscosity = a
		return v, err
	case "smell":
		a, v, err := setCell(form.Smell, entity.QualityRows)
		form.Smell = a
		return v, err
	case "taste":
		a, v, err := setCell(form.Taste, entity.QualityRows)
		form.Taste = a
		return v, err
	case "foreign_material":
		a, v, err := setCell(form.ForeignMaterial, entity.QualityRows)
		form.ForeignMaterial = a
		return v, err
	case "status_check":
		a, v, err := setCell(form.StatusCheck, entity.QualityRows)
		form.StatusCheck = a
		return v, err
	case "quality_notes":
		form.QualityNotes = asString(value)
		return form.QualityNotes, nil

	case "destination_type":
		a, v, err := setCell(form.DestinationType, entity.DestinationRows)
		form.DestinationType = a
		return v, err
	case "destination_kilos":
		a, v, err := setCell(form.DestinationKilos, entity.DestinationRows)
		form.DestinationKilos = a
		return v, err
	case "destination_product":
		a, v, err := setCell(form.DestinationProduct, entity.DestinationRows)
		form.DestinationProduct = a
		return v, err
	case "destination_estimation":
		a, v, err := setCell(form.DestinationEstimation, entity.DestinationRows)
		form.DestinationEstimation = a
		return v, err

	case "total_kilos":
		form.TotalKilos = asString(value)
		return form.TotalKilos, nil
	case "yield":
		form.Yield = asString(value)
		return form.Yield, nil
	case "start_state":
		v := asString(value)
		if v != "" && v != "good" && v != "bad" {
			return "", validationf("start_state must be good, bad, or empty")
		}
		form.StartState = v
		return v, nil
	case "end_state":
		v := asString(value)
		if v != "" && v != "good" && v != "bad" {
			return "", validationf("end_state must be good, bad, or empty")
		}
		form.EndState = v
		return v, nil

	case "liberation_folio":
		form.LiberationFolio = asString(value)
		return form.LiberationFolio, nil
	case "cp":
		form.CP = asString(value)
		return form.CP, nil
	case "consistometer":
		form.Consistometer = asString(value)
		return form.Consistometer, nil
	case "final_brix":
		form.FinalBrix = asString(value)
		return form.FinalBrix, nil
	case "signature_key":
		form.SignatureKey = asString(value)
		return form.SignatureKey, nil
	}
	return "", validationf("unknown field %q", base)
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("not a number: %v", value)
}

func asDate(value interface{}) (*time.Time, error) {
	s := asString(value)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("bad date %q", s)
}

func asTime(value interface{}) (*time.Time, error) {
	s := asString(value)
	if s == "" {
		return nil, nil
	}
	if s == "now" {
		now := time.Now()
		return &now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("bad time %q", s)
}
