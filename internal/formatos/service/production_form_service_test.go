package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/testutil"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	manager  = &workflow.Actor{ID: "u-pm", Name: "Gerente", RawRole: "gerente_produccion"}
	operator = &workflow.Actor{ID: "u-op", Name: "Operador", RawRole: "produccion"}
	quality  = &workflow.Actor{ID: "u-qm", Name: "Calidad", RawRole: "calidad"}
	super    = &workflow.Actor{ID: "u-sa", Name: "Admin", RawRole: "superadmin"}
)

func setupFormService(t *testing.T) (*gorm.DB, *ProductionFormService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewProductionFormService(db, repos.ProductionForm, NewCatalogSource(repos.Recipe), zap.NewNop(), nil)
	return db, svc
}

func seedConito(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedTestRecipe(t, db, "conito", "Conito", []entity.RecipeIngredient{
		{Name: "Leche de Vaca", LiterFactor: 0.5},
		{Name: "Azúcar", LiterFactor: 0.2},
	})
}

func TestCreateDerivesIngredients(t *testing.T) {
	db, svc := setupFormService(t)
	seedConito(t, db)

	form, err := svc.Create(context.Background(), CreateFormInput{
		ProductID: "conito",
		Liters:    500,
	}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if form.Status != entity.StatusDraft {
		t.Errorf("Expected draft, got %s", form.Status)
	}
	if form.Folio != "PR-00001" {
		t.Errorf("Expected folio PR-00001, got %s", form.Folio)
	}
	if form.RecipeName != "Conito" {
		t.Errorf("Expected recipe name Conito, got %q", form.RecipeName)
	}
	if len(form.Ingredients) != 2 {
		t.Fatalf("Expected 2 ingredients, got %d", len(form.Ingredients))
	}
	if form.Ingredients[0].Name != "Leche de Vaca" || form.Ingredients[0].Quantity != 250.0 {
		t.Errorf("Expected Leche de Vaca 250.0, got %s %v", form.Ingredients[0].Name, form.Ingredients[0].Quantity)
	}
}

func TestCreateOperatorDenied(t *testing.T) {
	_, svc := setupFormService(t)

	_, err := svc.Create(context.Background(), CreateFormInput{Liters: 100}, operator)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected PermissionError, got %v", err)
	}
}

func TestCreateFolioSequence(t *testing.T) {
	_, svc := setupFormService(t)

	for i := 1; i <= 3; i++ {
		form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		want := fmt.Sprintf("PR-%05d", i)
		if form.Folio != want {
			t.Errorf("Expected folio %s, got %s", want, form.Folio)
		}
	}
}

func TestCreateConcurrentFolioUniqueness(t *testing.T) {
	_, svc := setupFormService(t)

	const n = 8
	var wg sync.WaitGroup
	folios := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
			if err != nil {
				errs <- err
				return
			}
			folios <- form.Folio
		}()
	}
	wg.Wait()
	close(folios)
	close(errs)

	for err := range errs {
		t.Fatalf("Concurrent create failed: %v", err)
	}
	seen := map[string]bool{}
	for f := range folios {
		if seen[f] {
			t.Fatalf("Duplicate folio issued: %s", f)
		}
		seen[f] = true
	}
	if len(seen) != n {
		t.Errorf("Expected %d distinct folios, got %d", n, len(seen))
	}
}

func TestCreateDuplicateFolioRejected(t *testing.T) {
	_, svc := setupFormService(t)

	if _, err := svc.Create(context.Background(), CreateFormInput{Folio: "PR-X1"}, manager); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateFormInput{Folio: "PR-X1"}, manager)
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestOperatorCannotEditGeneralInfo(t *testing.T) {
	db, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.UpdateField(context.Background(), form.ID, "folio", "PR-HACK", operator)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected PermissionError, got %v", err)
	}

	var stored entity.ProductionForm
	db.First(&stored, form.ID)
	if stored.Folio != form.Folio {
		t.Errorf("Folio changed despite denial: %s", stored.Folio)
	}
}

func TestFolioImmutableViaFieldUpdate(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The manager passes the section gate but hits the immutability rule.
	_, err = svc.UpdateField(context.Background(), form.ID, "folio", "PR-NEW", manager)
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestAutoAdvanceDraftToInProgress(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "responsible", "Juan", manager)
	if err != nil {
		t.Fatalf("UpdateField responsible: %v", err)
	}
	if form.Status != entity.StatusDraft {
		t.Errorf("Expected draft after first trigger field, got %s", form.Status)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "lot_number", "L-001", manager)
	if err != nil {
		t.Fatalf("UpdateField lot_number: %v", err)
	}
	if form.Status != entity.StatusInProgress {
		t.Errorf("Expected in_progress after both trigger fields, got %s", form.Status)
	}

	history, err := svc.History(context.Background(), form.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	found := false
	for _, h := range history {
		if h.Action == "auto_advance" && h.ToStatus == entity.StatusInProgress {
			found = true
		}
	}
	if !found {
		t.Error("Expected an auto_advance log entry to in_progress")
	}
}

func TestOperatorDraftShortcut(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "temperature[0]", "72.5", operator)
	if err != nil {
		t.Fatalf("UpdateField temperature[0]: %v", err)
	}
	if form.Status != entity.StatusPendingReview {
		t.Errorf("Expected pending_review after operator process data on draft, got %s", form.Status)
	}
	if form.Temperature[0] != "72.5" {
		t.Errorf("Expected cell 0 = 72.5, got %q", form.Temperature[0])
	}
}

func TestManualTransitionDenied(t *testing.T) {
	db, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	db.Model(&entity.ProductionForm{}).Where("id = ?", form.ID).Update("status", entity.StatusInProgress)

	_, err = svc.ChangeStatus(context.Background(), form.ID, entity.StatusCompleted, quality)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected PermissionError, got %v", err)
	}

	var stored entity.ProductionForm
	db.First(&stored, form.ID)
	if stored.Status != entity.StatusInProgress {
		t.Errorf("Status changed despite denial: %s", stored.Status)
	}
}

func TestManualTransitionApprove(t *testing.T) {
	db, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	db.Model(&entity.ProductionForm{}).Where("id = ?", form.ID).Update("status", entity.StatusPendingReview)

	form, err = svc.ChangeStatus(context.Background(), form.ID, entity.StatusCompleted, quality)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if form.Status != entity.StatusCompleted {
		t.Errorf("Expected completed, got %s", form.Status)
	}

	history, _ := svc.History(context.Background(), form.ID)
	found := false
	for _, h := range history {
		if h.Action == workflow.EventApprove {
			found = true
		}
	}
	if !found {
		t.Error("Expected an approve log entry")
	}
}

func TestSuperadminSectionBypass(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "consistometer", "8.2", super)
	if err != nil {
		t.Fatalf("Superadmin liberation-data edit failed: %v", err)
	}
	if form.Consistometer != "8.2" {
		t.Errorf("Expected consistometer 8.2, got %q", form.Consistometer)
	}
}

func TestQualityAutoApprove(t *testing.T) {
	db, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	db.Model(&entity.ProductionForm{}).Where("id = ?", form.ID).Update("status", entity.StatusPendingReview)

	form, err = svc.UpdateField(context.Background(), form.ID, "final_brix", "68", quality)
	if err != nil {
		t.Fatalf("UpdateField final_brix: %v", err)
	}
	if form.Status != entity.StatusCompleted {
		t.Errorf("Expected completed after quality records final_brix, got %s", form.Status)
	}
	if form.FinalBrix == "" {
		t.Error("Completed form must carry a non-empty final_brix")
	}
}

func TestDerivationFailSoft(t *testing.T) {
	_, svc := setupFormService(t)

	form, err := svc.Create(context.Background(), CreateFormInput{
		ProductID: "no-such-product",
		Liters:    100,
	}, manager)
	if err != nil {
		t.Fatalf("Create must not fail on missing recipe: %v", err)
	}
	if len(form.Ingredients) != 0 {
		t.Errorf("Expected no ingredients, got %d", len(form.Ingredients))
	}
}

func TestFailedRederiveKeepsPriorIngredients(t *testing.T) {
	db, svc := setupFormService(t)
	seedConito(t, db)

	form, err := svc.Create(context.Background(), CreateFormInput{ProductID: "conito", Liters: 500}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(form.Ingredients) != 2 {
		t.Fatalf("Expected 2 derived ingredients, got %d", len(form.Ingredients))
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "product_id", "no-such-product", manager)
	if err != nil {
		t.Fatalf("UpdateField must not fail on missing recipe: %v", err)
	}
	if form.ProductID != "no-such-product" {
		t.Errorf("Expected product_id updated, got %q", form.ProductID)
	}
	if form.RecipeName != "Conito" {
		t.Errorf("Expected prior recipe name kept, got %q", form.RecipeName)
	}
	if len(form.Ingredients) != 2 || form.Ingredients[0].Quantity != 250.0 {
		t.Errorf("Expected prior ingredient list untouched, got %+v", form.Ingredients)
	}
}

func TestRederiveOnLitersChange(t *testing.T) {
	db, svc := setupFormService(t)
	seedConito(t, db)

	form, err := svc.Create(context.Background(), CreateFormInput{ProductID: "conito", Liters: 100}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if form.Ingredients[0].Quantity != 50.0 {
		t.Fatalf("Expected 50.0 at 100 L, got %v", form.Ingredients[0].Quantity)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "liters", 200, manager)
	if err != nil {
		t.Fatalf("UpdateField liters: %v", err)
	}
	if form.Ingredients[0].Quantity != 100.0 {
		t.Errorf("Expected 100.0 after liters change, got %v", form.Ingredients[0].Quantity)
	}
}

func TestLitersValidation(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, bad := range []interface{}{"abc", -5, 0} {
		_, err := svc.UpdateField(context.Background(), form.ID, "liters", bad, manager)
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Errorf("liters=%v: expected ValidationError, got %v", bad, err)
		}
	}
}

func TestCreateRejectsZeroLitersWithProduct(t *testing.T) {
	db, svc := setupFormService(t)
	seedConito(t, db)

	_, err := svc.Create(context.Background(), CreateFormInput{ProductID: "conito", Liters: 0}, manager)
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("Expected ValidationError for zero liters with product, got %v", err)
	}
}

func TestArrayIndexBounds(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.UpdateField(context.Background(), form.ID, "temperature[9]", "70", operator)
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("Expected ValidationError for out-of-range index, got %v", err)
	}
}

func TestUpdateFieldUnknown(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.UpdateField(context.Background(), form.ID, "no_such_field", "x", manager)
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestUpdateFieldNotFound(t *testing.T) {
	_, svc := setupFormService(t)
	_, err := svc.UpdateField(context.Background(), 9999, "responsible", "Juan", manager)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestUpdateFolios(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	interno := "FI-100"
	_, err = svc.UpdateFolios(context.Background(), form.ID, FolioInput{FolioInterno: &interno}, operator)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected PermissionError for operator, got %v", err)
	}

	updated, err := svc.UpdateFolios(context.Background(), form.ID, FolioInput{FolioInterno: &interno}, quality)
	if err != nil {
		t.Fatalf("UpdateFolios by quality manager: %v", err)
	}
	if updated.FolioInterno != "FI-100" {
		t.Errorf("Expected folio_interno FI-100, got %s", updated.FolioInterno)
	}
}

func TestUpdateFoliosConcurrentRename(t *testing.T) {
	_, svc := setupFormService(t)

	const n = 4
	ids := make([]uint, n)
	for i := range ids {
		form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids[i] = form.ID
	}

	target := "PR-RENAME"
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.UpdateFolios(context.Background(), id, FolioInput{Folio: &target}, quality)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var val *ValidationError
		if !errors.As(err, &val) {
			t.Errorf("Losing rename must be a ValidationError, got %v", err)
		}
	}
	if won != 1 {
		t.Errorf("Expected exactly one rename to win, got %d", won)
	}
}

func TestDeleteAllowList(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.Delete(context.Background(), form.ID, manager)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("Expected PermissionError for manager delete, got %v", err)
	}

	if err := svc.Delete(context.Background(), form.ID, super); err != nil {
		t.Fatalf("Superadmin delete: %v", err)
	}

	_, err = svc.Get(context.Background(), form.ID)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError after delete, got %v", err)
	}
}

func TestExtraFieldUpdate(t *testing.T) {
	_, svc := setupFormService(t)
	form, err := svc.Create(context.Background(), CreateFormInput{}, manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	form, err = svc.UpdateField(context.Background(), form.ID, "extra.turno", "matutino", operator)
	if err != nil {
		t.Fatalf("UpdateField extra.turno: %v", err)
	}
	if form.Extra["turno"] != "matutino" {
		t.Errorf("Expected extra.turno=matutino, got %v", form.Extra["turno"])
	}
}
