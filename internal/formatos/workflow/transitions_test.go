package workflow

import (
	"testing"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
)

func TestManualTransitionTable(t *testing.T) {
	cases := []struct {
		from string
		to   string
		role Role
		ok   bool
	}{
		{entity.StatusDraft, entity.StatusInProgress, RoleProductionManager, true},
		{entity.StatusInProgress, entity.StatusPendingReview, RoleOperator, true},
		{entity.StatusInProgress, entity.StatusPendingReview, RoleProductionManager, true},
		{entity.StatusPendingReview, entity.StatusInProgress, RoleQualityManager, true},
		{entity.StatusPendingReview, entity.StatusCompleted, RoleQualityManager, true},

		// not in the table
		{entity.StatusDraft, entity.StatusInProgress, RoleOperator, false},
		{entity.StatusDraft, entity.StatusInProgress, RoleQualityManager, false},
		{entity.StatusDraft, entity.StatusPendingReview, RoleOperator, false}, // button path goes through in_progress
		{entity.StatusInProgress, entity.StatusCompleted, RoleQualityManager, false},
		{entity.StatusPendingReview, entity.StatusCompleted, RoleProductionManager, false},
		{entity.StatusPendingReview, entity.StatusInProgress, RoleOperator, false},
		{entity.StatusCompleted, entity.StatusPendingReview, RoleQualityManager, false},
		{entity.StatusCompleted, entity.StatusDraft, RoleProductionManager, false},
	}
	for _, c := range cases {
		_, ok := ManualTransition(c.from, c.to, c.role)
		if ok != c.ok {
			t.Errorf("ManualTransition(%s→%s, %s) = %v, want %v", c.from, c.to, c.role, ok, c.ok)
		}
	}
}

func filledSet(fields ...string) FieldFilled {
	set := map[string]bool{}
	for _, f := range fields {
		set[f] = true
	}
	return func(base string) bool { return set[base] }
}

func TestAutoAdvanceDraftToInProgress(t *testing.T) {
	// responsible alone is not enough
	if _, ok := EvaluateAutoAdvance(entity.StatusDraft, "responsible", RoleProductionManager, filledSet("responsible")); ok {
		t.Error("responsible without lot_number must not advance")
	}
	// both set → in_progress
	to, ok := EvaluateAutoAdvance(entity.StatusDraft, "lot_number", RoleProductionManager, filledSet("responsible", "lot_number"))
	if !ok || to != entity.StatusInProgress {
		t.Errorf("got (%s, %v), want (in_progress, true)", to, ok)
	}
	// operator writing the same fields does not trigger the manager rule
	if _, ok := EvaluateAutoAdvance(entity.StatusDraft, "lot_number", RoleOperator, filledSet("responsible", "lot_number")); ok {
		t.Error("operator must not trigger the general-info auto-advance")
	}
}

func TestAutoAdvanceOperatorFields(t *testing.T) {
	filled := filledSet("start_time")
	// from in_progress
	to, ok := EvaluateAutoAdvance(entity.StatusInProgress, "start_time", RoleOperator, filled)
	if !ok || to != entity.StatusPendingReview {
		t.Errorf("got (%s, %v), want (pending_review, true)", to, ok)
	}
	// indexed array cell counts the same as the base field
	to, ok = EvaluateAutoAdvance(entity.StatusInProgress, "temperature[4]", RoleOperator, filledSet("temperature"))
	if !ok || to != entity.StatusPendingReview {
		t.Errorf("temperature[4]: got (%s, %v), want (pending_review, true)", to, ok)
	}
	// the draft shortcut exists for the automatic path
	to, ok = EvaluateAutoAdvance(entity.StatusDraft, "pressure[0]", RoleOperator, filledSet("pressure"))
	if !ok || to != entity.StatusPendingReview {
		t.Errorf("draft shortcut: got (%s, %v), want (pending_review, true)", to, ok)
	}
}

func TestAutoAdvanceQualityFields(t *testing.T) {
	to, ok := EvaluateAutoAdvance(entity.StatusPendingReview, "final_brix", RoleQualityManager, filledSet("final_brix"))
	if !ok || to != entity.StatusCompleted {
		t.Errorf("got (%s, %v), want (completed, true)", to, ok)
	}
	// wrong state: quality fields on an in_progress form do not complete it
	if _, ok := EvaluateAutoAdvance(entity.StatusInProgress, "final_brix", RoleQualityManager, filledSet("final_brix")); ok {
		t.Error("final_brix must not advance from in_progress")
	}
	// wrong role
	if _, ok := EvaluateAutoAdvance(entity.StatusPendingReview, "yield", RoleOperator, filledSet("yield")); ok {
		t.Error("operator must not complete a form")
	}
}

func TestNoAutoAdvanceOutOfCompleted(t *testing.T) {
	filled := filledSet("responsible", "lot_number", "start_time", "final_brix", "yield", "cp")
	for _, f := range []string{"responsible", "start_time", "final_brix", "temperature[0]"} {
		for _, r := range []Role{RoleProductionManager, RoleOperator, RoleQualityManager} {
			if _, ok := EvaluateAutoAdvance(entity.StatusCompleted, f, r, filled); ok {
				t.Errorf("no transition may fire out of completed (field=%s role=%s)", f, r)
			}
		}
	}
}

func TestAutoAdvanceUnrelatedField(t *testing.T) {
	if _, ok := EvaluateAutoAdvance(entity.StatusDraft, "marmita", RoleProductionManager, filledSet("marmita")); ok {
		t.Error("marmita is not a trigger field")
	}
}
