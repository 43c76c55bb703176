package workflow

import "github.com/checosdovalina/gelag-sub002/internal/formatos/entity"

// Manual transition events (the role-gated buttons).
const (
	EventStartProcess       = "start_process"
	EventSendToReview       = "send_to_review"
	EventReturnToProduction = "return_to_production"
	EventApprove            = "approve"
)

// Transition is one row of the canonical status table. A row with Event set
// is reachable via ChangeStatus by any role in Roles; a row with AutoFields
// set also fires automatically when a role in AutoRoles writes a non-empty
// value into one of those fields. Both paths read the same table so they
// cannot diverge.
type Transition struct {
	From  string
	To    string
	Event string
	Roles []Role

	AutoRoles  []Role
	AutoFields []string
	// RequireAll makes the auto path fire only when every AutoField is
	// non-empty, instead of any one of them.
	RequireAll bool
}

// Transitions is the canonical table. The draft → pending_review row has no
// event: an operator recording process data on a draft implicitly starts it,
// but the button path still walks through in_progress.
var Transitions = []Transition{
	{
		From:       entity.StatusDraft,
		To:         entity.StatusInProgress,
		Event:      EventStartProcess,
		Roles:      []Role{RoleProductionManager},
		AutoRoles:  []Role{RoleProductionManager},
		AutoFields: []string{"responsible", "lot_number"},
		RequireAll: true,
	},
	{
		From:       entity.StatusDraft,
		To:         entity.StatusPendingReview,
		AutoRoles:  []Role{RoleOperator},
		AutoFields: []string{"start_time", "temperature", "pressure"},
	},
	{
		From:       entity.StatusInProgress,
		To:         entity.StatusPendingReview,
		Event:      EventSendToReview,
		Roles:      []Role{RoleOperator, RoleProductionManager},
		AutoRoles:  []Role{RoleOperator},
		AutoFields: []string{"start_time", "temperature", "pressure"},
	},
	{
		From:  entity.StatusPendingReview,
		To:    entity.StatusInProgress,
		Event: EventReturnToProduction,
		Roles: []Role{RoleQualityManager},
	},
	{
		From:       entity.StatusPendingReview,
		To:         entity.StatusCompleted,
		Event:      EventApprove,
		Roles:      []Role{RoleQualityManager},
		AutoRoles:  []Role{RoleQualityManager},
		AutoFields: []string{"final_brix", "yield", "cp"},
	},
}

// ManualTransition validates a ChangeStatus call against the table. It
// returns the matched row, or ok=false when no row allows (role, from, to).
func ManualTransition(from, to string, role Role) (Transition, bool) {
	for _, t := range Transitions {
		if t.Event == "" || t.From != from || t.To != to {
			continue
		}
		for _, r := range t.Roles {
			if r == role {
				return t, true
			}
		}
	}
	return Transition{}, false
}

// FieldFilled reports whether a field (by base name) currently holds a
// non-empty value; callers pass a closure over the aggregate.
type FieldFilled func(base string) bool

// EvaluateAutoAdvance decides whether writing `field` (base name, non-empty
// value) as `role` on a form in `from` advances the status. filled is
// consulted for RequireAll rows, checking the full trigger set. No row fires
// out of completed.
func EvaluateAutoAdvance(from, field string, role Role, filled FieldFilled) (string, bool) {
	base, _, ok := SplitIndex(field)
	if !ok {
		return "", false
	}
	for _, t := range Transitions {
		if t.From != from || len(t.AutoFields) == 0 {
			continue
		}
		roleOK := false
		for _, r := range t.AutoRoles {
			if r == role {
				roleOK = true
				break
			}
		}
		if !roleOK {
			continue
		}
		triggered := false
		for _, f := range t.AutoFields {
			if f == base {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}
		if t.RequireAll {
			all := true
			for _, f := range t.AutoFields {
				if !filled(f) {
					all = false
					break
				}
			}
			if !all {
				continue
			}
		}
		return t.To, true
	}
	return "", false
}
