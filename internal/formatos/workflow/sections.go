package workflow

import "strings"

// Section is a logical group of production-form fields sharing one edit rule.
type Section string

const (
	SectionGeneralInfo         Section = "general-info"
	SectionRawMaterials        Section = "raw-materials"
	SectionProcessTracking     Section = "process-tracking"
	SectionQualityVerification Section = "quality-verification"
	SectionProductDestination  Section = "product-destination"
	SectionFinalStrainer       Section = "final-strainer"
	SectionLiberationData      Section = "liberation-data"
)

// sectionRoles is the fixed permission table: which workflow roles may edit
// each section. Superadmin bypasses the table entirely.
var sectionRoles = map[Section][]Role{
	SectionGeneralInfo:         {RoleProductionManager},
	SectionRawMaterials:        {RoleProductionManager},
	SectionProcessTracking:     {RoleOperator, RoleProductionManager},
	SectionQualityVerification: {RoleOperator, RoleProductionManager},
	SectionProductDestination:  {RoleOperator, RoleProductionManager},
	SectionFinalStrainer:       {RoleProductionManager, RoleQualityManager},
	SectionLiberationData:      {RoleQualityManager},
}

// fieldSections resolves every editable production-form field to its owning
// section. Array fields are listed by base name; an index suffix like
// "temperature[3]" resolves the same way.
var fieldSections = map[string]Section{
	// folio resolves here for permission checks; actually changing it is a
	// separate folio-management operation, never a plain field update.
	"folio":                    SectionGeneralInfo,
	"folio_interno":            SectionGeneralInfo,
	"folio_deduccion":          SectionGeneralInfo,
	"folio_producto_terminado": SectionGeneralInfo,
	"product_id":               SectionGeneralInfo,
	"liters":                   SectionGeneralInfo,
	"date":                     SectionGeneralInfo,
	"responsible":              SectionGeneralInfo,
	"lot_number":               SectionGeneralInfo,
	"marmita":                  SectionGeneralInfo,
	"expiry_date":              SectionGeneralInfo,

	// ingredients resolves for permission checks only; quantities are derived
	// from the recipe and rejected on direct writes.
	"ingredients":         SectionRawMaterials,
	"ingredient_added_at": SectionRawMaterials,

	"start_time":    SectionProcessTracking,
	"hour_tracking": SectionProcessTracking,
	"temperature":   SectionProcessTracking,
	"pressure":      SectionProcessTracking,

	"quality_times":    SectionQualityVerification,
	"brix":             SectionQualityVerification,
	"quality_temp":     SectionQualityVerification,
	"texture":          SectionQualityVerification,
	"color":            SectionQualityVerification,
	"viscosity":        SectionQualityVerification,
	"smell":            SectionQualityVerification,
	"taste":            SectionQualityVerification,
	"foreign_material": SectionQualityVerification,
	"status_check":     SectionQualityVerification,
	"quality_notes":    SectionQualityVerification,

	"destination_type":       SectionProductDestination,
	"destination_kilos":      SectionProductDestination,
	"destination_product":    SectionProductDestination,
	"destination_estimation": SectionProductDestination,

	"total_kilos": SectionFinalStrainer,
	"yield":       SectionFinalStrainer,
	"start_state": SectionFinalStrainer,
	"end_state":   SectionFinalStrainer,

	"liberation_folio": SectionLiberationData,
	"cp":               SectionLiberationData,
	"consistometer":    SectionLiberationData,
	"final_brix":       SectionLiberationData,
	"signature_key":    SectionLiberationData,
}

// SectionOfField resolves a field name (optionally indexed, "brix[2]") to its
// section. The second return is false for unknown fields.
func SectionOfField(field string) (Section, bool) {
	base, _, _ := SplitIndex(field)
	s, ok := fieldSections[base]
	return s, ok
}

// SplitIndex splits "name[i]" into base name and row index. Plain field names
// return idx -1.
func SplitIndex(field string) (base string, idx int, ok bool) {
	open := strings.IndexByte(field, '[')
	if open < 0 {
		return field, -1, true
	}
	if !strings.HasSuffix(field, "]") {
		return field, -1, false
	}
	base = field[:open]
	digits := field[open+1 : len(field)-1]
	if digits == "" {
		return base, -1, false
	}
	idx = 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return base, -1, false
		}
		idx = idx*10 + int(r-'0')
	}
	return base, idx, true
}

// CanEditSection decides whether the actor may edit the section. Read-only
// contexts (historical/signed views) deny every role, superadmin included.
func CanEditSection(actor *Actor, section Section, readOnly bool) bool {
	if readOnly {
		return false
	}
	if actor == nil || actor.ID == "" {
		return false
	}
	if actor.Superadmin() {
		return true
	}
	allowed, ok := sectionRoles[section]
	if !ok {
		return false
	}
	role := actor.Role()
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Sections returns every known section, for iteration in validation and tests.
func Sections() []Section {
	return []Section{
		SectionGeneralInfo,
		SectionRawMaterials,
		SectionProcessTracking,
		SectionQualityVerification,
		SectionProductDestination,
		SectionFinalStrainer,
		SectionLiberationData,
	}
}

// AllowedRoles returns the edit roles for a section.
func AllowedRoles(section Section) []Role {
	return sectionRoles[section]
}
