package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB is a generic jsonb object column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("jsonb scan: unexpected type %T", value)
	}
	return json.Unmarshal(b, j)
}

// StringArray is a jsonb column holding a plain array of strings.
// Section row arrays (temperaturas, presiones, horas...) are stored this way,
// index-aligned across the arrays of the same section, with empty strings for
// cells not yet filled.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("string array scan: unexpected type %T", value)
	}
	return json.Unmarshal(b, a)
}

// Ingredient is one row of a form's derived ingredient list.
type Ingredient struct {
	Name     string     `json:"name"`
	Quantity float64    `json:"quantity"`
	Unit     string     `json:"unit"`
	AddedAt  *time.Time `json:"added_at,omitempty"`
}

// IngredientList is a jsonb column holding the ordered ingredient rows.
type IngredientList []Ingredient

func (l IngredientList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("ingredient list scan: unexpected type %T", value)
	}
	return json.Unmarshal(b, l)
}
