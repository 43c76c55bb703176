package entity

import "time"

// Recipe is the catalog entry for one product. Read-mostly; ingredients keep
// the definition order via Position.
type Recipe struct {
	ProductID string    `json:"product_id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ingredients []RecipeIngredient `json:"ingredients,omitempty" gorm:"foreignKey:ProductID"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient holds the per-liter scaling factor for one ingredient.
// Derived quantity = LiterFactor * liters.
type RecipeIngredient struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	ProductID   string  `json:"product_id" gorm:"size:64;not null;index"`
	Name        string  `json:"name" gorm:"size:128;not null"`
	Unit        string  `json:"unit" gorm:"size:16;not null;default:kg"`
	LiterFactor float64 `json:"liter_factor" gorm:"not null"`
	Position    int     `json:"position" gorm:"not null;default:0"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
