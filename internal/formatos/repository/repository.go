package repository

import "gorm.io/gorm"

// Repositories bundles every repository behind one constructor so main wires
// a single value.
type Repositories struct {
	ProductionForm *ProductionFormRepository
	Recipe         *RecipeRepository
	Template       *FormTemplateRepository
	User           *UserRepository
}

// NewRepositories creates all repositories over one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		ProductionForm: NewProductionFormRepository(db),
		Recipe:         NewRecipeRepository(db),
		Template:       NewFormTemplateRepository(db),
		User:           NewUserRepository(db),
	}
}
