package service

import (
	"context"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
)

// CatalogService manages the static recipe catalog. Production managers and
// superadmins maintain it; everyone may read.
type CatalogService struct {
	recipes *repository.RecipeRepository
}

func NewCatalogService(recipes *repository.RecipeRepository) *CatalogService {
	return &CatalogService{recipes: recipes}
}

// Get loads one recipe with its ingredient rows in definition order.
func (s *CatalogService) Get(ctx context.Context, productID string) (*entity.Recipe, error) {
	recipe, err := s.recipes.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, notFoundf("recipe for product %s not found", productID)
	}
	return recipe, nil
}

// List returns the full catalog.
func (s *CatalogService) List(ctx context.Context) ([]entity.Recipe, error) {
	return s.recipes.List(ctx)
}

// Upsert replaces a recipe definition.
func (s *CatalogService) Upsert(ctx context.Context, recipe *entity.Recipe, actor *workflow.Actor) error {
	if actor == nil || actor.ID == "" {
		return permissionf("authentication required")
	}
	if !actor.Superadmin() && actor.Role() != workflow.RoleProductionManager {
		return permissionf("role %q may not edit the recipe catalog", actor.RawRole)
	}
	if recipe.ProductID == "" || recipe.Name == "" {
		return validationf("product_id and name are required")
	}
	for _, ing := range recipe.Ingredients {
		if ing.Name == "" || ing.LiterFactor <= 0 {
			return validationf("every ingredient needs a name and a positive liter factor")
		}
	}
	return s.recipes.Upsert(ctx, recipe)
}
