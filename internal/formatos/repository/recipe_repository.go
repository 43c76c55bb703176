package repository

import (
	"context"
	"errors"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository reads the recipe catalog.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates the repository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// FindByProduct loads a recipe with its ingredients in definition order.
// Returns (nil, nil) when the product has no catalog entry.
func (r *RecipeRepository) FindByProduct(ctx context.Context, productID string) (*entity.Recipe, error) {
	var recipe entity.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("product_id = ?", productID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns every catalog recipe without ingredients.
func (r *RecipeRepository) List(ctx context.Context) ([]entity.Recipe, error) {
	var recipes []entity.Recipe
	err := r.db.WithContext(ctx).Order("product_id ASC").Find(&recipes).Error
	return recipes, err
}

// Upsert replaces a recipe and its ingredient rows.
func (r *RecipeRepository) Upsert(ctx context.Context, recipe *entity.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&entity.Recipe{
			ProductID: recipe.ProductID,
			Name:      recipe.Name,
			CreatedAt: recipe.CreatedAt,
			UpdatedAt: recipe.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", recipe.ProductID).Delete(&entity.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range recipe.Ingredients {
			if recipe.Ingredients[i].ID == "" {
				recipe.Ingredients[i].ID = uuid.New().String()
			}
			recipe.Ingredients[i].ProductID = recipe.ProductID
			recipe.Ingredients[i].Position = i
		}
		if len(recipe.Ingredients) == 0 {
			return nil
		}
		return tx.Create(&recipe.Ingredients).Error
	})
}
