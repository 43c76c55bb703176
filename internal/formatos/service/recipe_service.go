package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RecipeSource resolves a (product, liters) pair into the scaled ingredient
// list. Exactly one strategy is active per deployment; the catalog strategy
// is the canonical one.
type RecipeSource interface {
	Resolve(ctx context.Context, productID string, liters float64) (name string, ingredients entity.IngredientList, err error)
}

// CatalogSource scales the static catalog recipe: quantity = literFactor ×
// liters, rows in recipe definition order. Resolving twice with the same
// inputs yields identical output.
type CatalogSource struct {
	recipes *repository.RecipeRepository
}

// NewCatalogSource creates the catalog strategy.
func NewCatalogSource(recipes *repository.RecipeRepository) *CatalogSource {
	return &CatalogSource{recipes: recipes}
}

func (s *CatalogSource) Resolve(ctx context.Context, productID string, liters float64) (string, entity.IngredientList, error) {
	recipe, err := s.recipes.FindByProduct(ctx, productID)
	if err != nil {
		return "", nil, &DerivationFailure{ProductID: productID, Err: err}
	}
	if recipe == nil {
		return "", nil, &DerivationFailure{ProductID: productID, Err: fmt.Errorf("no catalog recipe")}
	}
	list := make(entity.IngredientList, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		list = append(list, entity.Ingredient{
			Name:     ing.Name,
			Quantity: ing.LiterFactor * liters,
			Unit:     ing.Unit,
		})
	}
	return recipe.Name, list, nil
}

// RemoteSource asks the external recipe store, GET
// /products/{id}/recipe?liters=N, with a bounded timeout and a Redis cache in
// front. Cache errors are ignored; the store stays the source of truth.
type RemoteSource struct {
	baseURL  string
	client   *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRemoteSource creates the remote strategy. rdb may be nil to disable
// caching.
func NewRemoteSource(baseURL string, timeout time.Duration, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *RemoteSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteSource{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		rdb:      rdb,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

type remoteRecipe struct {
	RecipeName  string `json:"recipe_name"`
	Ingredients []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"ingredients"`
}

func (s *RemoteSource) Resolve(ctx context.Context, productID string, liters float64) (string, entity.IngredientList, error) {
	cacheKey := fmt.Sprintf("recipe:%s:%g", productID, liters)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var rr remoteRecipe
			if json.Unmarshal(cached, &rr) == nil {
				return rr.RecipeName, rr.toList(), nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s/products/%s/recipe?liters=%s",
		s.baseURL, url.PathEscape(productID), url.QueryEscape(fmt.Sprintf("%g", liters)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", nil, &DerivationFailure{ProductID: productID, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, &DerivationFailure{ProductID: productID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, &DerivationFailure{ProductID: productID, Err: fmt.Errorf("recipe store returned %d", resp.StatusCode)}
	}

	var rr remoteRecipe
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", nil, &DerivationFailure{ProductID: productID, Err: err}
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(rr); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("recipe cache write failed", zap.String("product", productID), zap.Error(err))
			}
		}
	}

	return rr.RecipeName, rr.toList(), nil
}

func (rr *remoteRecipe) toList() entity.IngredientList {
	list := make(entity.IngredientList, 0, len(rr.Ingredients))
	for _, ing := range rr.Ingredients {
		list = append(list, entity.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
	}
	return list
}
