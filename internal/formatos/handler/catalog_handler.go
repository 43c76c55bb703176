package handler

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes the recipe catalog.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// List handles GET /api/v1/recipes
func (h *CatalogHandler) List(c *gin.Context) {
	recipes, err := h.svc.List(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": recipes})
}

// Get handles GET /api/v1/recipes/:productId
func (h *CatalogHandler) Get(c *gin.Context) {
	recipe, err := h.svc.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, recipe)
}

// Upsert handles PUT /api/v1/recipes/:productId
func (h *CatalogHandler) Upsert(c *gin.Context) {
	var recipe entity.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	recipe.ProductID = c.Param("productId")
	if err := h.svc.Upsert(c.Request.Context(), &recipe, GetActor(c)); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, recipe)
}
