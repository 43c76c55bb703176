package handler

import (
	"encoding/json"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/gin-gonic/gin"
)

// TemplateHandler exposes form templates and their generic entries.
type TemplateHandler struct {
	svc *service.FormTemplateService
}

func NewTemplateHandler(svc *service.FormTemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

type createTemplateRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Fields      json.RawMessage `json:"fields" binding:"required"`
}

// Create handles POST /api/v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	tpl, err := h.svc.CreateTemplate(c.Request.Context(), req.Title, req.Description, req.Fields, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, tpl)
}

// Get handles GET /api/v1/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, tpl)
}

// List handles GET /api/v1/templates
func (h *TemplateHandler) List(c *gin.Context) {
	tpls, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": tpls})
}

type createEntryRequest struct {
	Folio string       `json:"folio"`
	Data  entity.JSONB `json:"data"`
}

// CreateEntry handles POST /api/v1/templates/:id/entries
func (h *TemplateHandler) CreateEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	e, err := h.svc.CreateEntry(c.Request.Context(), c.Param("id"), req.Folio, req.Data, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, e)
}

// ListEntries handles GET /api/v1/templates/:id/entries?status=
func (h *TemplateHandler) ListEntries(c *gin.Context) {
	entries, err := h.svc.ListEntries(c.Request.Context(), c.Param("id"), c.Query("status"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": entries})
}

// SignEntry handles POST /api/v1/entries/:id/sign
func (h *TemplateHandler) SignEntry(c *gin.Context) {
	e, err := h.svc.SignEntry(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, e)
}

type reviewEntryRequest struct {
	Approve bool `json:"approve"`
}

// ReviewEntry handles POST /api/v1/entries/:id/review
func (h *TemplateHandler) ReviewEntry(c *gin.Context) {
	var req reviewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	e, err := h.svc.ReviewEntry(c.Request.Context(), c.Param("id"), req.Approve, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, e)
}
