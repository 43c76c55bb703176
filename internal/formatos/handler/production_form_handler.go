package handler

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/gin-gonic/gin"
)

// ProductionFormHandler exposes the production form lifecycle.
type ProductionFormHandler struct {
	svc *service.ProductionFormService
}

func NewProductionFormHandler(svc *service.ProductionFormService) *ProductionFormHandler {
	return &ProductionFormHandler{svc: svc}
}

// Create handles POST /api/v1/production-forms
func (h *ProductionFormHandler) Create(c *gin.Context) {
	var in service.CreateFormInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	form, err := h.svc.Create(c.Request.Context(), in, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, form)
}

// Get handles GET /api/v1/production-forms/:id
func (h *ProductionFormHandler) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	form, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, form)
}

// List handles GET /api/v1/production-forms?template_id=&status=&page=&page_size=
func (h *ProductionFormHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	forms, total, err := h.svc.List(c.Request.Context(),
		c.Query("template_id"), c.Query("status"), pageSize, (page-1)*pageSize)
	if err != nil {
		ServiceError(c, err)
		return
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: forms,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

type updateFieldRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// UpdateField handles PATCH /api/v1/production-forms/:id/field
func (h *ProductionFormHandler) UpdateField(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	form, err := h.svc.UpdateField(c.Request.Context(), id, req.Field, req.Value, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, form)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus handles POST /api/v1/production-forms/:id/status
func (h *ProductionFormHandler) ChangeStatus(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	form, err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, form)
}

// UpdateFolios handles PUT /api/v1/production-forms/:id/folios
func (h *ProductionFormHandler) UpdateFolios(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	var in service.FolioInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	form, err := h.svc.UpdateFolios(c.Request.Context(), id, in, GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, form)
}

// Delete handles DELETE /api/v1/production-forms/:id
func (h *ProductionFormHandler) Delete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, GetActor(c)); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// History handles GET /api/v1/production-forms/:id/history
func (h *ProductionFormHandler) History(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	logs, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": logs})
}
