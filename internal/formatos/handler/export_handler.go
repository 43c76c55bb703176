package handler

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler streams the consolidated export as xlsx.
type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type exportRequest struct {
	SelectedFields []string       `json:"selected_fields" binding:"required"`
	FieldOrder     map[string]int `json:"field_order"`
}

// Export handles POST /api/v1/templates/:id/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.SelectedFields) == 0 {
		BadRequest(c, "selected_fields must not be empty")
		return
	}

	f, filename, err := h.svc.ExportEntries(c.Request.Context(), c.Param("id"), req.SelectedFields, req.FieldOrder)
	if err != nil {
		ServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
