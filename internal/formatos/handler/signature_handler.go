package handler

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/gin-gonic/gin"
)

// SignatureHandler uploads and serves liberation signature images.
type SignatureHandler struct {
	svc *service.SignatureService
}

func NewSignatureHandler(svc *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{svc: svc}
}

// Upload handles POST /api/v1/production-forms/:id/signature
func (h *SignatureHandler) Upload(c *gin.Context) {
	if h.svc == nil {
		InternalError(c, "object storage not configured")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "signature file required: "+err.Error())
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "read signature: "+err.Error())
		return
	}
	defer src.Close()

	key, err := h.svc.Upload(c.Request.Context(), id, src, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"), GetActor(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"signature_key": key})
}

// URL handles GET /api/v1/production-forms/:id/signature
func (h *SignatureHandler) URL(c *gin.Context) {
	if h.svc == nil {
		InternalError(c, "object storage not configured")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		BadRequest(c, "invalid form id")
		return
	}
	u, err := h.svc.URL(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"url": u})
}
