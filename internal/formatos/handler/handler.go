package handler

import (
	"errors"
	"strconv"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	ProductionForm *ProductionFormHandler
	Template       *TemplateHandler
	Catalog        *CatalogHandler
	Export         *ExportHandler
	Signature      *SignatureHandler
	User           *UserHandler
}

// NewHandlers creates the handler set over the services. The user handler is
// read-only and sits directly on the repository.
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		ProductionForm: NewProductionFormHandler(svc.ProductionForms),
		Template:       NewTemplateHandler(svc.Templates),
		Catalog:        NewCatalogHandler(svc.Catalog),
		Export:         NewExportHandler(svc.Export),
		Signature:      NewSignatureHandler(svc.Signatures),
		User:           NewUserHandler(repos.User),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated items.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination carries paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

// Error writes an error envelope. The HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string)    { Error(c, 40000, message) }
func Unauthorized(c *gin.Context, message string)  { Error(c, 40100, message) }
func Forbidden(c *gin.Context, message string)     { Error(c, 40300, message) }
func NotFound(c *gin.Context, message string)      { Error(c, 40400, message) }
func InternalError(c *gin.Context, message string) { Error(c, 50000, message) }

// ServiceError maps the service error taxonomy onto the envelope.
func ServiceError(c *gin.Context, err error) {
	var perm *service.PermissionError
	var val *service.ValidationError
	var nf *service.NotFoundError
	switch {
	case errors.As(err, &perm):
		Forbidden(c, err.Error())
	case errors.As(err, &val):
		BadRequest(c, err.Error())
	case errors.As(err, &nf):
		NotFound(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetActor builds the workflow actor from the authenticated request context.
func GetActor(c *gin.Context) *workflow.Actor {
	id, _ := c.Get("user_id")
	uid, ok := id.(string)
	if !ok || uid == "" {
		return nil
	}
	name, _ := c.Get("user_name")
	uname, _ := name.(string)
	role, _ := c.Get("role")
	urole, _ := role.(string)
	return &workflow.Actor{ID: uid, Name: uname, RawRole: urole}
}

// GetPagination reads page/page_size query parameters.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
