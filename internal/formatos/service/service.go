package service

import (
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the formatos application services.
type Services struct {
	ProductionForms *ProductionFormService
	Templates       *FormTemplateService
	Catalog         *CatalogService
	Export          *ExportService
	Signatures      *SignatureService
}

// NewServices wires services on the repository set. source picks the active
// recipe derivation strategy.
func NewServices(db *gorm.DB, repos *repository.Repositories, source RecipeSource, logger *zap.Logger, deleteRoles []string) *Services {
	return &Services{
		ProductionForms: NewProductionFormService(db, repos.ProductionForm, source, logger, deleteRoles),
		Templates:       NewFormTemplateService(repos.Template),
		Catalog:         NewCatalogService(repos.Recipe),
		Export:          NewExportService(repos.Template),
	}
}
