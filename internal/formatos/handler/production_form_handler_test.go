package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/service"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/testutil"
	"go.uber.org/zap"
)

func setupFormRoutes(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, service.NewCatalogSource(repos.Recipe), zap.NewNop(), nil)
	h := NewHandlers(services, repos)

	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/production-forms", h.ProductionForm.Create)
	api.GET("/production-forms/:id", h.ProductionForm.Get)
	api.PATCH("/production-forms/:id/field", h.ProductionForm.UpdateField)
	api.POST("/production-forms/:id/status", h.ProductionForm.ChangeStatus)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestCreateAndGetForm(t *testing.T) {
	env := setupFormRoutes(t)
	token := testutil.GenerateTestToken("u-pm", "Gerente", "gerente_produccion")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/production-forms",
		map[string]interface{}{"liters": 200, "marmita": "M-2"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["folio"] != "PR-00001" {
		t.Errorf("Expected folio PR-00001, got %v", data["folio"])
	}
	id := data["id"].(float64)

	w2 := testutil.DoRequest(env.Router, "GET",
		fmt.Sprintf("/api/v1/production-forms/%d", int(id)), nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestOperatorFolioEditForbidden(t *testing.T) {
	env := setupFormRoutes(t)
	managerToken := testutil.GenerateTestToken("u-pm", "Gerente", "gerente_produccion")
	operatorToken := testutil.GenerateTestToken("u-op", "Operador", "produccion")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/production-forms",
		map[string]interface{}{}, managerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := int(data["id"].(float64))

	w2 := testutil.DoRequest(env.Router, "PATCH",
		fmt.Sprintf("/api/v1/production-forms/%d/field", id),
		map[string]interface{}{"field": "folio", "value": "PR-HACK"}, operatorToken)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	env := setupFormRoutes(t)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/production-forms",
		map[string]interface{}{}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangeStatusOverHTTP(t *testing.T) {
	env := setupFormRoutes(t)
	managerToken := testutil.GenerateTestToken("u-pm", "Gerente", "gerente_produccion")

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/production-forms",
		map[string]interface{}{"responsible": "Juan", "lot_number": "L-001"}, managerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id := int(data["id"].(float64))

	w2 := testutil.DoRequest(env.Router, "POST",
		fmt.Sprintf("/api/v1/production-forms/%d/status", id),
		map[string]interface{}{"status": "in_progress"}, managerToken)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	data2 := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data2["status"] != "in_progress" {
		t.Errorf("Expected in_progress, got %v", data2["status"])
	}
}
