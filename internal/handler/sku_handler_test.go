package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokline/skuflow_api/internal/repository"
	"github.com/stokline/skuflow_api/internal/service"
	"github.com/stokline/skuflow_api/internal/utils"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.SKUService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := service.NewSKUService(repository.NewMemorySnapshotStore())
	require.NoError(t, err)

	h := NewSKUHandler(svc)
	router := gin.New()
	skus := router.Group("/v1/skus")
	{
		skus.POST("", h.CreateSKU)
		skus.GET("", h.GetSKUs)
		skus.GET("/audit-logs", h.GetAuditLogs)
		skus.GET("/:id", h.GetSKUByID)
		skus.POST("/:id/reorder", h.ReorderQueue)
		skus.POST("/:id/cancel", h.CancelSKU)
		skus.POST("/:id/progress", h.ProgressToWarehouseAssignment)
		skus.POST("/:id/position", h.AssignWarehousePosition)
		skus.POST("/:id/move-backward", h.MoveBackward)
	}
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestCreateSKUEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus", gin.H{
		"productId":        "PRD-1",
		"productName":      "Widget",
		"supplier":         "ACME Supplies",
		"approvedBy":       "alice",
		"warehousesToList": []string{"Prague"},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	sku := data["sku"].(map[string]interface{})
	assert.Equal(t, "waiting_for_capacity", sku["state"])
	assert.Equal(t, float64(1), sku["queuePosition"])
}

func TestCreateSKUValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus", gin.H{"productName": "Widget"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestGetSKUsStateFilter(t *testing.T) {
	router, svc := newTestRouter(t)
	a := svc.CreateSKU("PRD-1", "A", "ACME Supplies", "alice", []string{"Prague"})
	svc.CreateSKU("PRD-2", "B", "ACME Supplies", "alice", nil)
	require.True(t, svc.ProgressToWarehouseAssignment(a.ID, "Prague", "Prague Central"))

	rec, resp := doJSON(t, router, http.MethodGet, "/v1/skus?state=waiting_for_capacity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["skus"], 1)

	rec, resp = doJSON(t, router, http.MethodGet, "/v1/skus?state=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_STATE_FILTER", resp.Error.Code)
}

func TestGetSKUByIDNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/v1/skus/SKU-missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SKU_NOT_FOUND", resp.Error.Code)
}

func TestReorderEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	a := svc.CreateSKU("PRD-1", "A", "ACME Supplies", "alice", nil)
	svc.CreateSKU("PRD-2", "B", "ACME Supplies", "alice", nil)

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus/"+a.ID+"/reorder", gin.H{
		"newPosition": 2,
		"performedBy": "alice",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, *svc.GetSKUByID(a.ID).QueuePosition)
}

func TestReorderConflictOnLockedSKU(t *testing.T) {
	router, svc := newTestRouter(t)
	a := svc.CreateSKU("PRD-1", "A", "ACME Supplies", "alice", []string{"Prague"})
	svc.CreateSKU("PRD-2", "B", "ACME Supplies", "alice", nil)
	require.True(t, svc.ProgressToWarehouseAssignment(a.ID, "Prague", "Prague Central"))

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus/"+a.ID+"/reorder", gin.H{
		"newPosition": 1,
		"performedBy": "alice",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)
}

func TestCancelEndpointUnknownSKU(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus/SKU-missing/cancel", gin.H{
		"performedBy": "bob",
		"reason":      "dup",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SKU_NOT_FOUND", resp.Error.Code)
}

func TestLifecycleOverHTTP(t *testing.T) {
	router, svc := newTestRouter(t)
	sku := svc.CreateSKU("PRD-1", "Widget", "ACME Supplies", "alice", []string{"Prague"})

	rec, _ := doJSON(t, router, http.MethodPost, "/v1/skus/"+sku.ID+"/progress", gin.H{
		"warehouseId":   "Prague",
		"warehouseName": "Prague Central",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/skus/"+sku.ID+"/position", gin.H{
		"position":   "A01-1-1",
		"assignedBy": "carol",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, router, http.MethodPost, "/v1/skus/"+sku.ID+"/move-backward", gin.H{
		"performedBy": "carol",
		"reason":      "correction",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	moved := data["sku"].(map[string]interface{})
	assert.Equal(t, "assign_warehouse_position", moved["state"])

	warehouse := moved["warehouse"].(map[string]interface{})
	assert.Equal(t, "Prague Central", warehouse["name"])
	_, hasPosition := warehouse["position"]
	assert.False(t, hasPosition, "position must be cleared after moving back")
}

func TestAuditLogsEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	a := svc.CreateSKU("PRD-1", "A", "ACME Supplies", "alice", nil)
	svc.CreateSKU("PRD-2", "B", "ACME Supplies", "alice", nil)
	require.True(t, svc.CancelSKU(a.ID, "bob", "dup"))

	rec, resp := doJSON(t, router, http.MethodGet, "/v1/skus/audit-logs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["auditLogs"], 3)

	rec, resp = doJSON(t, router, http.MethodGet, "/v1/skus/audit-logs?skuId="+a.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data = resp.Data.(map[string]interface{})
	assert.Len(t, data["auditLogs"], 2)
}
