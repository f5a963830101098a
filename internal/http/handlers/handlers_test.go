package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/armory-backend/internal/data/repos"
	types "github.com/yungbote/armory-backend/internal/domain"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
	"github.com/yungbote/armory-backend/internal/platform/logger"
	"github.com/yungbote/armory-backend/internal/services"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

type fakeMaterialService struct {
	services.MaterialService
	gotFilter repos.MaterialFilter
	gotInc    services.MaterialIncludes
	gotPatch  services.MaterialPatch
	err       error
}

func (f *fakeMaterialService) List(_ context.Context, filter repos.MaterialFilter) ([]*types.Material, error) {
	f.gotFilter = filter
	return []*types.Material{{ID: 1, Name: "Iron"}}, f.err
}

func (f *fakeMaterialService) Get(_ context.Context, id int64, inc services.MaterialIncludes) (*services.MaterialDetail, error) {
	f.gotInc = inc
	if f.err != nil {
		return nil, f.err
	}
	return &services.MaterialDetail{Material: &types.Material{ID: id, Name: "Iron"}}, nil
}

func (f *fakeMaterialService) Power(_ context.Context, id int64) (int64, error) {
	return 400, f.err
}

func (f *fakeMaterialService) Update(_ context.Context, id int64, patch services.MaterialPatch) (*services.MaterialUpdateResult, error) {
	f.gotPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &services.MaterialUpdateResult{UpdatedMaterials: []services.MaterialPower{}, UpdatedWeapons: []services.WeaponSummary{}}, nil
}

type fakeWeaponService struct {
	services.WeaponService
	err error
}

func (f *fakeWeaponService) MaxBuildQuantity(_ context.Context, id int64) (*types.Weapon, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return &types.Weapon{ID: id, Name: "Sword", Status: types.WeaponStatusActive}, 7, nil
}

type fakeCompositionService struct {
	services.CompositionService
	parentID, materialID, qty int64
}

func (f *fakeCompositionService) Add(_ context.Context, parentID, materialID, qty int64) (*services.CompositionChange, error) {
	f.parentID, f.materialID, f.qty = parentID, materialID, qty
	return &services.CompositionChange{
		Composition:    &types.Composition{ParentID: parentID, MaterialID: materialID, Qty: qty},
		UpdatedWeapons: []services.WeaponSummary{},
	}, nil
}

func serve(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func errorMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	env, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	msg, _ := env["message"].(string)
	return msg
}

func materialRouter(t *testing.T, svc services.MaterialService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMaterialHandler(newTestLogger(t), svc)
	r := gin.New()
	r.GET("/api/material", h.ListMaterials)
	r.GET("/api/material/:id", h.GetMaterial)
	r.GET("/api/material/:id/power", h.GetMaterialPower)
	r.PUT("/api/material/:id", h.UpdateMaterial)
	return r
}

func TestListMaterialsParsesFilter(t *testing.T) {
	svc := &fakeMaterialService{}
	r := materialRouter(t, svc)

	rec, body := serve(t, r, http.MethodGet, "/api/material?power_level_gt=35&sort=power_level:desc&invalid_param=value", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["materials"], 1)
	require.NotNil(t, svc.gotFilter.PowerLevelGT)
	require.Equal(t, int64(35), *svc.gotFilter.PowerLevelGT)
	require.Equal(t, "power_level", svc.gotFilter.SortField)
	require.True(t, svc.gotFilter.SortDesc)

	rec, body = serve(t, r, http.MethodGet, "/api/material?sort=secret:asc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid sort parameter", errorMessage(t, body))

	rec, _ = serve(t, r, http.MethodGet, "/api/material?qty_gt=lots", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMaterialValidatesIDAndIncludes(t *testing.T) {
	svc := &fakeMaterialService{}
	r := materialRouter(t, svc)

	rec, body := serve(t, r, http.MethodGet, "/api/material/invalid-id", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid ID format", errorMessage(t, body))

	rec, body = serve(t, r, http.MethodGet, "/api/material/1?include=armor", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid include parameter", errorMessage(t, body))

	rec, body = serve(t, r, http.MethodGet, "/api/material/1?include=weapons,sub_materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.gotInc.Weapons)
	require.True(t, svc.gotInc.SubMaterials)
	m := body["material"].(map[string]any)
	require.Equal(t, float64(1), m["id"])
}

func TestGetMaterialMapsServiceErrors(t *testing.T) {
	svc := &fakeMaterialService{err: apierr.NotFound(services.CodeMaterialNotFound, "Material not found")}
	r := materialRouter(t, svc)

	rec, body := serve(t, r, http.MethodGet, "/api/material/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Material not found", errorMessage(t, body))

	svc.err = errors.New("connection reset by peer")
	rec, body = serve(t, r, http.MethodGet, "/api/material/99/power", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, errorMessage(t, body), "connection reset")
}

func TestUpdateMaterialTypeChecksBody(t *testing.T) {
	svc := &fakeMaterialService{}
	r := materialRouter(t, svc)

	for _, body := range []string{
		`{"power_level":"high"}`,
		`{"qty":"10"}`,
		`{"qty":1.5}`,
		`{"qty":null}`,
		`{"base_power":true}`,
	} {
		rec, out := serve(t, r, http.MethodPut, "/api/material/1", []byte(body))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Equal(t, "Invalid data type for power_level or quantity", errorMessage(t, out), body)
	}

	rec, _ := serve(t, r, http.MethodPut, "/api/material/1", []byte(`{"name":"Steel","power_level":null,"qty":4,"extra":1}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotPatch.Name)
	require.Equal(t, "Steel", *svc.gotPatch.Name)
	require.True(t, svc.gotPatch.PowerLevel.Set)
	require.Nil(t, svc.gotPatch.PowerLevel.Value)
	require.False(t, svc.gotPatch.BasePower.Set)
	require.Equal(t, int64(4), *svc.gotPatch.Qty)

	rec, _ = serve(t, r, http.MethodPut, "/api/material/1", []byte(`not json`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeaponMaxBuildQuantity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeWeaponService{}
	h := NewWeaponHandler(newTestLogger(t), svc)
	r := gin.New()
	r.GET("/api/weapon/:id/maxBuildQuantity", h.GetWeaponMaxBuildQuantity)

	rec, body := serve(t, r, http.MethodGet, "/api/weapon/3/maxBuildQuantity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(7), body["maxBuildQty"])
	require.Equal(t, float64(3), body["weapon"].(map[string]any)["id"])

	rec, body = serve(t, r, http.MethodGet, "/api/weapon/abc/maxBuildQuantity", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid weapon ID format", errorMessage(t, body))

	svc.err = apierr.BadRequest(services.CodeWeaponBroken, "Weapon is broken")
	rec, body = serve(t, r, http.MethodGet, "/api/weapon/3/maxBuildQuantity", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Weapon is broken", errorMessage(t, body))
}

func TestAddComposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeCompositionService{}
	h := NewCompositionHandler(newTestLogger(t), svc)
	r := gin.New()
	r.POST("/api/composition/:parentId/composition", h.AddComposition)

	rec, body := serve(t, r, http.MethodPost, "/api/composition/1/composition", []byte(`{"material_id":4,"qty":3}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(1), svc.parentID)
	require.Equal(t, int64(4), svc.materialID)
	require.Equal(t, int64(3), svc.qty)
	require.Contains(t, body, "newComposition")
	require.Contains(t, body, "updatedWeapons")

	rec, _ = serve(t, r, http.MethodPost, "/api/composition/1/composition", []byte(`{"qty":3}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheckPingsDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	h := NewHealthHandler(sqlDB)
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}
