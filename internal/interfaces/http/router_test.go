package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/production"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app       *fiber.App
	store     *memory.Store
	harina    int64
	levadura  int64
	pan       int64
	warehouse int64
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	f := &apiFixture{store: store}
	f.pan = store.AddProduct(entity.Product{CompanyID: testCompanyID, SKU: "PAN-01", Name: "Pan", Cost: decimal.Zero})
	f.harina = store.AddProduct(entity.Product{CompanyID: testCompanyID, SKU: "HAR-01", Name: "Harina", Cost: decimal.NewFromInt(2)})
	f.levadura = store.AddProduct(entity.Product{CompanyID: testCompanyID, SKU: "LEV-01", Name: "Levadura", Cost: decimal.NewFromInt(1)})
	f.warehouse = store.AddWarehouse(entity.Warehouse{CompanyID: testCompanyID, Name: "Planta"})
	store.AddUser(testUserID, "Ana")
	store.AddBundle(entity.Bundle{CompanyID: testCompanyID, SKU: "PAN-01", Name: "Pan", Items: []entity.BundleItem{
		{ProductID: f.harina, Quantity: 2},
		{ProductID: f.levadura, Quantity: 1},
	}})

	repos := store.Repos()
	prom := metrics.New()
	ledger := inventory.NewStockLedger(inventory.NewEventRecorder(), prom)
	log := logger.Nop()
	prodUC := production.NewUseCase(production.Deps{
		TxRunner:   store,
		Ledger:     ledger,
		Orders:     repos.Orders,
		Products:   repos.Products,
		Warehouses: repos.Warehouses,
		Sheets:     pdf.NewPickingSheetGenerator(),
		Metrics:    prom,
		Logger:     log,
	}, production.Config{LegacyAdjustments: true})

	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		Feed:           inventory.NewFeedUseCase(repos.Adjustments, repos.Movements, prom, inventory.FeedConfig{DefaultLimit: 100, MaxLimit: 500}),
		Stock:          inventory.NewStockQueryUseCase(repos.Stock, repos.Warehouses),
		Adjustments:    inventory.NewAdjustmentUseCase(store, ledger, repos.Adjustments, log),
		Movements:      inventory.NewMovementUseCase(store, ledger, repos.Movements),
		Production:     prodUC,
		Products:       usecase.NewProductUseCase(repos.Products),
		Warehouses:     usecase.NewWarehouseUseCase(repos.Warehouses),
		Idempotency:    cache.NewMemoryIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		Observer:       prom,
		MetricsHandler: prom.Handler(),
		JWTSecret:      testJWTSecret,
		Logger:         log,
	})
	return f
}

type call struct {
	method string
	path   string
	role   string
	body   any
	header map[string]string
}

func (f *apiFixture) do(t *testing.T, c call) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, rd)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	role := c.role
	if role == "" {
		role = entity.RoleInventoryManager
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success, string(body))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

func (f *apiFixture) adjustment(typ string, qty int64) map[string]any {
	return map[string]any{"productId": f.harina, "warehouseId": f.warehouse, "type": typ, "quantity": qty, "reason": "conteo"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AjusteActualizaStock(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 5)})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var adj struct {
		ID       int64  `json:"id"`
		Type     string `json:"type"`
		Quantity int64  `json:"quantity"`
	}
	decodeData(t, body, &adj)
	assert.Equal(t, "INCREASE", adj.Type)
	assert.Equal(t, int64(5), adj.Quantity)

	resp, body = f.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/inventory/stock?warehouseId=%d", f.warehouse), role: entity.RoleViewer})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var stock []struct {
		ProductID int64 `json:"productId"`
		Quantity  int64 `json:"quantity"`
	}
	decodeData(t, body, &stock)
	require.Len(t, stock, 1)
	assert.Equal(t, f.harina, stock[0].ProductID)
	assert.Equal(t, int64(5), stock[0].Quantity)
}

func TestAPI_SalidaSinStock_Retorna409(t *testing.T) {
	f := newAPI(t)
	f.store.SetStock(f.harina, f.warehouse, 2)

	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("DECREASE", 3)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	qty, _ := f.store.StockOf(f.harina, f.warehouse)
	assert.Equal(t, int64(2), qty, "el stock no cambia")
}

func TestAPI_TipoDeAjusteInvalido_Retorna422(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("SIDEWAYS", 1)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestAPI_ProductoInexistente_Retorna404(t *testing.T) {
	f := newAPI(t)
	in := f.adjustment("INCREASE", 1)
	in["productId"] = 9999
	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: in})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, body))
}

func TestAPI_ViewerNoPuedeAjustar(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", role: entity.RoleViewer, body: f.adjustment("INCREASE", 1)})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_BorrarAjusteNoRevierteStock(t *testing.T) {
	f := newAPI(t)
	_, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 4)})
	var adj struct {
		ID int64 `json:"id"`
	}
	decodeData(t, body, &adj)

	resp, _ := f.do(t, call{method: http.MethodDelete, path: fmt.Sprintf("/api/inventory/adjustments/%d", adj.ID), role: entity.RolePicker})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	qty, _ := f.store.StockOf(f.harina, f.warehouse)
	assert.Equal(t, int64(4), qty)

	resp, _ = f.do(t, call{method: http.MethodDelete, path: fmt.Sprintf("/api/inventory/adjustments/%d", adj.ID)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_IDInvalidoEnRuta_Retorna400(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, call{method: http.MethodGet, path: "/api/inventory/movements/abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PARAM", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ReintentoConMismaClaveNoDuplica(t *testing.T) {
	f := newAPI(t)
	hdr := map[string]string{apphttp.HeaderIdempotencyKey: "scan-123"}

	first, firstBody := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 5), header: hdr})
	require.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Empty(t, first.Header.Get(apphttp.HeaderReplayed))

	second, secondBody := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 5), header: hdr})
	require.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderReplayed))
	assert.JSONEq(t, string(firstBody), string(secondBody))

	qty, _ := f.store.StockOf(f.harina, f.warehouse)
	assert.Equal(t, int64(5), qty, "el reintento no vuelve a sumar")
}

func TestAPI_ClaveDeOtroUsuarioNoSeComparte(t *testing.T) {
	f := newAPI(t)
	hdr := map[string]string{apphttp.HeaderIdempotencyKey: "k"}

	resp, _ := f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 1), header: hdr})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Misma clave en otra ruta: es otra operación.
	mov := map[string]any{"productId": f.harina, "warehouseId": f.warehouse, "type": "INBOUND", "quantity": 1}
	resp, _ = f.do(t, call{method: http.MethodPost, path: "/api/inventory/movements", body: mov, header: hdr})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(apphttp.HeaderReplayed))

	qty, _ := f.store.StockOf(f.harina, f.warehouse)
	assert.Equal(t, int64(2), qty)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos y feed
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MovimientoYFeed(t *testing.T) {
	f := newAPI(t)
	mov := map[string]any{"productId": f.harina, "warehouseId": f.warehouse, "type": "INBOUND", "quantity": 7, "reason": "compra"}
	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/inventory/movements", body: mov})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		ID int64 `json:"id"`
	}
	decodeData(t, body, &created)

	resp, body = f.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/inventory/movements/%d", created.ID), role: entity.RoleViewer})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Type     string `json:"type"`
		Quantity int64  `json:"quantity"`
	}
	decodeData(t, body, &got)
	assert.Equal(t, "INBOUND", got.Type)
	assert.Equal(t, int64(7), got.Quantity)

	resp, body = f.do(t, call{method: http.MethodGet, path: "/api/inventory/live-feed?limit=10", role: entity.RolePacker})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Stats   struct {
			TotalIn  int64 `json:"totalIn"`
			TotalOut int64 `json:"totalOut"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(body, &feed))
	assert.True(t, feed.Success)
	assert.Len(t, feed.Data, 1)
	assert.Equal(t, int64(7), feed.Stats.TotalIn)
	assert.Equal(t, int64(0), feed.Stats.TotalOut)
}

func TestAPI_PickerNoListaMovimientos(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, call{method: http.MethodGet, path: "/api/inventory/movements", role: entity.RolePicker})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_LimiteNoNumerico_Retorna400(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, call{method: http.MethodGet, path: "/api/inventory/live-feed?limit=mucho"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CicloDeProduccion(t *testing.T) {
	f := newAPI(t)
	f.store.SetStock(f.harina, f.warehouse, 10)
	f.store.SetStock(f.levadura, f.warehouse, 10)

	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/production",
		body: map[string]any{"productId": f.pan, "warehouseId": f.warehouse, "quantityGoal": 2}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var order struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
		Items  []struct {
			ProductID        int64 `json:"productId"`
			QuantityRequired int64 `json:"quantityRequired"`
		} `json:"items"`
	}
	decodeData(t, body, &order)
	assert.Equal(t, entity.ProductionStatusPending, order.Status)
	require.Len(t, order.Items, 2)

	for _, pick := range []struct{ product, qty int64 }{{f.harina, 4}, {f.levadura, 2}} {
		resp, body = f.do(t, call{method: http.MethodPost, path: "/api/production/pick", role: entity.RolePicker,
			body: map[string]any{"orderId": order.ID, "productId": pick.product, "quantity": pick.qty}})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body = f.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/production/%d/picking-sheet", order.ID), role: entity.RolePacker})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = f.do(t, call{method: http.MethodPost, path: fmt.Sprintf("/api/production/%d/complete", order.ID), role: entity.RolePicker})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "picker no completa órdenes")

	resp, body = f.do(t, call{method: http.MethodPost, path: fmt.Sprintf("/api/production/%d/complete", order.ID)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	decodeData(t, body, &order)
	assert.Equal(t, entity.ProductionStatusCompleted, order.Status)

	harina, _ := f.store.StockOf(f.harina, f.warehouse)
	pan, _ := f.store.StockOf(f.pan, f.warehouse)
	assert.Equal(t, int64(6), harina)
	assert.Equal(t, int64(2), pan)

	resp, body = f.do(t, call{method: http.MethodPost, path: fmt.Sprintf("/api/production/%d/complete", order.ID)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_COMPLETED", errorCode(t, body))
}

func TestAPI_CancelarYListarPorEstado(t *testing.T) {
	f := newAPI(t)
	_, body := f.do(t, call{method: http.MethodPost, path: "/api/production",
		body: map[string]any{"productId": f.pan, "warehouseId": f.warehouse, "quantityGoal": 1}})
	var order struct {
		ID int64 `json:"id"`
	}
	decodeData(t, body, &order)

	resp, _ := f.do(t, call{method: http.MethodPost, path: fmt.Sprintf("/api/production/%d/cancel", order.ID)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, call{method: http.MethodGet, path: "/api/production?status=CANCELLED", role: entity.RolePicker})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, body, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	resp, _ = f.do(t, call{method: http.MethodGet, path: "/api/production?status=DONE"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = f.do(t, call{method: http.MethodGet, path: "/api/production/424242"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ORDER_NOT_FOUND", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_AltaDeCatalogoYPrimeraEntrada(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, call{method: http.MethodPost, path: "/api/warehouses",
		body: map[string]any{"name": "Satélite", "capacityLimit": 10}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var wh struct {
		ID            int64 `json:"id"`
		CapacityLimit int64 `json:"capacityLimit"`
	}
	decodeData(t, body, &wh)
	assert.Equal(t, int64(10), wh.CapacityLimit)

	resp, body = f.do(t, call{method: http.MethodPost, path: "/api/products", body: map[string]any{"sku": "AZU-01", "name": "Azúcar"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var prod struct {
		ID int64 `json:"id"`
	}
	decodeData(t, body, &prod)

	resp, _ = f.do(t, call{method: http.MethodPost, path: "/api/products", body: map[string]any{"sku": "AZU-01", "name": "Otra"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	in := map[string]any{"productId": prod.ID, "warehouseId": wh.ID, "type": "INCREASE", "quantity": 11}
	resp, body = f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: in})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CAPACITY_EXCEEDED", errorCode(t, body))

	resp, _ = f.do(t, call{method: http.MethodGet, path: fmt.Sprintf("/api/warehouses/%d", wh.ID), role: entity.RoleViewer})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, call{method: http.MethodPost, path: "/api/products", role: entity.RoleWarehouseManager, body: map[string]any{"sku": "Z", "name": "Z"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MetricasExpuestas(t *testing.T) {
	f := newAPI(t)
	f.do(t, call{method: http.MethodPost, path: "/api/inventory/adjustments", body: f.adjustment("INCREASE", 1)})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "stock_ledger_")
	assert.Contains(t, string(body), "stock_ledger_units_total", "el ajuste confirmado se reporta")
}
