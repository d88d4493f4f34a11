package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP del libro mayor: feed, stock, ajustes y movimientos.
type InventoryHandler struct {
	feed        *inventory.FeedUseCase
	stock       *inventory.StockQueryUseCase
	adjustments *inventory.AdjustmentUseCase
	movements   *inventory.MovementUseCase
	log         *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	feed *inventory.FeedUseCase,
	stock *inventory.StockQueryUseCase,
	adjustments *inventory.AdjustmentUseCase,
	movements *inventory.MovementUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{feed: feed, stock: stock, adjustments: adjustments, movements: movements, log: log}
}

// LiveFeed godoc
// @Summary      Feed en vivo de inventario
// @Description  Une ajustes y movimientos, descarta duplicados del flujo legado y devuelve los totales del día.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de entradas (defecto 100, tope 500)"
// @Success      200  {object}  dto.LiveFeedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/live-feed [get]
func (h *InventoryHandler) LiveFeed(c *fiber.Ctx) error {
	limit, err := queryInt64(c, "limit")
	if err != nil {
		return badParam(c, "limit")
	}
	feed, err := h.feed.LiveFeed(c.UserContext(), GetActor(c), int(limit))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewLiveFeedResponse(feed))
}

// Stock godoc
// @Summary      Stock por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  query  int  true  "ID de la bodega"
// @Success      200  {object}  dto.DataResponse{data=[]dto.StockResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	warehouseID, err := queryInt64(c, "warehouseId")
	if err != nil || warehouseID <= 0 {
		return badParam(c, "warehouseId")
	}
	out, err := h.stock.ListByWarehouse(c.UserContext(), GetActor(c), warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(out))
}

// ListAdjustments godoc
// @Summary      Listar ajustes de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId    query  int  false  "Filtrar por producto"
// @Param        warehouseId  query  int  false  "Filtrar por bodega"
// @Param        limit        query  int  false  "Límite (defecto 20)"
// @Param        offset       query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.DataResponse{data=[]dto.AdjustmentResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	productID, warehouseID, page, ok := parseEventFilters(c)
	if !ok {
		return badParam(c, "filtro")
	}
	out, err := h.adjustments.List(c.UserContext(), GetActor(c), productID, warehouseID, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(out))
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Description  INCREASE o DECREASE sobre una bodega. Con unitCost en una entrada recalcula el costo promedio.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateAdjustmentRequest  true  "productId, warehouseId, type, quantity, reason"
// @Success      201  {object}  dto.DataResponse{data=dto.AdjustmentResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.adjustments.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// DeleteAdjustment godoc
// @Summary      Eliminar ajuste
// @Description  Borra el registro del ajuste. El stock no se revierte.
// @Tags         inventory
// @Security     Bearer
// @Param        id  path  int  true  "ID del ajuste"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments/{id} [delete]
func (h *InventoryHandler) DeleteAdjustment(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	if err := h.adjustments.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMovements godoc
// @Summary      Listar movimientos de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId    query  int     false  "Filtrar por producto"
// @Param        warehouseId  query  int     false  "Filtrar por bodega"
// @Param        type         query  string  false  "INCREASE, DECREASE, INBOUND, OUTBOUND, PICK..."
// @Param        limit        query  int     false  "Límite (defecto 20)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.DataResponse{data=[]dto.MovementResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID, warehouseID, page, ok := parseEventFilters(c)
	if !ok {
		return badParam(c, "filtro")
	}
	out, err := h.movements.List(c.UserContext(), GetActor(c), productID, warehouseID, c.Query("type"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(out))
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.DataResponse{data=dto.MovementResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	out, err := h.movements.Get(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(out))
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.RegisterMovementRequest  true  "productId, warehouseId, type, quantity (unitCost en entradas)"
// @Success      201  {object}  dto.DataResponse{data=dto.MovementResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.movements.Register(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out))
}

// queryInt64 lee un entero opcional de la query; vacío = 0.
func queryInt64(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

func parseEventFilters(c *fiber.Ctx) (productID, warehouseID int64, page dto.PageRequest, ok bool) {
	var err error
	if productID, err = queryInt64(c, "productId"); err != nil {
		return 0, 0, page, false
	}
	if warehouseID, err = queryInt64(c, "warehouseId"); err != nil {
		return 0, 0, page, false
	}
	if err = c.QueryParser(&page); err != nil {
		return 0, 0, page, false
	}
	page.DefaultPage()
	return productID, warehouseID, page, true
}
