package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/production"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ProductionHandler maneja las órdenes de producción.
type ProductionHandler struct {
	uc  *production.UseCase
	log *logger.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.UseCase, log *logger.Logger) *ProductionHandler {
	return &ProductionHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar órdenes de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING, IN_PROGRESS, COMPLETED o CANCELLED"
// @Param        limit   query  int     false  "Límite (defecto 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.DataResponse{data=[]dto.ProductionOrderResponse}
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/production [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badParam(c, "paginación")
	}
	page.DefaultPage()
	orders, err := h.uc.List(c.UserContext(), GetActor(c), c.Query("status"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ProductionOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewProductionOrderResponse(o))
	}
	return c.JSON(dto.OK(out))
}

// Get godoc
// @Summary      Obtener orden de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la orden"
// @Success      200  {object}  dto.DataResponse{data=dto.ProductionOrderResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/{id} [get]
func (h *ProductionHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	order, err := h.uc.Get(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(dto.NewProductionOrderResponse(order)))
}

// PickingSheet godoc
// @Summary      Hoja de alistamiento en PDF
// @Tags         production
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  int  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/{id}/picking-sheet [get]
func (h *ProductionHandler) PickingSheet(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	pdf, err := h.uc.PickingSheet(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="picking-sheet-%d.pdf"`, id))
	return c.Send(pdf)
}

// Create godoc
// @Summary      Crear orden de producción
// @Description  Expande la lista de materiales del producto en los ítems de la orden.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateProductionOrderRequest  true  "productId, warehouseId, quantityGoal"
// @Success      201  {object}  dto.DataResponse{data=dto.ProductionOrderResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductionOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.NewProductionOrderResponse(order)))
}

// Pick godoc
// @Summary      Alistar ingrediente
// @Description  Suma la cantidad alistada del ingrediente. Se permite alistar de más.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.PickIngredientRequest  true  "orderId, productId, quantity"
// @Success      200  {object}  dto.DataResponse{data=dto.ProductionOrderItemResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/pick [post]
func (h *ProductionHandler) Pick(c *fiber.Ctx) error {
	var in dto.PickIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.uc.PickIngredient(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(dto.NewProductionOrderItemResponse(item)))
}

// Complete godoc
// @Summary      Completar orden de producción
// @Description  Consume los ingredientes alistados y da entrada al producto terminado en una sola transacción.
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        id  path  int  true  "ID de la orden"
// @Success      200  {object}  dto.DataResponse{data=dto.ProductionOrderResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{id}/complete [post]
func (h *ProductionHandler) Complete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	order, err := h.uc.Complete(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(dto.NewProductionOrderResponse(order)))
}

// Cancel godoc
// @Summary      Cancelar orden de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID de la orden"
// @Success      200  {object}  dto.DataResponse{data=dto.ProductionOrderResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production/{id}/cancel [post]
func (h *ProductionHandler) Cancel(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badParam(c, "id")
	}
	order, err := h.uc.Cancel(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK(dto.NewProductionOrderResponse(order)))
}
