package handler

import (
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/middleware"
	"github.com/oajacap/kissu/internal/response"
	"github.com/oajacap/kissu/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

func (h *InventarioHandler) usuarioID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return id
}

func (h *InventarioHandler) Entrada(c *gin.Context) {
	var req dto.EntradaStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Entrada(c.Request.Context(), h.usuarioID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Entrada registrada exitosamente", resp)
}

func (h *InventarioHandler) Salida(c *gin.Context) {
	var req dto.SalidaStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Salida(c.Request.Context(), h.usuarioID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Salida registrada exitosamente", resp)
}

// Ajuste sets the absolute stock level; the movement records the delta.
func (h *InventarioHandler) Ajuste(c *gin.Context) {
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajuste(c.Request.Context(), h.usuarioID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Ajuste registrado exitosamente", resp)
}

func (h *InventarioHandler) Listar(c *gin.Context) {
	var filter dto.InventarioFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListInventario(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

func (h *InventarioHandler) Movimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovimientos(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}
