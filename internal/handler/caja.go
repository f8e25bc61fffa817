package handler

import (
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/middleware"
	"github.com/oajacap/kissu/internal/response"
	"github.com/oajacap/kissu/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CajaHandler covers drawer lifecycle (abrir/cerrar/estado/historial) and the
// expenses registered against the open drawer.
type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Caja abierta exitosamente", resp)
}

func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "Caja cerrada exitosamente", resp)
}

func (h *CajaHandler) Estado(c *gin.Context) {
	resp, err := h.svc.Estado(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	var filter dto.CuadreFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

func (h *CajaHandler) ObtenerCuadre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCuadre(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

// RegistrarGasto requires an open drawer; sin caja abierta responde 404.
func (h *CajaHandler) RegistrarGasto(c *gin.Context) {
	var req dto.RegistrarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RegistrarGasto(c.Request.Context(), usuarioID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Gasto registrado exitosamente", resp)
}

func (h *CajaHandler) ListarGastos(c *gin.Context) {
	var filter dto.GastoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarGastos(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}
