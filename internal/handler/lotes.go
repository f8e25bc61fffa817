package handler

import (
	"strconv"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/middleware"
	"github.com/oajacap/kissu/internal/response"
	"github.com/oajacap/kissu/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LotesHandler struct{ svc service.LoteService }

func NewLotesHandler(svc service.LoteService) *LotesHandler { return &LotesHandler{svc: svc} }

func (h *LotesHandler) Crear(c *gin.Context) {
	var req dto.CrearLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Crear(c.Request.Context(), usuarioID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "Lote registrado exitosamente", resp)
}

func (h *LotesHandler) Listar(c *gin.Context) {
	var filter dto.LoteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

func (h *LotesHandler) PorProducto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.PorProducto(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}

// ProximosVencer lists lots expiring within ?dias= days (default 30).
func (h *LotesHandler) ProximosVencer(c *gin.Context) {
	dias := 30
	if v := c.Query("dias"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Fail(c, apierror.New(apierror.KindValidation, "dias debe ser un entero positivo"))
			return
		}
		dias = n
	}
	resp, err := h.svc.ProximosVencer(c.Request.Context(), dias)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}
