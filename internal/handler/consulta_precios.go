package handler

import (
	"github.com/oajacap/kissu/internal/response"
	"github.com/oajacap/kissu/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaPreciosHandler serves the public price check endpoint.
// No authentication required and no side effects.
type ConsultaPreciosHandler struct{ svc service.ProductoService }

func NewConsultaPreciosHandler(svc service.ProductoService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

func (h *ConsultaPreciosHandler) PorCodigo(c *gin.Context) {
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, "", resp)
}
