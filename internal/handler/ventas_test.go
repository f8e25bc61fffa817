package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oajacap/kissu/internal/apierror"
	"github.com/oajacap/kissu/internal/dto"
	"github.com/oajacap/kissu/internal/middleware"
	"github.com/oajacap/kissu/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVentaService returns canned responses; crearErr fuerza el camino de error.
type stubVentaService struct {
	crearErr  error
	anularErr error
	creada    *dto.VentaCreadaResponse
}

func (s *stubVentaService) Crear(_ context.Context, _ uuid.UUID, _ dto.CrearVentaRequest) (*dto.VentaCreadaResponse, error) {
	if s.crearErr != nil {
		return nil, s.crearErr
	}
	return s.creada, nil
}

func (s *stubVentaService) Anular(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ string) error {
	return s.anularErr
}

func (s *stubVentaService) Obtener(_ context.Context, _ uuid.UUID) (*dto.VentaResponse, error) {
	return nil, apierror.New(apierror.KindNotFound, "Venta no encontrada")
}

func (s *stubVentaService) Listar(_ context.Context, _ dto.VentaFilter) (*dto.VentaListResponse, error) {
	return &dto.VentaListResponse{}, nil
}

func (s *stubVentaService) VentasHoy(_ context.Context) (*dto.VentasHoyResponse, error) {
	return &dto.VentasHoyResponse{}, nil
}

func ventasRouter(svc *stubVentaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID:   uuid.New().String(),
			Username: "cajero1",
			Rol:      "cajero",
		})
	})
	h := NewVentasHandler(svc)
	r.POST("/v1/ventas", h.Crear)
	r.PUT("/v1/ventas/:id/anular", h.Anular)
	r.GET("/v1/ventas/:id", h.Obtener)
	return r
}

func cuerpoVenta() []byte {
	body, _ := json.Marshal(dto.CrearVentaRequest{
		Productos: []dto.DetalleVentaRequest{{
			ProductoID:     uuid.New().String(),
			Cantidad:       2,
			PrecioUnitario: decimal.RequireFromString("10.00"),
			Subtotal:       decimal.RequireFromString("20.00"),
		}},
		Subtotal:      decimal.RequireFromString("20.00"),
		Total:         decimal.RequireFromString("20.00"),
		MontoRecibido: decimal.RequireFromString("50.00"),
	})
	return body
}

func TestCrearVentaRespondeCreated(t *testing.T) {
	svc := &stubVentaService{creada: &dto.VentaCreadaResponse{
		VentaID:       uuid.New().String(),
		NumeroFactura: "F-00000042",
		Total:         decimal.RequireFromString("20.00"),
		Cambio:        decimal.RequireFromString("30.00"),
	}}
	r := ventasRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ventas", bytes.NewReader(cuerpoVenta()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Venta registrada exitosamente", env.Message)
	assert.NotEmpty(t, env.Timestamp)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "F-00000042", data["numero_factura"])
}

func TestCrearVentaJSONInvalido(t *testing.T) {
	r := ventasRouter(&stubVentaService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ventas", bytes.NewReader([]byte("{no es json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, string(apierror.KindValidation), env.Kind)
	assert.NotEmpty(t, env.Error)
}

func TestCrearVentaStockInsuficiente(t *testing.T) {
	svc := &stubVentaService{
		crearErr: apierror.New(apierror.KindInsufficientStock, "Stock insuficiente para Arroz 1kg: disponible 2, solicitado 5"),
	}
	r := ventasRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ventas", bytes.NewReader(cuerpoVenta()))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, string(apierror.KindInsufficientStock), env.Kind)
	assert.Contains(t, env.Error, "Stock insuficiente")
}

func TestObtenerVentaIDInvalido(t *testing.T) {
	r := ventasRouter(&stubVentaService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/ventas/esto-no-es-uuid", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, string(apierror.KindValidation), env.Kind)
}

func TestAnularVentaConflicto(t *testing.T) {
	r := ventasRouter(&stubVentaService{
		anularErr: apierror.New(apierror.KindConflict, "La venta ya está anulada"),
	})

	body, _ := json.Marshal(dto.AnularVentaRequest{Motivo: "devolución del cliente"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/ventas/"+uuid.New().String()+"/anular", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, string(apierror.KindConflict), env.Kind)
	assert.Equal(t, "La venta ya está anulada", env.Error)
}
