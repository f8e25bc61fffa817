package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusPorKind(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindInsufficientStock, http.StatusBadRequest},
		{KindInsufficientPayment, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindTransient, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.kind.HTTPStatus(), "kind %s", c.kind)
	}
}

func TestKindOfErrorAjeno(t *testing.T) {
	err := errors.New("pq: connection refused")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Error interno del servidor", MessageOf(err))
	assert.Nil(t, FieldsOf(err))
}

func TestKindOfErrorEnvuelto(t *testing.T) {
	base := New(KindConflict, "Ya existe una caja abierta")
	wrapped := fmt.Errorf("abrir caja: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "Ya existe una caja abierta", MessageOf(wrapped))
}

func TestWrapPreservaCausa(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(KindTransient, "Servicio no disponible", cause)

	assert.Equal(t, "Servicio no disponible", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestValidationConCampos(t *testing.T) {
	err := Validation(map[string]string{"monto_inicial": "min"})

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Errores de validación", MessageOf(err))
	assert.Equal(t, map[string]string{"monto_inicial": "min"}, FieldsOf(err))
}
