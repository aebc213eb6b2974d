package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHGL17/AsistenciasREST/internal/attendance"
)

func TestFailStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", &attendance.Error{Kind: attendance.KindNotFound, Msg: "no"}, http.StatusNotFound},
		{"validation", &attendance.Error{Kind: attendance.KindValidation, Msg: "mal"}, http.StatusBadRequest},
		{"membership", &attendance.Error{Kind: attendance.KindMembership, Msg: "fuera"}, http.StatusBadRequest},
		{"duplicate", &attendance.Error{Kind: attendance.KindDuplicate, Msg: "dup"}, http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			fail(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), `"estatus":"ERROR"`)
			if tc.code == http.StatusInternalServerError {
				// internals never leak their message
				assert.NotContains(t, w.Body.String(), "boom")
			} else {
				assert.Contains(t, w.Body.String(), tc.err.Error())
			}
		})
	}
}

func TestParseFecha(t *testing.T) {
	d, err := parseFecha("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := parseFecha("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = parseFecha("01/03/2024")
	assert.Error(t, err)
}

func TestBindAsistencia(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(body string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/asistencias", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c, w
	}

	t.Run("valid payload", func(t *testing.T) {
		c, _ := newCtx(`{
			"actividad": "a", "ubicacion": "u", "grupo": "g",
			"fechaInicio": "2024-03-01", "fechaFin": "2024-03-01",
			"horaInicio": "10:00", "horaFin": "12:00",
			"listaAsistencia": ["al-1"]
		}`)
		req, okReq := bindAsistencia(c)
		require.True(t, okReq)
		assert.Equal(t, "a", req.Actividad)
		assert.Equal(t, []string{"al-1"}, req.Lista)
		assert.Equal(t, "", req.Estatus)
	})

	t.Run("missing required field", func(t *testing.T) {
		c, w := newCtx(`{"actividad": "a"}`)
		_, okReq := bindAsistencia(c)
		assert.False(t, okReq)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("estatus outside the writable set", func(t *testing.T) {
		c, w := newCtx(`{
			"actividad": "a", "ubicacion": "u", "grupo": "g",
			"fechaInicio": "2024-03-01", "fechaFin": "2024-03-01",
			"horaInicio": "10:00", "horaFin": "12:00",
			"estatus": "Cancelada"
		}`)
		_, okReq := bindAsistencia(c)
		assert.False(t, okReq)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unparseable fecha", func(t *testing.T) {
		c, w := newCtx(`{
			"actividad": "a", "ubicacion": "u", "grupo": "g",
			"fechaInicio": "mañana", "fechaFin": "2024-03-01",
			"horaInicio": "10:00", "horaFin": "12:00"
		}`)
		_, okReq := bindAsistencia(c)
		assert.False(t, okReq)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	})
}
