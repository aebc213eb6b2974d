package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHoraValida(t *testing.T) {
	valid := []string{"00:00", "08:05", "19:59", "23:59"}
	for _, s := range valid {
		assert.True(t, HoraValida(s), s)
	}
	invalid := []string{"24:00", "23:60", "8:00", "08:5", "0800", "ocho", "", "08:00:00", "-1:00"}
	for _, s := range invalid {
		assert.False(t, HoraValida(s), s)
	}
}

func TestValidatePeriod(t *testing.T) {
	inicio := date(2024, 3, 1)
	fin := date(2024, 3, 2)

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, ValidatePeriod(inicio, fin, "10:00", "12:00"))
	})

	t.Run("same day ok", func(t *testing.T) {
		assert.NoError(t, ValidatePeriod(inicio, inicio, "10:00", "12:00"))
	})

	t.Run("fin before inicio", func(t *testing.T) {
		err := ValidatePeriod(fin, inicio, "10:00", "12:00")
		assert.EqualError(t, err, msgFechaFinAnterior)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("hora fin equal", func(t *testing.T) {
		err := ValidatePeriod(inicio, fin, "10:00", "10:00")
		assert.EqualError(t, err, msgHoraFinAnterior)
	})

	t.Run("hora fin before", func(t *testing.T) {
		err := ValidatePeriod(inicio, fin, "12:00", "10:00")
		assert.EqualError(t, err, msgHoraFinAnterior)
	})

	t.Run("malformed hora", func(t *testing.T) {
		err := ValidatePeriod(inicio, fin, "25:00", "26:00")
		assert.EqualError(t, err, msgHoraFormato)
	})

	t.Run("format checked before ordering", func(t *testing.T) {
		// both problems present; format wins
		err := ValidatePeriod(fin, inicio, "9:00", "8:00")
		assert.EqualError(t, err, msgHoraFormato)
	})

	t.Run("timestamps compare by calendar day", func(t *testing.T) {
		late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
		early := time.Date(2024, 3, 1, 0, 15, 0, 0, time.UTC)
		assert.NoError(t, ValidatePeriod(late, early, "10:00", "12:00"))
	})
}
