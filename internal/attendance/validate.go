package attendance

import (
	"regexp"
	"time"
)

// horaRe is the strict 24-hour HH:mm pattern; anything outside 00:00-23:59
// is rejected before comparison.
var horaRe = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// HoraValida reports whether s is a well-formed HH:mm time of day.
func HoraValida(s string) bool {
	return horaRe.MatchString(s)
}

// ValidatePeriod enforces the temporal invariants of a record: the end date
// may not precede the start date, and the end time must be strictly after the
// start time. Same-day records are legal; on those the hora ordering is the
// one that separates start from end. Times compare lexicographically, valid
// for zero-padded HH:mm.
func ValidatePeriod(fechaInicio, fechaFin time.Time, horaInicio, horaFin string) error {
	if !HoraValida(horaInicio) || !HoraValida(horaFin) {
		return validationErr(msgHoraFormato)
	}
	if DayOf(fechaFin).Before(DayOf(fechaInicio)) {
		return validationErr(msgFechaFinAnterior)
	}
	if horaFin <= horaInicio {
		return validationErr(msgHoraFinAnterior)
	}
	return nil
}
