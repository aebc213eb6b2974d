package attendance

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable failures of the attendance manager so the
// HTTP layer can map them to status codes without parsing messages.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindMembership
	KindDuplicate
	KindInternal
)

// Error is a reportable operation failure with a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf extracts the kind from an error, defaulting to KindInternal for
// anything that is not an *Error (storage failures and the like).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func validationErr(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func membershipErr(msg string) *Error {
	return &Error{Kind: KindMembership, Msg: msg}
}

func duplicateErr(msg string) *Error {
	return &Error{Kind: KindDuplicate, Msg: msg}
}

func internalErr(msg string) *Error {
	return &Error{Kind: KindInternal, Msg: msg}
}

// User-facing messages, kept as the product shipped them.
const (
	msgActividadNoExiste  = "La actividad especificada no existe"
	msgUbicacionNoExiste  = "La ubicación especificada no existe"
	msgGrupoNoExiste      = "El grupo especificado no existe"
	msgAlumnosFueraGrupo  = "Uno o más números de control no pertenecen al grupo especificado"
	msgAsistenciaDup      = "Ya existe una asistencia registrada para esta actividad, grupo y fecha"
	msgFechaFinAnterior   = "La fecha de fin debe ser posterior a la fecha de inicio"
	msgHoraFinAnterior    = "La hora de fin debe ser posterior a la hora de inicio"
	msgHoraFormato        = "El formato de hora debe ser HH:mm entre 00:00 y 23:59"
	msgAlumnoNoExiste     = "El alumno especificado no existe o no es de tipo alumno"
	msgAlumnoFueraGrupo   = "El alumno no pertenece al grupo de esta asistencia"
	msgAlumnoYaRegistrado = "El alumno ya está registrado en esta asistencia"
	msgAlumnoNoRegistrado = "El alumno no está registrado en esta asistencia"
	msgErrorInterno       = "Error interno al procesar la asistencia"
)
