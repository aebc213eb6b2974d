package attendance

import (
	"time"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// Record statuses. Cancelada is terminal; records are never deleted.
const (
	StatusPendiente = "Pendiente"
	StatusRealizada = "Realizada"
	StatusCancelada = "Cancelada"
)

// Record is a stored attendance record. Actividad, ubicación and grupo are
// held by id; the roster entries are owned exclusively by the record.
type Record struct {
	ID            string
	ActividadID   string
	UbicacionID   string
	GrupoID       string
	FechaRegistro time.Time
	FechaInicio   time.Time // calendar date
	FechaFin      time.Time // calendar date
	HoraInicio    string    // HH:mm
	HoraFin       string    // HH:mm
	Estatus       string
	Lista         []Entry
}

// Entry is one alumno on a record's roster, stamped when it was added.
type Entry struct {
	AlumnoID          string
	FechaHoraRegistro time.Time
}

// Alumnos returns the roster's alumno ids in stored order.
func (r *Record) Alumnos() []string {
	ids := make([]string, 0, len(r.Lista))
	for _, e := range r.Lista {
		ids = append(ids, e.AlumnoID)
	}
	return ids
}

// Request is the validated payload for registering or fully updating a record.
type Request struct {
	Actividad   string
	Ubicacion   string
	Grupo       string
	FechaInicio time.Time
	FechaFin    time.Time
	HoraInicio  string
	HoraFin     string
	Estatus     string // empty means Pendiente
	Lista       []string
}

// AlumnoAsistencia is one roster entry in the enriched view.
type AlumnoAsistencia struct {
	ID                string           `json:"id"`
	FechaHoraRegistro time.Time        `json:"fechaHoraRegistro"`
	Alumno            users.AlumnoInfo `json:"alumno"`
}

// View is the enriched projection of a record: every stored reference is
// expanded into its current denormalized representation.
type View struct {
	ID            string                `json:"id"`
	Actividad     catalog.ActividadInfo `json:"actividad"`
	FechaRegistro time.Time             `json:"fechaRegistro"`
	FechaInicio   time.Time             `json:"fechaInicio"`
	FechaFin      time.Time             `json:"fechaFin"`
	HoraInicio    string                `json:"horaInicio"`
	HoraFin       string                `json:"horaFin"`
	Estatus       string                `json:"estatus"`
	Ubicacion     catalog.UbicacionInfo `json:"ubicacion"`
	Grupo         catalog.GrupoInfo     `json:"grupo"`
	Lista         []AlumnoAsistencia    `json:"listaAsistencia"`
}

// DayOf truncates an instant to its calendar day (local day boundary).
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
