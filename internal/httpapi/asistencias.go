package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CHGL17/AsistenciasREST/internal/attendance"
)

// asistenciaRequest is the write payload for POST/PUT /asistencias. Fechas
// accept either a bare date or a full RFC 3339 timestamp; only the calendar
// day is kept.
type asistenciaRequest struct {
	Actividad   string   `json:"actividad" validate:"required"`
	Ubicacion   string   `json:"ubicacion" validate:"required"`
	Grupo       string   `json:"grupo" validate:"required"`
	FechaInicio string   `json:"fechaInicio" validate:"required"`
	FechaFin    string   `json:"fechaFin" validate:"required"`
	HoraInicio  string   `json:"horaInicio" validate:"required"`
	HoraFin     string   `json:"horaFin" validate:"required"`
	Estatus     string   `json:"estatus" validate:"omitempty,oneof=Pendiente Realizada"`
	Lista       []string `json:"listaAsistencia"`
}

func (r asistenciaRequest) toRequest() (attendance.Request, error) {
	inicio, err := parseFecha(r.FechaInicio)
	if err != nil {
		return attendance.Request{}, err
	}
	fin, err := parseFecha(r.FechaFin)
	if err != nil {
		return attendance.Request{}, err
	}
	return attendance.Request{
		Actividad:   r.Actividad,
		Ubicacion:   r.Ubicacion,
		Grupo:       r.Grupo,
		FechaInicio: inicio,
		FechaFin:    fin,
		HoraInicio:  r.HoraInicio,
		HoraFin:     r.HoraFin,
		Estatus:     r.Estatus,
		Lista:       r.Lista,
	}, nil
}

func bindAsistencia(c *gin.Context) (attendance.Request, bool) {
	var body asistenciaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Datos de la asistencia inválidos")
		return attendance.Request{}, false
	}
	if err := validate.Struct(body); err != nil {
		badRequest(c, "Datos de la asistencia inválidos")
		return attendance.Request{}, false
	}
	req, err := body.toRequest()
	if err != nil {
		badRequest(c, "El formato de las fechas debe ser YYYY-MM-DD")
		return attendance.Request{}, false
	}
	return req, true
}

// CreateAsistencia registers a new attendance record.
func (h *Handler) CreateAsistencia(c *gin.Context) {
	req, okReq := bindAsistencia(c)
	if !okReq {
		return
	}
	view, err := h.att.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Asistencia registrada correctamente", gin.H{"asistencia": view})
}

// ListAsistencias returns every record as its enriched view.
func (h *Handler) ListAsistencias(c *gin.Context) {
	views, err := h.att.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de asistencias", gin.H{"asistencias": views})
}

// GetAsistencia returns one record as its enriched view.
func (h *Handler) GetAsistencia(c *gin.Context) {
	view, err := h.att.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Asistencia encontrada", gin.H{"asistencia": view})
}

// UpdateAsistencia fully replaces a record's mutable fields.
func (h *Handler) UpdateAsistencia(c *gin.Context) {
	req, okReq := bindAsistencia(c)
	if !okReq {
		return
	}
	view, changed, err := h.att.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	mensaje := "Asistencia actualizada correctamente"
	if !changed {
		mensaje = "No se realizaron cambios en la asistencia"
	}
	ok(c, http.StatusOK, mensaje, gin.H{"asistencia": view})
}

// AddAlumnoAsistencia appends one alumno to a record's roster.
func (h *Handler) AddAlumnoAsistencia(c *gin.Context) {
	view, err := h.att.AddAlumno(c.Request.Context(), c.Param("id"), c.Param("alumnoID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Alumno agregado a la asistencia", gin.H{"asistencia": view})
}

// RemoveAlumnoAsistencia deletes one alumno from a record's roster.
func (h *Handler) RemoveAlumnoAsistencia(c *gin.Context) {
	view, err := h.att.RemoveAlumno(c.Request.Context(), c.Param("id"), c.Param("alumnoID"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Alumno eliminado de la asistencia", gin.H{"asistencia": view})
}

// CancelAsistencia marks a record Cancelada. Cancelling twice is a no-op
// reported as success.
func (h *Handler) CancelAsistencia(c *gin.Context) {
	already, err := h.att.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	mensaje := "Asistencia cancelada correctamente"
	if already {
		mensaje = "La asistencia ya estaba cancelada"
	}
	ok(c, http.StatusOK, mensaje, nil)
}
