package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
)

type actividadRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion"`
	Estatus     string `json:"estatus" validate:"omitempty,oneof=Creada Realizada Cancelada"`
	Obligatoria bool   `json:"obligatoria"`
}

type ubicacionRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Interno  bool    `json:"interno"`
	Latitud  float64 `json:"latitud"`
	Longitud float64 `json:"longitud"`
	Estatus  string  `json:"estatus" validate:"omitempty,oneof=Activa Cancelada"`
}

type nombreRequest struct {
	Nombre string `json:"nombre" validate:"required"`
}

func bind(c *gin.Context, dst any, mensaje string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, mensaje)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		badRequest(c, mensaje)
		return false
	}
	return true
}

// catalogFail maps the catalog sentinels onto the envelope.
func catalogFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "No encontrado"})
	case errors.Is(err, catalog.ErrTutorInvalido),
		errors.Is(err, catalog.ErrAlumnosInvalidos),
		errors.Is(err, catalog.ErrAlumnoInvalido):
		badRequest(c, err.Error())
	default:
		fail(c, err)
	}
}

// ---------- actividades ----------

func (h *Handler) CreateActividad(c *gin.Context) {
	var body actividadRequest
	if !bind(c, &body, "Datos de la actividad inválidos") {
		return
	}
	a, err := h.catalog.CreateActividad(c.Request.Context(), catalog.Actividad{
		Nombre:      body.Nombre,
		Descripcion: body.Descripcion,
		Estatus:     body.Estatus,
		Obligatoria: body.Obligatoria,
	})
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Actividad registrada correctamente", gin.H{"actividad": a})
}

func (h *Handler) ListActividades(c *gin.Context) {
	out, err := h.catalog.ListActividades(c.Request.Context())
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de actividades", gin.H{"actividades": out})
}

func (h *Handler) GetActividad(c *gin.Context) {
	a, err := h.catalog.GetActividad(c.Request.Context(), c.Param("id"))
	if err != nil {
		catalogFail(c, err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "La actividad especificada no existe"})
		return
	}
	ok(c, http.StatusOK, "Actividad encontrada", gin.H{"actividad": a})
}

func (h *Handler) UpdateActividad(c *gin.Context) {
	var body actividadRequest
	if !bind(c, &body, "Datos de la actividad inválidos") {
		return
	}
	a := catalog.Actividad{
		ID:          c.Param("id"),
		Nombre:      body.Nombre,
		Descripcion: body.Descripcion,
		Estatus:     body.Estatus,
		Obligatoria: body.Obligatoria,
	}
	if a.Estatus == "" {
		a.Estatus = "Creada"
	}
	if err := h.catalog.UpdateActividad(c.Request.Context(), a); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Actividad actualizada correctamente", gin.H{"actividad": a})
}

func (h *Handler) CancelActividad(c *gin.Context) {
	if err := h.catalog.CancelActividad(c.Request.Context(), c.Param("id")); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Actividad cancelada correctamente", nil)
}

// ---------- ubicaciones ----------

func (h *Handler) CreateUbicacion(c *gin.Context) {
	var body ubicacionRequest
	if !bind(c, &body, "Datos de la ubicación inválidos") {
		return
	}
	u, err := h.catalog.CreateUbicacion(c.Request.Context(), catalog.Ubicacion{
		Nombre:   body.Nombre,
		Interno:  body.Interno,
		Latitud:  body.Latitud,
		Longitud: body.Longitud,
		Estatus:  body.Estatus,
	})
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Ubicación registrada correctamente", gin.H{"ubicacion": u})
}

func (h *Handler) ListUbicaciones(c *gin.Context) {
	out, err := h.catalog.ListUbicaciones(c.Request.Context())
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de ubicaciones", gin.H{"ubicaciones": out})
}

func (h *Handler) GetUbicacion(c *gin.Context) {
	u, err := h.catalog.GetUbicacion(c.Request.Context(), c.Param("id"))
	if err != nil {
		catalogFail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "La ubicación especificada no existe"})
		return
	}
	ok(c, http.StatusOK, "Ubicación encontrada", gin.H{"ubicacion": u})
}

func (h *Handler) UpdateUbicacion(c *gin.Context) {
	var body ubicacionRequest
	if !bind(c, &body, "Datos de la ubicación inválidos") {
		return
	}
	u := catalog.Ubicacion{
		ID:       c.Param("id"),
		Nombre:   body.Nombre,
		Interno:  body.Interno,
		Latitud:  body.Latitud,
		Longitud: body.Longitud,
		Estatus:  body.Estatus,
	}
	if u.Estatus == "" {
		u.Estatus = "Activa"
	}
	if err := h.catalog.UpdateUbicacion(c.Request.Context(), u); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Ubicación actualizada correctamente", gin.H{"ubicacion": u})
}

func (h *Handler) CancelUbicacion(c *gin.Context) {
	if err := h.catalog.CancelUbicacion(c.Request.Context(), c.Param("id")); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Ubicación cancelada correctamente", nil)
}

// ---------- carreras / ciclos ----------

func (h *Handler) CreateCarrera(c *gin.Context) {
	var body nombreRequest
	if !bind(c, &body, "Datos de la carrera inválidos") {
		return
	}
	carrera, err := h.catalog.CreateCarrera(c.Request.Context(), catalog.Carrera{Nombre: body.Nombre})
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Carrera registrada correctamente", gin.H{"carrera": carrera})
}

func (h *Handler) ListCarreras(c *gin.Context) {
	out, err := h.catalog.ListCarreras(c.Request.Context())
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de carreras", gin.H{"carreras": out})
}

func (h *Handler) CreateCiclo(c *gin.Context) {
	var body nombreRequest
	if !bind(c, &body, "Datos del ciclo inválidos") {
		return
	}
	ciclo, err := h.catalog.CreateCiclo(c.Request.Context(), catalog.Ciclo{Nombre: body.Nombre})
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Ciclo registrado correctamente", gin.H{"ciclo": ciclo})
}

func (h *Handler) ListCiclos(c *gin.Context) {
	out, err := h.catalog.ListCiclos(c.Request.Context())
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de ciclos", gin.H{"ciclos": out})
}
