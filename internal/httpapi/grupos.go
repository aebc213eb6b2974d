package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
)

type grupoRequest struct {
	Nombre   string   `json:"nombre" validate:"required"`
	Semestre int      `json:"semestre" validate:"required,min=1,max=14"`
	Ciclo    string   `json:"ciclo"`
	Carrera  string   `json:"carrera"`
	Tutor    string   `json:"tutor" validate:"required"`
	Alumnos  []string `json:"alumnos"`
	Estatus  string   `json:"estatus" validate:"omitempty,oneof=Activo Cancelado"`
}

func (r grupoRequest) toGrupo(id string) catalog.Grupo {
	return catalog.Grupo{
		ID:        id,
		Nombre:    r.Nombre,
		Semestre:  r.Semestre,
		CicloID:   r.Ciclo,
		CarreraID: r.Carrera,
		TutorID:   r.Tutor,
		Alumnos:   r.Alumnos,
		Estatus:   r.Estatus,
	}
}

// CreateGrupo registers a group with its tutor and initial roster.
func (h *Handler) CreateGrupo(c *gin.Context) {
	var body grupoRequest
	if !bind(c, &body, "Datos del grupo inválidos") {
		return
	}
	g, err := h.catalog.CreateGrupo(c.Request.Context(), body.toGrupo(""))
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Grupo registrado correctamente", gin.H{"grupo": g})
}

// ListGrupos returns all groups, optionally filtered by ?semestre=N.
func (h *Handler) ListGrupos(c *gin.Context) {
	semestre := -1
	if raw := c.Query("semestre"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "El semestre debe ser un número positivo")
			return
		}
		semestre = n
	}
	out, err := h.catalog.ListGrupos(c.Request.Context(), semestre)
	if err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Lista de grupos", gin.H{"grupos": out})
}

// GetGrupo returns one group with its roster.
func (h *Handler) GetGrupo(c *gin.Context) {
	g, err := h.catalog.GetGrupo(c.Request.Context(), c.Param("id"))
	if err != nil {
		catalogFail(c, err)
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "El grupo especificado no existe"})
		return
	}
	ok(c, http.StatusOK, "Grupo encontrado", gin.H{"grupo": g})
}

// UpdateGrupo replaces a group's fields and roster.
func (h *Handler) UpdateGrupo(c *gin.Context) {
	var body grupoRequest
	if !bind(c, &body, "Datos del grupo inválidos") {
		return
	}
	g := body.toGrupo(c.Param("id"))
	if g.Estatus == "" {
		g.Estatus = "Activo"
	}
	if err := h.catalog.UpdateGrupo(c.Request.Context(), g); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Grupo actualizado correctamente", gin.H{"grupo": g})
}

// CancelGrupo soft-deletes a group.
func (h *Handler) CancelGrupo(c *gin.Context) {
	if err := h.catalog.CancelGrupo(c.Request.Context(), c.Param("id")); err != nil {
		catalogFail(c, err)
		return
	}
	ok(c, http.StatusOK, "Grupo cancelado correctamente", nil)
}

// AddAlumnoGrupo enrolls one alumno into a group. Enrolling an alumno that is
// already in the group succeeds without changes.
func (h *Handler) AddAlumnoGrupo(c *gin.Context) {
	grupoID := c.Param("id")
	existe, err := h.catalog.GrupoExists(c.Request.Context(), grupoID)
	if err != nil {
		catalogFail(c, err)
		return
	}
	if !existe {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "El grupo especificado no existe"})
		return
	}
	added, err := h.catalog.AddAlumnoGrupo(c.Request.Context(), grupoID, c.Param("alumnoID"))
	if err != nil {
		catalogFail(c, err)
		return
	}
	mensaje := "Alumno agregado al grupo"
	if !added {
		mensaje = "El alumno ya pertenece al grupo"
	}
	ok(c, http.StatusOK, mensaje, nil)
}

// RemoveAlumnoGrupo unenrolls one alumno from a group.
func (h *Handler) RemoveAlumnoGrupo(c *gin.Context) {
	removed, err := h.catalog.RemoveAlumnoGrupo(c.Request.Context(), c.Param("id"), c.Param("alumnoID"))
	if err != nil {
		catalogFail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "El alumno no pertenece al grupo"})
		return
	}
	ok(c, http.StatusOK, "Alumno eliminado del grupo", nil)
}
