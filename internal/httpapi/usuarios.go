package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CHGL17/AsistenciasREST/internal/auth"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registroAlumnoRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Nombre    string `json:"nombre" validate:"required"`
	Apellidos string `json:"apellidos" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	NoControl string `json:"noControl" validate:"required"`
	Semestre  int    `json:"semestre" validate:"required,min=1,max=14"`
	Carrera   string `json:"carrera"`
}

type registroTutorRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Nombre       string `json:"nombre" validate:"required"`
	Apellidos    string `json:"apellidos" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	NoDocente    string `json:"noDocente" validate:"required"`
	HorasTutoria int    `json:"horasTutoria" validate:"min=0"`
	Carrera      string `json:"carrera"`
}

type registroCoordinadorRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Nombre       string `json:"nombre" validate:"required"`
	Apellidos    string `json:"apellidos" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	NoEmpleado   string `json:"noEmpleado" validate:"required"`
	Departamento string `json:"departamento" validate:"required"`
	Carrera      string `json:"carrera"`
}

// Login checks credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Email y password son requeridos")
		return
	}
	if err := validate.Struct(body); err != nil {
		badRequest(c, "Email y password son requeridos")
		return
	}

	u, err := h.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		fail(c, err)
		return
	}
	if u == nil || !u.CheckPassword(body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"estatus": "ERROR", "mensaje": "Credenciales inválidas"})
		return
	}

	token, expiresAt, err := auth.Issue(u.ID, u.Tipo, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Inicio de sesión exitoso", gin.H{
		"token":  token,
		"expira": expiresAt,
		"usuario": gin.H{
			"id": u.ID, "nombre": u.Nombre, "apellidos": u.Apellidos, "tipo": u.Tipo,
		},
	})
}

func (h *Handler) registrar(c *gin.Context, u users.User, err error) {
	if err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	created, err := h.users.Create(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, users.ErrEmailRegistrado) {
			badRequest(c, err.Error())
			return
		}
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Usuario registrado correctamente", gin.H{"usuario": created})
}

// RegistroAlumno is the public sign-up for student accounts.
func (h *Handler) RegistroAlumno(c *gin.Context) {
	var body registroAlumnoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	if err := validate.Struct(body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	u, err := users.NewAlumno(body.Email, body.Nombre, body.Apellidos, body.Password, users.AlumnoProfile{
		NoControl: body.NoControl,
		Semestre:  body.Semestre,
		CarreraID: body.Carrera,
	})
	h.registrar(c, u, err)
}

// RegistroTutor creates a tutor account. Coordinador only.
func (h *Handler) RegistroTutor(c *gin.Context) {
	var body registroTutorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	if err := validate.Struct(body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	u, err := users.NewTutor(body.Email, body.Nombre, body.Apellidos, body.Password, users.TutorProfile{
		NoDocente:    body.NoDocente,
		HorasTutoria: body.HorasTutoria,
		CarreraID:    body.Carrera,
	})
	h.registrar(c, u, err)
}

// RegistroCoordinador creates a coordinator account. Coordinador only.
func (h *Handler) RegistroCoordinador(c *gin.Context) {
	var body registroCoordinadorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	if err := validate.Struct(body); err != nil {
		badRequest(c, "Datos del usuario inválidos")
		return
	}
	u, err := users.NewCoordinador(body.Email, body.Nombre, body.Apellidos, body.Password, users.CoordinadorProfile{
		NoEmpleado:   body.NoEmpleado,
		Departamento: body.Departamento,
		CarreraID:    body.Carrera,
	})
	h.registrar(c, u, err)
}

// GetUsuario returns one account without its password hash.
func (h *Handler) GetUsuario(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"estatus": "ERROR", "mensaje": "Usuario no encontrado"})
		return
	}
	ok(c, http.StatusOK, "Usuario encontrado", gin.H{"usuario": u})
}
