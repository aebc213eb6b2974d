package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/CHGL17/AsistenciasREST/internal/attendance"
	"github.com/CHGL17/AsistenciasREST/internal/auth"
	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/config"
	"github.com/CHGL17/AsistenciasREST/internal/store"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// validate checks request DTO tags beyond what gin binding covers.
var validate = validator.New()

// Handler wires the HTTP API onto the services and repositories.
type Handler struct {
	att     *attendance.Service
	catalog *catalog.Repository
	users   *users.Repository
	db      *store.DB
	redis   *store.Redis
	cfg     config.App
}

// New creates the handler.
func New(att *attendance.Service, cat *catalog.Repository, usr *users.Repository, db *store.DB, redis *store.Redis, cfg config.App) *Handler {
	return &Handler{att: att, catalog: cat, users: usr, db: db, redis: redis, cfg: cfg}
}

// Routes registers every endpoint with its role guard. The role table is the
// original product's: coordinadores and tutores write attendance, alumnos can
// read it, only coordinadores manage the catalog and staff accounts.
func (h *Handler) Routes(r *gin.Engine) {
	key, issuer := h.cfg.JWTSigningKey, h.cfg.JWTIssuer
	soloCoord := auth.RequireRoles(key, issuer, users.RolCoordinador)
	coordTutor := auth.RequireRoles(key, issuer, users.RolCoordinador, users.RolTutor)
	todos := auth.RequireRoles(key, issuer, users.RolCoordinador, users.RolTutor, users.RolAlumno)

	r.GET("/healthz", h.Healthz)

	u := r.Group("/usuarios")
	u.POST("/login", h.Login)
	u.POST("/registro", h.RegistroAlumno)
	u.POST("/registro/tutor", soloCoord, h.RegistroTutor)
	u.POST("/registro/coordinador", soloCoord, h.RegistroCoordinador)
	u.GET("/:id", todos, h.GetUsuario)

	a := r.Group("/actividades")
	a.GET("", todos, h.ListActividades)
	a.GET("/:id", todos, h.GetActividad)
	a.POST("", soloCoord, h.CreateActividad)
	a.PUT("/:id", soloCoord, h.UpdateActividad)
	a.DELETE("/:id", soloCoord, h.CancelActividad)

	ub := r.Group("/ubicaciones")
	ub.GET("", todos, h.ListUbicaciones)
	ub.GET("/:id", todos, h.GetUbicacion)
	ub.POST("", soloCoord, h.CreateUbicacion)
	ub.PUT("/:id", soloCoord, h.UpdateUbicacion)
	ub.DELETE("/:id", soloCoord, h.CancelUbicacion)

	ca := r.Group("/carreras")
	ca.GET("", todos, h.ListCarreras)
	ca.POST("", soloCoord, h.CreateCarrera)

	ci := r.Group("/ciclos")
	ci.GET("", todos, h.ListCiclos)
	ci.POST("", soloCoord, h.CreateCiclo)

	g := r.Group("/grupos")
	g.GET("", todos, h.ListGrupos)
	g.GET("/:id", todos, h.GetGrupo)
	g.POST("", soloCoord, h.CreateGrupo)
	g.PUT("/:id", soloCoord, h.UpdateGrupo)
	g.DELETE("/:id", soloCoord, h.CancelGrupo)
	g.PATCH("/:id/alumnos/:alumnoID", soloCoord, h.AddAlumnoGrupo)
	g.DELETE("/:id/alumnos/:alumnoID", soloCoord, h.RemoveAlumnoGrupo)

	as := r.Group("/asistencias")
	as.POST("", coordTutor, h.CreateAsistencia)
	as.GET("", todos, h.ListAsistencias)
	as.GET("/:id", todos, h.GetAsistencia)
	as.PUT("/:id", coordTutor, h.UpdateAsistencia)
	as.PATCH("/:id/alumnos/:alumnoID", coordTutor, h.AddAlumnoAsistencia)
	as.DELETE("/:id/alumnos/:alumnoID", coordTutor, h.RemoveAlumnoAsistencia)
	as.DELETE("/:id", coordTutor, h.CancelAsistencia)
}

// Healthz reports process, database and redis health.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// ok writes the original response envelope with estatus OK.
func ok(c *gin.Context, code int, mensaje string, extra gin.H) {
	body := gin.H{"estatus": "OK", "mensaje": mensaje}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

// fail maps an attendance error kind to an HTTP status and writes the
// envelope with estatus ERROR.
func fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch attendance.KindOf(err) {
	case attendance.KindNotFound:
		code = http.StatusNotFound
	case attendance.KindValidation, attendance.KindMembership, attendance.KindDuplicate:
		code = http.StatusBadRequest
	}
	mensaje := err.Error()
	if code == http.StatusInternalServerError {
		mensaje = "Error interno, consulte al administrador"
	}
	c.JSON(code, gin.H{"estatus": "ERROR", "mensaje": mensaje})
}

// badRequest writes a 400 with the given message.
func badRequest(c *gin.Context, mensaje string) {
	c.JSON(http.StatusBadRequest, gin.H{"estatus": "ERROR", "mensaje": mensaje})
}

// parseFecha accepts a bare date or a full RFC 3339 timestamp.
func parseFecha(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
