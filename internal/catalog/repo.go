package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors surfaced to handlers with the product's wording.
var (
	ErrNoEncontrado     = errors.New("no encontrado")
	ErrTutorInvalido    = errors.New("El tutor especificado no existe o no es de tipo tutor")
	ErrAlumnosInvalidos = errors.New("Uno o más alumnos especificados no existen o no son de tipo alumno")
	ErrAlumnoInvalido   = errors.New("El alumno especificado no existe o no es de tipo alumno")
)

// Repository persists catalog entities in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// validID reports whether id parses as a UUID. A malformed id is treated the
// same as a missing entity everywhere in this package.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ---------- existence checks ----------

func (r *Repository) exists(ctx context.Context, table, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// ActividadExists reports whether the activity exists.
func (r *Repository) ActividadExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "actividades", id)
}

// UbicacionExists reports whether the location exists.
func (r *Repository) UbicacionExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "ubicaciones", id)
}

// GrupoExists reports whether the group exists.
func (r *Repository) GrupoExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "grupos", id)
}

// GrupoAlumnos returns the ids of the alumnos enrolled in a group. A missing
// or malformed group id yields an empty roster.
func (r *Repository) GrupoAlumnos(ctx context.Context, grupoID string) ([]string, error) {
	if !validID(grupoID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT alumno_id FROM grupo_alumnos WHERE grupo_id = $1`, grupoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---------- summaries for read projections ----------

// ActividadInfo resolves an activity summary, nil when it no longer exists.
func (r *Repository) ActividadInfo(ctx context.Context, id string) (*ActividadInfo, error) {
	if !validID(id) {
		return nil, nil
	}
	var info ActividadInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, descripcion, estatus, obligatoria
		FROM actividades WHERE id = $1
	`, id).Scan(&info.ID, &info.Nombre, &info.Descripcion, &info.Estatus, &info.Obligatoria)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// UbicacionInfo resolves a location summary, nil when it no longer exists.
func (r *Repository) UbicacionInfo(ctx context.Context, id string) (*UbicacionInfo, error) {
	if !validID(id) {
		return nil, nil
	}
	var info UbicacionInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, interno, latitud, longitud, estatus
		FROM ubicaciones WHERE id = $1
	`, id).Scan(&info.ID, &info.Nombre, &info.Interno, &info.Latitud, &info.Longitud, &info.Estatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GrupoInfo resolves a group summary, nil when it no longer exists.
func (r *Repository) GrupoInfo(ctx context.Context, id string) (*GrupoInfo, error) {
	if !validID(id) {
		return nil, nil
	}
	var info GrupoInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, semestre, estatus
		FROM grupos WHERE id = $1
	`, id).Scan(&info.ID, &info.Nombre, &info.Semestre, &info.Estatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ---------- actividades ----------

// CreateActividad inserts a new activity.
func (r *Repository) CreateActividad(ctx context.Context, a Actividad) (Actividad, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Estatus == "" {
		a.Estatus = "Creada"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO actividades (id, nombre, descripcion, estatus, obligatoria)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Nombre, a.Descripcion, a.Estatus, a.Obligatoria)
	return a, err
}

// ListActividades returns all activities.
func (r *Repository) ListActividades(ctx context.Context) ([]Actividad, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, descripcion, estatus, obligatoria FROM actividades ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Actividad
	for rows.Next() {
		var a Actividad
		if err := rows.Scan(&a.ID, &a.Nombre, &a.Descripcion, &a.Estatus, &a.Obligatoria); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetActividad returns one activity.
func (r *Repository) GetActividad(ctx context.Context, id string) (*Actividad, error) {
	info, err := r.ActividadInfo(ctx, id)
	if err != nil || info == nil {
		return nil, err
	}
	return &Actividad{ID: info.ID, Nombre: info.Nombre, Descripcion: info.Descripcion, Estatus: info.Estatus, Obligatoria: info.Obligatoria}, nil
}

// UpdateActividad replaces the mutable fields of an activity.
func (r *Repository) UpdateActividad(ctx context.Context, a Actividad) error {
	if !validID(a.ID) {
		return ErrNoEncontrado
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE actividades SET nombre = $2, descripcion = $3, estatus = $4, obligatoria = $5
		WHERE id = $1
	`, a.ID, a.Nombre, a.Descripcion, a.Estatus, a.Obligatoria)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// CancelActividad soft-deletes an activity. Nothing is ever removed.
func (r *Repository) CancelActividad(ctx context.Context, id string) error {
	return r.cancel(ctx, "actividades", id, "Cancelada")
}

// ---------- ubicaciones ----------

// CreateUbicacion inserts a new location.
func (r *Repository) CreateUbicacion(ctx context.Context, u Ubicacion) (Ubicacion, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Estatus == "" {
		u.Estatus = "Activa"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ubicaciones (id, nombre, interno, latitud, longitud, estatus)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Nombre, u.Interno, u.Latitud, u.Longitud, u.Estatus)
	return u, err
}

// ListUbicaciones returns all locations.
func (r *Repository) ListUbicaciones(ctx context.Context) ([]Ubicacion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, interno, latitud, longitud, estatus FROM ubicaciones ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ubicacion
	for rows.Next() {
		var u Ubicacion
		if err := rows.Scan(&u.ID, &u.Nombre, &u.Interno, &u.Latitud, &u.Longitud, &u.Estatus); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUbicacion returns one location.
func (r *Repository) GetUbicacion(ctx context.Context, id string) (*Ubicacion, error) {
	info, err := r.UbicacionInfo(ctx, id)
	if err != nil || info == nil {
		return nil, err
	}
	return &Ubicacion{ID: info.ID, Nombre: info.Nombre, Interno: info.Interno, Latitud: info.Latitud, Longitud: info.Longitud, Estatus: info.Estatus}, nil
}

// UpdateUbicacion replaces the mutable fields of a location.
func (r *Repository) UpdateUbicacion(ctx context.Context, u Ubicacion) error {
	if !validID(u.ID) {
		return ErrNoEncontrado
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE ubicaciones SET nombre = $2, interno = $3, latitud = $4, longitud = $5, estatus = $6
		WHERE id = $1
	`, u.ID, u.Nombre, u.Interno, u.Latitud, u.Longitud, u.Estatus)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// CancelUbicacion soft-deletes a location.
func (r *Repository) CancelUbicacion(ctx context.Context, id string) error {
	return r.cancel(ctx, "ubicaciones", id, "Cancelada")
}

func (r *Repository) cancel(ctx context.Context, table, id, status string) error {
	if !validID(id) {
		return ErrNoEncontrado
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET estatus = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// ---------- carreras / ciclos ----------

// CreateCarrera inserts an academic program.
func (r *Repository) CreateCarrera(ctx context.Context, c Carrera) (Carrera, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Estatus == "" {
		c.Estatus = "Activa"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carreras (id, nombre, estatus) VALUES ($1, $2, $3)
	`, c.ID, c.Nombre, c.Estatus)
	return c, err
}

// ListCarreras returns all academic programs.
func (r *Repository) ListCarreras(ctx context.Context) ([]Carrera, error) {
	return r.listNamed(ctx, "carreras")
}

// CreateCiclo inserts an academic cycle.
func (r *Repository) CreateCiclo(ctx context.Context, c Ciclo) (Ciclo, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Estatus == "" {
		c.Estatus = "Activo"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ciclos (id, nombre, estatus) VALUES ($1, $2, $3)
	`, c.ID, c.Nombre, c.Estatus)
	return c, err
}

// ListCiclos returns all academic cycles.
func (r *Repository) ListCiclos(ctx context.Context) ([]Ciclo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, estatus FROM ciclos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ciclo
	for rows.Next() {
		var c Ciclo
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Estatus); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) listNamed(ctx context.Context, table string) ([]Carrera, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, estatus FROM `+table+` ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Carrera
	for rows.Next() {
		var c Carrera
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Estatus); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
