package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmailRegistrado is returned when the email is already taken.
var ErrEmailRegistrado = errors.New("El email ya se encuentra registrado")

// Repository persists user accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create inserts a user of any role.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.FechaRegistro.IsZero() {
		u.FechaRegistro = time.Now().UTC()
	}

	var taken bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM usuarios WHERE email = $1)
	`, u.Email).Scan(&taken); err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrEmailRegistrado
	}

	var (
		noControl, noDocente, noEmpleado, departamento, carrera any
		semestre, horasTutoria                                  any
	)
	switch {
	case u.Alumno != nil:
		noControl, semestre = u.Alumno.NoControl, u.Alumno.Semestre
		if u.Alumno.CarreraID != "" {
			carrera = u.Alumno.CarreraID
		}
	case u.Tutor != nil:
		noDocente, horasTutoria = u.Tutor.NoDocente, u.Tutor.HorasTutoria
		if u.Tutor.CarreraID != "" {
			carrera = u.Tutor.CarreraID
		}
	case u.Coordinador != nil:
		noEmpleado, departamento = u.Coordinador.NoEmpleado, u.Coordinador.Departamento
		if u.Coordinador.CarreraID != "" {
			carrera = u.Coordinador.CarreraID
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usuarios (id, email, nombre, apellidos, tipo, password_hash, estatus, fecha_registro,
			no_control, semestre, carrera_id, no_docente, horas_tutoria, no_empleado, departamento)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, u.ID, u.Email, u.Nombre, u.Apellidos, u.Tipo, u.PasswordHash, u.Estatus, u.FechaRegistro,
		noControl, semestre, carrera, noDocente, horasTutoria, noEmpleado, departamento)
	return u, err
}

func (r *Repository) scanUser(row *sql.Row) (*User, error) {
	var u User
	var noControl, noDocente, noEmpleado, departamento, carrera sql.NullString
	var semestre, horasTutoria sql.NullInt64
	err := row.Scan(&u.ID, &u.Email, &u.Nombre, &u.Apellidos, &u.Tipo, &u.PasswordHash,
		&u.Estatus, &u.FechaRegistro,
		&noControl, &semestre, &carrera, &noDocente, &horasTutoria, &noEmpleado, &departamento)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch u.Tipo {
	case RolAlumno:
		u.Alumno = &AlumnoProfile{NoControl: noControl.String, Semestre: int(semestre.Int64), CarreraID: carrera.String}
	case RolTutor:
		u.Tutor = &TutorProfile{NoDocente: noDocente.String, HorasTutoria: int(horasTutoria.Int64), CarreraID: carrera.String}
	case RolCoordinador:
		u.Coordinador = &CoordinadorProfile{NoEmpleado: noEmpleado.String, Departamento: departamento.String, CarreraID: carrera.String}
	}
	return &u, nil
}

const userColumns = `id, email, nombre, apellidos, tipo, password_hash, estatus, fecha_registro,
	no_control, semestre, carrera_id, no_docente, horas_tutoria, no_empleado, departamento`

// GetByID returns a user, nil when missing or the id is malformed.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
}

// GetByEmail returns an active user by email, nil when missing.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM usuarios WHERE email = $1 AND estatus = 'activo'
	`, email))
}

// AlumnoExists reports whether id resolves to a usuario of tipo alumno.
func (r *Repository) AlumnoExists(ctx context.Context, id string) (bool, error) {
	return r.existsAs(ctx, id, RolAlumno)
}

// TutorExists reports whether id resolves to a usuario of tipo tutor.
func (r *Repository) TutorExists(ctx context.Context, id string) (bool, error) {
	return r.existsAs(ctx, id, RolTutor)
}

func (r *Repository) existsAs(ctx context.Context, id, tipo string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND tipo = $2)
	`, id, tipo).Scan(&ok)
	return ok, err
}

// CountAlumnos counts how many of the given ids are usuarios of tipo alumno.
// Malformed ids simply do not count.
func (r *Repository) CountAlumnos(ctx context.Context, ids []string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM usuarios WHERE tipo = 'alumno' AND id::text = ANY($1)
	`, valid).Scan(&n)
	return n, err
}

// AlumnoInfo resolves a student summary, nil when the id does not resolve to
// an alumno.
func (r *Repository) AlumnoInfo(ctx context.Context, id string) (*AlumnoInfo, error) {
	if !validID(id) {
		return nil, nil
	}
	var info AlumnoInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT nombre, apellidos, email, COALESCE(no_control, ''), COALESCE(semestre, 0)
		FROM usuarios WHERE id = $1 AND tipo = 'alumno'
	`, id).Scan(&info.Nombre, &info.Apellidos, &info.Email, &info.NoControl, &info.Semestre)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
