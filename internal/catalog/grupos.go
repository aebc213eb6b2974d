package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// tutorValido checks that id resolves to a usuario of tipo tutor.
func (r *Repository) tutorValido(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND tipo = 'tutor')
	`, id).Scan(&ok)
	return ok, err
}

// alumnosValidos checks that every id resolves to a usuario of tipo alumno.
// Duplicated or malformed ids fail the check.
func (r *Repository) alumnosValidos(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !validID(id) {
			return false, nil
		}
		if _, dup := seen[id]; dup {
			return false, nil
		}
		seen[id] = struct{}{}
	}
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM usuarios WHERE tipo = 'alumno' AND id::text = ANY($1)
	`, ids).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == len(ids), nil
}

// CreateGrupo inserts a group after validating its tutor and alumnos.
func (r *Repository) CreateGrupo(ctx context.Context, g Grupo) (Grupo, error) {
	ok, err := r.tutorValido(ctx, g.TutorID)
	if err != nil {
		return Grupo{}, err
	}
	if !ok {
		return Grupo{}, ErrTutorInvalido
	}
	ok, err = r.alumnosValidos(ctx, g.Alumnos)
	if err != nil {
		return Grupo{}, err
	}
	if !ok {
		return Grupo{}, ErrAlumnosInvalidos
	}

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Estatus == "" {
		g.Estatus = "Activo"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Grupo{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO grupos (id, nombre, semestre, ciclo_id, carrera_id, tutor_id, estatus)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.Nombre, g.Semestre, nullable(g.CicloID), nullable(g.CarreraID), g.TutorID, g.Estatus)
	if err != nil {
		return Grupo{}, err
	}
	for _, alumno := range g.Alumnos {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO grupo_alumnos (grupo_id, alumno_id) VALUES ($1, $2)
		`, g.ID, alumno); err != nil {
			return Grupo{}, err
		}
	}
	return g, tx.Commit()
}

// GetGrupo returns one group with its roster, nil when missing.
func (r *Repository) GetGrupo(ctx context.Context, id string) (*Grupo, error) {
	if !validID(id) {
		return nil, nil
	}
	var g Grupo
	var ciclo, carrera sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, semestre, ciclo_id, carrera_id, tutor_id, estatus
		FROM grupos WHERE id = $1
	`, id).Scan(&g.ID, &g.Nombre, &g.Semestre, &ciclo, &carrera, &g.TutorID, &g.Estatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	g.CicloID, g.CarreraID = ciclo.String, carrera.String
	if g.Alumnos, err = r.GrupoAlumnos(ctx, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGrupos returns all groups with their rosters. A negative semestre
// disables the semester filter.
func (r *Repository) ListGrupos(ctx context.Context, semestre int) ([]Grupo, error) {
	query := `SELECT id, nombre, semestre, ciclo_id, carrera_id, tutor_id, estatus FROM grupos`
	args := []any{}
	if semestre >= 0 {
		query += ` WHERE semestre = $1`
		args = append(args, semestre)
	}
	query += ` ORDER BY nombre`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Grupo
	for rows.Next() {
		var g Grupo
		var ciclo, carrera sql.NullString
		if err := rows.Scan(&g.ID, &g.Nombre, &g.Semestre, &ciclo, &carrera, &g.TutorID, &g.Estatus); err != nil {
			return nil, err
		}
		g.CicloID, g.CarreraID = ciclo.String, carrera.String
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Alumnos, err = r.GrupoAlumnos(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateGrupo replaces a group's fields and roster, re-validating tutor and
// alumnos the same way CreateGrupo does.
func (r *Repository) UpdateGrupo(ctx context.Context, g Grupo) error {
	if !validID(g.ID) {
		return ErrNoEncontrado
	}
	ok, err := r.tutorValido(ctx, g.TutorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTutorInvalido
	}
	ok, err = r.alumnosValidos(ctx, g.Alumnos)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlumnosInvalidos
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE grupos SET nombre = $2, semestre = $3, ciclo_id = $4, carrera_id = $5, tutor_id = $6, estatus = $7
		WHERE id = $1
	`, g.ID, g.Nombre, g.Semestre, nullable(g.CicloID), nullable(g.CarreraID), g.TutorID, g.Estatus)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoEncontrado
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grupo_alumnos WHERE grupo_id = $1`, g.ID); err != nil {
		return err
	}
	for _, alumno := range g.Alumnos {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO grupo_alumnos (grupo_id, alumno_id) VALUES ($1, $2)
		`, g.ID, alumno); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CancelGrupo soft-deletes a group.
func (r *Repository) CancelGrupo(ctx context.Context, id string) error {
	return r.cancel(ctx, "grupos", id, "Cancelado")
}

// AddAlumnoGrupo enrolls one alumno. Returns false when already enrolled.
func (r *Repository) AddAlumnoGrupo(ctx context.Context, grupoID, alumnoID string) (bool, error) {
	if !validID(grupoID) {
		return false, ErrNoEncontrado
	}
	ok, err := r.alumnosValidos(ctx, []string{alumnoID})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrAlumnoInvalido
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO grupo_alumnos (grupo_id, alumno_id)
		VALUES ($1, $2)
		ON CONFLICT (grupo_id, alumno_id) DO NOTHING
	`, grupoID, alumnoID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveAlumnoGrupo unenrolls one alumno. Returns false when not enrolled.
func (r *Repository) RemoveAlumnoGrupo(ctx context.Context, grupoID, alumnoID string) (bool, error) {
	if !validID(grupoID) || !validID(alumnoID) {
		return false, ErrNoEncontrado
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM grupo_alumnos WHERE grupo_id = $1 AND alumno_id = $2
	`, grupoID, alumnoID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
