package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateDay is returned by Insert when the unique index on
// (actividad, grupo, día de fecha_inicio) rejects the row. It converts the
// check-then-insert race into a reportable duplicate.
var ErrDuplicateDay = errors.New("asistencia duplicada para actividad, grupo y fecha")

// Repository persists attendance records in Postgres. The roster lives in
// asistencia_alumnos; its primary key rejects a duplicate alumno per record.
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert writes a record and its roster in one transaction.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO asistencias (id, actividad_id, ubicacion_id, grupo_id, fecha_registro,
			fecha_inicio, fecha_fin, hora_inicio, hora_fin, estatus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.ID, rec.ActividadID, rec.UbicacionID, rec.GrupoID, rec.FechaRegistro,
		rec.FechaInicio, rec.FechaFin, rec.HoraInicio, rec.HoraFin, rec.Estatus)
	if err != nil {
		if isUniqueViolation(err) {
			return Record{}, ErrDuplicateDay
		}
		return Record{}, err
	}
	for _, e := range rec.Lista {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO asistencia_alumnos (asistencia_id, alumno_id, fecha_hora_registro)
			VALUES ($1, $2, $3)
		`, rec.ID, e.AlumnoID, e.FechaHoraRegistro); err != nil {
			return Record{}, err
		}
	}
	return rec, tx.Commit()
}

// Get returns one record with its roster, nil when missing or malformed id.
func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, nil
	}
	var rec Record
	err := r.db.QueryRowContext(ctx, `
		SELECT id, actividad_id, ubicacion_id, grupo_id, fecha_registro,
			fecha_inicio, fecha_fin, hora_inicio, hora_fin, estatus
		FROM asistencias WHERE id = $1
	`, id).Scan(&rec.ID, &rec.ActividadID, &rec.UbicacionID, &rec.GrupoID, &rec.FechaRegistro,
		&rec.FechaInicio, &rec.FechaFin, &rec.HoraInicio, &rec.HoraFin, &rec.Estatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Lista, err = r.roster(ctx, rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) roster(ctx context.Context, id string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT alumno_id, fecha_hora_registro
		FROM asistencia_alumnos WHERE asistencia_id = $1
		ORDER BY fecha_hora_registro, alumno_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.AlumnoID, &e.FechaHoraRegistro); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns all records with their rosters, newest registration first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actividad_id, ubicacion_id, grupo_id, fecha_registro,
			fecha_inicio, fecha_fin, hora_inicio, hora_fin, estatus
		FROM asistencias ORDER BY fecha_registro DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ActividadID, &rec.UbicacionID, &rec.GrupoID, &rec.FechaRegistro,
			&rec.FechaInicio, &rec.FechaFin, &rec.HoraInicio, &rec.HoraFin, &rec.Estatus); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Lista, err = r.roster(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DuplicateExists reports whether another record shares the same actividad,
// grupo and calendar day. The day is matched against the stored fecha_inicio
// date column, so the [día, día+1) window collapses to an equality.
func (r *Repository) DuplicateExists(ctx context.Context, actividadID, grupoID string, dia time.Time, excludeID string) (bool, error) {
	if !validID(actividadID) || !validID(grupoID) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM asistencias
			WHERE actividad_id = $1 AND grupo_id = $2 AND fecha_inicio = $3::date AND id::text <> $4
		)
	`, actividadID, grupoID, DayOf(dia), excludeID).Scan(&ok)
	return ok, err
}

// Update replaces a record's mutable fields and rebuilds its roster in one
// transaction.
func (r *Repository) Update(ctx context.Context, rec Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE asistencias
		SET actividad_id = $2, ubicacion_id = $3, grupo_id = $4,
			fecha_inicio = $5, fecha_fin = $6, hora_inicio = $7, hora_fin = $8, estatus = $9
		WHERE id = $1
	`, rec.ID, rec.ActividadID, rec.UbicacionID, rec.GrupoID,
		rec.FechaInicio, rec.FechaFin, rec.HoraInicio, rec.HoraFin, rec.Estatus)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDay
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM asistencia_alumnos WHERE asistencia_id = $1`, rec.ID); err != nil {
		return err
	}
	for _, e := range rec.Lista {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO asistencia_alumnos (asistencia_id, alumno_id, fecha_hora_registro)
			VALUES ($1, $2, $3)
		`, rec.ID, e.AlumnoID, e.FechaHoraRegistro); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetStatus updates only the record status.
func (r *Repository) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE asistencias SET estatus = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddAlumno appends one roster entry. Returns false when the alumno is
// already on the roster (including the concurrent-add race, absorbed by the
// primary key).
func (r *Repository) AddAlumno(ctx context.Context, id, alumnoID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO asistencia_alumnos (asistencia_id, alumno_id, fecha_hora_registro)
		VALUES ($1, $2, $3)
		ON CONFLICT (asistencia_id, alumno_id) DO NOTHING
	`, id, alumnoID, at)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveAlumno deletes one roster entry. Returns false when absent.
func (r *Repository) RemoveAlumno(ctx context.Context, id, alumnoID string) (bool, error) {
	if !validID(alumnoID) {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM asistencia_alumnos WHERE asistencia_id = $1 AND alumno_id = $2
	`, id, alumnoID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
