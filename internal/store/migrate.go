package store

import (
	"context"
	"database/sql"
	"log"
)

// schema holds the DDL applied at startup. Statements are idempotent so the
// API can be restarted against an existing database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS carreras (
		id UUID PRIMARY KEY,
		nombre TEXT NOT NULL,
		estatus TEXT NOT NULL DEFAULT 'Activa'
	)`,
	`CREATE TABLE IF NOT EXISTS ciclos (
		id UUID PRIMARY KEY,
		nombre TEXT NOT NULL,
		estatus TEXT NOT NULL DEFAULT 'Activo'
	)`,
	`CREATE TABLE IF NOT EXISTS usuarios (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		nombre TEXT NOT NULL,
		apellidos TEXT NOT NULL,
		tipo TEXT NOT NULL CHECK (tipo IN ('alumno','tutor','coordinador')),
		password_hash TEXT NOT NULL,
		estatus TEXT NOT NULL DEFAULT 'activo',
		fecha_registro TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		no_control TEXT,
		semestre INT,
		carrera_id UUID REFERENCES carreras(id),
		no_docente TEXT,
		horas_tutoria INT,
		no_empleado TEXT,
		departamento TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS actividades (
		id UUID PRIMARY KEY,
		nombre TEXT NOT NULL,
		descripcion TEXT NOT NULL,
		estatus TEXT NOT NULL DEFAULT 'Creada',
		obligatoria BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS ubicaciones (
		id UUID PRIMARY KEY,
		nombre TEXT NOT NULL,
		interno BOOLEAN NOT NULL DEFAULT TRUE,
		latitud DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitud DOUBLE PRECISION NOT NULL DEFAULT 0,
		estatus TEXT NOT NULL DEFAULT 'Activa'
	)`,
	`CREATE TABLE IF NOT EXISTS grupos (
		id UUID PRIMARY KEY,
		nombre TEXT NOT NULL,
		semestre INT NOT NULL,
		ciclo_id UUID REFERENCES ciclos(id),
		carrera_id UUID REFERENCES carreras(id),
		tutor_id UUID REFERENCES usuarios(id),
		estatus TEXT NOT NULL DEFAULT 'Activo'
	)`,
	`CREATE TABLE IF NOT EXISTS grupo_alumnos (
		grupo_id UUID NOT NULL REFERENCES grupos(id) ON DELETE CASCADE,
		alumno_id UUID NOT NULL REFERENCES usuarios(id),
		PRIMARY KEY (grupo_id, alumno_id)
	)`,
	`CREATE TABLE IF NOT EXISTS asistencias (
		id UUID PRIMARY KEY,
		actividad_id UUID NOT NULL REFERENCES actividades(id),
		ubicacion_id UUID NOT NULL REFERENCES ubicaciones(id),
		grupo_id UUID NOT NULL REFERENCES grupos(id),
		fecha_registro TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		fecha_inicio DATE NOT NULL,
		fecha_fin DATE NOT NULL,
		hora_inicio TEXT NOT NULL,
		hora_fin TEXT NOT NULL,
		estatus TEXT NOT NULL DEFAULT 'Pendiente' CHECK (estatus IN ('Pendiente','Realizada','Cancelada'))
	)`,
	// One record per activity, group and calendar day of fecha_inicio. Turns
	// a concurrent check-then-insert race into a constraint violation.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_asistencias_actividad_grupo_dia
		ON asistencias (actividad_id, grupo_id, fecha_inicio)`,
	// Roster rows; the primary key rejects a duplicate alumno per asistencia.
	`CREATE TABLE IF NOT EXISTS asistencia_alumnos (
		asistencia_id UUID NOT NULL REFERENCES asistencias(id) ON DELETE CASCADE,
		alumno_id UUID NOT NULL REFERENCES usuarios(id),
		fecha_hora_registro TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (asistencia_id, alumno_id)
	)`,
}

// Migrate applies the schema at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("Running database migrations...")
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	log.Println("Database migrations completed")
	return nil
}
