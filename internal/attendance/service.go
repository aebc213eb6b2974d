package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/metrics"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// Records is the persistence surface for attendance records.
type Records interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, rec Record) error
	SetStatus(ctx context.Context, id, status string) error
	DuplicateExists(ctx context.Context, actividadID, grupoID string, dia time.Time, excludeID string) (bool, error)
	AddAlumno(ctx context.Context, id, alumnoID string, at time.Time) (bool, error)
	RemoveAlumno(ctx context.Context, id, alumnoID string) (bool, error)
}

// Catalog provides existence checks, group rosters and read summaries for
// activities, locations and groups.
type Catalog interface {
	ActividadExists(ctx context.Context, id string) (bool, error)
	UbicacionExists(ctx context.Context, id string) (bool, error)
	GrupoExists(ctx context.Context, id string) (bool, error)
	GrupoAlumnos(ctx context.Context, grupoID string) ([]string, error)
	ActividadInfo(ctx context.Context, id string) (*catalog.ActividadInfo, error)
	UbicacionInfo(ctx context.Context, id string) (*catalog.UbicacionInfo, error)
	GrupoInfo(ctx context.Context, id string) (*catalog.GrupoInfo, error)
}

// Users provides alumno existence checks and read summaries.
type Users interface {
	AlumnoExists(ctx context.Context, id string) (bool, error)
	CountAlumnos(ctx context.Context, ids []string) (int, error)
	AlumnoInfo(ctx context.Context, id string) (*users.AlumnoInfo, error)
}

// ViewCache caches enriched views. Implementations log their own failures;
// a miss and an error look the same to the service.
type ViewCache interface {
	Get(ctx context.Context, id string) (*View, bool)
	Set(ctx context.Context, id string, v *View)
	Del(ctx context.Context, id string)
}

// Events receives a notification after every successful write.
type Events interface {
	RecordChanged(ctx context.Context, id string)
}

// Service is the sole write path for attendance records and the sole read
// path for their enriched views.
type Service struct {
	records Records
	catalog Catalog
	users   Users
	cache   ViewCache // optional
	events  Events    // optional
	now     func() time.Time
}

// NewService creates the attendance manager.
func NewService(records Records, cat Catalog, usr Users) *Service {
	return &Service{records: records, catalog: cat, users: usr, now: time.Now}
}

// WithCache attaches an enriched-view cache.
func (s *Service) WithCache(c ViewCache) *Service {
	s.cache = c
	return s
}

// WithEvents attaches a change-event publisher.
func (s *Service) WithEvents(e Events) *Service {
	s.events = e
	return s
}

// storeFailure logs the storage error and hides it behind a generic message.
func storeFailure(op string, err error) error {
	log.Printf("asistencias: %s: storage error: %v", op, err)
	return internalErr(msgErrorInterno)
}

func resultado(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case KindNotFound:
		return "no_encontrado"
	case KindValidation:
		return "validacion"
	case KindMembership:
		return "membresia"
	case KindDuplicate:
		return "duplicado"
	default:
		return "interno"
	}
}

func (s *Service) count(op string, err error) {
	metrics.Operations.WithLabelValues(op, resultado(err)).Inc()
}

func (s *Service) changed(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Del(ctx, id)
	}
	if s.events != nil {
		s.events.RecordChanged(ctx, id)
	}
}

// normalizeStatus applies the Pendiente default for write payloads.
func normalizeStatus(status string) string {
	if status == "" {
		return StatusPendiente
	}
	return status
}

func statusAllowed(status string) bool {
	switch status {
	case "", StatusPendiente, StatusRealizada:
		return true
	}
	return false
}

// alumnosEnGrupo validates that every candidate belongs to the group's own
// roster and resolves to a usuario of tipo alumno. An empty candidate list
// trivially validates; any mismatch fails as one aggregate error.
func (s *Service) alumnosEnGrupo(ctx context.Context, grupoID string, lista []string) error {
	if len(lista) == 0 {
		return nil
	}
	roster, err := s.catalog.GrupoAlumnos(ctx, grupoID)
	if err != nil {
		return storeFailure("alumnosEnGrupo", err)
	}
	enGrupo := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		enGrupo[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(lista))
	for _, id := range lista {
		if _, ok := enGrupo[id]; !ok {
			return membershipErr(msgAlumnosFueraGrupo)
		}
		if _, dup := seen[id]; dup {
			return membershipErr(msgAlumnosFueraGrupo)
		}
		seen[id] = struct{}{}
	}
	n, err := s.users.CountAlumnos(ctx, lista)
	if err != nil {
		return storeFailure("alumnosEnGrupo", err)
	}
	if n != len(lista) {
		return membershipErr(msgAlumnosFueraGrupo)
	}
	return nil
}

// validateRefs runs the first three preconditions in order, fail-fast.
func (s *Service) validateRefs(ctx context.Context, req Request) error {
	ok, err := s.catalog.ActividadExists(ctx, req.Actividad)
	if err != nil {
		return storeFailure("validateRefs", err)
	}
	if !ok {
		return notFoundf(msgActividadNoExiste)
	}
	ok, err = s.catalog.UbicacionExists(ctx, req.Ubicacion)
	if err != nil {
		return storeFailure("validateRefs", err)
	}
	if !ok {
		return notFoundf(msgUbicacionNoExiste)
	}
	ok, err = s.catalog.GrupoExists(ctx, req.Grupo)
	if err != nil {
		return storeFailure("validateRefs", err)
	}
	if !ok {
		return notFoundf(msgGrupoNoExiste)
	}
	return nil
}

// Create registers a new attendance record. Preconditions run strictly in
// order and the first failure wins: actividad, ubicación, grupo, membership,
// duplicate day, fechas, horas.
func (s *Service) Create(ctx context.Context, req Request) (*View, error) {
	view, err := s.create(ctx, req)
	s.count("crear", err)
	return view, err
}

func (s *Service) create(ctx context.Context, req Request) (*View, error) {
	if err := s.validateRefs(ctx, req); err != nil {
		return nil, err
	}
	if err := s.alumnosEnGrupo(ctx, req.Grupo, req.Lista); err != nil {
		return nil, err
	}
	dup, err := s.records.DuplicateExists(ctx, req.Actividad, req.Grupo, req.FechaInicio, "")
	if err != nil {
		return nil, storeFailure("create", err)
	}
	if dup {
		return nil, duplicateErr(msgAsistenciaDup)
	}
	if err := ValidatePeriod(req.FechaInicio, req.FechaFin, req.HoraInicio, req.HoraFin); err != nil {
		return nil, err
	}
	if !statusAllowed(req.Estatus) {
		return nil, validationErr("El estatus debe ser Pendiente o Realizada")
	}

	now := s.now()
	rec := Record{
		ActividadID:   req.Actividad,
		UbicacionID:   req.Ubicacion,
		GrupoID:       req.Grupo,
		FechaRegistro: now,
		FechaInicio:   DayOf(req.FechaInicio),
		FechaFin:      DayOf(req.FechaFin),
		HoraInicio:    req.HoraInicio,
		HoraFin:       req.HoraFin,
		Estatus:       normalizeStatus(req.Estatus),
	}
	for _, alumno := range req.Lista {
		rec.Lista = append(rec.Lista, Entry{AlumnoID: alumno, FechaHoraRegistro: now})
	}

	rec, err = s.records.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrDuplicateDay) {
			return nil, duplicateErr(msgAsistenciaDup)
		}
		return nil, storeFailure("create", err)
	}
	s.changed(ctx, rec.ID)
	return s.project(ctx, &rec)
}

// Update fully replaces a record's mutable fields, re-running every create
// precondition. The duplicate check is skipped when actividad, grupo and the
// calendar day of fecha de inicio are unchanged, so re-saving a record is
// idempotent. Returns changed=false with the current view when the payload
// matches the stored record.
func (s *Service) Update(ctx context.Context, id string, req Request) (*View, bool, error) {
	view, changed, err := s.update(ctx, id, req)
	s.count("actualizar", err)
	return view, changed, err
}

func (s *Service) update(ctx context.Context, id string, req Request) (*View, bool, error) {
	stored, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, false, storeFailure("update", err)
	}
	if stored == nil {
		return nil, false, notFoundf("Asistencia con ID %s no encontrada", id)
	}

	if err := s.validateRefs(ctx, req); err != nil {
		return nil, false, err
	}
	if err := s.alumnosEnGrupo(ctx, req.Grupo, req.Lista); err != nil {
		return nil, false, err
	}

	sameKey := stored.ActividadID == req.Actividad &&
		stored.GrupoID == req.Grupo &&
		DayOf(stored.FechaInicio).Equal(DayOf(req.FechaInicio))
	if !sameKey {
		dup, err := s.records.DuplicateExists(ctx, req.Actividad, req.Grupo, req.FechaInicio, id)
		if err != nil {
			return nil, false, storeFailure("update", err)
		}
		if dup {
			return nil, false, duplicateErr(msgAsistenciaDup)
		}
	}
	if err := ValidatePeriod(req.FechaInicio, req.FechaFin, req.HoraInicio, req.HoraFin); err != nil {
		return nil, false, err
	}
	if !statusAllowed(req.Estatus) {
		return nil, false, validationErr("El estatus debe ser Pendiente o Realizada")
	}

	if unchangedBy(stored, req) {
		view, err := s.project(ctx, stored)
		return view, false, err
	}

	now := s.now()
	rec := Record{
		ID:            stored.ID,
		ActividadID:   req.Actividad,
		UbicacionID:   req.Ubicacion,
		GrupoID:       req.Grupo,
		FechaRegistro: stored.FechaRegistro,
		FechaInicio:   DayOf(req.FechaInicio),
		FechaFin:      DayOf(req.FechaFin),
		HoraInicio:    req.HoraInicio,
		HoraFin:       req.HoraFin,
		Estatus:       normalizeStatus(req.Estatus),
	}
	for _, alumno := range req.Lista {
		rec.Lista = append(rec.Lista, Entry{AlumnoID: alumno, FechaHoraRegistro: now})
	}

	if err := s.records.Update(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateDay) {
			return nil, false, duplicateErr(msgAsistenciaDup)
		}
		return nil, false, storeFailure("update", err)
	}
	s.changed(ctx, rec.ID)
	view, err := s.project(ctx, &rec)
	return view, true, err
}

// unchangedBy reports whether applying req would leave the stored record
// identical, ignoring the roster re-stamp that a real update would perform.
func unchangedBy(stored *Record, req Request) bool {
	if stored.ActividadID != req.Actividad ||
		stored.UbicacionID != req.Ubicacion ||
		stored.GrupoID != req.Grupo ||
		!DayOf(stored.FechaInicio).Equal(DayOf(req.FechaInicio)) ||
		!DayOf(stored.FechaFin).Equal(DayOf(req.FechaFin)) ||
		stored.HoraInicio != req.HoraInicio ||
		stored.HoraFin != req.HoraFin ||
		stored.Estatus != normalizeStatus(req.Estatus) ||
		len(stored.Lista) != len(req.Lista) {
		return false
	}
	for i, e := range stored.Lista {
		if e.AlumnoID != req.Lista[i] {
			return false
		}
	}
	return true
}

// AddAlumno appends one alumno to a record's roster. Adding an alumno that is
// already on the roster fails; it never silently succeeds with a stale stamp.
func (s *Service) AddAlumno(ctx context.Context, id, alumnoID string) (*View, error) {
	view, err := s.addAlumno(ctx, id, alumnoID)
	s.count("agregar_alumno", err)
	return view, err
}

func (s *Service) addAlumno(ctx context.Context, id, alumnoID string) (*View, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeFailure("addAlumno", err)
	}
	if rec == nil {
		return nil, notFoundf("Asistencia con ID %s no encontrada", id)
	}
	ok, err := s.users.AlumnoExists(ctx, alumnoID)
	if err != nil {
		return nil, storeFailure("addAlumno", err)
	}
	if !ok {
		return nil, notFoundf(msgAlumnoNoExiste)
	}
	roster, err := s.catalog.GrupoAlumnos(ctx, rec.GrupoID)
	if err != nil {
		return nil, storeFailure("addAlumno", err)
	}
	enGrupo := false
	for _, al := range roster {
		if al == alumnoID {
			enGrupo = true
			break
		}
	}
	if !enGrupo {
		return nil, membershipErr(msgAlumnoFueraGrupo)
	}
	for _, e := range rec.Lista {
		if e.AlumnoID == alumnoID {
			return nil, duplicateErr(msgAlumnoYaRegistrado)
		}
	}

	now := s.now()
	added, err := s.records.AddAlumno(ctx, id, alumnoID, now)
	if err != nil {
		return nil, storeFailure("addAlumno", err)
	}
	if !added {
		return nil, duplicateErr(msgAlumnoYaRegistrado)
	}
	rec.Lista = append(rec.Lista, Entry{AlumnoID: alumnoID, FechaHoraRegistro: now})
	s.changed(ctx, id)
	return s.project(ctx, rec)
}

// RemoveAlumno deletes one alumno from a record's roster.
func (s *Service) RemoveAlumno(ctx context.Context, id, alumnoID string) (*View, error) {
	view, err := s.removeAlumno(ctx, id, alumnoID)
	s.count("eliminar_alumno", err)
	return view, err
}

func (s *Service) removeAlumno(ctx context.Context, id, alumnoID string) (*View, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeFailure("removeAlumno", err)
	}
	if rec == nil {
		return nil, notFoundf("Asistencia con ID %s no encontrada", id)
	}
	ok, err := s.users.AlumnoExists(ctx, alumnoID)
	if err != nil {
		return nil, storeFailure("removeAlumno", err)
	}
	if !ok {
		return nil, notFoundf(msgAlumnoNoExiste)
	}

	removed, err := s.records.RemoveAlumno(ctx, id, alumnoID)
	if err != nil {
		return nil, storeFailure("removeAlumno", err)
	}
	if !removed {
		return nil, notFoundf(msgAlumnoNoRegistrado)
	}
	lista := rec.Lista[:0]
	for _, e := range rec.Lista {
		if e.AlumnoID != alumnoID {
			lista = append(lista, e)
		}
	}
	rec.Lista = lista
	s.changed(ctx, id)
	return s.project(ctx, rec)
}

// Cancel transitions a record to Cancelada, the only terminal state. A record
// that is already cancelled reports already=true and no error; the transition
// is idempotent and nothing is ever physically deleted.
func (s *Service) Cancel(ctx context.Context, id string) (already bool, err error) {
	already, err = s.cancel(ctx, id)
	s.count("cancelar", err)
	return already, err
}

func (s *Service) cancel(ctx context.Context, id string) (bool, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return false, storeFailure("cancel", err)
	}
	if rec == nil {
		return false, notFoundf("Asistencia con ID %s no encontrada", id)
	}
	if rec.Estatus == StatusCancelada {
		return true, nil
	}
	if err := s.records.SetStatus(ctx, id, StatusCancelada); err != nil {
		return false, storeFailure("cancel", err)
	}
	s.changed(ctx, id)
	return false, nil
}

// Get returns the enriched view of one record, serving from cache when warm.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, id); ok {
			return v, nil
		}
	}
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, storeFailure("get", err)
	}
	if rec == nil {
		return nil, notFoundf("Asistencia con ID %s no encontrada", id)
	}
	view, err := s.project(ctx, rec)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, id, view)
	}
	return view, nil
}

// List returns the enriched views of every record.
func (s *Service) List(ctx context.Context) ([]View, error) {
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, storeFailure("list", err)
	}
	out := make([]View, 0, len(recs))
	for i := range recs {
		view, err := s.project(ctx, &recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}
