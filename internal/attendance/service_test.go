package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// ---------- fakes ----------

type fakeRecords struct {
	recs map[string]Record
	seq  int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{recs: make(map[string]Record)}
}

func (f *fakeRecords) duplicate(actividadID, grupoID string, dia time.Time, excludeID string) bool {
	for id, r := range f.recs {
		if id == excludeID {
			continue
		}
		if r.ActividadID == actividadID && r.GrupoID == grupoID && DayOf(r.FechaInicio).Equal(DayOf(dia)) {
			return true
		}
	}
	return false
}

func (f *fakeRecords) Insert(_ context.Context, rec Record) (Record, error) {
	if f.duplicate(rec.ActividadID, rec.GrupoID, rec.FechaInicio, "") {
		return Record{}, ErrDuplicateDay
	}
	f.seq++
	rec.ID = fmt.Sprintf("asistencia-%d", f.seq)
	f.recs[rec.ID] = rec
	return rec, nil
}

func (f *fakeRecords) Get(_ context.Context, id string) (*Record, error) {
	r, ok := f.recs[id]
	if !ok {
		return nil, nil
	}
	cp := r
	cp.Lista = append([]Entry(nil), r.Lista...)
	return &cp, nil
}

func (f *fakeRecords) List(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(f.recs))
	for id := range f.recs {
		r, _ := f.Get(ctx, id)
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecords) Update(_ context.Context, rec Record) error {
	if _, ok := f.recs[rec.ID]; !ok {
		return errors.New("no rows updated")
	}
	if f.duplicate(rec.ActividadID, rec.GrupoID, rec.FechaInicio, rec.ID) {
		return ErrDuplicateDay
	}
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeRecords) SetStatus(_ context.Context, id, status string) error {
	r, ok := f.recs[id]
	if !ok {
		return errors.New("no rows updated")
	}
	r.Estatus = status
	f.recs[id] = r
	return nil
}

func (f *fakeRecords) DuplicateExists(_ context.Context, actividadID, grupoID string, dia time.Time, excludeID string) (bool, error) {
	return f.duplicate(actividadID, grupoID, dia, excludeID), nil
}

func (f *fakeRecords) AddAlumno(_ context.Context, id, alumnoID string, at time.Time) (bool, error) {
	r, ok := f.recs[id]
	if !ok {
		return false, errors.New("missing record")
	}
	for _, e := range r.Lista {
		if e.AlumnoID == alumnoID {
			return false, nil
		}
	}
	r.Lista = append(r.Lista, Entry{AlumnoID: alumnoID, FechaHoraRegistro: at})
	f.recs[id] = r
	return true, nil
}

func (f *fakeRecords) RemoveAlumno(_ context.Context, id, alumnoID string) (bool, error) {
	r, ok := f.recs[id]
	if !ok {
		return false, errors.New("missing record")
	}
	kept := r.Lista[:0]
	removed := false
	for _, e := range r.Lista {
		if e.AlumnoID == alumnoID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.Lista = kept
	f.recs[id] = r
	return removed, nil
}

type fakeCatalog struct {
	actividades map[string]catalog.ActividadInfo
	ubicaciones map[string]catalog.UbicacionInfo
	grupos      map[string]catalog.GrupoInfo
	rosters     map[string][]string
}

func (f *fakeCatalog) ActividadExists(_ context.Context, id string) (bool, error) {
	_, ok := f.actividades[id]
	return ok, nil
}

func (f *fakeCatalog) UbicacionExists(_ context.Context, id string) (bool, error) {
	_, ok := f.ubicaciones[id]
	return ok, nil
}

func (f *fakeCatalog) GrupoExists(_ context.Context, id string) (bool, error) {
	_, ok := f.grupos[id]
	return ok, nil
}

func (f *fakeCatalog) GrupoAlumnos(_ context.Context, grupoID string) ([]string, error) {
	return f.rosters[grupoID], nil
}

func (f *fakeCatalog) ActividadInfo(_ context.Context, id string) (*catalog.ActividadInfo, error) {
	if info, ok := f.actividades[id]; ok {
		return &info, nil
	}
	return nil, nil
}

func (f *fakeCatalog) UbicacionInfo(_ context.Context, id string) (*catalog.UbicacionInfo, error) {
	if info, ok := f.ubicaciones[id]; ok {
		return &info, nil
	}
	return nil, nil
}

func (f *fakeCatalog) GrupoInfo(_ context.Context, id string) (*catalog.GrupoInfo, error) {
	if info, ok := f.grupos[id]; ok {
		return &info, nil
	}
	return nil, nil
}

type fakeUsers struct {
	alumnos map[string]users.AlumnoInfo
}

func (f *fakeUsers) AlumnoExists(_ context.Context, id string) (bool, error) {
	_, ok := f.alumnos[id]
	return ok, nil
}

func (f *fakeUsers) CountAlumnos(_ context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := f.alumnos[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) AlumnoInfo(_ context.Context, id string) (*users.AlumnoInfo, error) {
	if info, ok := f.alumnos[id]; ok {
		return &info, nil
	}
	return nil, nil
}

type fakeCache struct {
	views map[string]*View
	sets  int
	dels  int
}

func newFakeCache() *fakeCache { return &fakeCache{views: make(map[string]*View)} }

func (f *fakeCache) Get(_ context.Context, id string) (*View, bool) {
	v, ok := f.views[id]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, id string, v *View) {
	f.sets++
	f.views[id] = v
}

func (f *fakeCache) Del(_ context.Context, id string) {
	f.dels++
	delete(f.views, id)
}

type fakeEvents struct {
	changed []string
}

func (f *fakeEvents) RecordChanged(_ context.Context, id string) {
	f.changed = append(f.changed, id)
}

// ---------- fixture ----------

type fixture struct {
	svc     *Service
	records *fakeRecords
	catalog *fakeCatalog
	users   *fakeUsers
	cache   *fakeCache
	events  *fakeEvents
	now     time.Time
}

func newFixture() *fixture {
	cat := &fakeCatalog{
		actividades: map[string]catalog.ActividadInfo{
			"act-1": {ID: "act-1", Nombre: "Asesoría de cálculo", Estatus: "Creada", Obligatoria: true},
			"act-2": {ID: "act-2", Nombre: "Taller de lectura", Estatus: "Creada"},
		},
		ubicaciones: map[string]catalog.UbicacionInfo{
			"ubi-1": {ID: "ubi-1", Nombre: "Aula 12", Interno: true, Estatus: "Activa"},
		},
		grupos: map[string]catalog.GrupoInfo{
			"grp-1": {ID: "grp-1", Nombre: "3A", Semestre: 3, Estatus: "Activo"},
		},
		rosters: map[string][]string{
			"grp-1": {"al-1", "al-2"},
		},
	}
	usr := &fakeUsers{alumnos: map[string]users.AlumnoInfo{
		"al-1": {Nombre: "Ana", Apellidos: "García", Email: "ana@test.mx", NoControl: "20240001", Semestre: 3},
		"al-2": {Nombre: "Beto", Apellidos: "Luna", Email: "beto@test.mx", NoControl: "20240002", Semestre: 3},
		"al-3": {Nombre: "Caro", Apellidos: "Ríos", Email: "caro@test.mx", NoControl: "20240003", Semestre: 5},
	}}
	f := &fixture{
		records: newFakeRecords(),
		catalog: cat,
		users:   usr,
		cache:   newFakeCache(),
		events:  &fakeEvents{},
		now:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewService(f.records, cat, usr).WithCache(f.cache).WithEvents(f.events)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func validRequest() Request {
	return Request{
		Actividad:   "act-1",
		Ubicacion:   "ubi-1",
		Grupo:       "grp-1",
		FechaInicio: date(2024, 3, 1),
		FechaFin:    date(2024, 3, 1),
		HoraInicio:  "10:00",
		HoraFin:     "12:00",
		Lista:       []string{"al-1", "al-2"},
	}
}

// ---------- create ----------

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("registers with roster and defaults to Pendiente", func(t *testing.T) {
		f := newFixture()
		view, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, view.ID)
		assert.Equal(t, StatusPendiente, view.Estatus)
		assert.Equal(t, "Asesoría de cálculo", view.Actividad.Nombre)
		assert.Equal(t, "Aula 12", view.Ubicacion.Nombre)
		assert.Equal(t, "3A", view.Grupo.Nombre)
		require.Len(t, view.Lista, 2)
		assert.Equal(t, "Ana", view.Lista[0].Alumno.Nombre)
		assert.Equal(t, f.now, view.Lista[0].FechaHoraRegistro)
		assert.Equal(t, f.now, view.FechaRegistro)
		assert.Equal(t, []string{view.ID}, f.events.changed)
	})

	t.Run("empty roster is legal", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Lista = nil
		view, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, view.Lista)
	})

	t.Run("missing actividad wins over everything else", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Actividad = "nope"
		req.Ubicacion = "nope"
		req.Grupo = "nope"
		req.HoraFin = "bogus"
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgActividadNoExiste)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("missing ubicacion", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Ubicacion = "nope"
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgUbicacionNoExiste)
	})

	t.Run("missing grupo", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Grupo = "nope"
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgGrupoNoExiste)
	})

	t.Run("alumno outside group", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Lista = []string{"al-1", "al-3"}
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgAlumnosFueraGrupo)
		assert.Equal(t, KindMembership, KindOf(err))
	})

	t.Run("duplicated alumno in roster", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Lista = []string{"al-1", "al-1"}
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgAlumnosFueraGrupo)
	})

	t.Run("membership checked before duplicate day", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.Lista = []string{"al-3"}
		_, err = f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgAlumnosFueraGrupo)
	})

	t.Run("second record same actividad grupo and day", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.HoraInicio, req.HoraFin = "16:00", "18:00"
		_, err = f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgAsistenciaDup)
		assert.Equal(t, KindDuplicate, KindOf(err))
	})

	t.Run("duplicate checked before temporal validation", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.HoraFin = "09:00"
		_, err = f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgAsistenciaDup)
	})

	t.Run("same day different actividad allowed", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.Actividad = "act-2"
		_, err = f.svc.Create(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("invalid period", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.FechaFin = date(2024, 2, 28)
		_, err := f.svc.Create(ctx, req)
		assert.EqualError(t, err, msgFechaFinAnterior)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("cannot be born Cancelada", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Estatus = StatusCancelada
		_, err := f.svc.Create(ctx, req)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

// ---------- update ----------

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.Update(ctx, "missing", validRequest())
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("identical payload reports no changes", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		view, changed, err := f.svc.Update(ctx, created.ID, validRequest())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, created.ID, view.ID)
	})

	t.Run("re-saving onto its own day skips the duplicate check", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.HoraFin = "13:00"
		view, changed, err := f.svc.Update(ctx, created.ID, req)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, "13:00", view.HoraFin)
	})

	t.Run("moving onto an occupied day fails", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		second := validRequest()
		second.FechaInicio = date(2024, 3, 2)
		second.FechaFin = date(2024, 3, 2)
		other, err := f.svc.Create(ctx, second)
		require.NoError(t, err)

		moved := validRequest()
		moved.FechaInicio = date(2024, 3, 1)
		moved.FechaFin = date(2024, 3, 1)
		_, _, err = f.svc.Update(ctx, other.ID, moved)
		assert.EqualError(t, err, msgAsistenciaDup)
	})

	t.Run("preserves fechaRegistro and re-stamps the roster", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		registro := created.FechaRegistro

		f.now = f.now.Add(2 * time.Hour)
		req := validRequest()
		req.Estatus = StatusRealizada
		view, changed, err := f.svc.Update(ctx, created.ID, req)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, registro, view.FechaRegistro)
		require.Len(t, view.Lista, 2)
		assert.Equal(t, f.now, view.Lista[0].FechaHoraRegistro)
		assert.Equal(t, StatusRealizada, view.Estatus)
	})

	t.Run("re-runs referential checks", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		req := validRequest()
		req.Ubicacion = "nope"
		_, _, err = f.svc.Update(ctx, created.ID, req)
		assert.EqualError(t, err, msgUbicacionNoExiste)
	})
}

// ---------- roster ----------

func TestAddAlumno(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with a fresh stamp", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Lista = []string{"al-1"}
		created, err := f.svc.Create(ctx, req)
		require.NoError(t, err)

		f.now = f.now.Add(30 * time.Minute)
		view, err := f.svc.AddAlumno(ctx, created.ID, "al-2")
		require.NoError(t, err)
		require.Len(t, view.Lista, 2)
		assert.Equal(t, "al-2", view.Lista[1].ID)
		assert.Equal(t, f.now, view.Lista[1].FechaHoraRegistro)
	})

	t.Run("record not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AddAlumno(ctx, "missing", "al-1")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("unknown alumno", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.svc.AddAlumno(ctx, created.ID, "nope")
		assert.EqualError(t, err, msgAlumnoNoExiste)
	})

	t.Run("alumno outside the group", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.svc.AddAlumno(ctx, created.ID, "al-3")
		assert.EqualError(t, err, msgAlumnoFueraGrupo)
	})

	t.Run("already on the roster", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.svc.AddAlumno(ctx, created.ID, "al-1")
		assert.EqualError(t, err, msgAlumnoYaRegistrado)
		assert.Equal(t, KindDuplicate, KindOf(err))
	})
}

func TestRemoveAlumno(t *testing.T) {
	ctx := context.Background()

	t.Run("removes", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		view, err := f.svc.RemoveAlumno(ctx, created.ID, "al-1")
		require.NoError(t, err)
		require.Len(t, view.Lista, 1)
		assert.Equal(t, "al-2", view.Lista[0].ID)
	})

	t.Run("not on the roster", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Lista = []string{"al-1"}
		created, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
		_, err = f.svc.RemoveAlumno(ctx, created.ID, "al-2")
		assert.EqualError(t, err, msgAlumnoNoRegistrado)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("unknown alumno", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.svc.RemoveAlumno(ctx, created.ID, "nope")
		assert.EqualError(t, err, msgAlumnoNoExiste)
	})
}

// ---------- cancel ----------

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("marks Cancelada without deleting", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		already, err := f.svc.Cancel(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, already)

		stored, err := f.records.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, StatusCancelada, stored.Estatus)
	})

	t.Run("cancelling twice is idempotent", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.svc.Cancel(ctx, created.ID)
		require.NoError(t, err)
		already, err := f.svc.Cancel(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Cancel(ctx, "missing")
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

// ---------- reads ----------

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Get(ctx, "missing")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("warm cache short-circuits storage", func(t *testing.T) {
		f := newFixture()
		cached := &View{ID: "warm", Estatus: StatusPendiente}
		f.cache.views["warm"] = cached
		view, err := f.svc.Get(ctx, "warm")
		require.NoError(t, err)
		assert.Same(t, cached, view)
	})

	t.Run("miss projects and fills the cache", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		// create invalidated the entry, so this read repopulates it
		view, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.cache.sets)
		_, warm := f.cache.views[view.ID]
		assert.True(t, warm)
	})

	t.Run("dangling references project as placeholders", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)

		delete(f.catalog.actividades, "act-1")
		delete(f.users.alumnos, "al-1")
		view, err := f.svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "(no disponible)", view.Actividad.Nombre)
		assert.Equal(t, "act-1", view.Actividad.ID)
		assert.Equal(t, "(no disponible)", view.Lista[0].Alumno.Nombre)
		assert.Equal(t, "Aula 12", view.Ubicacion.Nombre)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	second := validRequest()
	second.FechaInicio = date(2024, 3, 2)
	second.FechaFin = date(2024, 3, 2)
	_, err = f.svc.Create(ctx, second)
	require.NoError(t, err)

	views, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestWriteSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.AddAlumno(ctx, created.ID, "al-1")
	require.Error(t, err) // duplicate, no event

	_, err = f.svc.RemoveAlumno(ctx, created.ID, "al-2")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)

	// create + remove + cancel notified; the failed add did not
	assert.Equal(t, []string{created.ID, created.ID, created.ID}, f.events.changed)
	assert.Equal(t, 3, f.cache.dels)
}
