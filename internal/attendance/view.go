package attendance

import (
	"context"

	"github.com/CHGL17/AsistenciasREST/internal/catalog"
	"github.com/CHGL17/AsistenciasREST/internal/users"
)

// placeholderNombre marks a referenced entity that no longer resolves. The
// projection never fails because a catalog entity went away after the record
// was written; readers get a sentinel instead.
const placeholderNombre = "(no disponible)"

// project expands a stored record into its enriched view, resolving the
// actividad, ubicación, grupo and each alumno into denormalized summaries.
// Read-only: nothing is ever written back.
func (s *Service) project(ctx context.Context, rec *Record) (*View, error) {
	act, err := s.catalog.ActividadInfo(ctx, rec.ActividadID)
	if err != nil {
		return nil, storeFailure("project", err)
	}
	if act == nil {
		act = &catalog.ActividadInfo{ID: rec.ActividadID, Nombre: placeholderNombre}
	}
	ubi, err := s.catalog.UbicacionInfo(ctx, rec.UbicacionID)
	if err != nil {
		return nil, storeFailure("project", err)
	}
	if ubi == nil {
		ubi = &catalog.UbicacionInfo{ID: rec.UbicacionID, Nombre: placeholderNombre}
	}
	grp, err := s.catalog.GrupoInfo(ctx, rec.GrupoID)
	if err != nil {
		return nil, storeFailure("project", err)
	}
	if grp == nil {
		grp = &catalog.GrupoInfo{ID: rec.GrupoID, Nombre: placeholderNombre}
	}

	view := &View{
		ID:            rec.ID,
		Actividad:     *act,
		FechaRegistro: rec.FechaRegistro,
		FechaInicio:   rec.FechaInicio,
		FechaFin:      rec.FechaFin,
		HoraInicio:    rec.HoraInicio,
		HoraFin:       rec.HoraFin,
		Estatus:       rec.Estatus,
		Ubicacion:     *ubi,
		Grupo:         *grp,
		Lista:         make([]AlumnoAsistencia, 0, len(rec.Lista)),
	}
	for _, e := range rec.Lista {
		info, err := s.users.AlumnoInfo(ctx, e.AlumnoID)
		if err != nil {
			return nil, storeFailure("project", err)
		}
		if info == nil {
			info = &users.AlumnoInfo{Nombre: placeholderNombre}
		}
		view.Lista = append(view.Lista, AlumnoAsistencia{
			ID:                e.AlumnoID,
			FechaHoraRegistro: e.FechaHoraRegistro,
			Alumno:            *info,
		})
	}
	return view, nil
}
