package catalog

// Actividad is a registered activity students attend.
type Actividad struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Estatus     string `json:"estatus"`
	Obligatoria bool   `json:"obligatoria"`
}

// Ubicacion is a place where activities happen.
type Ubicacion struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Interno  bool    `json:"interno"`
	Latitud  float64 `json:"latitud"`
	Longitud float64 `json:"longitud"`
	Estatus  string  `json:"estatus"`
}

// Grupo is a tutoring group: a tutor plus its enrolled alumnos.
type Grupo struct {
	ID        string   `json:"id"`
	Nombre    string   `json:"nombre"`
	Semestre  int      `json:"semestre"`
	CicloID   string   `json:"ciclo"`
	CarreraID string   `json:"carrera"`
	TutorID   string   `json:"tutor"`
	Alumnos   []string `json:"alumnos"`
	Estatus   string   `json:"estatus"`
}

// Carrera is an academic program.
type Carrera struct {
	ID      string `json:"id"`
	Nombre  string `json:"nombre"`
	Estatus string `json:"estatus"`
}

// Ciclo is an academic cycle (school period).
type Ciclo struct {
	ID      string `json:"id"`
	Nombre  string `json:"nombre"`
	Estatus string `json:"estatus"`
}

// Denormalized summaries used by read projections.

type ActividadInfo struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Estatus     string `json:"estatus"`
	Obligatoria bool   `json:"obligatoria"`
}

type UbicacionInfo struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Interno  bool    `json:"interno"`
	Latitud  float64 `json:"latitud"`
	Longitud float64 `json:"longitud"`
	Estatus  string  `json:"estatus"`
}

type GrupoInfo struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Semestre int    `json:"semestre"`
	Estatus  string `json:"estatus"`
}
