package users

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles. The set is closed: one constructor per role, no open dispatch.
const (
	RolAlumno      = "alumno"
	RolTutor       = "tutor"
	RolCoordinador = "coordinador"
)

// AlumnoProfile carries the fields specific to a student account.
type AlumnoProfile struct {
	NoControl string `json:"noControl"`
	Semestre  int    `json:"semestre"`
	CarreraID string `json:"carrera"`
}

// TutorProfile carries the fields specific to a tutor account.
type TutorProfile struct {
	NoDocente    string `json:"noDocente"`
	HorasTutoria int    `json:"horasTutoria"`
	CarreraID    string `json:"carrera"`
}

// CoordinadorProfile carries the fields specific to a coordinator account.
type CoordinadorProfile struct {
	NoEmpleado   string `json:"noEmpleado"`
	Departamento string `json:"departamento"`
	CarreraID    string `json:"carrera"`
}

// User is an account of exactly one role; the matching profile pointer is set
// and the other two are nil.
type User struct {
	ID            string              `json:"id"`
	Email         string              `json:"email"`
	Nombre        string              `json:"nombre"`
	Apellidos     string              `json:"apellidos"`
	Tipo          string              `json:"tipo"`
	PasswordHash  string              `json:"-"`
	Estatus       string              `json:"estatus"`
	FechaRegistro time.Time           `json:"fechaRegistro"`
	Alumno        *AlumnoProfile      `json:"alumno,omitempty"`
	Tutor         *TutorProfile       `json:"tutor,omitempty"`
	Coordinador   *CoordinadorProfile `json:"coordinador,omitempty"`
}

// AlumnoInfo is the denormalized student summary exposed by read projections.
type AlumnoInfo struct {
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Email     string `json:"email"`
	NoControl string `json:"noControl"`
	Semestre  int    `json:"semestre"`
}

var errPasswordVacio = errors.New("password requerido")

func newUser(email, nombre, apellidos, tipo, password string) (User, error) {
	if password == "" {
		return User{}, errPasswordVacio
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return User{
		Email:        email,
		Nombre:       nombre,
		Apellidos:    apellidos,
		Tipo:         tipo,
		PasswordHash: string(hash),
		Estatus:      "activo",
	}, nil
}

// NewAlumno builds a student account with a hashed password.
func NewAlumno(email, nombre, apellidos, password string, profile AlumnoProfile) (User, error) {
	u, err := newUser(email, nombre, apellidos, RolAlumno, password)
	if err != nil {
		return User{}, err
	}
	u.Alumno = &profile
	return u, nil
}

// NewTutor builds a tutor account with a hashed password.
func NewTutor(email, nombre, apellidos, password string, profile TutorProfile) (User, error) {
	u, err := newUser(email, nombre, apellidos, RolTutor, password)
	if err != nil {
		return User{}, err
	}
	u.Tutor = &profile
	return u, nil
}

// NewCoordinador builds a coordinator account with a hashed password.
func NewCoordinador(email, nombre, apellidos, password string, profile CoordinadorProfile) (User, error) {
	u, err := newUser(email, nombre, apellidos, RolCoordinador, password)
	if err != nil {
		return User{}, err
	}
	u.Coordinador = &profile
	return u, nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
