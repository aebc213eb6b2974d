package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlumno(t *testing.T) {
	u, err := NewAlumno("ana@test.mx", "Ana", "García", "supersecreta", AlumnoProfile{
		NoControl: "20240001", Semestre: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, RolAlumno, u.Tipo)
	assert.Equal(t, "activo", u.Estatus)
	require.NotNil(t, u.Alumno)
	assert.Nil(t, u.Tutor)
	assert.Nil(t, u.Coordinador)
	assert.Equal(t, "20240001", u.Alumno.NoControl)
	assert.NotEqual(t, "supersecreta", u.PasswordHash)
	assert.True(t, u.CheckPassword("supersecreta"))
	assert.False(t, u.CheckPassword("otra"))
}

func TestNewTutorAndCoordinador(t *testing.T) {
	tu, err := NewTutor("t@test.mx", "Tomás", "Vega", "supersecreta", TutorProfile{NoDocente: "D-10", HorasTutoria: 4})
	require.NoError(t, err)
	assert.Equal(t, RolTutor, tu.Tipo)
	require.NotNil(t, tu.Tutor)
	assert.Nil(t, tu.Alumno)

	co, err := NewCoordinador("c@test.mx", "Carla", "Mora", "supersecreta", CoordinadorProfile{NoEmpleado: "E-7", Departamento: "Sistemas"})
	require.NoError(t, err)
	assert.Equal(t, RolCoordinador, co.Tipo)
	require.NotNil(t, co.Coordinador)
}

func TestNewUserRequiresPassword(t *testing.T) {
	_, err := NewAlumno("ana@test.mx", "Ana", "García", "", AlumnoProfile{})
	assert.Error(t, err)
}
