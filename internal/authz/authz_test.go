package authz

import (
	"testing"

	"tiendapos/internal/model"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activo(rol string, permisos ...string) *model.Empleado {
	return &model.Empleado{
		Nombre:          "test",
		Rol:             rol,
		PermisosModulos: pq.StringArray(permisos),
		Activo:          true,
	}
}

func TestCanAccess_NilYInactivoSiempreDeniegan(t *testing.T) {
	for _, m := range Modules {
		assert.False(t, CanAccess(nil, m), "nil user debe denegar %s", m)
	}

	inactivo := activo(RolAdministrador)
	inactivo.Activo = false
	for _, m := range Modules {
		assert.False(t, CanAccess(inactivo, m), "inactivo debe denegar %s", m)
	}
}

func TestCanAccess_AdministradorSiemprePermitido(t *testing.T) {
	admin := activo(RolAdministrador)
	for _, m := range append(Modules, ModuleCalendario) {
		assert.True(t, CanAccess(admin, m), "admin debe acceder a %s", m)
	}

	// El short-circuit de admin ignora cualquier lista explícita.
	adminRestringido := activo(RolAdministrador, ModuleDashboard)
	assert.True(t, CanAccess(adminRestringido, ModuleEmpleados))
}

func TestCanAccess_ListaExplicitaEsExclusiva(t *testing.T) {
	// Un Gerente normalmente accede a ventas por tabla de rol; con lista
	// explícita, la lista manda y el default del rol se ignora.
	e := activo(RolGerente, ModuleCaja, ModuleReportes)

	assert.True(t, CanAccess(e, ModuleCaja))
	assert.True(t, CanAccess(e, ModuleReportes))
	assert.False(t, CanAccess(e, ModuleVentas))
	assert.False(t, CanAccess(e, ModuleDashboard))
}

func TestCanAccess_FallbackTablaDeRol(t *testing.T) {
	vendedor := activo(RolVendedor)

	assert.True(t, CanAccess(vendedor, ModuleVentas))
	assert.True(t, CanAccess(vendedor, ModuleClientes))
	assert.False(t, CanAccess(vendedor, ModuleEmpleados))
	assert.False(t, CanAccess(vendedor, ModuleReportes))
}

func TestCanAccess_RolDesconocidoDeniega(t *testing.T) {
	e := activo("Pasante")
	for _, m := range Modules {
		assert.False(t, CanAccess(e, m))
	}
}

func TestAccessibleModules_Tecnico(t *testing.T) {
	tecnico := activo(RolTecnico)

	// calendario está en la tabla de roles pero fuera de la enumeración.
	assert.Equal(t, []string{ModuleDashboard, ModuleProductos}, AccessibleModules(tecnico))
	assert.False(t, CanAccess(tecnico, ModuleClientes))
	assert.False(t, CanAccess(tecnico, ModuleVentas))

	bloqueados := BlockedModules(tecnico)
	require.Len(t, bloqueados, 5)
	assert.Contains(t, bloqueados, ModuleClientes)
	assert.Contains(t, bloqueados, ModuleVentas)
	assert.Contains(t, bloqueados, ModuleCaja)
}

func TestAccessibleModules_SinUsuario(t *testing.T) {
	assert.Empty(t, AccessibleModules(nil))
	assert.Len(t, BlockedModules(nil), len(Modules))
}

func TestCanPerform(t *testing.T) {
	cajero := activo(RolCajero)
	assert.True(t, CanPerform(cajero, ModuleCaja, VerbCreate))
	assert.True(t, CanPerform(cajero, ModuleVentas, VerbRead))
	assert.False(t, CanPerform(cajero, ModuleVentas, VerbDelete))
	assert.False(t, CanPerform(cajero, ModuleEmpleados, VerbRead))

	// manage implica todos los verbos.
	gerente := activo(RolGerente)
	assert.True(t, CanPerform(gerente, ModuleCaja, VerbDelete))

	admin := activo(RolAdministrador)
	assert.True(t, CanPerform(admin, ModuleReportes, VerbDelete))
}

func TestCanPerform_ListaExplicitaUsaVerbosDelRol(t *testing.T) {
	// Acceso por lista explícita, granularidad por tabla del rol.
	e := activo(RolVendedor, ModuleVentas)
	assert.True(t, CanPerform(e, ModuleVentas, VerbCreate))
	assert.False(t, CanPerform(e, ModuleVentas, VerbDelete))

	// Módulo concedido por lista pero sin verbos en el rol: acceso sí,
	// ninguna acción concreta.
	r := activo(RolVendedor, ModuleReportes)
	assert.True(t, CanAccess(r, ModuleReportes))
	assert.False(t, CanPerform(r, ModuleReportes, VerbRead))
}
