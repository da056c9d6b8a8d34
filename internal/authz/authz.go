// Package authz is the single source of truth for module access decisions.
// Every call site — route middleware, handlers, reports — goes through
// CanAccess/CanPerform; the role table is never duplicated elsewhere.
package authz

import "tiendapos/internal/model"

// Verbos de permiso por módulo.
const (
	VerbRead   = "read"
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
	VerbManage = "manage" // implies every other verb
)

// Module names. Calendario exists in the role table but is excluded from
// the Modules enumeration used by AccessibleModules/BlockedModules.
const (
	ModuleDashboard  = "dashboard"
	ModuleEmpleados  = "empleados"
	ModuleProductos  = "productos"
	ModuleClientes   = "clientes"
	ModuleVentas     = "ventas"
	ModuleCaja       = "caja"
	ModuleReportes   = "reportes"
	ModuleCalendario = "calendario"
)

// Modules is the fixed enumeration applied by AccessibleModules.
var Modules = []string{
	ModuleDashboard, ModuleEmpleados, ModuleProductos, ModuleClientes,
	ModuleVentas, ModuleCaja, ModuleReportes,
}

// Roles.
const (
	RolAdministrador = "Administrador"
	RolGerente       = "Gerente"
	RolVendedor      = "Vendedor"
	RolTecnico       = "Técnico"
	RolAlmacen       = "Almacén"
	RolCajero        = "Cajero"
)

// RolePermissions maps role → module → permission verbs. An empty verb list
// means the role cannot access the module at all.
var RolePermissions = map[string]map[string][]string{
	RolAdministrador: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {VerbRead, VerbCreate, VerbUpdate, VerbDelete, VerbManage},
		ModuleProductos:  {VerbRead, VerbCreate, VerbUpdate, VerbDelete, VerbManage},
		ModuleClientes:   {VerbRead, VerbCreate, VerbUpdate, VerbDelete, VerbManage},
		ModuleVentas:     {VerbRead, VerbCreate, VerbUpdate, VerbDelete, VerbManage},
		ModuleCaja:       {VerbRead, VerbCreate, VerbUpdate, VerbDelete, VerbManage},
		ModuleCalendario: {VerbRead, VerbCreate, VerbUpdate, VerbDelete},
		ModuleReportes:   {VerbRead, VerbCreate, VerbManage},
	},
	RolGerente: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {VerbRead, VerbCreate, VerbUpdate},
		ModuleProductos:  {VerbRead, VerbCreate, VerbUpdate, VerbDelete},
		ModuleClientes:   {VerbRead, VerbCreate, VerbUpdate, VerbDelete},
		ModuleVentas:     {VerbRead, VerbCreate, VerbUpdate, VerbDelete},
		ModuleCaja:       {VerbRead, VerbCreate, VerbUpdate, VerbManage},
		ModuleCalendario: {VerbRead, VerbCreate, VerbUpdate},
		ModuleReportes:   {VerbRead, VerbCreate},
	},
	RolVendedor: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {},
		ModuleProductos:  {VerbRead},
		ModuleClientes:   {VerbRead, VerbCreate, VerbUpdate},
		ModuleVentas:     {VerbRead, VerbCreate},
		ModuleCaja:       {VerbRead},
		ModuleCalendario: {VerbRead, VerbCreate},
		ModuleReportes:   {},
	},
	RolTecnico: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {},
		ModuleProductos:  {VerbRead, VerbCreate, VerbUpdate},
		ModuleClientes:   {},
		ModuleVentas:     {},
		ModuleCaja:       {},
		ModuleCalendario: {VerbRead},
		ModuleReportes:   {},
	},
	RolAlmacen: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {},
		ModuleProductos:  {VerbRead, VerbCreate, VerbUpdate},
		ModuleClientes:   {},
		ModuleVentas:     {},
		ModuleCaja:       {},
		ModuleCalendario: {VerbRead},
		ModuleReportes:   {},
	},
	RolCajero: {
		ModuleDashboard:  {VerbRead},
		ModuleEmpleados:  {},
		ModuleProductos:  {VerbRead},
		ModuleClientes:   {VerbRead},
		ModuleVentas:     {VerbRead, VerbCreate},
		ModuleCaja:       {VerbRead, VerbCreate, VerbUpdate},
		ModuleCalendario: {VerbRead},
		ModuleReportes:   {},
	},
}

// CanAccess decides whether an empleado may access a module.
//
//  1. nil or inactive user → deny.
//  2. Administrador → allow, regardless of any explicit list.
//  3. Non-empty PermisosModulos → the explicit list is authoritative and
//     exclusive: allow iff the module is a member. Role defaults are NOT
//     merged in.
//  4. Otherwise → allow iff the role's table entry for the module is a
//     non-empty verb list.
//
// Never panics; absent or malformed input degrades to deny.
func CanAccess(e *model.Empleado, module string) bool {
	if e == nil || !e.Activo {
		return false
	}
	if e.Rol == RolAdministrador {
		return true
	}
	if len(e.PermisosModulos) > 0 {
		for _, m := range e.PermisosModulos {
			if m == module {
				return true
			}
		}
		return false
	}
	return len(RolePermissions[e.Rol][module]) > 0
}

// CanPerform checks a specific verb on a module. Module access is required
// first; verb granularity always comes from the role table ("manage"
// implies every verb). Administrador passes via its own table row.
func CanPerform(e *model.Empleado, module, verb string) bool {
	if !CanAccess(e, module) {
		return false
	}
	if e.Rol == RolAdministrador {
		return true
	}
	verbs := RolePermissions[e.Rol][module]
	for _, v := range verbs {
		if v == VerbManage || v == verb {
			return true
		}
	}
	return false
}

// AccessibleModules applies CanAccess over the fixed Modules enumeration.
func AccessibleModules(e *model.Empleado) []string {
	out := make([]string, 0, len(Modules))
	for _, m := range Modules {
		if CanAccess(e, m) {
			out = append(out, m)
		}
	}
	return out
}

// BlockedModules is the complement of AccessibleModules.
func BlockedModules(e *model.Empleado) []string {
	out := make([]string, 0, len(Modules))
	for _, m := range Modules {
		if !CanAccess(e, m) {
			out = append(out, m)
		}
	}
	return out
}
