package dto

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	User         EmpleadoResponse `json:"user"`
}

// ─── Empleados ───────────────────────────────────────────────────────────────

type CrearEmpleadoRequest struct {
	Nombre          string          `json:"nombre"           validate:"required"`
	Email           string          `json:"email"            validate:"required,email"`
	Password        string          `json:"password"         validate:"required,min=8"`
	Rol             string          `json:"rol"              validate:"required,oneof=Administrador Gerente Vendedor Técnico Almacén Cajero"`
	PermisosModulos []string        `json:"permisos_modulos" validate:"dive,oneof=dashboard empleados productos clientes ventas caja reportes calendario"`
	Salario         decimal.Decimal `json:"salario"          validate:"min=0"`
}

type ActualizarEmpleadoRequest struct {
	Nombre          string           `json:"nombre"`
	Email           string           `json:"email"            validate:"omitempty,email"`
	Password        string           `json:"password"         validate:"omitempty,min=8"`
	Rol             string           `json:"rol"              validate:"omitempty,oneof=Administrador Gerente Vendedor Técnico Almacén Cajero"`
	PermisosModulos *[]string        `json:"permisos_modulos" validate:"omitempty,dive,oneof=dashboard empleados productos clientes ventas caja reportes calendario"`
	Salario         *decimal.Decimal `json:"salario"          validate:"omitempty"`
}

type EmpleadoResponse struct {
	ID                string          `json:"id"`
	Nombre            string          `json:"nombre"`
	Email             string          `json:"email"`
	Rol               string          `json:"rol"`
	PermisosModulos   []string        `json:"permisos_modulos"`
	Salario           decimal.Decimal `json:"salario"`
	Activo            bool            `json:"activo"`
	ModulosAccesibles []string        `json:"modulos_accesibles"`
}
