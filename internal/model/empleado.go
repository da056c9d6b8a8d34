package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Empleado stores system users with role-based access.
// Rol: "Administrador" | "Gerente" | "Vendedor" | "Técnico" | "Almacén" | "Cajero"
//
// PermisosModulos is an explicit per-user module list. When non-empty it
// REPLACES the role defaults in the access check — see internal/authz.
type Empleado struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string          `gorm:"not null"`
	Email           string          `gorm:"uniqueIndex;not null"`
	PasswordHash    string          `gorm:"not null"`
	Rol             string          `gorm:"type:varchar(20);not null"`
	PermisosModulos pq.StringArray  `gorm:"type:text[];column:permisos_modulos"`
	Salario         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Empleado) TableName() string { return "empleados" }
