package middleware

import (
	"net/http"
	"strings"

	"tiendapos/internal/apierror"
	"tiendapos/internal/authz"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey   = "claims"
	EmpleadoKey = "empleado"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	EmpleadoID string `json:"empleado_id"`
	Email      string `json:"email"`
	Rol        string `json:"rol"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and loads the empleado from the
// database, so deactivations and permission edits apply immediately — a
// stale token cannot outlive its empleado row.
func JWTAuth(secret string, repo repository.EmpleadoRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		uid, err := uuid.Parse(claims.EmpleadoID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
			return
		}
		emp, err := repo.FindByID(c.Request.Context(), uid)
		if err != nil || !emp.Activo {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Empleado no encontrado o inactivo"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(EmpleadoKey, emp)
		c.Next()
	}
}

// RequireModule rejects requests whose empleado cannot access the module.
// All route-level decisions go through authz — the role table is never
// consulted directly here.
func RequireModule(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		emp := GetEmpleado(c)
		if !authz.CanAccess(emp, module) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// RequirePermission additionally checks a verb on the module.
func RequirePermission(module, verb string) gin.HandlerFunc {
	return func(c *gin.Context) {
		emp := GetEmpleado(c)
		if !authz.CanPerform(emp, module, verb) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// GetEmpleado returns the empleado loaded by JWTAuth, or nil.
func GetEmpleado(c *gin.Context) *model.Empleado {
	v, ok := c.Get(EmpleadoKey)
	if !ok {
		return nil
	}
	emp, _ := v.(*model.Empleado)
	return emp
}
