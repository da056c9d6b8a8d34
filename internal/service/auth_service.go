package service

import (
	"context"
	"errors"
	"time"

	"tiendapos/internal/authz"
	"tiendapos/internal/config"
	"tiendapos/internal/dto"
	"tiendapos/internal/model"
	"tiendapos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearEmpleado(ctx context.Context, req dto.CrearEmpleadoRequest) (*dto.EmpleadoResponse, error)
	ListarEmpleados(ctx context.Context, incluirInactivos bool) ([]dto.EmpleadoResponse, error)
	ActualizarEmpleado(ctx context.Context, id uuid.UUID, req dto.ActualizarEmpleadoRequest) (*dto.EmpleadoResponse, error)
	DesactivarEmpleado(ctx context.Context, id uuid.UUID) error
	ReactivarEmpleado(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.EmpleadoRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.EmpleadoRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	emp, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	accessToken, err := s.generateToken(emp, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(emp, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *empleadoToResponse(emp),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims invalidos")
	}
	empIDStr, ok := claims["empleado_id"].(string)
	if !ok {
		return nil, errors.New("token mal formado")
	}
	uid, err := uuid.Parse(empIDStr)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	emp, err := s.repo.FindByID(ctx, uid)
	if err != nil || !emp.Activo {
		return nil, errors.New("empleado no encontrado o inactivo")
	}

	accessToken, err := s.generateToken(emp, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.generateToken(emp, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *empleadoToResponse(emp),
	}, nil
}

func (s *authService) CrearEmpleado(ctx context.Context, req dto.CrearEmpleadoRequest) (*dto.EmpleadoResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	emp := &model.Empleado{
		Nombre:          req.Nombre,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Rol:             req.Rol,
		PermisosModulos: req.PermisosModulos,
		Salario:         req.Salario,
		Activo:          true,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return empleadoToResponse(emp), nil
}

func (s *authService) ListarEmpleados(ctx context.Context, incluirInactivos bool) ([]dto.EmpleadoResponse, error) {
	var emps []model.Empleado
	var err error
	if incluirInactivos {
		emps, err = s.repo.ListAll(ctx)
	} else {
		emps, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EmpleadoResponse, len(emps))
	for i := range emps {
		resp[i] = *empleadoToResponse(&emps[i])
	}
	return resp, nil
}

func (s *authService) ActualizarEmpleado(ctx context.Context, id uuid.UUID, req dto.ActualizarEmpleadoRequest) (*dto.EmpleadoResponse, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("empleado no encontrado")
	}
	if req.Nombre != "" {
		emp.Nombre = req.Nombre
	}
	if req.Email != "" {
		emp.Email = req.Email
	}
	if req.Rol != "" {
		emp.Rol = req.Rol
	}
	// A nil pointer leaves the list untouched; an empty slice clears the
	// explicit override so the role defaults apply again.
	if req.PermisosModulos != nil {
		emp.PermisosModulos = *req.PermisosModulos
	}
	if req.Salario != nil {
		emp.Salario = *req.Salario
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		emp.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}
	return empleadoToResponse(emp), nil
}

func (s *authService) DesactivarEmpleado(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) ReactivarEmpleado(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

func (s *authService) generateToken(emp *model.Empleado, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"empleado_id": emp.ID.String(),
		"email":       emp.Email,
		"rol":         emp.Rol,
		"exp":         time.Now().Add(duration).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func empleadoToResponse(e *model.Empleado) *dto.EmpleadoResponse {
	return &dto.EmpleadoResponse{
		ID:                e.ID.String(),
		Nombre:            e.Nombre,
		Email:             e.Email,
		Rol:               e.Rol,
		PermisosModulos:   e.PermisosModulos,
		Salario:           e.Salario,
		Activo:            e.Activo,
		ModulosAccesibles: authz.AccessibleModules(e),
	}
}
