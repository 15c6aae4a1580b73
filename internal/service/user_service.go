package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"user-api/internal/domain"
	"user-api/internal/repository"
)

// UserService orquesta el registro de usuarios: validación, hashing,
// persistencia y emisión del token.
type UserService struct {
	logger          *zap.Logger
	users           repository.UserRepository
	hasher          *PasswordHasher
	jwtServ         *JWTService
	emailPattern    *regexp.Regexp
	passwordPattern *regexp.Regexp
}

// RegisterInput son los datos efímeros de una solicitud de registro. La
// contraseña en claro se descarta una vez calculado el hash.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phones   []domain.Phone
}

// ValidationError señala datos de entrada inválidos; el mensaje es apto
// para devolverse al cliente.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrEmailRegistered señala que el correo ya existe en el sistema.
var ErrEmailRegistered = errors.New("El correo ya registrado")

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher, jwtServ *JWTService, emailRegexp, passwordRegexp string) (*UserService, error) {
	emailPattern, err := regexp.Compile(emailRegexp)
	if err != nil {
		return nil, fmt.Errorf("compile email regexp: %w", err)
	}
	passwordPattern, err := regexp.Compile(passwordRegexp)
	if err != nil {
		return nil, fmt.Errorf("compile password regexp: %w", err)
	}
	return &UserService{
		logger:          logger,
		users:           users,
		hasher:          hasher,
		jwtServ:         jwtServ,
		emailPattern:    emailPattern,
		passwordPattern: passwordPattern,
	}, nil
}

// RegisterUser ejecuta el pipeline de registro en orden estricto y corta en
// el primer error. La restricción de unicidad de la base es la garantía
// final contra registros concurrentes con el mismo correo.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) (domain.User, error) {
	if err := s.validate(input); err != nil {
		return domain.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailRegistered
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Phones:       input.Phones,
	}
	user.Activate()

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrEmailRegistered
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtServ.GenerateToken(created.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("generate token: %w", err)
	}

	created.UpdateToken(token)
	updated, err := s.users.Update(ctx, created)
	if err != nil {
		// El insert no se revierte: el usuario queda registrado sin token.
		return domain.User{}, fmt.Errorf("attach token: %w", err)
	}

	s.logger.Info("user registered", zap.String("id", updated.ID))
	return updated, nil
}

// validate aplica las reglas en el orden declarado: presencia, formato de
// correo y formato de contraseña.
func (s *UserService) validate(input RegisterInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Message: "El nombre es obligatorio"}
	}
	if strings.TrimSpace(input.Email) == "" {
		return &ValidationError{Message: "El correo es obligatorio"}
	}
	if strings.TrimSpace(input.Password) == "" {
		return &ValidationError{Message: "La contraseña es obligatoria"}
	}
	if input.Phones == nil {
		return &ValidationError{Message: "La lista de telefonos no puede ser null"}
	}
	if !s.emailPattern.MatchString(input.Email) {
		return &ValidationError{Message: "El formato del correo es invalido"}
	}
	if !s.passwordPattern.MatchString(input.Password) {
		return &ValidationError{Message: "El formato de la contraseña es invalido"}
	}
	return nil
}
