package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService emite y valida tokens JWT firmados con HS256. El secreto y la
// expiración se fijan al construir el servicio y no cambian después.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// Claims transporta el correo del usuario como subject del token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, expiration time.Duration) *JWTService {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     "user-api",
	}
}

// GenerateToken emite un token firmado con el correo como subject.
func (s *JWTService) GenerateToken(email string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseEmail verifica firma y expiración, y devuelve el correo del subject.
func (s *JWTService) ParseEmail(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrJWTExpired
		}
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.Subject != claims.Email {
		return "", ErrJWTInvalid
	}
	if claims.Issuer != s.issuer {
		return "", ErrJWTInvalid
	}
	return claims.Subject, nil
}

// ValidateToken indica si el token es válido sin exponer el motivo.
func (s *JWTService) ValidateToken(tokenString string) bool {
	_, err := s.ParseEmail(tokenString)
	return err == nil
}
