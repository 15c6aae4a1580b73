package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher encapsula el hashing de contraseñas con bcrypt. El salt es
// interno al algoritmo, por lo que dos hashes de la misma contraseña nunca
// coinciden.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

// Hash devuelve el digest bcrypt de la contraseña en claro.
func (h *PasswordHasher) Hash(raw string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify comprueba la contraseña en claro contra un digest almacenado.
func (h *PasswordHasher) Verify(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
