package domain

import "time"

// User es la raíz de agregado del dominio. Los teléfonos viven
// exclusivamente dentro del usuario que los posee.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phones       []Phone   `json:"phones"`
	Token        string    `json:"token,omitempty"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	LastLogin    time.Time `json:"last_login"`
	IsActive     bool      `json:"isactive"`
}

// Phone es un value object sin identidad propia.
type Phone struct {
	Number      string `json:"number"`
	CityCode    string `json:"citycode"`
	CountryCode string `json:"contrycode"`
}

// Activate marca el usuario como activo.
func (u *User) Activate() {
	u.IsActive = true
}

// Deactivate marca el usuario como inactivo.
func (u *User) Deactivate() {
	u.IsActive = false
}

// UpdateToken asigna un nuevo token y actualiza la fecha de modificación.
func (u *User) UpdateToken(token string) {
	u.Token = token
	u.Modified = time.Now().UTC()
}

// UpdateLastLogin registra el último acceso del usuario.
func (u *User) UpdateLastLogin() {
	now := time.Now().UTC()
	u.LastLogin = now
	u.Modified = now
}
