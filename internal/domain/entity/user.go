package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin          = "admin"
	RoleRecepcion      = "recepcion"
	RoleProfesional    = "profesional"
	RoleAdministracion = "administracion"
)

// ValidRole indica si r es un rol reconocido.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleRecepcion, RoleProfesional, RoleAdministracion:
		return true
	}
	return false
}

// User actor del sistema. PasswordHash es bcrypt; registros heredados pueden tener texto plano
// hasta el próximo login exitoso.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
