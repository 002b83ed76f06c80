package entity

import "time"

// User representa un usuario del sistema, siempre atado a una empresa.
// El CompanyID del usuario define el alcance de tenant de todas sus
// operaciones (viaja en el JWT).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin, operator
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
