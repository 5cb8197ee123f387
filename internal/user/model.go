package user

import "time"

// User is the persisted user record.
type User struct {
	ID                int64     `db:"id"`
	FullName          string    `db:"full_name"`
	Username          string    `db:"username"`
	Email             string    `db:"email"`
	EncryptedPassword string    `db:"encrypted_password"` // bcrypt hash, never leaves the service
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// UserDto is the API-facing representation of a user.
// Password and EncryptedPassword are nil on everything the service returns.
type UserDto struct {
	ID                int64   `json:"id"`
	FullName          string  `json:"fullName"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Password          *string `json:"password,omitempty"`
	EncryptedPassword *string `json:"encryptedPassword,omitempty"`
}

// ToDto maps a record to a transfer object without credential fields.
func ToDto(u *User) UserDto {
	return UserDto{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Email:    u.Email,
	}
}
