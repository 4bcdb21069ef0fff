package users

import (
	"github.com/google/uuid"

	"github.com/adepa-commerce/storefront-backend/pkg/db/models"
)

// UserDTO is the public projection of a user; it never carries the hash.
type UserDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
}

// ToDTO strips the credential fields from the model.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
}
