package api

import (
	"context"
	"net/http"

	"github.com/mtereshin/medtrack/internal/client/models"
)

// ProfileUpdate carries the editable profile fields. Nil pointers are
// omitted from the PATCH body so untouched fields stay unchanged.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Birthdate   *string `json:"birthdate,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateProfile patches the profile and returns the server-confirmed user.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/profile/update/", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	req := changePasswordRequest{
		OldPassword: string(oldPassword),
		NewPassword: string(newPassword),
	}
	return c.do(ctx, http.MethodPost, "/profile/change-password/", req, nil)
}
