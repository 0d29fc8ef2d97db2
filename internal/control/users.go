package control

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

const minPasswordLength = 6

// UserConfig declares the back-office users screen. The password rule only
// applies on create; edits never carry a password.
func UserConfig() Config[models.User] {
	return Config[models.User]{
		Collection: "users",
		Search: func(u models.User) []string {
			return []string{u.Name, u.Email}
		},
		Facets: []Facet[models.User]{
			{Key: "role", Value: func(u models.User) string { return u.Role }},
		},
		Rules: []Rule[models.User]{
			{
				Valid:   func(u models.User) bool { return strings.TrimSpace(u.Name) != "" },
				Message: "الاسم مطلوب",
			},
			{
				Valid:   func(u models.User) bool { return emailPattern.MatchString(u.Email) },
				Message: "البريد الإلكتروني غير صالح",
			},
			{
				Valid: func(u models.User) bool {
					return u.Role == "" || u.Role == models.RoleAdmin || u.Role == models.RoleEmployee
				},
				Message: "الدور غير صالح",
			},
		},
		CreateRules: []Rule[models.User]{
			{
				Valid:   func(u models.User) bool { return len(u.Password) >= minPasswordLength },
				Message: "كلمة المرور يجب أن تكون 6 أحرف على الأقل",
			},
		},
	}
}

// UserController adds the password reset operation.
type UserController struct {
	*Controller[models.User]
	users  *backend.UsersClient
	logger *zap.Logger
}

func NewUserController(users *backend.UsersClient, events EventSink) *UserController {
	return &UserController{
		Controller: New[models.User](UserConfig(), users, events),
		users:      users,
		logger:     util.GetLogger(),
	}
}

// ResetPassword replaces one user's password through the dedicated
// endpoint.
func (c *UserController) ResetPassword(ctx context.Context, id, password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Message: "كلمة المرور يجب أن تكون 6 أحرف على الأقل"}
	}
	if err := c.users.UpdatePassword(ctx, id, password); err != nil {
		c.logger.Error("Failed to reset user password",
			zap.String("user_id", id),
			zap.Error(err))
		c.fail(fallbackMessage(err, msgSaveFailed))
		return fmt.Errorf("failed to reset password: %w", err)
	}
	c.toast(msgPasswordUpdated)
	return nil
}
