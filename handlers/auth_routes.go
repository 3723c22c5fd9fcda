// handlers/auth_routes.go
package handlers

import (
	"errors"
	"time"

	"cleanup-platform/messaging"
	"cleanup-platform/models"
	"cleanup-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const resetTokenTTL = 2 * time.Hour

// SetupAuthRoutes wires the password-reset trigger. Credential checking lives
// in the auth collaborator; this service only stores the token and publishes
// the event the mail consumer reacts to.
func SetupAuthRoutes(app *fiber.App, db *gorm.DB, pipeline *services.SideEffectPipeline) {
	app.Post("/auth/password-reset", func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
		}

		var user models.User
		if err := db.First(&user, "email = ?", req.Email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Same response as success; don't leak which addresses exist.
				return c.JSON(fiber.Map{"message": "If the address exists, a reset mail is on its way"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		token := uuid.NewString()
		expiresAt := time.Now().UTC().Add(resetTokenTTL)
		user.ResetToken = &token
		user.ResetTokenExpiresAt = &expiresAt
		if err := db.Save(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store reset token"})
		}

		pipeline.PasswordResetRequested(messaging.PasswordResetRequestedEvent{
			UserID:     user.ID,
			UserName:   user.Name,
			UserEmail:  user.Email,
			ResetToken: token,
			ExpiresAt:  expiresAt,
			OccurredAt: time.Now().UTC(),
		})

		return c.JSON(fiber.Map{"message": "If the address exists, a reset mail is on its way"})
	})
}
