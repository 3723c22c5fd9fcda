// handlers/status_routes.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cleanup-platform/messaging"
	"cleanup-platform/models"
	"cleanup-platform/services"
	"cleanup-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedStatuses = map[string]bool{
	models.StatusPending:   true,
	models.StatusApproved:  true,
	models.StatusDenied:    true,
	models.StatusCompleted: true,
}

// SetupStatusRoutes wires the status-mutating writes that trigger the
// side-effect pipeline, plus proof photo submission. Identity arrives from the
// upstream gateway as X-User-ID; auth itself is not this service's concern.
func SetupStatusRoutes(app *fiber.App, db *gorm.DB, pipeline *services.SideEffectPipeline) {
	admin := app.Group("/s/admin")

	// Approving or denying a request: the write commits first, then the
	// pipeline fires notify / badge re-evaluation / event publish detached.
	admin.Patch("/requests/:id/status", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
		}

		var req struct {
			Status       string   `json:"status"`
			Notes        string   `json:"notes"`
			RewardPoints *int64   `json:"reward_points"`
			RewardAmount *float64 `json:"reward_amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if !allowedStatuses[req.Status] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}

		var request models.CleanupRequest
		if err := db.Preload("User").First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Request not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		oldStatus := request.Status
		request.Status = req.Status
		if req.RewardPoints != nil {
			request.RewardPoints = *req.RewardPoints
		}
		if req.RewardAmount != nil {
			request.RewardAmount = *req.RewardAmount
		}

		if err := db.Save(&request).Error; err != nil {
			log.Printf("DB Error updating request status: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
		}

		pipeline.RequestStatusChanged(messaging.RequestStatusChangedEvent{
			RequestID:    request.ID,
			UserID:       request.UserID,
			UserName:     request.User.Name,
			UserEmail:    request.User.Email,
			RequestTitle: request.Title,
			OldStatus:    oldStatus,
			NewStatus:    request.Status,
			ChangedBy:    actorID(c),
			RewardPoints: request.RewardPoints,
			RewardAmount: request.RewardAmount,
			Notes:        req.Notes,
			OccurredAt:   time.Now().UTC(),
		})

		return c.JSON(request)
	})

	admin.Patch("/participations/:id/status", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid participation ID"})
		}

		var req struct {
			Status       string   `json:"status"`
			Notes        string   `json:"notes"`
			RewardPoints *int64   `json:"reward_points"`
			RewardAmount *float64 `json:"reward_amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if !allowedStatuses[req.Status] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
		}

		var participation models.Participation
		if err := db.Preload("User").Preload("Request").First(&participation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Participation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		oldStatus := participation.Status
		participation.Status = req.Status
		participation.Notes = req.Notes
		if req.RewardPoints != nil {
			participation.PointsEarned = *req.RewardPoints
		}
		if req.RewardAmount != nil {
			participation.RewardAmount = *req.RewardAmount
		}

		if err := db.Save(&participation).Error; err != nil {
			log.Printf("DB Error updating participation status: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
		}

		proofURL := ""
		if participation.ProofPhotoURL != nil {
			proofURL = *participation.ProofPhotoURL
		}

		pipeline.ProofStatusChanged(messaging.ProofStatusChangedEvent{
			ParticipationID: participation.ID,
			RequestID:       participation.RequestID,
			UserID:          participation.UserID,
			UserName:        participation.User.Name,
			UserEmail:       participation.User.Email,
			RequestTitle:    participation.Request.Title,
			OldStatus:       oldStatus,
			NewStatus:       participation.Status,
			ChangedBy:       actorID(c),
			RewardPoints:    participation.PointsEarned,
			RewardAmount:    participation.RewardAmount,
			Notes:           req.Notes,
			ProofPhotoURL:   proofURL,
			OccurredAt:      time.Now().UTC(),
		})

		return c.JSON(participation)
	})

	// Proof photo submission (object storage; review happens via the admin
	// status route above).
	app.Post("/participations/:id/proof", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid participation ID"})
		}

		var participation models.Participation
		if err := db.First(&participation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Participation not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}

		key := fmt.Sprintf("proofs/%s%s", participation.ID, filepath.Ext(fileHeader.Filename))
		url, err := utils.UploadProofPhoto(fileHeader, key)
		if err != nil {
			log.Printf("Proof upload failed for participation %s: %v", participation.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
		}

		participation.ProofPhotoURL = &url
		participation.Status = models.StatusPending
		if err := db.Save(&participation).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save photo URL"})
		}

		return c.JSON(fiber.Map{"proof_photo_url": url, "status": participation.Status})
	})
}

// actorID reads who caused the change from the gateway header; nil when the
// change is system-initiated.
func actorID(c *fiber.Ctx) *string {
	if id := c.Get("X-User-ID"); id != "" {
		return &id
	}
	return nil
}
