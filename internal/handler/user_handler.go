package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/provaboard/prova-api/internal/utils"
)

// ProfileResponse echoes the identity claims of the authenticated recruiter.
type ProfileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile returns the identity bound to the request token. The dashboard
// calls it on load to validate the stored session.
func Profile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := userIDString(c)
		if id == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
		}

		email, _ := c.Locals("user_email").(string)

		return utils.SendSuccess(c, "profile retrieved", ProfileResponse{ID: id, Email: email})
	}
}
