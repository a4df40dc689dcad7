package utils

import "github.com/gofiber/fiber/v2"

// Payload holds the keyed fields merged into a success envelope, e.g. {"exam": ...}.
type Payload map[string]interface{}

// ErrorResponse describes the body returned for failed requests.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// SendSuccess sends a 200 success envelope with the payload fields at the top level.
func SendSuccess(c *fiber.Ctx, payload Payload) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, payload)
}

// SendSuccessWithStatus sends a success envelope using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, payload Payload) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	body := fiber.Map{"success": true}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		body[key] = value
	}

	return c.Status(status).JSON(body)
}

// SendMessage sends a success envelope carrying only a message.
func SendMessage(c *fiber.Ctx, message string) error {
	return SendSuccess(c, Payload{"message": message})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail sends an error envelope with optional details.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}
