package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
}

// emptyData renders as [] in JSON.
var emptyData = []any{}

func respondSuccess(c *fiber.Ctx, status int, data any, message string) error {
	env := Envelope{Success: true, Data: data}
	if message != "" {
		env.Message = &message
	}
	return c.Status(status).JSON(env)
}

func respondError(c *fiber.Ctx, status int, message string, data any) error {
	if data == nil {
		data = emptyData
	}
	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: &message,
		Data:    data,
	})
}
