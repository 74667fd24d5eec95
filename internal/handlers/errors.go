package handlers

import (
	"errors"
	"log"

	"catalog/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the outermost error boundary. Every error returned by a
// middleware or handler is rendered here as an Envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respondError(c, fiberErr.Code, fiberErr.Message, nil)
	}

	// Errors outside the taxonomy report as Internal.
	kind := apperror.KindOf(err)
	status := apperror.Status(kind)
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s failed (%s): %v", c.Method(), c.Path(), kind, err)
	}

	var data any
	if details := apperror.DetailsOf(err); details != nil {
		data = details
	}
	return respondError(c, status, apperror.PublicMessage(err), data)
}
