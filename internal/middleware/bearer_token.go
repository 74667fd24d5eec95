package middleware

import (
	"crypto/subtle"
	"errors"
	"log"
	"regexp"

	"catalog/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// Reasons a request is rejected. They are logged but all surface as 401.
var (
	ErrMissingHeader   = errors.New("authorization header is missing")
	ErrMalformedHeader = errors.New("authorization header is not a bearer token")
	ErrTokenMismatch   = errors.New("bearer token does not match")
)

// Case-sensitive scheme, any whitespace between scheme and token.
var bearerPattern = regexp.MustCompile(`^Bearer\s+(.*)$`)

// Authorize checks an Authorization header value against the expected token.
func Authorize(header, token string) error {
	if header == "" {
		return ErrMissingHeader
	}

	matches := bearerPattern.FindStringSubmatch(header)
	if matches == nil {
		return ErrMalformedHeader
	}

	if subtle.ConstantTimeCompare([]byte(matches[1]), []byte(token)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

// BearerToken is a Fiber middleware that rejects requests whose
// Authorization header does not carry token. It must run before routing.
func BearerToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := Authorize(c.Get(fiber.HeaderAuthorization), token)
		if err == nil {
			return c.Next()
		}

		log.Printf("Rejected %s %s from %s: %v", c.Method(), c.Path(), c.IP(), err)

		message := "Invalid token."
		if !errors.Is(err, ErrTokenMismatch) {
			message = "Missing or invalid Authorization header."
		}
		return apperror.Wrap(apperror.AuthRejected, message, err)
	}
}
