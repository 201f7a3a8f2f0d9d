package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-roster/internal/domain"
)

// PinMiddleware guards write routes with the admin PIN header.
type PinMiddleware struct {
	verifier *PinVerifier
}

// NewPinMiddleware constructs middleware.
func NewPinMiddleware(verifier *PinVerifier) *PinMiddleware {
	return &PinMiddleware{verifier: verifier}
}

// Handle rejects the request with 401 unless the header carries a valid PIN.
func (m *PinMiddleware) Handle(c *fiber.Ctx) error {
	pin := strings.TrimSpace(c.Get(domain.CredentialHeader))
	if err := m.verifier.Verify(pin); err != nil {
		return err
	}
	return c.Next()
}
