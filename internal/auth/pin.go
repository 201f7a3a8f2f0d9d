package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/staff-roster/internal/config"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// DefaultPinLength matches the fixed-width numeric admin code.
const DefaultPinLength = 8

// PinVerifier checks the admin PIN sent with writes.
type PinVerifier struct {
	hash   string
	length int
}

// NewPinVerifier builds a verifier from AuthConfig. A configured hash is used
// as is; a plaintext PIN is validated and hashed once at startup. With neither
// set the verifier rejects every PIN.
func NewPinVerifier(cfg config.AuthConfig) (*PinVerifier, error) {
	length := cfg.PinLength
	if length <= 0 {
		length = DefaultPinLength
	}
	v := &PinVerifier{length: length}

	switch {
	case strings.TrimSpace(cfg.AdminPinHash) != "":
		v.hash = strings.TrimSpace(cfg.AdminPinHash)
	case cfg.AdminPin != "":
		if !v.wellFormed(cfg.AdminPin) {
			return nil, fmt.Errorf("AUTH_ADMIN_PIN must be %d digits", length)
		}
		hash, err := HashPin(cfg.AdminPin, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin pin: %w", err)
		}
		v.hash = hash
	}
	return v, nil
}

// Configured reports whether any PIN can be accepted.
func (v *PinVerifier) Configured() bool {
	return v != nil && v.hash != ""
}

// Verify returns an unauthorized error unless pin matches.
func (v *PinVerifier) Verify(pin string) error {
	if !v.Configured() {
		return apperrors.NewUnauthorized("writes are disabled: no admin pin configured")
	}
	if !v.wellFormed(pin) {
		return apperrors.NewUnauthorized("invalid admin pin")
	}
	if err := ComparePin(v.hash, pin); err != nil {
		return errors.Join(apperrors.NewUnauthorized("invalid admin pin"), err)
	}
	return nil
}

func (v *PinVerifier) wellFormed(pin string) bool {
	if len(pin) != v.length {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
