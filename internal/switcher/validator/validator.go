package validator

import (
	"strings"

	"github.com/OpenGG/osu-switcher/internal/switcher/domain"
)

// Validator validates server identifiers typed by users.
type Validator struct{}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{}
}

// ValidateServer checks that a server id looks like something the client can
// connect to: a domain containing at least one '.', or the literal "localhost".
//
// Returns (true, nil) if valid, or (false, error) with a descriptive error.
func (v *Validator) ValidateServer(server string) (bool, error) {
	if len(server) == 0 {
		return false, domain.ErrServerEmpty
	}
	if server == "localhost" || strings.Contains(server, ".") {
		return true, nil
	}
	return false, domain.ErrServerInvalid
}

// NormalizeServer trims whitespace and validates the server id.
func (v *Validator) NormalizeServer(server string) (string, error) {
	trimmed := strings.TrimSpace(server)
	if ok, err := v.ValidateServer(trimmed); !ok {
		return "", err
	}
	return trimmed, nil
}
