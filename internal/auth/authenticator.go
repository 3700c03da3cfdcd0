package auth

import (
	"context"

	"github.com/mkrause/hauslist/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new member profile with the given email and credential.
	// The credential format depends on the implementation.
	// Returns the created profile or an error if registration fails.
	Register(ctx context.Context, email, displayName, credential string) (*models.Profile, error)

	// Authenticate verifies the member's credentials and returns the profile if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.Profile, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
