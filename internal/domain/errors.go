package domain

import "errors"

// Error classes shared by every package. Callers match them with errors.Is;
// producers wrap them with fmt.Errorf("...: %w", ErrX).
var (
	// ErrInvalidInput marks a caller contract violation (wrong shape, bad path, missing column).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing artifact, file or object.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt marks an artifact that exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt artifact")

	// ErrExternalService marks a failure reported by storage, the model server or another remote.
	ErrExternalService = errors.New("external service failure")

	// ErrMissingCredentials is the storage credential failure.
	ErrMissingCredentials = &credentialsError{}
)

type credentialsError struct{}

func (*credentialsError) Error() string {
	return "missing credentials: set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY"
}

// Unwrap makes errors.Is(ErrMissingCredentials, ErrExternalService) hold.
func (*credentialsError) Unwrap() error {
	return ErrExternalService
}

// IsDegraded reports whether err should be shown to a user as a degraded
// response rather than treated as a programming error.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) || errors.Is(err, ErrExternalService)
}
