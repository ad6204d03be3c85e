package driven

import "context"

// CredentialStore defines the driven port for user credential persistence.
// Passwords cross this boundary in plaintext; the adapter is responsible for
// digesting them before they are stored or compared.
type CredentialStore interface {
	// AddUser stores username with a digest of password. If the username
	// already exists the call is a no-op and the stored digest is kept.
	AddUser(ctx context.Context, username, password string) error

	// Verify reports whether username exists with the given password.
	// An unknown user and a wrong password both yield (false, nil).
	Verify(ctx context.Context, username, password string) (bool, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}
