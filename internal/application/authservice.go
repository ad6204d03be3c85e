package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
)

var (
	// ErrNoCredentials is returned by ParseBasicAuth when the header is empty.
	ErrNoCredentials = errors.New("no credentials")
	// ErrMalformedCredentials is returned by ParseBasicAuth when the header is
	// not a well-formed Basic credential.
	ErrMalformedCredentials = errors.New("malformed basic credentials")
)

// AuthService checks HTTP Basic credentials against the CredentialStore.
type AuthService struct {
	store  driven.CredentialStore
	logger *slog.Logger
}

// NewAuthService creates a new AuthService with the required dependencies.
func NewAuthService(store driven.CredentialStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		logger: logger,
	}
}

// EnsureUser registers username unless it already exists. Existing users keep
// their stored password.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string) error {
	if err := s.store.AddUser(ctx, username, password); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	s.logger.Info("default user added or already present", "username", username)
	return nil
}

// Authenticate validates the raw Authorization header value. It fails closed:
// missing, malformed and wrong credentials, as well as storage errors, all
// yield ok == false. The reason is only logged.
func (s *AuthService) Authenticate(ctx context.Context, header, clientAddr string) (username string, ok bool) {
	user, pass, err := ParseBasicAuth(header)
	if err != nil {
		s.logger.Warn("request without valid credentials", "client", clientAddr, "reason", err)
		return "", false
	}

	ok, err = s.store.Verify(ctx, user, pass)
	if err != nil {
		s.logger.Error("credential check failed", "client", clientAddr, "username", user, "error", err)
		return "", false
	}
	if !ok {
		s.logger.Warn("login failed", "client", clientAddr, "username", user)
		return "", false
	}

	s.logger.Debug("authenticated", "client", clientAddr, "username", user)
	return user, true
}

// ParseBasicAuth decodes a "Basic base64(user:pass)" header value. The scheme
// name is matched case-insensitively; the password may contain colons.
func ParseBasicAuth(header string) (username, password string, err error) {
	if header == "" {
		return "", "", ErrNoCredentials
	}

	scheme, encoded, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", ErrMalformedCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedCredentials, err)
	}

	username, password, found = strings.Cut(string(decoded), ":")
	if !found {
		return "", "", ErrMalformedCredentials
	}
	return username, password, nil
}
