package application

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCredentialStore implements driven.CredentialStore with a plain map.
type mockCredentialStore struct {
	users     map[string]string
	verifyErr error
	addErr    error
	calls     int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{users: map[string]string{}}
}

func (m *mockCredentialStore) AddUser(_ context.Context, username, password string) error {
	if m.addErr != nil {
		return m.addErr
	}
	if _, exists := m.users[username]; !exists {
		m.users[username] = password
	}
	return nil
}

func (m *mockCredentialStore) Verify(_ context.Context, username, password string) (bool, error) {
	m.calls++
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	stored, ok := m.users[username]
	return ok && stored == password, nil
}

func (m *mockCredentialStore) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestParseBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantUser string
		wantPass string
		wantErr  error
	}{
		{name: "valid", header: basic("alice", "pw"), wantUser: "alice", wantPass: "pw"},
		{name: "password with colon", header: basic("alice", "a:b:c"), wantUser: "alice", wantPass: "a:b:c"},
		{name: "lowercase scheme", header: "basic " + base64.StdEncoding.EncodeToString([]byte("u:p")), wantUser: "u", wantPass: "p"},
		{name: "empty password", header: basic("alice", ""), wantUser: "alice", wantPass: ""},
		{name: "empty header", header: "", wantErr: ErrNoCredentials},
		{name: "bearer scheme", header: "Bearer abc", wantErr: ErrMalformedCredentials},
		{name: "scheme only", header: "Basic", wantErr: ErrMalformedCredentials},
		{name: "invalid base64", header: "Basic !!!", wantErr: ErrMalformedCredentials},
		{name: "no colon", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("alice")), wantErr: ErrMalformedCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, pass, err := ParseBasicAuth(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantPass, pass)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	store := newMockCredentialStore()
	svc := NewAuthService(store, slog.Default())
	ctx := context.Background()
	require.NoError(t, svc.EnsureUser(ctx, "alice", "pw"))

	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		{name: "correct credentials", header: basic("alice", "pw"), wantOK: true},
		{name: "wrong password", header: basic("alice", "nope")},
		{name: "unknown user", header: basic("bob", "pw")},
		{name: "missing header", header: ""},
		{name: "garbage header", header: "Basic %%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok := svc.Authenticate(ctx, tt.header, "127.0.0.1:5555")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "alice", user)
			} else {
				assert.Empty(t, user)
			}
		})
	}
}

func TestAuthService_AuthenticateSkipsStoreOnMalformedHeader(t *testing.T) {
	store := newMockCredentialStore()
	svc := NewAuthService(store, slog.Default())

	_, ok := svc.Authenticate(context.Background(), "Digest abc", "127.0.0.1:1")
	assert.False(t, ok)
	assert.Zero(t, store.calls)
}

func TestAuthService_StorageErrorFailsClosed(t *testing.T) {
	store := newMockCredentialStore()
	store.users["alice"] = "pw"
	store.verifyErr = errors.New("database is locked")
	svc := NewAuthService(store, slog.Default())

	_, ok := svc.Authenticate(context.Background(), basic("alice", "pw"), "127.0.0.1:1")
	assert.False(t, ok)
}

func TestAuthService_EnsureUserKeepsExistingPassword(t *testing.T) {
	store := newMockCredentialStore()
	svc := NewAuthService(store, slog.Default())
	ctx := context.Background()

	require.NoError(t, svc.EnsureUser(ctx, "alice", "first"))
	require.NoError(t, svc.EnsureUser(ctx, "alice", "second"))

	_, ok := svc.Authenticate(ctx, basic("alice", "first"), "")
	assert.True(t, ok)
	_, ok = svc.Authenticate(ctx, basic("alice", "second"), "")
	assert.False(t, ok)
}

func TestAuthService_EnsureUserPropagatesStorageError(t *testing.T) {
	store := newMockCredentialStore()
	store.addErr = errors.New("disk full")
	svc := NewAuthService(store, slog.Default())

	err := svc.EnsureUser(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
