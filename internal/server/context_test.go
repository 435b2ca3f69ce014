package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/instrumentation"
)

type fakeCredentials struct {
	email  string
	keyErr error
}

func (f *fakeCredentials) Acquire(context.Context) (*google.Credential, error) {
	if f.keyErr != nil {
		return nil, f.keyErr
	}
	return &google.Credential{Token: "test-token", Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeCredentials) ServiceAccountEmail() (string, error) {
	if f.keyErr != nil {
		return "", f.keyErr
	}
	return f.email, nil
}

func (f *fakeCredentials) Scopes() []string {
	return []string{"https://www.googleapis.com/auth/drive"}
}

func (f *fakeCredentials) CheckKeyFile() error {
	return f.keyErr
}

func newTestServerContext(t *testing.T, creds *fakeCredentials, opts ...Option) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), creds, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext(t *testing.T) {
	metrics := &instrumentation.Metrics{}
	sc := newTestServerContext(t, &fakeCredentials{email: "gw@proj.iam.gserviceaccount.com"}, WithMetrics(metrics))

	assert.NotNil(t, sc.Gateway())
	assert.NotNil(t, sc.DriveClient())
	assert.NotNil(t, sc.SheetsClient())
	assert.Same(t, metrics, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())
	assert.NotNil(t, sc.Logger())
	assert.Equal(t, "gw@proj.iam.gserviceaccount.com", sc.Principal())
}

func TestNewServerContext_RequiresCredentials(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewServerContext_InvalidGatewayOption(t *testing.T) {
	_, err := NewServerContext(context.Background(), &fakeCredentials{},
		WithGatewayOptions(gateway.WithBaseURL(gateway.FamilyStorage, "no-scheme")))
	assert.Error(t, err)
}

func TestServerContext_PrincipalUnreadableKey(t *testing.T) {
	sc := newTestServerContext(t, &fakeCredentials{keyErr: errors.New("gone")})
	assert.Empty(t, sc.Principal())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t, &fakeCredentials{})

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Idempotent
	assert.NoError(t, sc.Shutdown())
}
