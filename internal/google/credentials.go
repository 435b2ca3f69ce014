package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrCredentialFile is returned when the key file is missing, unreadable or malformed.
	ErrCredentialFile = errors.New("service account key unavailable")

	// ErrTokenExchange is returned when the identity backend refuses the grant
	// or answers with an unusable token.
	ErrTokenExchange = errors.New("token exchange failed")
)

// Credential is a bearer token minted for a single dispatched call.
type Credential struct {
	Token  string
	Expiry time.Time
	Scopes []string
}

// Expired reports whether the credential is past its expiry at now.
// A zero expiry never expires.
func (c *Credential) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && !now.Before(c.Expiry)
}

// OAuth2Token converts the credential into an oauth2 token for bearer transports.
func (c *Credential) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: c.Token,
		TokenType:   "Bearer",
		Expiry:      c.Expiry,
	}
}

// CredentialProvider acquires a fresh credential on every call.
type CredentialProvider interface {
	Acquire(ctx context.Context) (*Credential, error)
}

// ServiceAccountProvider mints scoped tokens from a service-account key file.
type ServiceAccountProvider struct {
	keyFile    string
	scopes     []string
	httpClient *http.Client
}

// ProviderOption configures a ServiceAccountProvider.
type ProviderOption func(*ServiceAccountProvider)

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *ServiceAccountProvider) {
		p.httpClient = client
	}
}

// NewServiceAccountProvider creates a provider for the given key file and scopes.
// Scopes are validated here so a misconfigured process fails before serving.
func NewServiceAccountProvider(keyFile string, scopes []string, opts ...ProviderOption) (*ServiceAccountProvider, error) {
	if keyFile == "" {
		return nil, fmt.Errorf("%w: key file path is empty", ErrCredentialFile)
	}
	if err := ValidateScopes(scopes); err != nil {
		return nil, err
	}

	p := &ServiceAccountProvider{
		keyFile: keyFile,
		scopes:  append([]string(nil), scopes...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Scopes returns a copy of the configured scopes.
func (p *ServiceAccountProvider) Scopes() []string {
	return append([]string(nil), p.scopes...)
}

// Acquire reads the key file and performs one token exchange.
func (p *ServiceAccountProvider) Acquire(ctx context.Context) (*Credential, error) {
	data, err := p.readKey()
	if err != nil {
		return nil, err
	}

	conf, err := google.JWTConfigFromJSON(data, p.scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialFile, err)
	}

	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := conf.TokenSource(ctx).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if !tok.Valid() {
		return nil, fmt.Errorf("%w: identity backend returned an unusable token", ErrTokenExchange)
	}

	return &Credential{
		Token:  tok.AccessToken,
		Expiry: tok.Expiry,
		Scopes: p.Scopes(),
	}, nil
}

// ServiceAccountEmail returns the client_email of the configured key.
func (p *ServiceAccountProvider) ServiceAccountEmail() (string, error) {
	data, err := p.readKey()
	if err != nil {
		return "", err
	}

	var key struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialFile, err)
	}
	if key.ClientEmail == "" {
		return "", fmt.Errorf("%w: client_email missing", ErrCredentialFile)
	}
	return key.ClientEmail, nil
}

// CheckKeyFile reports whether the key file can currently be read.
func (p *ServiceAccountProvider) CheckKeyFile() error {
	_, err := p.readKey()
	return err
}

func (p *ServiceAccountProvider) readKey() ([]byte, error) {
	data, err := os.ReadFile(p.keyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialFile, err)
	}
	return data, nil
}
