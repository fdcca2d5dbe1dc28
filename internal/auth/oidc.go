package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

// ErrInvalidIDToken is returned when a client identity token does not verify.
var ErrInvalidIDToken = errors.New("invalid id token")

// IDTokenVerifier verifies short-lived identity tokens issued to the browser.
type IDTokenVerifier struct {
	verifier *gooidc.IDTokenVerifier
}

// VerifierConfig holds configuration for the identity token verifier.
type VerifierConfig struct {
	Issuer     string
	Audience   string
	HTTPClient *http.Client // Optional, defaults to a client with a 10s timeout
}

// NewIDTokenVerifier discovers the issuer's signing keys and builds a verifier.
func NewIDTokenVerifier(ctx context.Context, cfg VerifierConfig) (*IDTokenVerifier, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("audience is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	// the provider keeps this context for background key refreshes
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	provider, err := gooidc.NewProvider(ctx, strings.TrimSuffix(cfg.Issuer, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &IDTokenVerifier{verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.Audience})}, nil
}

// NewIDTokenVerifierWithKeySet builds a verifier over a fixed key set.
func NewIDTokenVerifierWithKeySet(issuer, audience string, keys gooidc.KeySet) *IDTokenVerifier {
	return &IDTokenVerifier{verifier: gooidc.NewVerifier(issuer, keys, &gooidc.Config{ClientID: audience})}
}

type idTokenClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	AuthTime int64  `json:"auth_time"`
}

// Verify checks signature, issuer, audience and expiry of raw.
func (v *IDTokenVerifier) Verify(ctx context.Context, raw string) (*domain.IDTokenClaims, error) {
	idTok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidIDToken, err)
	}

	var claims idTokenClaims
	if err := idTok.Claims(&claims); err != nil {
		return nil, errors.Join(ErrInvalidIDToken, fmt.Errorf("parse id_token claims: %w", err))
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIDToken)
	}

	out := &domain.IDTokenClaims{
		UID:     claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
		Expiry:  idTok.Expiry,
	}
	if claims.AuthTime > 0 {
		out.AuthTime = time.Unix(claims.AuthTime, 0)
	}
	return out, nil
}
