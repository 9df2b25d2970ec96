package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func SignSessionToken(secret []byte, sessionID, userID string, issuedAt, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is not configured")
	}
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSessionToken verifies an HS256 session token. Extra parser options,
// such as jwt.WithTimeFunc, are applied after the defaults.
func ParseSessionToken(secret []byte, tokenStr string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("session token is empty")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("session token validation failed: %w", err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired session token")
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, errors.New("session token is missing sid or sub")
	}
	return claims, nil
}

// GoogleClaims are the id_token fields used to build a user profile.
type GoogleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

type IDTokenVerifier struct {
	clientID string
	keyfunc  jwt.Keyfunc
}

func NewIDTokenVerifier(clientID string, kf jwt.Keyfunc) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID, keyfunc: kf}
}

// Verify checks signature, audience, expiry and issuer of a Google id_token.
func (v *IDTokenVerifier) Verify(raw string) (*GoogleClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &GoogleClaims{}, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("id token validation failed: %w", err)
	}
	claims, ok := token.Claims.(*GoogleClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid id token claims")
	}
	if !googleIssuers[claims.Issuer] {
		return nil, fmt.Errorf("unexpected id token issuer %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errors.New("id token has no subject")
	}
	return claims, nil
}

// RemoteJWKS fetches the key set on first use and keeps it refreshed in the
// background until Close.
type RemoteJWKS struct {
	url    string
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

func NewRemoteJWKS(url string) *RemoteJWKS {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteJWKS{url: url, ctx: ctx, cancel: cancel}
}

func (r *RemoteJWKS) get() (*keyfunc.JWKS, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jwks != nil {
		return r.jwks, nil
	}
	jwks, err := keyfunc.Get(r.url, keyfunc.Options{
		Ctx:               r.ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", r.url, err)
	}
	r.jwks = jwks
	return jwks, nil
}

func (r *RemoteJWKS) Keyfunc(token *jwt.Token) (interface{}, error) {
	jwks, err := r.get()
	if err != nil {
		return nil, err
	}
	return jwks.Keyfunc(token)
}

func (r *RemoteJWKS) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jwks != nil {
		r.jwks.EndBackground()
		r.jwks = nil
	}
	r.cancel()
}
