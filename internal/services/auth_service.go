package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/eventsadmin/internal/helpers"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"golang.org/x/oauth2"
)

const DefaultSessionTTL = 24 * time.Hour

// GoogleEndpoint is Google's OAuth 2.0 endpoint pair.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// CodeExchanger is the part of *oauth2.Config the login flow needs.
type CodeExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

type TokenVerifier interface {
	Verify(raw string) (*helpers.GoogleClaims, error)
}

func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     GoogleEndpoint,
		Scopes:       []string{"openid", "profile", "email"},
	}
}

type AuthService struct {
	oauth    CodeExchanger
	verifier TokenVerifier
	users    models.UserRepo
	sessions models.SessionRepo
	secret   []byte
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(oauth CodeExchanger, verifier TokenVerifier, users models.UserRepo, sessions models.SessionRepo, secret []byte, ttl time.Duration, logger *slog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		oauth:    oauth,
		verifier: verifier,
		users:    users,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LoginResult carries what the callback needs to set the session cookie.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (as *AuthService) SessionTTL() time.Duration {
	return as.ttl
}

func (as *AuthService) NewState() string {
	return uuid.NewString()
}

func (as *AuthService) AuthCodeURL(state string) string {
	return as.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// CompleteLogin exchanges the authorization code, verifies the id_token,
// upserts the user and opens a session.
func (as *AuthService) CompleteLogin(ctx context.Context, code string) (*LoginResult, error) {
	if helpers.StringTrim(code) == "" {
		return nil, fmt.Errorf("missing authorization code: %w", models.ErrUnauthorized)
	}
	tok, err := as.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %v: %w", err, models.ErrUnauthorized)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, fmt.Errorf("token response has no id_token: %w", models.ErrUnauthorized)
	}
	claims, err := as.verifier.Verify(rawID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrUnauthorized)
	}

	user, err := as.users.FindOrCreateByGoogleID(ctx, &models.User{
		GoogleID: claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		Avatar:   claims.Picture,
		Role:     models.DefaultUserRole,
	})
	if err != nil {
		return nil, err
	}

	now := as.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(as.ttl),
	}
	if err := as.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	token, err := helpers.SignSessionToken(as.secret, session.ID, user.ID.Hex(), now, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	as.logger.Info("user signed in", "user_id", user.ID.Hex(), "session_id", session.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// ResolveSession turns a session cookie into the caller's identity. Any
// tampered, expired, revoked or orphaned session yields ErrUnauthorized.
func (as *AuthService) ResolveSession(ctx context.Context, token string) (*helpers.Identity, *models.User, error) {
	claims, err := helpers.ParseSessionToken(as.secret, token, jwt.WithTimeFunc(as.now))
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, models.ErrUnauthorized)
	}
	session, err := as.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, fmt.Errorf("session revoked: %w", models.ErrUnauthorized)
		}
		return nil, nil, err
	}
	if session.Expired(as.now()) {
		return nil, nil, fmt.Errorf("session expired: %w", models.ErrUnauthorized)
	}
	if session.UserID.Hex() != claims.Subject {
		return nil, nil, fmt.Errorf("session subject mismatch: %w", models.ErrUnauthorized)
	}
	user, err := as.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, fmt.Errorf("session user missing: %w", models.ErrUnauthorized)
		}
		return nil, nil, err
	}

	role := user.Role
	if role == "" {
		role = models.DefaultUserRole
	}
	return &helpers.Identity{
		UserID:    user.ID.Hex(),
		SessionID: session.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.Avatar,
		Role:      role,
	}, user, nil
}

// Logout revokes the session behind token. An unreadable or already revoked
// token is not an error; the cookie gets cleared either way.
func (as *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := helpers.ParseSessionToken(as.secret, token, jwt.WithTimeFunc(as.now))
	if err != nil {
		return nil
	}
	if err := as.sessions.DeleteSession(ctx, claims.SessionID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	as.logger.Info("user signed out", "user_id", claims.Subject, "session_id", claims.SessionID)
	return nil
}
