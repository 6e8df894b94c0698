package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"resham-cricketer/pkg/apperr"
	"resham-cricketer/pkg/models"
	"resham-cricketer/pkg/store"
	"resham-cricketer/pkg/validation"
)

type Store interface {
	CreateUser(ctx context.Context, p *models.UserProfile) error
	GetUser(ctx context.Context, uid string) (*models.UserProfile, error)
	CreateCredential(ctx context.Context, c *models.Credential) error
	DeleteCredential(ctx context.Context, uid string) error
	CredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
}

// Session is returned by every successful sign-in. Profile is nil when the
// account has no profile document.
type Session struct {
	Token   string              `json:"token"`
	UID     string              `json:"uid"`
	Profile *models.UserProfile `json:"profile"`
	Created bool                `json:"created"`
}

type Accounts struct {
	store  Store
	tokens *Tokens
	logger *zap.Logger
}

func NewAccounts(s Store, tokens *Tokens, logger *zap.Logger) *Accounts {
	return &Accounts{store: s, tokens: tokens, logger: logger}
}

// Signup creates an email account and its profile.
func (a *Accounts) Signup(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}

	if _, err := a.store.CredentialByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("The email address is already in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "signup")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	uid := uuid.New().String()
	if err := a.store.CreateCredential(ctx, &models.Credential{UID: uid, Email: email, PasswordHash: string(hashed)}); err != nil {
		return nil, apperr.Internal(err, "signup")
	}
	profile := &models.UserProfile{
		UID:         uid,
		DisplayName: displayName,
		Email:       email,
		Role:        models.RoleUser,
	}
	if err := a.store.CreateUser(ctx, profile); err != nil {
		// without a profile the account is unusable, so free the email
		if delErr := a.store.DeleteCredential(ctx, uid); delErr != nil {
			a.logger.Error("credential rollback failed", zap.String("uid", uid), zap.Error(delErr))
		}
		return nil, apperr.Internal(err, "create profile")
	}
	a.logger.Info("account created", zap.String("uid", uid))
	return a.session(uid, profile, true)
}

// Login checks an email and password.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cred, err := a.store.CredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Internal(err, "login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	profile, err := a.store.GetUser(ctx, cred.UID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warn("profile fetch failed", zap.String("uid", cred.UID), zap.Error(err))
		}
		profile = nil
	}
	return a.session(cred.UID, profile, false)
}

// EnsureProfile signs in a federated identity, creating its profile on the
// first visit only. An existing profile is never overwritten.
func (a *Accounts) EnsureProfile(ctx context.Context, id Identity) (*Session, error) {
	profile, err := a.store.GetUser(ctx, id.UID)
	if err == nil {
		return a.session(id.UID, profile, false)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "load profile")
	}

	name := id.DisplayName
	if name == "" {
		name = "Player"
	}
	profile = &models.UserProfile{
		UID:         id.UID,
		DisplayName: name,
		Email:       id.Email,
		PhotoURL:    models.StringPtr(id.PhotoURL),
		Role:        models.RoleUser,
	}
	if err := a.store.CreateUser(ctx, profile); err != nil {
		return nil, apperr.Internal(err, "create profile")
	}
	a.logger.Info("profile created on first sign-in", zap.String("uid", id.UID))
	return a.session(id.UID, profile, true)
}

func (a *Accounts) session(uid string, p *models.UserProfile, created bool) (*Session, error) {
	token, err := a.tokens.Generate(uid)
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}
	return &Session{Token: token, UID: uid, Profile: p, Created: created}, nil
}
