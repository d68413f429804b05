package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"golang.org/x/crypto/bcrypt"
)

type authenticatorSrv struct {
	users  port.UserRepository
	tokens *Tokens
	genID  port.UUIDGen
	now    func() time.Time
}

func NewAuthenticator(users port.UserRepository, tokens *Tokens, genID port.UUIDGen) port.Authenticator {
	return &authenticatorSrv{users: users, tokens: tokens, genID: genID, now: time.Now}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authenticatorSrv) Register(ctx context.Context, in port.CredentialsInput) (*port.AuthToken, error) {
	email := normaliseEmail(in.Email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		ID:           s.genID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "userId", user.ID.String())

	return s.issue(user)
}

func (s *authenticatorSrv) Login(ctx context.Context, in port.CredentialsInput) (*port.AuthToken, error) {
	user, err := s.users.GetByEmail(ctx, normaliseEmail(in.Email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		logger.Warnf(ctx, "failed to record last login for user #%s: %v", user.ID, err)
	}
	return s.issue(user)
}

func (s *authenticatorSrv) issue(user *model.User) (*port.AuthToken, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &port.AuthToken{Token: token, ExpiresAt: expiresAt}, nil
}
