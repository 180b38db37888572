package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/marketplace/internal/hash"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Role        string    `json:"role"`
}

type UserService struct {
	Store     storage.Storage
	Events    mykafka.Publisher
	JWTSecret []byte
	Now       func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register stores the user with a bcrypt hash in place of the password.
func (s *UserService) Register(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Store.CreateUser(ctx, models.InsertUser{Username: in.Username, Password: hashed})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUsers, strconv.Itoa(u.ID), mykafka.NewEvent("user_registered", map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	}))
	return u, nil
}

// Login checks the credentials and issues an access token with the user's role.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	tok, exp, err := tokens.SignAccessToken(u.ID, u.Role, s.JWTSecret, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &LoginResult{AccessToken: tok, ExpiresAt: exp, Role: u.Role}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Store.GetUser(ctx, id)
}
