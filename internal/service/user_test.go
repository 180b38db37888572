package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

func TestUserService_RegisterHashesPassword(t *testing.T) {
	store := storage.NewMemStorage()
	pub := new(mockPublisher)
	svc := &UserService{Store: store, Events: pub, JWTSecret: []byte("k")}
	ctx := context.Background()

	pub.On("PublishEvent", mock.Anything, mykafka.TopicUsers, "1", eventOfType("user_registered")).Return(nil).Once()

	u, err := svc.Register(ctx, models.InsertUser{Username: "salma", Password: "pa55"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, u.Role)
	assert.NotEqual(t, "pa55", u.Password)

	_, err = svc.Register(ctx, models.InsertUser{Username: "salma", Password: "other"})
	require.ErrorIs(t, err, storage.ErrConflict)

	_, err = svc.Register(ctx, models.InsertUser{Username: "", Password: "x"})
	require.ErrorIs(t, err, ErrValidation)

	pub.AssertExpectations(t)
}

func TestUserService_Login(t *testing.T) {
	store := storage.NewMemStorage()
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	secret := []byte("k")
	svc := &UserService{Store: store, JWTSecret: secret, Now: func() time.Time { return now }}
	ctx := context.Background()

	u, err := svc.Register(ctx, models.InsertUser{Username: "salma", Password: "pa55"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "salma", "pa55")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, res.Role)
	assert.Equal(t, now.Add(tokens.AccessTTL), res.ExpiresAt)

	_, err = svc.Login(ctx, "salma", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost", "pa55")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "salma", got.Username)
}
