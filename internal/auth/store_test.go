package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nsurely/motor-go/internal/auth"
	"github.com/nsurely/motor-go/pkg/motor"
)

func TestTokenStore(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := auth.NewTokenStore()

	assert.Nil(t, store.Get())
	assert.Empty(t, store.AccessToken())
	assert.True(t, store.RequiresRefresh(now))

	token := &motor.SessionToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    15,
		LastRefresh:  now,
		Orgs:         []map[string]string{{"id": "org-1"}},
	}
	store.Set(token)

	token.AccessToken = "mutated"
	token.Orgs[0]["id"] = "mutated"

	got := store.Get()
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "org-1", got.Orgs[0]["id"])
	assert.False(t, store.RequiresRefresh(now.Add(14*time.Minute)))
	assert.True(t, store.RequiresRefresh(now.Add(15*time.Minute)))

	store.Invalidate()
	assert.True(t, store.RequiresRefresh(now))
	assert.Equal(t, "access", store.AccessToken(), "invalidate keeps the token")

	store.Set(got)
	assert.False(t, store.RequiresRefresh(now))

	store.Clear()
	assert.Nil(t, store.Get())
}
