package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthConfig_Password(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{name: "minimum cost", cost: 10},
		{name: "default cost", cost: 12},
		{name: "maximum cost", cost: 14},
		{name: "cost too low", cost: 9, wantErr: true},
		{name: "cost too high", cost: 15, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := AuthConfig{BcryptCost: tt.cost}.Password()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "bcrypt cost out of range")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cost, pc.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: 10}

	hash, err := pc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, pc.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, pc.VerifyPassword("wrong password", hash))
	assert.False(t, pc.VerifyPassword("correct horse battery staple", ""))
}

func TestPasswordConfig_EmptyPassword(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: 10}
	_, err := pc.HashPassword("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestPasswordConfig_WithPepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "server-side-pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, plain.VerifyPassword("password123", hash), "hash must not verify without the pepper")

	rotated := &PasswordConfig{BcryptCost: 10, Pepper: "new-pepper"}
	assert.False(t, rotated.VerifyPassword("password123", hash), "hash must not verify after pepper rotation")
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: 10}

	first, err := pc.HashPassword("same-password")
	require.NoError(t, err)
	second, err := pc.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, pc.VerifyPassword("same-password", first))
	assert.True(t, pc.VerifyPassword("same-password", second))
}

func TestPasswordConfig_ConcurrentAccess(t *testing.T) {
	pc := &PasswordConfig{BcryptCost: 10}
	hash, err := pc.HashPassword("shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = pc.VerifyPassword("shared", hash)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "goroutine %d failed to verify", i)
	}
}
