package crud

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/domain"
	"quill/errs"
)

func TestCreateUser(t *testing.T) {
	db := setupDB(t)
	us := NewUserService(db, "test-hmac-key", "test-pepper")

	user := domain.User{
		Username: "leo",
		Email:    "Leo@Example.COM ",
		Password: "super-secret",
	}
	require.NoError(t, us.Create(testCtx, &user))

	assert.NotZero(t, user.ID)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, user.Remember)
	assert.NotEmpty(t, user.RememberHash)
	assert.Equal(t, "leo@example.com", user.Email)
}

func TestCreateUserValidation(t *testing.T) {
	db := setupDB(t)
	us := NewUserService(db, "test-hmac-key", "test-pepper")
	require.NoError(t, us.Create(testCtx, &domain.User{Username: "taken", Password: "super-secret"}))

	tests := []struct {
		name string
		user domain.User
	}{
		{"missing username", domain.User{Password: "super-secret"}},
		{"bad username chars", domain.User{Username: "no spaces", Password: "super-secret"}},
		{"duplicate username", domain.User{Username: "taken", Password: "super-secret"}},
		{"missing password", domain.User{Username: "leo"}},
		{"short password", domain.User{Username: "leo", Password: "short"}},
		{"bad email", domain.User{Username: "leo", Password: "super-secret", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := us.Create(testCtx, &tt.user)
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	db := setupDB(t)
	us := NewUserService(db, "test-hmac-key", "test-pepper")
	user := domain.User{Username: "leo", Password: "super-secret"}
	require.NoError(t, us.Create(testCtx, &user))

	got, err := us.Authenticate(testCtx, "leo", "super-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = us.Authenticate(testCtx, "leo", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	// An unknown user yields the same error as a wrong password.
	_, err = us.Authenticate(testCtx, "nobody", "super-secret")
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

func TestByRememberRoundTrip(t *testing.T) {
	db := setupDB(t)
	us := NewUserService(db, "test-hmac-key", "test-pepper")
	user := domain.User{Username: "leo", Password: "super-secret"}
	require.NoError(t, us.Create(testCtx, &user))

	got, err := us.ByRemember(testCtx, user.Remember)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = us.ByRemember(testCtx, "bogus-token")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestHMACHashConcurrent(t *testing.T) {
	h := newHMAC("test-hmac-key")
	want := h.hash("some-remember-token")

	// The session middleware hashes on every request, so concurrent calls
	// must not interfere with each other.
	var wg sync.WaitGroup
	got := make([]string, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got[i] = h.hash("some-remember-token")
			}
		}(i)
	}
	wg.Wait()

	for i := range got {
		assert.Equal(t, want, got[i])
	}
}

func TestRotateRememberToken(t *testing.T) {
	db := setupDB(t)
	us := NewUserService(db, "test-hmac-key", "test-pepper")
	user := domain.User{Username: "leo", Password: "super-secret"}
	require.NoError(t, us.Create(testCtx, &user))
	oldToken := user.Remember

	token, err := us.MakeRememberToken()
	require.NoError(t, err)
	user.Remember = token
	require.NoError(t, us.Update(testCtx, &user))

	got, err := us.ByRemember(testCtx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = us.ByRemember(testCtx, oldToken)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
