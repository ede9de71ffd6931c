package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storeadmin/internal/apperr"
	"storeadmin/internal/memstore"
)

func newAuth(secret string) *AuthService {
	return NewAuthService(memstore.NewAdmins(), secret).WithCost(bcrypt.MinCost)
}

func TestRegisterGrantsAdminOnlyWithSecret(t *testing.T) {
	svc := newAuth("open-sesame")
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterInput{
		Name: "Owner", Email: " Owner@Example.com ", Password: "pw-123456", AdminSecret: "open-sesame",
	})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "owner@example.com", admin.Email)
	assert.NotEqual(t, "pw-123456", admin.Password)

	staff, err := svc.Register(ctx, RegisterInput{
		Name: "Staff", Email: "staff@example.com", Password: "pw-123456", AdminSecret: "guess",
	})
	require.NoError(t, err)
	assert.False(t, staff.IsAdmin)
}

func TestRegisterEmptySecretNeverGrantsAdmin(t *testing.T) {
	admin, err := newAuth("").Register(context.Background(), RegisterInput{
		Name: "Owner", Email: "owner@example.com", Password: "pw", AdminSecret: "",
	})
	require.NoError(t, err)
	assert.False(t, admin.IsAdmin)
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	svc := newAuth("s")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "x", Email: "x@example.com"})
	assert.True(t, apperr.IsValidation(err))

	input := RegisterInput{Name: "x", Email: "x@example.com", Password: "pw"}
	_, err = svc.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "X@example.com"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc := newAuth("s")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "x", Email: "x@example.com", Password: "correct", AdminSecret: "s"})
	require.NoError(t, err)

	admin, err := svc.Login(ctx, "X@example.com", "correct")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	_, err = svc.Login(ctx, "x@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "correct")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.True(t, apperr.IsValidation(err))
}
