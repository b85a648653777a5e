package services

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-booking-backend/models"
)

const goodPassword = "Secret@123"

func newUserService(t *testing.T) *UserService {
	t.Helper()
	svc := NewUserService(newTestDB(t))
	svc.Clock = fixedClock
	return svc
}

func register(t *testing.T, svc *UserService, username string) *models.UserResponse {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@Example.com",
		Password: goodPassword,
		Phone:    "9876543210",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u := register(t, svc, "priya")
	assert.Equal(t, "priya@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)

	var stored models.User
	require.NoError(t, svc.DB.First(&stored, u.UserID).Error)
	assert.NotEqual(t, goodPassword, stored.Password)

	admin, err := svc.Register(ctx, RegisterInput{Username: "ops", Email: "ops@example.com", Password: goodPassword, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = svc.Register(ctx, RegisterInput{Username: "PRIYA", Email: "other@example.com", Password: goodPassword})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Username PRIYA is already taken")

	_, err = svc.Register(ctx, RegisterInput{Username: "priya2", Email: "PRIYA@example.com", Password: goodPassword})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "Email priya@example.com is already registered")
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ab",
		Email:    "not-an-email",
		Password: "password",
		Phone:    "98-76",
		Role:     "ROOT",
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.ElementsMatch(t, []string{"username", "email", "password", "phone", "role"}, lo.Keys(fe))
}

func TestLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	u := register(t, svc, "priya")

	for _, ident := range []string{"priya", "priya@example.com", " PRIYA@EXAMPLE.COM "} {
		t.Run(ident, func(t *testing.T) {
			resp, err := svc.Login(ctx, LoginInput{UsernameOrEmail: ident, Password: goodPassword})
			require.NoError(t, err)
			assert.True(t, resp.Authenticated)
			assert.Equal(t, "Login successful", resp.Message)
			assert.Equal(t, u.UserID, resp.UserID)
			assert.Equal(t, fixedNow, resp.LoginTime)
		})
	}

	_, err := svc.Login(ctx, LoginInput{UsernameOrEmail: "priya", Password: "Wrong@123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{UsernameOrEmail: "nobody", Password: goodPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{UsernameOrEmail: "priya"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "password")
}

func TestUserLookups(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	priya := register(t, svc, "priya")
	register(t, svc, "pranav")
	register(t, svc, "kiran")

	got, err := svc.GetUserByUsername(ctx, "pranav")
	require.NoError(t, err)
	assert.Equal(t, "pranav", got.Username)

	got, err = svc.GetUserByEmail(ctx, "PRIYA@example.com")
	require.NoError(t, err)
	assert.Equal(t, priya.UserID, got.UserID)

	_, err = svc.GetUserByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "User not found with email: ghost@example.com")

	_, err = svc.GetUser(ctx, 77)
	require.ErrorIs(t, err, ErrNotFound)

	usernames := func(us []models.UserResponse) []string {
		return lo.Map(us, func(u models.UserResponse, _ int) string { return u.Username })
	}

	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"priya", "pranav", "kiran"}, usernames(all))

	found, err := svc.SearchUsersByUsername(ctx, "PR")
	require.NoError(t, err)
	assert.Equal(t, []string{"priya", "pranav"}, usernames(found))

	found, err = svc.SearchUsersByEmail(ctx, "kir")
	require.NoError(t, err)
	assert.Equal(t, []string{"kiran"}, usernames(found))

	byRole, err := svc.UsersByRole(ctx, "user")
	require.NoError(t, err)
	assert.Len(t, byRole, 3)

	_, err = svc.UsersByRole(ctx, "GUEST")
	requireValidation(t, err, "Invalid role: GUEST")

	exists, err := svc.ExistsByUsername(ctx, "KIRAN")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateUser(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	priya := register(t, svc, "priya")
	register(t, svc, "kiran")

	updated, err := svc.UpdateUser(ctx, priya.UserID, UpdateUserInput{
		Username: "priya_s",
		Email:    "priya.s@example.com",
		Role:     "ADMIN",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya_s", updated.Username)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Empty(t, updated.Phone)

	// no password in the update keeps the old one
	_, err = svc.Login(ctx, LoginInput{UsernameOrEmail: "priya_s", Password: goodPassword})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, priya.UserID, UpdateUserInput{Username: "kiran", Email: "priya.s@example.com"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.UpdateUser(ctx, 99, UpdateUserInput{Username: "someone", Email: "someone@example.com"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.ResetPassword(ctx, priya.UserID, ResetPasswordInput{Password: "Fresh@456"}))
	_, err = svc.Login(ctx, LoginInput{UsernameOrEmail: "priya_s", Password: goodPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{UsernameOrEmail: "priya_s", Password: "Fresh@456"})
	require.NoError(t, err)

	var fe FieldErrors
	require.ErrorAs(t, svc.ResetPassword(ctx, priya.UserID, ResetPasswordInput{Password: "weak"}), &fe)
	require.ErrorIs(t, svc.ResetPassword(ctx, 99, ResetPasswordInput{Password: "Fresh@456"}), ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t, 5)
	svc := NewUserService(f.db)
	ctx := context.Background()
	f.book(t, daysFromNow(3), passenger("Ravi Kumar", idProof(1)))

	requireValidation(t, svc.DeleteUser(ctx, f.user.ID), "Cannot delete user with existing bookings")

	idle := createUser(t, f.db, "idle")
	require.NoError(t, svc.DeleteUser(ctx, idle.ID))
	require.ErrorIs(t, svc.DeleteUser(ctx, idle.ID), ErrNotFound)
}
