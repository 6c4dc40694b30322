package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
	"recipe-api/internal/repository/sqlite"
	"recipe-api/internal/service"
)

type testDeps struct {
	userRepo repository.UserRepository
	users    service.UserService
	tokens   service.TokenService
	tags     service.TagService
}

func setupServices(t *testing.T) *testDeps {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)
	tagRepo := sqlite.NewTagRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, tokenRepo.Init(ctx))
	require.NoError(t, tagRepo.Init(ctx))

	users := service.NewUserService(userRepo, bcrypt.MinCost)
	return &testDeps{
		userRepo: userRepo,
		users:    users,
		tokens:   service.NewTokenService(tokenRepo, users),
		tags:     service.NewTagService(tagRepo),
	}
}

func TestCreateUserWithEmail(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "test@gmail.com", "Test123", "")
	require.NoError(t, err)
	assert.Equal(t, "test@gmail.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)

	stored, err := deps.userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Test123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Test123")))
}

func TestCreateUserNormalizesEmailDomain(t *testing.T) {
	deps := setupServices(t)

	email := "person@DJANGO.com"
	user, err := deps.users.CreateUser(context.Background(), email, "test123", "")
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(email), user.Email)
}

func TestCreateUserRejectsEmptyEmail(t *testing.T) {
	deps := setupServices(t)

	for _, email := range []string{"", "   "} {
		_, err := deps.users.CreateUser(context.Background(), email, "test123", "")
		require.Error(t, err)
		assert.True(t, service.IsValidation(err))
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	_, err := deps.users.CreateUser(ctx, "dup@example.com", "testpassword", "")
	require.NoError(t, err)

	_, err = deps.users.CreateUser(ctx, "dup@EXAMPLE.com", "testpassword", "")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestCreateSuperuser(t *testing.T) {
	deps := setupServices(t)

	user, err := deps.users.CreateSuperuser(context.Background(), "admin@gmail.com", "test123")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestAuthenticate(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	created, err := deps.users.CreateUser(ctx, "login@Example.com", "testpassword", "")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "login@example.com", password: "testpassword"},
		{name: "domain case ignored", email: "login@EXAMPLE.COM", password: "testpassword"},
		{name: "wrong password", email: "login@example.com", password: "wrongpassword", wantErr: service.ErrInvalidCredentials},
		{name: "unknown user", email: "nobody@example.com", password: "testpassword", wantErr: service.ErrInvalidCredentials},
		{name: "blank password", email: "login@example.com", password: "", wantErr: service.ErrInvalidCredentials},
		{name: "blank email", email: "", password: "testpassword", wantErr: service.ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := deps.users.Authenticate(ctx, tc.email, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, user.ID)
			assert.Empty(t, user.PasswordHash)
		})
	}
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "inactive@example.com", "testpassword", "")
	require.NoError(t, err)
	stored, err := deps.userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, deps.userRepo.Update(ctx, stored))

	_, err = deps.users.Authenticate(ctx, "inactive@example.com", "testpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "testuser77@gmail.com", "testpassword", "testname")
	require.NoError(t, err)

	newEmail := "replacetestuser@GMAIL.com"
	newPassword := "replacetestpassword"
	updated, err := deps.users.UpdateProfile(ctx, user, service.ProfileUpdate{
		Email:    &newEmail,
		Password: &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "replacetestuser@gmail.com", updated.Email)
	assert.Equal(t, "testname", updated.Name)
	assert.Empty(t, updated.PasswordHash)

	_, err = deps.users.Authenticate(ctx, "replacetestuser@gmail.com", newPassword)
	assert.NoError(t, err)
	_, err = deps.users.Authenticate(ctx, "replacetestuser@gmail.com", "testpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUpdateProfileNameOnly(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "name@example.com", "testpassword", "")
	require.NoError(t, err)

	name := "  New Name "
	updated, err := deps.users.UpdateProfile(ctx, user, service.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	_, err = deps.users.Authenticate(ctx, "name@example.com", "testpassword")
	assert.NoError(t, err)
}

func TestUpdateProfileErrors(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "first@example.com", "testpassword", "")
	require.NoError(t, err)
	_, err = deps.users.CreateUser(ctx, "second@example.com", "testpassword", "")
	require.NoError(t, err)

	_, err = deps.users.UpdateProfile(ctx, nil, service.ProfileUpdate{})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = deps.users.UpdateProfile(ctx, &domain.User{ID: 999}, service.ProfileUpdate{})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	taken := "second@example.com"
	_, err = deps.users.UpdateProfile(ctx, user, service.ProfileUpdate{Email: &taken})
	assert.True(t, service.IsValidation(err))

	blank := " "
	_, err = deps.users.UpdateProfile(ctx, user, service.ProfileUpdate{Email: &blank})
	assert.True(t, service.IsValidation(err))

	empty := ""
	_, err = deps.users.UpdateProfile(ctx, user, service.ProfileUpdate{Password: &empty})
	assert.True(t, service.IsValidation(err))
}

func TestLoginReusesToken(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	_, err := deps.users.CreateUser(ctx, "token@example.com", "testpassword", "")
	require.NoError(t, err)

	first, err := deps.tokens.Login(ctx, "token@example.com", "testpassword")
	require.NoError(t, err)
	assert.Len(t, first.Key, 40)

	second, err := deps.tokens.Login(ctx, "token@example.com", "testpassword")
	require.NoError(t, err)
	assert.Equal(t, first.Key, second.Key)

	_, err = deps.tokens.Login(ctx, "token@example.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestResolve(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "resolve@example.com", "testpassword", "Resolver")
	require.NoError(t, err)
	token, err := deps.tokens.IssueOrGet(ctx, user)
	require.NoError(t, err)

	resolved, err := deps.tokens.Resolve(ctx, token.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, "Resolver", resolved.Name)
	assert.Empty(t, resolved.PasswordHash)

	_, err = deps.tokens.Resolve(ctx, "")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = deps.tokens.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	stored, err := deps.userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, deps.userRepo.Update(ctx, stored))
	_, err = deps.tokens.Resolve(ctx, token.Key)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestIssueOrGetRequiresUser(t *testing.T) {
	deps := setupServices(t)

	_, err := deps.tokens.IssueOrGet(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestTagsScopedToOwner(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user1, err := deps.users.CreateUser(ctx, "tagtestuser@gmail.com", "testpassword", "")
	require.NoError(t, err)
	user2, err := deps.users.CreateUser(ctx, "othertagtestuser@gmail.com", "testpassword2", "")
	require.NoError(t, err)

	_, err = deps.tags.CreateTag(ctx, user2, "Lunch")
	require.NoError(t, err)
	own, err := deps.tags.CreateTag(ctx, user1, " Dessert ")
	require.NoError(t, err)
	assert.Equal(t, "Dessert", own.Name)

	tags, err := deps.tags.ListTags(ctx, user1)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, own.ID, tags[0].ID)
	assert.Equal(t, "Dessert", tags[0].Name)
}

func TestListTagsOrderedAndRepeatable(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "order@example.com", "testpassword", "")
	require.NoError(t, err)
	for _, name := range []string{"Lunch", "Dessert", "Vegan", "Breakfast"} {
		_, err := deps.tags.CreateTag(ctx, user, name)
		require.NoError(t, err)
	}

	first, err := deps.tags.ListTags(ctx, user)
	require.NoError(t, err)
	names := make([]string, len(first))
	for i := range first {
		names[i] = first[i].Name
	}
	assert.Equal(t, []string{"Vegan", "Lunch", "Dessert", "Breakfast"}, names)

	second, err := deps.tags.ListTags(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCreateTagValidation(t *testing.T) {
	deps := setupServices(t)
	ctx := context.Background()

	user, err := deps.users.CreateUser(ctx, "valid@example.com", "testpassword", "")
	require.NoError(t, err)

	_, err = deps.tags.CreateTag(ctx, user, "   ")
	assert.True(t, service.IsValidation(err))

	_, err = deps.tags.CreateTag(ctx, user, strings.Repeat("a", 256))
	assert.True(t, service.IsValidation(err))

	_, err = deps.tags.CreateTag(ctx, nil, "Lunch")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = deps.tags.ListTags(ctx, nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}
