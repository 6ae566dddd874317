package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"anoa.com/storybloom/internal/entity"
	"anoa.com/storybloom/internal/modules/user/dto"
	"anoa.com/storybloom/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*entity.User
	roles map[string]*entity.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[string]*entity.User{},
		roles: map[string]*entity.Role{
			entity.RoleParent: {ID: 2, Name: entity.RoleParent},
		},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return role, nil
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "secret", 30*time.Minute, nil)

	reg, err := svc.Register(context.Background(), dto.RegisterInput{
		Email:       "  Parent@Example.com ",
		Password:    "correct horse",
		DisplayName: "<i>Sam</i>",
	})
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", reg.User.Email)
	assert.Equal(t, "Sam", reg.User.DisplayName)
	assert.Empty(t, reg.User.PasswordHash)
	assert.Equal(t, entity.RoleParent, reg.Role.Name)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(reg.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)

	login, err := svc.Login(context.Background(), dto.LoginInput{Email: "parent@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", login.TokenType)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, nil)
	input := dto.RegisterInput{Email: "a@b.co", Password: "password1", DisplayName: "A"}

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, nil)
	_, err := svc.Register(context.Background(), dto.RegisterInput{Email: "a@b.co", Password: "password1", DisplayName: "A"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginInput{Email: "a@b.co", Password: "password2"})
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))

	_, err = svc.Login(context.Background(), dto.LoginInput{Email: "nobody@b.co", Password: "password1"})
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
}
