package auth_test

import (
	"context"
	"testing"

	auth "github.com/boowork/portal-auth"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byUserid map[string]*auth.User
	byID     map[string]*auth.User
	err      error
}

func (f *fakeUserStore) GetByUserid(ctx context.Context, userid string) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.byUserid[userid]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func newFakeStore(t *testing.T, userid, password string) (*fakeUserStore, *auth.User) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Userid:       userid,
		Name:         "Administrator",
		Role:         auth.RoleAdmin,
		PasswordHash: hash,
	}

	return &fakeUserStore{
		byUserid: map[string]*auth.User{userid: user},
		byID:     map[string]*auth.User{user.ID.String(): user},
	}, user
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	store, user := newFakeStore(t, "admin", "admin-password")
	provider := auth.NewUserProvider(store)

	identity, err := provider.VerifyIdentity(context.Background(), "admin", "admin-password")
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, "admin", identity.Userid())
	assert.Equal(t, "Administrator", identity.Name())
	assert.Equal(t, auth.RoleAdmin, identity.Role())
}

func TestUserProviderVerifyIdentityWrongPassword(t *testing.T) {
	store, _ := newFakeStore(t, "admin", "admin-password")
	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestUserProviderVerifyIdentityUnknownUser(t *testing.T) {
	store, _ := newFakeStore(t, "admin", "admin-password")
	provider := auth.NewUserProvider(store)

	// unknown user looks identical to a wrong password
	_, err := provider.VerifyIdentity(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestUserProviderVerifyIdentityStoreFailure(t *testing.T) {
	store := &fakeUserStore{err: goerrors.New("db down", goerrors.CategoryInternal)}
	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "admin", "admin-password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestUserProviderVerifyIdentityInvalidRole(t *testing.T) {
	store, user := newFakeStore(t, "admin", "admin-password")
	user.Role = "superuser"
	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "admin", "admin-password")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, "INVALID_ROLE", rich.TextCode)
}

func TestUserProviderFindIdentityByID(t *testing.T) {
	store, user := newFakeStore(t, "admin", "admin-password")
	provider := auth.NewUserProvider(store)

	identity, err := provider.FindIdentityByID(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Userid())

	_, err = provider.FindIdentityByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestUserProviderCustomValidator(t *testing.T) {
	store, _ := newFakeStore(t, "admin", "admin-password")
	provider := auth.NewUserProvider(store)
	provider.Validator = func(u *auth.User) error {
		return goerrors.New("account suspended", goerrors.CategoryAuth)
	}

	_, err := provider.VerifyIdentity(context.Background(), "admin", "admin-password")
	assert.Error(t, err)
}
