package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"jsoncrud/internal/user/model"
	"jsoncrud/pkg/apperror"
	"jsoncrud/pkg/optional"
	"jsoncrud/socket"
	"jsoncrud/store"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type published struct {
	Type, Collection, ID string
}

type fakeFeed struct {
	mu     sync.Mutex
	events []published
}

func (f *fakeFeed) Publish(eventType, collection, id string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{eventType, collection, id})
}

func newService(t *testing.T) (*UserService, *fakeFeed) {
	t.Helper()
	st := store.New(
		store.NewFileBackend(afero.NewMemMapFs(), "db.json"),
		store.WithClock(func() time.Time { return fixedNow }),
	)
	feed := &fakeFeed{}
	return NewUserService(st, feed), feed
}

func intPtr(v int) *int { return &v }

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, feed := newService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: "a@x.com", Age: intPtr(30)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2026-10-19T10:00:00.000Z", created.CreatedAt)
	assert.Empty(t, created.UpdatedAt)

	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	assert.Equal(t, []published{{socket.CreatedType, socket.CollectionUsers, created.ID}}, feed.events)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newService(t)

	for _, req := range []model.CreateUserRequest{
		{Email: "a@x.com"},
		{Name: "Alice"},
		{},
	} {
		_, err := svc.CreateUser(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, "Name and email are required", err.Error())
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, feed := newService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Name: "Bob", Email: "a@x.com"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Matching is case-sensitive.
	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Name: "Carol", Email: "A@x.com"})
	assert.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, alice, users[0])
	assert.Len(t, feed.events, 2)
}

func TestConcurrentCreatesAllPersist(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	const n = 40

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			_, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("user%d@x.com", i)})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, n)
}

func TestConcurrentDisjointUpdatesBothApply(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		u, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: fmt.Sprintf("a%d@x.com", round)})
		require.NoError(t, err)

		var wg conc.WaitGroup
		wg.Go(func() {
			_, err := svc.UpdateUser(ctx, u.ID, model.UpdateUserRequest{Name: optional.Of("Alicia")})
			assert.NoError(t, err)
		})
		wg.Go(func() {
			_, err := svc.UpdateUser(ctx, u.ID, model.UpdateUserRequest{Age: optional.Of(41)})
			assert.NoError(t, err)
		})
		wg.Wait()

		got, err := svc.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", got.Name)
		require.NotNil(t, got.Age)
		assert.Equal(t, 41, *got.Age)
	}
}

func TestUpdateUserMergesAndKeepsImmutableFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: "a@x.com", Age: intPtr(30)})
	require.NoError(t, err)

	var req model.UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"hijack","createdAt":"1999","age":null,"nickname":"al"}`), &req))

	updated, err := svc.UpdateUser(ctx, u.ID, req)
	require.NoError(t, err)
	assert.Equal(t, u.ID, updated.ID)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Nil(t, updated.Age)
	assert.Equal(t, "2026-10-19T10:00:00.000Z", updated.UpdatedAt)
}

func TestUpdateUserErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, model.CreateUserRequest{Name: "Bob", Email: "b@x.com"})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, alice.ID, model.UpdateUserRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "No update data provided", err.Error())

	_, err = svc.UpdateUser(ctx, "missing", model.UpdateUserRequest{Name: optional.Of("X")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "User with ID missing not found", err.Error())

	_, err = svc.UpdateUser(ctx, alice.ID, model.UpdateUserRequest{Name: optional.Of("")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.UpdateUser(ctx, alice.ID, model.UpdateUserRequest{Email: optional.Of("b@x.com")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Re-submitting one's own email is not a conflict.
	_, err = svc.UpdateUser(ctx, alice.ID, model.UpdateUserRequest{Email: optional.Of("a@x.com")})
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	svc, feed := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, model.CreateUserRequest{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)

	removed, err := svc.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, removed)

	_, err = svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.DeleteUser(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, socket.DeletedType, feed.events[len(feed.events)-1].Type)
}

func TestSaveFailureIsNotPublished(t *testing.T) {
	st := store.New(store.NewFileBackend(afero.NewReadOnlyFs(afero.NewMemMapFs()), "db.json"))
	feed := &fakeFeed{}
	svc := NewUserService(st, feed)

	_, err := svc.CreateUser(context.Background(), model.CreateUserRequest{Name: "Alice", Email: "a@x.com"})

	assert.ErrorIs(t, err, apperror.ErrPersistence)
	assert.Empty(t, feed.events)
}
