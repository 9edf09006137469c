package dataloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*inmemory.Store
	calls atomic.Int32
}

func (s *countingStore) GetUsersByIDs(ctx context.Context, ids []int) (map[int]*domain.User, error) {
	s.calls.Add(1)
	return s.Store.GetUsersByIDs(ctx, ids)
}

func TestLoaders_UsersBatchesLookups(t *testing.T) {
	store := &countingStore{Store: inmemory.New()}
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := store.CreateUser(ctx, &domain.User{Name: email, Email: email, Password: "h"})
		require.NoError(t, err)
	}

	users, err := NewLoaders(store).Users(ctx, []int{1, 2, 2, 3, 99})
	require.NoError(t, err)

	assert.Len(t, users, 3)
	assert.Equal(t, "b@x.com", users[2].Email)
	assert.NotContains(t, users, 99)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	var got *Loaders
	h := Middleware(inmemory.New(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.NotNil(t, got.UserByID)
}
