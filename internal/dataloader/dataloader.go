package dataloader

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByID *dataloader.Loader
}

// Middleware для внедрения новых лоадеров в контекст каждого запроса.
func Middleware(store storage.Storage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaders := NewLoaders(store)
		ctx := context.WithValue(r.Context(), key, loaders)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewLoaders создает лоадеры, которые собирают запросы в батчи.
func NewLoaders(store storage.Storage) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))
		ids := make([]int, len(keys))
		for i, k := range keys {
			id, err := strconv.Atoi(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: err}
				continue
			}
			ids[i] = id
		}

		// Вызываем метод хранилища, который делает ОДИН запрос к БД
		users, err := store.GetUsersByIDs(ctx, ids)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, id := range ids {
			if results[i] == nil {
				results[i] = &dataloader.Result{Data: users[id]}
			}
		}
		return results
	}

	return &Loaders{
		UserByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// For извлекает лоадеры из контекста.
func For(ctx context.Context) *Loaders {
	return ctx.Value(key).(*Loaders)
}

// Users загружает авторов по ids через батч-лоадер. Несуществующих
// пользователей в результате нет.
func (l *Loaders) Users(ctx context.Context, ids []int) (map[int]*domain.User, error) {
	thunks := make(map[int]dataloader.Thunk, len(ids))
	for _, id := range ids {
		if _, ok := thunks[id]; !ok {
			thunks[id] = l.UserByID.Load(ctx, dataloader.StringKey(strconv.Itoa(id)))
		}
	}

	users := make(map[int]*domain.User, len(thunks))
	for id, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			return nil, err
		}
		if u, ok := data.(*domain.User); ok && u != nil {
			users[id] = u
		}
	}
	return users, nil
}
