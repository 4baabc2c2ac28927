package shelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/shelf"
)

func TestShelfLifecycle(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	create := NewCreateShelfUseCase(env.Shelves)
	update := NewUpdateShelfUseCase(env.Shelves, env.Books, env.Tx, env.Events)
	remove := NewDeleteShelfUseCase(env.Shelves, env.Books, env.Tx)
	get := NewGetShelfUseCase(env.Shelves)
	list := NewListShelvesUseCase(env.Shelves)

	s, err := create.Execute(ctx, CreateShelfRequest{Name: "A-1", Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.AvailableCapacity)

	_, err = create.Execute(ctx, CreateShelfRequest{Name: "A-1", Capacity: 3})
	assert.ErrorIs(t, err, shelf.ErrShelfNameDuplicate)
	_, err = create.Execute(ctx, CreateShelfRequest{Name: "A-2", Capacity: 0})
	assert.ErrorIs(t, err, shelf.ErrInvalidCapacity)

	for _, isbn := range []string{"9787115428028", "9787111558422", "9787121155352"} {
		env.Book(t, s.ID, isbn, 1)
	}

	// 放了3本书的书架不能缩容到2
	_, err = update.Execute(ctx, UpdateShelfRequest{ShelfID: s.ID, Capacity: 2})
	assert.ErrorIs(t, err, shelf.ErrShelfWillBeFull)

	updated, err := update.Execute(ctx, UpdateShelfRequest{ShelfID: s.ID, Name: "A-1-扩", Capacity: 6})
	require.NoError(t, err)
	assert.Equal(t, "A-1-扩", updated.Name)
	assert.Equal(t, []event.Kind{event.KindShelfCapacityChanged}, env.Events.Kinds())

	assert.ErrorIs(t, remove.Execute(ctx, s.ID), shelf.ErrCannotDelete)

	empty, err := create.Execute(ctx, CreateShelfRequest{Name: "B-1", Capacity: 1})
	require.NoError(t, err)
	_, err = update.Execute(ctx, UpdateShelfRequest{ShelfID: empty.ID, Name: "A-1-扩"})
	assert.ErrorIs(t, err, shelf.ErrShelfNameDuplicate)

	require.NoError(t, remove.Execute(ctx, empty.ID))
	_, err = get.Execute(ctx, empty.ID)
	assert.ErrorIs(t, err, shelf.ErrShelfNotFound)

	page, err := list.Execute(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
