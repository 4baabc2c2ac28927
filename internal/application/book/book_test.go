package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/shelf"
	"github.com/xiebiao/library/internal/domain/user"
)

type fixture struct {
	env    *apptest.Env
	create *CreateBookUseCase
	update *UpdateBookUseCase
	move   *MoveBookUseCase
	delete *DeleteBookUseCase
	get    *GetBookUseCase
	list   *ListBooksUseCase
}

func newFixture(t *testing.T) *fixture {
	env := apptest.New(t)
	return &fixture{
		env:    env,
		create: NewCreateBookUseCase(env.Books, env.Shelves, env.Tx, env.Events),
		update: NewUpdateBookUseCase(env.Books, env.Lending, env.Tx, env.Events),
		move:   NewMoveBookUseCase(env.Books, env.Shelves, env.Tx, env.Events),
		delete: NewDeleteBookUseCase(env.Books, env.Lending, env.Tx, env.Events),
		get:    NewGetBookUseCase(env.Books),
		list:   NewListBooksUseCase(env.Books),
	}
}

func (f *fixture) createBook(isbn string, shelfID uint) (*BookResponse, error) {
	return f.create.Execute(context.Background(), CreateBookRequest{
		ISBN:       isbn,
		Title:      "Go程序设计语言",
		Author:     "Donovan",
		TotalCount: 2,
		ShelfID:    shelfID,
	})
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 5)

	b, err := f.createBook("978-7-111-55842-2", s.ID)
	require.NoError(t, err)
	assert.Equal(t, "9787111558422", b.ISBN)
	assert.Equal(t, 2, b.AvailableCount, "可借数量初始等于总量")
	assert.Equal(t, []event.Kind{event.KindShelfCapacityChanged}, f.env.Events.Kinds())

	_, err = f.createBook("9787111558422", s.ID)
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)

	_, err = f.createBook("123", s.ID)
	assert.ErrorIs(t, err, book.ErrInvalidISBN)

	_, err = f.createBook("9787115428028", 999)
	assert.ErrorIs(t, err, shelf.ErrShelfNotFound)
}

// 容量3的书架放满3本后不能再放,也不能缩容到2
func TestShelfFull(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 3)

	for _, isbn := range []string{"9787115428028", "9787111558422", "9787121155352"} {
		_, err := f.createBook(isbn, s.ID)
		require.NoError(t, err)
	}
	// 书架剩余容量尚未修正,仍按实际图书数拒绝
	_, err := f.createBook("9787302423287", s.ID)
	assert.ErrorIs(t, err, shelf.ErrShelfFull)

	_, changeErr := s.ChangeCapacity(2, 3)
	assert.ErrorIs(t, changeErr, shelf.ErrShelfWillBeFull)
}

func TestUpdateBook_TotalCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 5)
	b := f.env.Book(t, s.ID, "9787115428028", 3)
	librarian := f.env.User(t, "lib@example.com", user.RoleLibrarian)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)
	f.env.Loan(t, "tx-1", b.ID, alice.ID, librarian.ID, time.Now(), 14)
	f.env.Loan(t, "tx-2", b.ID, bob.ID, librarian.ID, time.Now(), 14)

	_, err := f.update.Execute(ctx, UpdateBookRequest{BookID: b.ID, TotalCount: 1})
	assert.ErrorIs(t, err, book.ErrTotalCountBelowLentCount)

	got, err := f.update.Execute(ctx, UpdateBookRequest{BookID: b.ID, Title: "新书名", TotalCount: 4})
	require.NoError(t, err)
	assert.Equal(t, "新书名", got.Title)
	assert.Equal(t, 4, got.TotalCount)
	assert.Equal(t, []event.Kind{event.KindBookAvailabilityChanged}, f.env.Events.Kinds())

	// 只改信息不发事件
	f.env.Events.Take()
	_, err = f.update.Execute(ctx, UpdateBookRequest{BookID: b.ID, Author: "某人"})
	require.NoError(t, err)
	assert.Empty(t, f.env.Events.Kinds())
}

func TestUpdateBook_ISBNConflict(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 5)
	f.env.Book(t, s.ID, "9787115428028", 1)
	b := f.env.Book(t, s.ID, "9787111558422", 1)

	_, err := f.update.Execute(context.Background(), UpdateBookRequest{BookID: b.ID, ISBN: "978-7-115-42802-8"})
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
}

func TestMoveBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := f.env.Shelf(t, "A-1", 5)
	to := f.env.Shelf(t, "B-1", 1)
	b := f.env.Book(t, from.ID, "9787115428028", 1)
	other := f.env.Book(t, from.ID, "9787111558422", 1)

	moved, err := f.move.Execute(ctx, MoveBookRequest{BookID: b.ID, ShelfID: to.ID})
	require.NoError(t, err)
	assert.Equal(t, to.ID, moved.ShelfID)

	events := f.env.Events.Take()
	require.Len(t, events, 2)
	assert.Equal(t, from.ID, events[0].ShelfID)
	assert.Equal(t, to.ID, events[1].ShelfID)

	_, err = f.move.Execute(ctx, MoveBookRequest{BookID: other.ID, ShelfID: to.ID})
	assert.ErrorIs(t, err, shelf.ErrShelfFull)

	// 移到原书架是空操作
	_, err = f.move.Execute(ctx, MoveBookRequest{BookID: other.ID, ShelfID: from.ID})
	require.NoError(t, err)
	assert.Empty(t, f.env.Events.Kinds())
}

func TestDeleteBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 5)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	librarian := f.env.User(t, "lib@example.com", user.RoleLibrarian)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	loan := f.env.Loan(t, "tx-1", b.ID, alice.ID, librarian.ID, time.Now(), 14)

	assert.ErrorIs(t, f.delete.Execute(ctx, b.ID), book.ErrCannotDelete)

	loan.Returned = true
	returnedAt := time.Now()
	loan.ReturnDate = &returnedAt
	require.NoError(t, f.env.Lending.Update(ctx, loan))

	require.NoError(t, f.delete.Execute(ctx, b.ID))
	assert.Equal(t, []event.Kind{event.KindShelfCapacityChanged}, f.env.Events.Kinds())

	_, err := f.get.Execute(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// ISBN释放后可以重新上架
	_, err = f.createBook("9787115428028", s.ID)
	assert.NoError(t, err)
}

func TestListBooks(t *testing.T) {
	f := newFixture(t)
	a := f.env.Shelf(t, "A-1", 5)
	b := f.env.Shelf(t, "B-1", 5)
	f.env.Book(t, a.ID, "9787115428028", 1)
	f.env.Book(t, b.ID, "9787111558422", 1)

	all, err := f.list.Execute(context.Background(), ListBooksRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	onShelf, err := f.list.Execute(context.Background(), ListBooksRequest{Page: 1, PageSize: 10, ShelfID: b.ID})
	require.NoError(t, err)
	require.Len(t, onShelf.Items, 1)
	assert.Equal(t, "9787111558422", onShelf.Items[0].ISBN)
}
