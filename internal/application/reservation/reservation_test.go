package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	"github.com/xiebiao/library/internal/application/reconcile"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	now   = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	today = calendar.Of(now)
)

type fixture struct {
	env     *apptest.Env
	reserve *ReserveBookUseCase
	update  *UpdateReservationUseCase
	cancel  *CancelReservationUseCase
	list    *ListReservationsUseCase
}

func newFixture(t *testing.T) *fixture {
	env := apptest.New(t)
	f := &fixture{
		env:     env,
		reserve: NewReserveBookUseCase(env.Books, env.Users, env.Lending, env.Reservations, env.Tx),
		update:  NewUpdateReservationUseCase(env.Books, env.Lending, env.Reservations, env.Tx),
		cancel:  NewCancelReservationUseCase(env.Reservations, env.Tx),
		list:    NewListReservationsUseCase(env.Reservations),
	}
	clock := func() time.Time { return now }
	f.reserve.now = clock
	f.update.now = clock
	return f
}

func (f *fixture) reserveFor(bookID, userID uint, date calendar.Date) (*ReservationResponse, error) {
	return f.reserve.Execute(context.Background(), ReserveBookRequest{BookID: bookID, UserID: userID, Date: date})
}

func TestReserveBook_Rules(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 2)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	_, err := f.reserveFor(b.ID, alice.ID, today.AddDays(-1))
	assert.ErrorIs(t, err, reservation.ErrDateInPast)

	r, err := f.reserveFor(b.ID, alice.ID, today.AddDays(5))
	require.NoError(t, err)
	assert.False(t, r.Completed)
	assert.Equal(t, "2024-05-15", r.ReservationDate.String())

	_, err = f.reserveFor(b.ID, alice.ID, today.AddDays(6))
	assert.ErrorIs(t, err, reservation.ErrAlreadyHasReservation)

	_, err = f.reserveFor(999, alice.ID, today)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.CategoryOf(err), "先锁图书,图书不存在直接NotFound")

	_, err = f.reserveFor(b.ID, 999, today)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CategoryNotFound, apperrors.CategoryOf(err))
}

// 预约与借出按相同顺序加行锁,避免同一读者同一本书上的死锁
func TestReserveBook_LockOrderMatchesLending(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 2)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	locks := &apptest.LockLog{}
	f.reserve = NewReserveBookUseCase(locks.Books(f.env.Books), locks.Users(f.env.Users), f.env.Lending, f.env.Reservations, f.env.Tx)
	f.reserve.now = func() time.Time { return now }

	_, err := f.reserveFor(b.ID, alice.ID, today.AddDays(3))
	require.NoError(t, err)
	assert.Equal(t, []string{apptest.LockBook, apptest.LockUser}, locks.Order())
}

// 过期未完成的预约在7天冷却期内阻止新的预约
func TestReserveBook_CoolDown(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 2)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	f.env.Reservation(t, b.ID, alice.ID, today.AddDays(-2), now.AddDate(0, 0, -3))
	_, err := f.reserveFor(b.ID, alice.ID, today.AddDays(1))
	assert.ErrorIs(t, err, reservation.ErrHasUncompletedReservation)

	bob := f.env.User(t, "bob@example.com", user.RoleUser)
	f.env.Reservation(t, b.ID, bob.ID, today.AddDays(-2), now.AddDate(0, 0, -8))
	_, err = f.reserveFor(b.ID, bob.ID, today.AddDays(1))
	assert.NoError(t, err, "冷却期已过")
}

func TestReserveBook_Projection(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	librarian := f.env.User(t, "lib@example.com", user.RoleLibrarian)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)
	carol := f.env.User(t, "carol@example.com", user.RoleUser)

	// 唯一的一本今天借给carol,14天后到期
	f.env.Loan(t, "tx-1", b.ID, carol.ID, librarian.ID, now, 14)

	_, err := f.reserveFor(b.ID, alice.ID, today.AddDays(3))
	assert.ErrorIs(t, err, reservation.ErrNotAvailableForDate, "到期之前没有副本")

	r, err := f.reserveFor(b.ID, alice.ID, today.AddDays(14))
	require.NoError(t, err, "到期日当天应当已归还")

	_, err = f.reserveFor(b.ID, bob.ID, today.AddDays(14))
	assert.ErrorIs(t, err, reservation.ErrNotAvailableForDate, "归还的那本已被alice预约")

	// 修改自己的预约时不与自身冲突
	updated, err := f.update.Execute(context.Background(), UpdateReservationRequest{
		ReservationID: r.ID,
		ActorID:       alice.ID,
		Date:          today.AddDays(16),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-26", updated.ReservationDate.String())

	_, err = f.update.Execute(context.Background(), UpdateReservationRequest{
		ReservationID: r.ID,
		ActorID:       alice.ID,
		Date:          today.AddDays(2),
	})
	assert.ErrorIs(t, err, reservation.ErrNotAvailableForDate)
}

func TestUpdateAndCancel_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 2)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)

	r, err := f.reserveFor(b.ID, alice.ID, today.AddDays(2))
	require.NoError(t, err)

	_, err = f.update.Execute(ctx, UpdateReservationRequest{ReservationID: r.ID, ActorID: bob.ID, Date: today.AddDays(3)})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: r.ID, ActorID: bob.ID})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// 馆员可以代为取消
	_, err = f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: r.ID, ActorID: bob.ID, ActorIsStaff: true})
	require.NoError(t, err)

	_, err = f.env.Reservations.FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)

	_, err = f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: r.ID, ActorID: alice.ID})
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
}

// 预约后借到同一本书:预约被修正任务置为完成,之后可以再预约
// 借出用例本身的事件在lending包中测试
func TestReservationCompletedByLending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	librarian := f.env.User(t, "lib@example.com", user.RoleLibrarian)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	reconciler := reconcile.NewReconciler(f.env.Books, f.env.Shelves, f.env.Lending, f.env.Reservations, f.env.Tx)

	r, err := f.reserveFor(b.ID, alice.ID, today.AddDays(7))
	require.NoError(t, err)

	_, err = f.reserveFor(b.ID, alice.ID, today.AddDays(30))
	assert.ErrorIs(t, err, reservation.ErrAlreadyHasReservation)

	// 借出后发布的两个事件
	f.env.Loan(t, "tx-1", b.ID, alice.ID, librarian.ID, now, 14)
	for _, e := range []event.Event{event.BookAvailabilityChanged(b.ID), event.ReservationShouldComplete(b.ID, alice.ID)} {
		outcome, err := reconciler.Handle(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, reconcile.OutcomeUpdated, outcome)
	}

	got, err := f.env.Reservations.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	// 已完成的预约不可修改、不可取消,且保持原样
	_, err = f.update.Execute(ctx, UpdateReservationRequest{ReservationID: r.ID, ActorID: alice.ID, Date: today.AddDays(9)})
	assert.ErrorIs(t, err, reservation.ErrAlreadyCompleted)
	_, err = f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: r.ID, ActorID: alice.ID})
	assert.ErrorIs(t, err, reservation.ErrAlreadyCompleted)

	got, err = f.env.Reservations.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, today.AddDays(7).String(), got.ReservationDate.String())

	// 完成之后不再有待处理预约,可以预约借期之后的日期
	_, err = f.reserveFor(b.ID, alice.ID, today.AddDays(30))
	assert.NoError(t, err)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 3)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)

	_, err := f.reserveFor(b.ID, alice.ID, today.AddDays(2))
	require.NoError(t, err)
	_, err = f.reserveFor(b.ID, bob.ID, today.AddDays(1))
	require.NoError(t, err)

	mine, err := f.list.Execute(context.Background(), ListReservationsRequest{UserID: alice.ID, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, alice.ID, mine.Items[0].UserID)

	byBook, err := f.list.Execute(context.Background(), ListReservationsRequest{BookID: b.ID, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byBook.Total)
	assert.Equal(t, bob.ID, byBook.Items[0].UserID, "按预约日期排序")
}
