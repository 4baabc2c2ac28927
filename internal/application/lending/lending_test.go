package lending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/apptest"
	"github.com/xiebiao/library/internal/application/reconcile"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/user"
)

var now = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	env        *apptest.Env
	lend       *LendBookUseCase
	ret        *ReturnBookUseCase
	pay        *PayLateFeeUseCase
	fee        *GetLateFeeUseCase
	list       *ListTransactionsUseCase
	reconciler *reconcile.Reconciler
	librarian  *user.User
}

func newFixture(t *testing.T) *fixture {
	env := apptest.New(t)
	f := &fixture{
		env:        env,
		lend:       NewLendBookUseCase(env.Books, env.Users, env.Lending, env.Reservations, env.Settings, env.Tx, env.Events),
		ret:        NewReturnBookUseCase(env.Lending, env.Settings, env.Tx, env.Events),
		pay:        NewPayLateFeeUseCase(env.Lending, env.Settings, env.Tx),
		fee:        NewGetLateFeeUseCase(env.Lending, env.Settings),
		list:       NewListTransactionsUseCase(env.Lending),
		reconciler: reconcile.NewReconciler(env.Books, env.Shelves, env.Lending, env.Reservations, env.Tx),
		librarian:  env.User(t, "librarian@example.com", user.RoleLibrarian),
	}
	clock := func() time.Time { return now }
	f.lend.now = clock
	f.ret.now = clock
	f.pay.now = clock
	f.fee.now = clock
	return f
}

// reconcileAll 同步执行已发布的修正事件
func (f *fixture) reconcileAll(t *testing.T) {
	t.Helper()
	for _, e := range f.env.Events.Take() {
		_, err := f.reconciler.Handle(context.Background(), e)
		require.NoError(t, err)
	}
}

func (f *fixture) lendTo(bookID, userID uint) (*TransactionResponse, error) {
	return f.lend.Execute(context.Background(), LendBookRequest{BookID: bookID, UserID: userID, LenderID: f.librarian.ID})
}

// 总量1的书借出后可借数量归零,再借失败
func TestLendBook_LastCopy(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)

	tx, err := f.lendTo(b.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-24", tx.DeadlineDate.String(), "默认借期14天")
	assert.Equal(t, []event.Kind{event.KindBookAvailabilityChanged, event.KindReservationShouldComplete}, f.env.Events.Kinds())

	// 修正任务运行之前,行锁内的计数已经拒绝第二次借出
	_, err = f.lendTo(b.ID, bob.ID)
	assert.ErrorIs(t, err, lending.ErrNotAvailable)

	f.reconcileAll(t)
	assert.Equal(t, 0, f.env.ReloadBook(t, b.ID).AvailableCount)

	_, err = f.lendTo(b.ID, bob.ID)
	assert.ErrorIs(t, err, lending.ErrNotAvailable)
}

// 先锁图书再锁读者,与预约用例一致
func TestLendBook_LockOrder(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	locks := &apptest.LockLog{}
	f.lend = NewLendBookUseCase(locks.Books(f.env.Books), locks.Users(f.env.Users), f.env.Lending, f.env.Reservations, f.env.Settings, f.env.Tx, f.env.Events)
	f.lend.now = func() time.Time { return now }

	_, err := f.lendTo(b.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{apptest.LockBook, apptest.LockUser}, locks.Order())
}

// 读者或经办馆员不存在时返回NotFound,即使预约已占满副本
func TestLendBook_UnknownUserOrLender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)
	f.env.Reservation(t, b.ID, bob.ID, calendar.Of(now).AddDays(1), now)

	_, err := f.lendTo(b.ID, 999)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	_, err = f.lend.Execute(ctx, LendBookRequest{BookID: b.ID, UserID: alice.ID, LenderID: 999})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.lendTo(b.ID, alice.ID)
	assert.ErrorIs(t, err, lending.ErrHasReservation)
}

func TestLendBook_OneUnreturnedLoanPerUser(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b1 := f.env.Book(t, s.ID, "9787115428028", 2)
	b2 := f.env.Book(t, s.ID, "9787111558422", 2)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	_, err := f.lendTo(b1.ID, alice.ID)
	require.NoError(t, err)

	_, err = f.lendTo(b2.ID, alice.ID)
	assert.ErrorIs(t, err, lending.ErrAlreadyLent)

	_, err = f.lendTo(b2.ID, 999)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLendBook_ReservationsWithinLendWindow(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)
	today := calendar.Of(now)

	// bob预约了3天后,借期14天内唯一的一本已被占用
	f.env.Reservation(t, b.ID, bob.ID, today.AddDays(3), now.Add(-time.Hour))

	_, err := f.lendTo(b.ID, alice.ID)
	assert.ErrorIs(t, err, lending.ErrHasReservation)

	// 预约人自己来借不受影响
	_, err = f.lendTo(b.ID, bob.ID)
	assert.NoError(t, err)
}

func TestLendBook_ReservationOutsideLendWindow(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)

	f.env.Reservation(t, b.ID, bob.ID, calendar.Of(now).AddDays(20), now.Add(-time.Hour))

	_, err := f.lendTo(b.ID, alice.ID)
	assert.NoError(t, err)
}

// 逾期3天、每天2元:先缴6元才能归还
func TestReturnBook_LateFeeFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	require.NoError(t, f.env.Settings.SetLateFeePerDay(ctx, decimal.RequireFromString("2.0")))

	loan := f.env.Loan(t, "tx-late", b.ID, alice.ID, f.librarian.ID, now.AddDate(0, 0, -17), 14)
	require.Equal(t, "2024-05-07", loan.DeadlineDate.String())

	fee, err := f.fee.Execute(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, fee.LateFee.Equal(decimal.NewFromInt(6)), "got %s", fee.LateFee)

	_, err = f.ret.Execute(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrMustPayLateFee)

	paid, err := f.pay.Execute(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid.Equal(decimal.NewFromInt(6)))
	assert.True(t, paid.Transaction.LateFeePaid.Equal(decimal.NewFromInt(6)))

	_, err = f.pay.Execute(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrNoLateFeeToPay)

	returned, err := f.ret.Execute(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, returned.Returned)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, []event.Kind{event.KindBookAvailabilityChanged}, f.env.Events.Kinds())

	_, err = f.ret.Execute(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrAlreadyReturned)

	// 已归还的借阅之后不再产生滞纳金,费率上调也不追溯
	require.NoError(t, f.env.Settings.SetLateFeePerDay(ctx, decimal.RequireFromString("3.0")))
	f.fee.now = func() time.Time { return now.AddDate(0, 0, 10) }
	fee, err = f.fee.Execute(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, fee.LateFee.IsZero())

	_, err = f.pay.Execute(ctx, loan.ID)
	assert.ErrorIs(t, err, lending.ErrNoLateFeeToPay)
}

func TestReturnBook_OnTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)

	tx, err := f.lendTo(b.ID, alice.ID)
	require.NoError(t, err)
	f.reconcileAll(t)
	require.Equal(t, 0, f.env.ReloadBook(t, b.ID).AvailableCount)

	_, err = f.pay.Execute(ctx, tx.ID)
	assert.ErrorIs(t, err, lending.ErrNoLateFeeToPay)

	_, err = f.ret.Execute(ctx, tx.ID)
	require.NoError(t, err)
	f.reconcileAll(t)
	assert.Equal(t, 1, f.env.ReloadBook(t, b.ID).AvailableCount)

	_, err = f.ret.Execute(ctx, "missing")
	assert.ErrorIs(t, err, lending.ErrTransactionNotFound)
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 3)
	alice := f.env.User(t, "alice@example.com", user.RoleUser)
	bob := f.env.User(t, "bob@example.com", user.RoleUser)

	first, err := f.lendTo(b.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.lendTo(b.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.lendTo(b.ID, bob.ID)
	require.NoError(t, err)

	mine, err := f.list.Execute(ctx, ListTransactionsRequest{UserID: alice.ID, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	open := false
	unreturned, err := f.list.Execute(ctx, ListTransactionsRequest{Returned: &open, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unreturned.Total)
}

// 最后一本书被并发借出时只有一个事务成功,其余返回NotAvailable
func TestLendBook_ConcurrentLastCopy(t *testing.T) {
	f := newFixture(t)
	s := f.env.Shelf(t, "A-1", 10)
	b := f.env.Book(t, s.ID, "9787115428028", 1)

	const readers = 8
	ids := make([]uint, readers)
	for i := range ids {
		ids[i] = f.env.User(t, fmt.Sprintf("reader%d@example.com", i), user.RoleUser).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, readers)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.lendTo(b.ID, id)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, lending.ErrNotAvailable):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	unreturned, err := f.env.Lending.CountUnreturnedByBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreturned)

	f.reconcileAll(t)
	assert.Equal(t, 0, f.env.ReloadBook(t, b.ID).AvailableCount)
}
