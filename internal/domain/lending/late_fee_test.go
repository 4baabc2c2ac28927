package lending

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/calendar"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLateFee(t *testing.T) {
	deadline := calendar.New(2024, 3, 10)

	cases := []struct {
		name  string
		today calendar.Date
		fee   string
		paid  string
		want  string
	}{
		{"截止日之前", calendar.New(2024, 3, 1), "2.00", "0", "0"},
		{"截止日当天", deadline, "2.00", "0", "0"},
		{"逾期3天", calendar.New(2024, 3, 13), "2.50", "0", "7.5"},
		{"已部分缴纳", calendar.New(2024, 3, 13), "2.50", "5", "2.5"},
		{"已缴超过应缴", calendar.New(2024, 3, 13), "2.50", "10", "0"},
		{"跨月", calendar.New(2024, 4, 1), "1", "0", "22"},
		{"费率为0", calendar.New(2024, 4, 1), "0", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LateFee(deadline, tc.today, d(tc.fee), d(tc.paid))
			assert.True(t, d(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestLateFee_MonotonicUntilPaid(t *testing.T) {
	deadline := calendar.New(2024, 1, 1)
	prev := decimal.Zero
	for i := 0; i < 30; i++ {
		fee := LateFee(deadline, deadline.AddDays(i), d("1.2"), decimal.Zero)
		assert.True(t, fee.GreaterThanOrEqual(prev), "day %d", i)
		prev = fee
	}
}

// 缴费后当天滞纳金为0
func TestTransaction_PayThenReturn(t *testing.T) {
	lendAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := NewTransaction("t-1", 1, 2, 3, lendAt, 14)
	require.Equal(t, "2024-03-15", tx.DeadlineDate.String())

	today := calendar.New(2024, 3, 20)
	fee := tx.LateFee(today, d("1"))
	assert.True(t, d("5").Equal(fee))

	now := lendAt.AddDate(0, 0, 19)
	assert.ErrorIs(t, tx.Return(now, fee), ErrMustPayLateFee)

	paid, err := tx.PayLateFee(now, fee)
	require.NoError(t, err)
	assert.True(t, d("5").Equal(paid))
	assert.True(t, tx.LateFee(today, d("1")).IsZero())

	_, err = tx.PayLateFee(now, tx.LateFee(today, d("1")))
	assert.ErrorIs(t, err, ErrNoLateFeeToPay)

	require.NoError(t, tx.Return(now, tx.LateFee(today, d("1"))))
	assert.True(t, tx.Returned)
	assert.ErrorIs(t, tx.Return(now, decimal.Zero), ErrAlreadyReturned)

	// 归还后不再产生滞纳金
	assert.True(t, tx.LateFee(today.AddDays(30), d("1")).IsZero())
}

// 已归还的借阅在费率上调后也不能再收费
func TestTransaction_ReturnedIgnoresRateChange(t *testing.T) {
	lendAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := NewTransaction("t-2", 1, 2, 3, lendAt, 14)

	returnAt := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	day := calendar.Of(returnAt)
	fee := tx.LateFee(day, d("2"))
	require.True(t, d("6").Equal(fee))

	_, err := tx.PayLateFee(returnAt, fee)
	require.NoError(t, err)
	require.NoError(t, tx.Return(returnAt, tx.LateFee(day, d("2"))))

	assert.True(t, tx.LateFee(day, d("3")).IsZero())
	assert.True(t, tx.LateFee(day.AddDays(10), d("3")).IsZero())

	_, err = tx.PayLateFee(returnAt.AddDate(0, 0, 1), d("3"))
	assert.ErrorIs(t, err, ErrNoLateFeeToPay)
	assert.True(t, d("6").Equal(tx.LateFeePaid))
}
