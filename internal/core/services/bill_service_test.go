package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

// ============================================================
// ClaimPaid
// ============================================================

func TestClaimPaid(t *testing.T) {
	budi := memberUser("budi", "Budi")

	t.Run("pending bill becomes claimed", func(t *testing.T) {
		d := setupBillTest()
		bill := newBill("bill-1", budi, domain.BillStatusPending, 50000, "Kas Minggu 1")
		d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
		d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusClaimedPaid).Return(nil)

		got, err := d.service.ClaimPaid(ctx, member("budi", "Budi"), "bill-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusClaimedPaid, got.Status)
		d.bills.AssertExpectations(t)
		d.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("already claimed is returned unchanged", func(t *testing.T) {
		d := setupBillTest()
		bill := newBill("bill-1", budi, domain.BillStatusClaimedPaid, 50000, "Kas Minggu 1")
		d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)

		got, err := d.service.ClaimPaid(ctx, member("budi", "Budi"), "bill-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusClaimedPaid, got.Status)
		d.bills.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid bill cannot be claimed", func(t *testing.T) {
		d := setupBillTest()
		bill := newBill("bill-1", budi, domain.BillStatusPaid, 50000, "Kas Minggu 1")
		d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)

		_, err := d.service.ClaimPaid(ctx, member("budi", "Budi"), "bill-1")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrBillAlreadyPaid)
	})

	t.Run("treasurer is unauthorized", func(t *testing.T) {
		d := setupBillTest()

		_, err := d.service.ClaimPaid(ctx, treasurer(), "bill-1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		d.bills.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown bill", func(t *testing.T) {
		d := setupBillTest()
		d.bills.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := d.service.ClaimPaid(ctx, member("budi", "Budi"), "missing")
		assert.ErrorIs(t, err, domain.ErrBillNotFound)
	})

	t.Run("other member is forbidden", func(t *testing.T) {
		d := setupBillTest()
		bill := newBill("bill-1", budi, domain.BillStatusPending, 50000, "Kas Minggu 1")
		d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)

		_, err := d.service.ClaimPaid(ctx, member("siti", "Siti"), "bill-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, domain.BillStatusPending, bill.Status)
		d.bills.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

// ============================================================
// Pay
// ============================================================

func TestPay_RecordsLinkedInflow(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusClaimedPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusPaid).Return(nil)

	var recorded *models.Transaction
	d.txs.On("Create", mock.Anything, mock.AnythingOfType("*models.Transaction")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Transaction)
			recorded.ID = "tx-1"
		}).
		Return(nil)

	result, err := d.service.Pay(ctx, treasurer(), "bill-1")
	require.NoError(t, err)

	assert.Equal(t, domain.BillStatusPaid, result.Bill.Status)
	require.NotNil(t, recorded)
	assert.Equal(t, "Kas Minggu 1 - Budi", recorded.Description)
	assert.Equal(t, domain.TransactionMasuk, recorded.Type)
	assert.True(t, recorded.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "bendahara-1", recorded.UserID)
	require.NotNil(t, recorded.BillID)
	assert.Equal(t, "bill-1", *recorded.BillID)
	assert.Equal(t, "tx-1", result.Transaction.ID)
	assert.Equal(t, 1, d.txm.commits)
}

func TestPay_FromPending(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusPending, 10000, "Kas")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusPaid).Return(nil)
	d.txs.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := d.service.Pay(ctx, treasurer(), "bill-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, result.Bill.Status)
}

func TestPay_AlreadyPaidIsRejected(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)

	_, err := d.service.Pay(ctx, treasurer(), "bill-1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrBillAlreadyPaid)
	assert.Equal(t, 1, d.txm.rollbacks)
	d.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPay_ConcurrentVerificationLoses(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusClaimedPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusPaid).Return(domain.ErrBillStatusChanged)

	_, err := d.service.Pay(ctx, treasurer(), "bill-1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrBillStatusChanged)
	assert.Equal(t, 1, d.txm.rollbacks)
	d.txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPay_RollsBackWhenInflowFails(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusClaimedPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusPaid).Return(nil)
	d.txs.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := d.service.Pay(ctx, treasurer(), "bill-1")
	assert.Error(t, err)
	assert.Equal(t, 1, d.txm.rollbacks)
	assert.Equal(t, 0, d.txm.commits)
}

func TestPay_Access(t *testing.T) {
	tests := []struct {
		name string
		p    *domain.Principal
		want error
	}{
		{"member", member("budi", "Budi"), domain.ErrUnauthorized},
		{"administrator", admin(), domain.ErrUnauthorized},
		{"anonymous", nil, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupBillTest()
			_, err := d.service.Pay(ctx, tt.p, "bill-1")
			assert.ErrorIs(t, err, tt.want)
			d.bills.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestPay_UnknownBill(t *testing.T) {
	d := setupBillTest()
	d.bills.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := d.service.Pay(ctx, treasurer(), "missing")
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

// ============================================================
// Unverify
// ============================================================

func TestUnverify_DeletesLinkedInflow(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusPaid, 50000, "Kas Minggu 1")
	billRef := "bill-1"
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.txs.On("FindByBillID", mock.Anything, "bill-1").Return(&models.Transaction{ID: "tx-1", BillID: &billRef}, nil)
	d.txs.On("Delete", mock.Anything, "tx-1").Return(nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusClaimedPaid).Return(nil)

	got, err := d.service.Unverify(ctx, treasurer(), "bill-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusClaimedPaid, got.Status)
	d.txs.AssertExpectations(t)
	d.txs.AssertNotCalled(t, "FindUnlinkedPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnverify_FallsBackToDescriptionMatch(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.txs.On("FindByBillID", mock.Anything, "bill-1").Return(nil, gorm.ErrRecordNotFound)
	d.txs.On("FindUnlinkedPayment", mock.Anything, "Kas Minggu 1 - Budi",
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(decimal.NewFromInt(50000)) })).
		Return(&models.Transaction{ID: "legacy-tx"}, nil)
	d.txs.On("Delete", mock.Anything, "legacy-tx").Return(nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusClaimedPaid).Return(nil)

	got, err := d.service.Unverify(ctx, treasurer(), "bill-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusClaimedPaid, got.Status)
	d.txs.AssertExpectations(t)
}

func TestUnverify_WithoutMatchingInflow(t *testing.T) {
	d := setupBillTest()
	bill := newBill("bill-1", memberUser("budi", "Budi"), domain.BillStatusPaid, 50000, "Kas Minggu 1")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.txs.On("FindByBillID", mock.Anything, "bill-1").Return(nil, gorm.ErrRecordNotFound)
	d.txs.On("FindUnlinkedPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusClaimedPaid).Return(nil)

	got, err := d.service.Unverify(ctx, treasurer(), "bill-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusClaimedPaid, got.Status)
	d.txs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUnverify_RequiresPaid(t *testing.T) {
	for _, status := range []domain.BillStatus{domain.BillStatusPending, domain.BillStatusClaimedPaid} {
		t.Run(string(status), func(t *testing.T) {
			d := setupBillTest()
			bill := newBill("bill-1", memberUser("budi", "Budi"), status, 50000, "Kas Minggu 1")
			d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)

			_, err := d.service.Unverify(ctx, treasurer(), "bill-1")
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, domain.ErrBillNotVerified)
			assert.Equal(t, status, bill.Status)
		})
	}
}

func TestUnverify_MemberUnauthorized(t *testing.T) {
	d := setupBillTest()
	_, err := d.service.Unverify(ctx, member("budi", "Budi"), "bill-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ============================================================
// Listing
// ============================================================

func TestList_MemberSeesOwnBillsOnly(t *testing.T) {
	d := setupBillTest()
	d.bills.On("List", mock.Anything, repositories.BillFilter{UserID: "budi"}, 0, 20).
		Return([]*models.Bill{}, int64(0), nil)

	_, _, err := d.service.List(ctx, member("budi", "Budi"), &ListBillsInput{Limit: 20})
	require.NoError(t, err)
	d.bills.AssertExpectations(t)
}

func TestList_TreasurerFilters(t *testing.T) {
	d := setupBillTest()
	d.bills.On("List", mock.Anything, repositories.BillFilter{Status: domain.BillStatusClaimedPaid, BatchID: "batch_x"}, 20, 20).
		Return([]*models.Bill{}, int64(0), nil)

	_, _, err := d.service.List(ctx, treasurer(), &ListBillsInput{Status: "CLAIMED_PAID", BatchID: "batch_x", Offset: 20, Limit: 20})
	require.NoError(t, err)
	d.bills.AssertExpectations(t)
}

func TestList_UnknownStatus(t *testing.T) {
	d := setupBillTest()
	_, _, err := d.service.List(ctx, treasurer(), &ListBillsInput{Status: "LUNAS", Limit: 20})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListUpcoming_CachesUntilBillChanges(t *testing.T) {
	d := setupBillTest()
	now := time.Date(2026, 10, 16, 15, 4, 0, 0, time.Local)
	d.service.now = func() time.Time { return now }
	today := time.Date(2026, 10, 16, 0, 0, 0, 0, time.Local)
	open := []domain.BillStatus{domain.BillStatusPending, domain.BillStatusClaimedPaid}

	budi := memberUser("budi", "Budi")
	d.users.On("CountByRole", mock.Anything, domain.RoleAnggota).Return(int64(21), nil).Twice()
	d.bills.On("ListUpcoming", mock.Anything, today, open, 21).
		Return([]*models.Bill{newBill("bill-1", budi, domain.BillStatusPending, 5000, "Kas Minggu 3")}, nil).Twice()

	first, err := d.service.ListUpcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(21), first.Total)
	require.Len(t, first.Data, 1)
	assert.Equal(t, "Budi", first.Data[0].User.Name)

	// served from cache
	second, err := d.service.ListUpcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "bill-1", second.Data[0].ID)
	d.bills.AssertNumberOfCalls(t, "ListUpcoming", 1)

	// a claim invalidates the cached listing
	bill := newBill("bill-1", budi, domain.BillStatusPending, 5000, "Kas Minggu 3")
	d.bills.On("GetByID", mock.Anything, "bill-1").Return(bill, nil)
	d.bills.On("UpdateStatus", mock.Anything, bill, domain.BillStatusClaimedPaid).Return(nil)
	_, err = d.service.ClaimPaid(ctx, member("budi", "Budi"), "bill-1")
	require.NoError(t, err)

	_, err = d.service.ListUpcoming(ctx)
	require.NoError(t, err)
	d.bills.AssertNumberOfCalls(t, "ListUpcoming", 2)
}

func TestListUpcoming_NoMembers(t *testing.T) {
	d := setupBillTest()
	d.users.On("CountByRole", mock.Anything, domain.RoleAnggota).Return(int64(0), nil)

	got, err := d.service.ListUpcoming(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.Total)
	assert.Empty(t, got.Data)
	d.bills.AssertNotCalled(t, "ListUpcoming", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListUpcoming_TodayFollowsCalendarZone(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	saved := time.Local
	time.Local = wib
	t.Cleanup(func() { time.Local = saved })

	d := setupBillTest()
	// 20:00 UTC on the 16th is already the 17th in WIB
	d.service.now = func() time.Time { return time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC) }
	today := time.Date(2026, 10, 17, 0, 0, 0, 0, wib)
	open := []domain.BillStatus{domain.BillStatusPending, domain.BillStatusClaimedPaid}

	d.users.On("CountByRole", mock.Anything, domain.RoleAnggota).Return(int64(1), nil)
	d.bills.On("ListUpcoming", mock.Anything, today, open, 1).Return([]*models.Bill{}, nil)

	_, err := d.service.ListUpcoming(ctx)
	require.NoError(t, err)
	d.bills.AssertExpectations(t)

	// a due date typed as a calendar day lands on the same midnight
	due, err := ParseDueDate("2026-10-17")
	require.NoError(t, err)
	assert.True(t, due.Equal(today), "due %s", due)
}
