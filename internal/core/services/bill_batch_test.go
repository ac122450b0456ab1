package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fiveMembers() []*models.User {
	users := make([]*models.User, 5)
	for i := range users {
		users[i] = memberUser(fmt.Sprintf("m-%d", i+1), fmt.Sprintf("Member %d", i+1))
	}
	return users
}

func TestCreateBatch_WeeksTimesMembers(t *testing.T) {
	d := setupBillTest()
	members := fiveMembers()
	d.users.On("ListByRole", mock.Anything, domain.RoleAnggota).Return(members, nil)

	var created []*models.Bill
	d.bills.On("CreateMany", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).([]*models.Bill) }).
		Return(nil)

	result, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.NewFromInt(5000),
		Description: "Kas",
		DueDate:     "2026-10-20",
		WeeksCount:  3,
		ForAllUsers: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 15, result.Count)
	require.Len(t, created, 15)
	require.Len(t, result.BatchIDs, 3)
	assert.NotEqual(t, result.BatchIDs[0], result.BatchIDs[1])
	assert.NotEqual(t, result.BatchIDs[1], result.BatchIDs[2])

	first := time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local)
	for week := 0; week < 3; week++ {
		for i, m := range members {
			bill := created[week*5+i]
			assert.Equal(t, m.ID, bill.UserID)
			assert.Equal(t, fmt.Sprintf("Kas - Minggu %d", week+1), bill.Description)
			assert.True(t, bill.DueDate.Equal(first.AddDate(0, 0, 7*week)), "week %d due %s", week, bill.DueDate)
			assert.Equal(t, domain.BillStatusPending, bill.Status)
			assert.True(t, bill.Amount.Equal(decimal.NewFromInt(5000)))
			require.NotNil(t, bill.BatchID)
			assert.Equal(t, result.BatchIDs[week], *bill.BatchID)
		}
	}
	assert.Equal(t, "Member 1", result.Bills[0].User.Name)
	assert.Equal(t, 1, d.txm.commits)
}

func TestCreateBatch_SingleWeekKeepsDescription(t *testing.T) {
	d := setupBillTest()
	budi := memberUser("budi", "Budi")
	d.users.On("GetByIDs", mock.Anything, []string{"budi"}).Return([]*models.User{budi}, nil)

	var created []*models.Bill
	d.bills.On("CreateMany", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).([]*models.Bill) }).
		Return(nil)

	result, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.RequireFromString("7500.50"),
		Description: "Iuran Kaos",
		DueDate:     "2026-11-01T00:00:00+07:00",
		UserIDs:     []string{"budi", "budi"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Iuran Kaos", created[0].Description)
	assert.Len(t, result.BatchIDs, 1)
	assert.Contains(t, result.BatchIDs[0], "batch_")
}

func TestCreateBatch_ExplicitOrderIsKept(t *testing.T) {
	d := setupBillTest()
	siti := memberUser("siti", "Siti")
	budi := memberUser("budi", "Budi")
	// repository answers in name order
	d.users.On("GetByIDs", mock.Anything, []string{"siti", "budi"}).Return([]*models.User{budi, siti}, nil)

	var created []*models.Bill
	d.bills.On("CreateMany", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).([]*models.Bill) }).
		Return(nil)

	_, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.NewFromInt(5000),
		Description: "Kas",
		DueDate:     "2026-10-20",
		UserIDs:     []string{"siti", "budi"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "siti", created[0].UserID)
	assert.Equal(t, "budi", created[1].UserID)
}

func TestCreateBatch_RejectsBeforeWriting(t *testing.T) {
	valid := func() *CreateBillBatchInput {
		return &CreateBillBatchInput{
			Amount:      decimal.NewFromInt(5000),
			Description: "Kas",
			DueDate:     "2026-10-20",
			WeeksCount:  1,
			ForAllUsers: true,
		}
	}

	tests := []struct {
		name   string
		mutate func(in *CreateBillBatchInput)
	}{
		{"zero amount", func(in *CreateBillBatchInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *CreateBillBatchInput) { in.Amount = decimal.NewFromInt(-1) }},
		{"blank description", func(in *CreateBillBatchInput) { in.Description = "   " }},
		{"missing due date", func(in *CreateBillBatchInput) { in.DueDate = "" }},
		{"garbage due date", func(in *CreateBillBatchInput) { in.DueDate = "20/10/2026" }},
		{"too many weeks", func(in *CreateBillBatchInput) { in.WeeksCount = MaxBatchWeeks + 1 }},
		{"negative weeks", func(in *CreateBillBatchInput) { in.WeeksCount = -2 }},
		{"empty explicit list", func(in *CreateBillBatchInput) { in.ForAllUsers = false; in.UserIDs = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupBillTest()
			in := valid()
			tt.mutate(in)

			_, err := d.service.CreateBatch(ctx, treasurer(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			d.bills.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBatch_UnknownUser(t *testing.T) {
	d := setupBillTest()
	d.users.On("GetByIDs", mock.Anything, []string{"budi", "ghost"}).
		Return([]*models.User{memberUser("budi", "Budi")}, nil)

	_, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.NewFromInt(5000),
		Description: "Kas",
		DueDate:     "2026-10-20",
		UserIDs:     []string{"budi", "ghost"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "ghost")
	d.bills.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
}

func TestCreateBatch_NoMembers(t *testing.T) {
	d := setupBillTest()
	d.users.On("ListByRole", mock.Anything, domain.RoleAnggota).Return([]*models.User{}, nil)

	_, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.NewFromInt(5000),
		Description: "Kas",
		DueDate:     "2026-10-20",
		ForAllUsers: true,
	})
	assert.ErrorIs(t, err, domain.ErrNoMembers)
	d.bills.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
}

func TestCreateBatch_RequiresTreasurer(t *testing.T) {
	for _, p := range []*domain.Principal{member("budi", "Budi"), admin()} {
		d := setupBillTest()
		_, err := d.service.CreateBatch(ctx, p, &CreateBillBatchInput{
			Amount:      decimal.NewFromInt(5000),
			Description: "Kas",
			DueDate:     "2026-10-20",
			ForAllUsers: true,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestCreateBatch_StoreFailureRollsBack(t *testing.T) {
	d := setupBillTest()
	d.users.On("ListByRole", mock.Anything, domain.RoleAnggota).Return(fiveMembers(), nil)
	d.bills.On("CreateMany", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := d.service.CreateBatch(ctx, treasurer(), &CreateBillBatchInput{
		Amount:      decimal.NewFromInt(5000),
		Description: "Kas",
		DueDate:     "2026-10-20",
		WeeksCount:  4,
		ForAllUsers: true,
	})
	assert.Error(t, err)
	assert.Equal(t, 1, d.txm.rollbacks)
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.Local), got)

	got, err = ParseDueDate("2026-10-20T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseDueDate("besok")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
