package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kas-kelas/internal/adapters/http/middleware"
	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/core/services"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Use case mocks
// ============================================================

type MockBillUseCase struct{ mock.Mock }

func (m *MockBillUseCase) List(ctx context.Context, p *domain.Principal, input *services.ListBillsInput) ([]*models.Bill, int64, error) {
	args := m.Called(ctx, p, input)
	bills, _ := args.Get(0).([]*models.Bill)
	return bills, args.Get(1).(int64), args.Error(2)
}

func (m *MockBillUseCase) ListUpcoming(ctx context.Context) (*services.UpcomingBills, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*services.UpcomingBills)
	return result, args.Error(1)
}

func (m *MockBillUseCase) CreateBatch(ctx context.Context, p *domain.Principal, input *services.CreateBillBatchInput) (*services.BatchResult, error) {
	args := m.Called(ctx, p, input)
	result, _ := args.Get(0).(*services.BatchResult)
	return result, args.Error(1)
}

func (m *MockBillUseCase) ClaimPaid(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error) {
	args := m.Called(ctx, p, billID)
	bill, _ := args.Get(0).(*models.Bill)
	return bill, args.Error(1)
}

func (m *MockBillUseCase) Pay(ctx context.Context, p *domain.Principal, billID string) (*services.PayResult, error) {
	args := m.Called(ctx, p, billID)
	result, _ := args.Get(0).(*services.PayResult)
	return result, args.Error(1)
}

func (m *MockBillUseCase) Unverify(ctx context.Context, p *domain.Principal, billID string) (*models.Bill, error) {
	args := m.Called(ctx, p, billID)
	bill, _ := args.Get(0).(*models.Bill)
	return bill, args.Error(1)
}

type MockTransactionUseCase struct{ mock.Mock }

func (m *MockTransactionUseCase) List(ctx context.Context, p *domain.Principal, offset, limit int) ([]*models.Transaction, int64, error) {
	args := m.Called(ctx, p, offset, limit)
	txs, _ := args.Get(0).([]*models.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionUseCase) Get(ctx context.Context, p *domain.Principal, id string) (*models.Transaction, error) {
	args := m.Called(ctx, p, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionUseCase) Create(ctx context.Context, p *domain.Principal, input *services.TransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, p, input)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionUseCase) Update(ctx context.Context, p *domain.Principal, id string, input *services.TransactionInput) (*models.Transaction, error) {
	args := m.Called(ctx, p, id, input)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionUseCase) Delete(ctx context.Context, p *domain.Principal, id string) error {
	return m.Called(ctx, p, id).Error(0)
}

type MockReportUseCase struct{ mock.Mock }

func (m *MockReportUseCase) Summary(ctx context.Context, p *domain.Principal, from, to *time.Time) (*services.Summary, error) {
	args := m.Called(ctx, p, from, to)
	summary, _ := args.Get(0).(*services.Summary)
	return summary, args.Error(1)
}

func (m *MockReportUseCase) Export(ctx context.Context, p *domain.Principal) (*services.ExportFile, error) {
	args := m.Called(ctx, p)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

type MockUserUseCase struct{ mock.Mock }

func (m *MockUserUseCase) ListUsers(ctx context.Context, p *domain.Principal, role string, offset, limit int) ([]*models.User, int64, error) {
	args := m.Called(ctx, p, role, offset, limit)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserUseCase) ResetPassword(ctx context.Context, p *domain.Principal, userID string) (string, error) {
	args := m.Called(ctx, p, userID)
	return args.String(0), args.Error(1)
}

func (m *MockUserUseCase) ListMembers(ctx context.Context, p *domain.Principal) ([]*models.User, error) {
	args := m.Called(ctx, p)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserUseCase) CreateMember(ctx context.Context, p *domain.Principal, input *services.CreateMemberInput) (*models.User, error) {
	args := m.Called(ctx, p, input)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserUseCase) DeleteMember(ctx context.Context, p *domain.Principal, userID string) error {
	return m.Called(ctx, p, userID).Error(0)
}

func (m *MockUserUseCase) GetProfile(ctx context.Context, p *domain.Principal) (*models.User, error) {
	args := m.Called(ctx, p)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserUseCase) ChangePassword(ctx context.Context, p *domain.Principal, input *services.ChangePasswordInput) error {
	return m.Called(ctx, p, input).Error(0)
}

type MockAuthUseCase struct{ mock.Mock }

func (m *MockAuthUseCase) Login(ctx context.Context, input *services.LoginInput) (*services.AuthResponse, error) {
	args := m.Called(ctx, input)
	resp, _ := args.Get(0).(*services.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*services.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthUseCase) LogoutAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// ============================================================
// Helpers
// ============================================================

func treasurer() *domain.Principal {
	return &domain.Principal{UserID: "bendahara-1", Name: "Bu Bendahara", Role: domain.RoleBendahara}
}

func member(id string) *domain.Principal {
	return &domain.Principal{UserID: id, Name: id, Role: domain.RoleAnggota}
}

// newApp returns an app whose requests are made as p
func newApp(p *domain.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if p != nil {
			c.Locals(middleware.PrincipalKey, p)
		}
		return c.Next()
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// envelope is response.Response with the payload left raw
type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}
