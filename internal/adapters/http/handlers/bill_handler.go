package handlers

import (
	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/services"
	"kas-kelas/internal/pkg/pagination"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// BillHandler handles bill endpoints
type BillHandler struct {
	billService BillUseCase
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService BillUseCase) *BillHandler {
	return &BillHandler{billService: billService}
}

// CreateBillBatchRequest represents a billing campaign request body
type CreateBillBatchRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"5000"`
	Description string          `json:"description" validate:"required,max=255" example:"Kas Mingguan"`
	DueDate     string          `json:"due_date" validate:"required" example:"2026-10-20"`
	WeeksCount  int             `json:"weeks_count" validate:"omitempty,min=1,max=52" example:"4"`
	UserIDs     []string        `json:"user_ids" validate:"omitempty,dive,required"`
	ForAllUsers bool            `json:"for_all_users" example:"true"`
}

// ListBills lists bills
// @Summary List bills
// @Description Members only see their own bills
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, CLAIMED_PAID, PAID or OVERDUE"
// @Param batch_id query string false "Batch ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /bills [get]
func (h *BillHandler) ListBills(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	bills, total, err := h.billService.List(c.Context(), principal(c), &services.ListBillsInput{
		Status:  c.Query("status"),
		BatchID: c.Query("batch_id"),
		Offset:  params.Offset,
		Limit:   params.Limit,
	})
	if err != nil {
		return handleError(c, err, "Failed to get bills")
	}

	data := make([]*models.BillResponse, 0, len(bills))
	for _, b := range bills {
		data = append(data, b.ToResponse())
	}

	return response.Success(c, "Bills retrieved successfully", pagination.NewResponse(data, params, total))
}

// CreateBillBatch creates bills for a campaign
// @Summary Create bills
// @Description Create one bill per member per week, starting at due_date
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBillBatchRequest true "Campaign"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills [post]
func (h *BillHandler) CreateBillBatch(c *fiber.Ctx) error {
	var req CreateBillBatchRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	result, err := h.billService.CreateBatch(c.Context(), principal(c), &services.CreateBillBatchInput{
		Amount:      req.Amount,
		Description: req.Description,
		DueDate:     req.DueDate,
		WeeksCount:  req.WeeksCount,
		UserIDs:     req.UserIDs,
		ForAllUsers: req.ForAllUsers,
	})
	if err != nil {
		return handleError(c, err, "Failed to create bills")
	}

	return response.Created(c, "Bills created successfully", result)
}

// ClaimPaid marks the caller's bill as claimed
// @Summary Claim bill as paid
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/claim-paid [post]
func (h *BillHandler) ClaimPaid(c *fiber.Ctx) error {
	bill, err := h.billService.ClaimPaid(c.Context(), principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to claim bill")
	}

	return response.Success(c, "Bill claimed as paid", bill.ToResponse())
}

// Pay verifies a bill and records the payment
// @Summary Verify bill payment
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/pay [post]
func (h *BillHandler) Pay(c *fiber.Ctx) error {
	result, err := h.billService.Pay(c.Context(), principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to verify bill")
	}

	return response.Success(c, "Bill verified successfully", result)
}

// Unverify reverts a verified bill to claimed
// @Summary Unverify bill payment
// @Tags Bills
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/unverify [post]
func (h *BillHandler) Unverify(c *fiber.Ctx) error {
	bill, err := h.billService.Unverify(c.Context(), principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to unverify bill")
	}

	return response.Success(c, "Bill verification cancelled", bill.ToResponse())
}

// UpcomingBills lists unpaid member bills due from today
// @Summary Upcoming bills
// @Description Public listing of unpaid bills ordered by due date
// @Tags Public
// @Produce json
// @Success 200 {object} response.Response
// @Router /public/upcoming-bills [get]
func (h *BillHandler) UpcomingBills(c *fiber.Ctx) error {
	result, err := h.billService.ListUpcoming(c.Context())
	if err != nil {
		return handleError(c, err, "Failed to get upcoming bills")
	}

	return response.Success(c, "Upcoming bills retrieved successfully", result)
}
