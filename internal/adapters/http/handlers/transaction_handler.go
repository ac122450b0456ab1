package handlers

import (
	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/core/domain"
	"kas-kelas/internal/core/services"
	"kas-kelas/internal/pkg/pagination"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles cash ledger endpoints
type TransactionHandler struct {
	txService TransactionUseCase
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txService TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// TransactionRequest represents create/update transaction request body
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"30000"`
	Type        string          `json:"type" validate:"required,oneof=MASUK KELUAR" example:"KELUAR"`
	Description string          `json:"description" validate:"required,max=255" example:"Beli Spidol"`
}

func (r *TransactionRequest) toInput() *services.TransactionInput {
	return &services.TransactionInput{
		Amount:      r.Amount,
		Type:        domain.TransactionType(r.Type),
		Description: r.Description,
	}
}

// ListTransactions lists transactions newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	txs, total, err := h.txService.List(c.Context(), principal(c), params.Offset, params.Limit)
	if err != nil {
		return handleError(c, err, "Failed to get transactions")
	}

	data := make([]*models.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		data = append(data, tx.ToResponse())
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(data, params, total))
}

// GetTransaction gets a single transaction
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.txService.Get(c.Context(), principal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to get transaction")
	}

	return response.Success(c, "Transaction retrieved successfully", tx.ToResponse())
}

// CreateTransaction records a cash movement
// @Summary Create transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TransactionRequest true "Transaction"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req TransactionRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.txService.Create(c.Context(), principal(c), req.toInput())
	if err != nil {
		return handleError(c, err, "Failed to create transaction")
	}

	return response.Created(c, "Transaction created successfully", tx.ToResponse())
}

// UpdateTransaction replaces amount, type and description
// @Summary Update transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param body body TransactionRequest true "Transaction"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	var req TransactionRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.txService.Update(c.Context(), principal(c), c.Params("id"), req.toInput())
	if err != nil {
		return handleError(c, err, "Failed to update transaction")
	}

	return response.Success(c, "Transaction updated successfully", tx.ToResponse())
}

// DeleteTransaction removes a transaction
// @Summary Delete transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	if err := h.txService.Delete(c.Context(), principal(c), c.Params("id")); err != nil {
		return handleError(c, err, "Failed to delete transaction")
	}

	return response.Success(c, "Transaction deleted successfully", nil)
}
