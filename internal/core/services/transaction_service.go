package services

import (
	"context"
	"log"
	"strings"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TransactionService handles manual cash ledger entries
type TransactionService struct {
	txRepo repositories.TransactionRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txRepo repositories.TransactionRepository) *TransactionService {
	return &TransactionService{txRepo: txRepo}
}

// TransactionInput represents create/update transaction input
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description string
}

func (in *TransactionInput) validate() error {
	if !in.Amount.IsPositive() {
		return invalidf("amount must be greater than zero")
	}
	if !in.Type.IsValid() {
		return invalidf("type must be MASUK or KELUAR")
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalidf("description is required")
	}
	return nil
}

// List lists transactions newest first
func (s *TransactionService) List(ctx context.Context, p *domain.Principal, offset, limit int) ([]*models.Transaction, int64, error) {
	if err := domain.Authorize(p, domain.AnyAuthenticated); err != nil {
		return nil, 0, err
	}
	return s.txRepo.List(ctx, offset, limit)
}

// Get gets a single transaction
func (s *TransactionService) Get(ctx context.Context, p *domain.Principal, id string) (*models.Transaction, error) {
	if err := domain.Authorize(p, domain.AnyAuthenticated); err != nil {
		return nil, err
	}
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return tx, nil
}

// Create records a manual inflow or outflow
func (s *TransactionService) Create(ctx context.Context, p *domain.Principal, input *TransactionInput) (*models.Transaction, error) {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Amount:      input.Amount,
		Type:        input.Type,
		Description: strings.TrimSpace(input.Description),
		UserID:      p.UserID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	tx.User = &models.User{ID: p.UserID, Name: p.Name, Email: p.Email}

	log.Printf("✅ Transaction %s (%s %s) recorded by %s", tx.ID, tx.Type, tx.Amount.StringFixed(2), p.Name)
	return tx, nil
}

// Update replaces amount, type and description of a transaction
func (s *TransactionService) Update(ctx context.Context, p *domain.Principal, id string, input *TransactionInput) (*models.Transaction, error) {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}

	tx.Amount = input.Amount
	tx.Type = input.Type
	tx.Description = strings.TrimSpace(input.Description)
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	log.Printf("✅ Transaction %s updated by %s", tx.ID, p.Name)
	return tx, nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := domain.Authorize(p, domain.TreasurerOrAdmin); err != nil {
		return err
	}

	if _, err := s.txRepo.GetByID(ctx, id); err != nil {
		return notFound(err, domain.ErrTransactionNotFound)
	}
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Transaction %s deleted by %s", id, p.Name)
	return nil
}
