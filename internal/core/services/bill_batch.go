package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kas-kelas/internal/adapters/persistence/models"
	"kas-kelas/internal/adapters/persistence/repositories"
	"kas-kelas/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxBatchWeeks bounds how many weekly batches one campaign may create
const MaxBatchWeeks = 52

// CreateBillBatchInput describes a billing campaign. When ForAllUsers is set
// every current member is billed and UserIDs is ignored.
type CreateBillBatchInput struct {
	Amount      decimal.Decimal
	Description string
	DueDate     string
	WeeksCount  int
	UserIDs     []string
	ForAllUsers bool
}

// BatchResult lists the bills created by a campaign in week-then-user order
type BatchResult struct {
	Count    int                    `json:"count"`
	BatchIDs []string               `json:"batch_ids"`
	Bills    []*models.BillResponse `json:"bills"`
}

// CreateBatch creates one PENDING bill per target per week. The whole
// campaign is written in a single database transaction.
func (s *BillService) CreateBatch(ctx context.Context, p *domain.Principal, input *CreateBillBatchInput) (*BatchResult, error) {
	// 1. Only the treasurer issues bills
	if err := domain.Authorize(p, domain.TreasurerOnly); err != nil {
		return nil, err
	}

	// 2. Validate campaign parameters before touching the store
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, invalidf("description is required")
	}
	if !input.Amount.IsPositive() {
		return nil, invalidf("amount must be greater than zero")
	}
	firstDue, err := ParseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}
	weeks := input.WeeksCount
	if weeks == 0 {
		weeks = 1
	}
	if weeks < 1 || weeks > MaxBatchWeeks {
		return nil, invalidf("weeks count must be between 1 and %d", MaxBatchWeeks)
	}
	if !input.ForAllUsers && len(input.UserIDs) == 0 {
		return nil, invalidf("at least one user must be selected")
	}

	result := &BatchResult{}
	var bills []*models.Bill
	err = s.txManager.WithinTransaction(ctx, func(r repositories.Registry) error {
		// 3. Resolve targets
		targets, err := resolveTargets(ctx, r.Users, input)
		if err != nil {
			return err
		}

		// 4. Build weekly batches
		bills = make([]*models.Bill, 0, weeks*len(targets))
		for week := 0; week < weeks; week++ {
			batchID := NewBatchID()
			result.BatchIDs = append(result.BatchIDs, batchID)

			weekDescription := description
			if weeks > 1 {
				weekDescription = fmt.Sprintf("%s - Minggu %d", description, week+1)
			}
			due := firstDue.AddDate(0, 0, 7*week)

			for _, user := range targets {
				batchRef := batchID
				bills = append(bills, &models.Bill{
					Amount:      input.Amount,
					Description: weekDescription,
					DueDate:     due,
					Status:      domain.BillStatusPending,
					BatchID:     &batchRef,
					UserID:      user.ID,
					User:        user,
				})
			}
		}

		// 5. Persist
		return r.Bills.CreateMany(ctx, bills)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	result.Count = len(bills)
	result.Bills = make([]*models.BillResponse, len(bills))
	for i, bill := range bills {
		result.Bills[i] = bill.ToResponse()
	}

	log.Printf("✅ %d bills created in %d batch(es) by %s", result.Count, len(result.BatchIDs), p.Name)
	return result, nil
}

// resolveTargets returns the users billed by input. Explicit ids keep the
// caller's order with duplicates dropped; every id must resolve.
func resolveTargets(ctx context.Context, userRepo repositories.UserRepository, input *CreateBillBatchInput) ([]*models.User, error) {
	if input.ForAllUsers {
		members, err := userRepo.ListByRole(ctx, domain.RoleAnggota)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, domain.ErrNoMembers
		}
		return members, nil
	}

	ids := make([]string, 0, len(input.UserIDs))
	seen := make(map[string]bool, len(input.UserIDs))
	for _, id := range input.UserIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, invalidf("at least one user must be selected")
	}

	found, err := userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	targets := make([]*models.User, 0, len(ids))
	var missing []string
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		targets = append(targets, u)
	}
	if len(missing) > 0 {
		return nil, invalidf("unknown users: %s", strings.Join(missing, ", "))
	}
	return targets, nil
}

// ParseDueDate accepts a calendar date (2006-01-02), read as local midnight,
// or an RFC 3339 timestamp
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, invalidf("due date is required")
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, invalidf("due date %q is not a valid date", raw)
}

// NewBatchID returns a fresh, process-unique batch identifier
func NewBatchID() string {
	return "batch_" + uuid.NewString()
}
