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
	"kas-kelas/internal/pkg/spreadsheet"

	"github.com/shopspring/decimal"
)

// groupSeparator splits "<campaign> - <payer>" descriptions
const groupSeparator = " - "

// ReportService aggregates the ledger into summaries and spreadsheet exports
type ReportService struct {
	txRepo repositories.TransactionRepository
	now    func() time.Time
}

// NewReportService creates a new report service
func NewReportService(txRepo repositories.TransactionRepository) *ReportService {
	return &ReportService{txRepo: txRepo, now: time.Now}
}

// SummaryGroup aggregates inflow rows sharing a description prefix
type SummaryGroup struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the aggregate view of a set of transactions
type Summary struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	TotalInflow  decimal.Decimal `json:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`
	Balance      decimal.Decimal `json:"balance"`
	Groups       []SummaryGroup  `json:"groups"`
}

// ExportFile is a rendered report ready for download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GroupName returns the part of description before the first " - ",
// or the whole description when there is none.
func GroupName(description string) string {
	if i := strings.Index(description, groupSeparator); i >= 0 {
		return description[:i]
	}
	return description
}

// Summarize totals transactions and groups inflow by description prefix.
// Groups keep the order in which their first row appears in txs; groups
// without any MASUK row are dropped.
func Summarize(txs []*models.Transaction) *Summary {
	summary := &Summary{
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
		Groups:       []SummaryGroup{},
	}

	type bucket struct {
		count  int
		total  decimal.Decimal
		inflow bool
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionMasuk:
			summary.TotalInflow = summary.TotalInflow.Add(tx.Amount)
		case domain.TransactionKeluar:
			summary.TotalOutflow = summary.TotalOutflow.Add(tx.Amount)
		}

		name := GroupName(tx.Description)
		b, ok := buckets[name]
		if !ok {
			b = &bucket{total: decimal.Zero}
			buckets[name] = b
			order = append(order, name)
		}
		b.count++
		b.total = b.total.Add(tx.Amount)
		if tx.Type == domain.TransactionMasuk {
			b.inflow = true
		}
	}

	for _, name := range order {
		b := buckets[name]
		if !b.inflow {
			continue
		}
		summary.Groups = append(summary.Groups, SummaryGroup{Name: name, Count: b.count, Total: b.total})
	}

	summary.Balance = summary.TotalInflow.Sub(summary.TotalOutflow)
	return summary
}

// Summary summarizes the transactions created in [from, to). Without bounds
// it covers the current month so far.
func (s *ReportService) Summary(ctx context.Context, p *domain.Principal, from, to *time.Time) (*Summary, error) {
	if err := domain.Authorize(p, domain.TreasurerOnly); err != nil {
		return nil, err
	}

	if from == nil && to == nil {
		start := startOfMonth(s.now())
		from = &start
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, invalidf("from must be before to")
	}

	txs, err := s.txRepo.ListAll(ctx, repositories.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	summary := Summarize(txs)
	summary.From = from
	summary.To = to
	return summary, nil
}

// Export renders the whole ledger as the "rekap kas" workbook
func (s *ReportService) Export(ctx context.Context, p *domain.Principal) (*ExportFile, error) {
	if err := domain.Authorize(p, domain.TreasurerOnly); err != nil {
		return nil, err
	}

	txs, err := s.txRepo.ListAll(ctx, repositories.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	data, err := spreadsheet.Build(BuildRekapSheets(txs))
	if err != nil {
		return nil, fmt.Errorf("build rekap workbook: %w", err)
	}

	log.Printf("📊 Rekap exported by %s (%d transactions)", p.Name, len(txs))
	return &ExportFile{
		Filename:    fmt.Sprintf("rekap-kas-%s.xlsx", s.now().Format("2006-01-02")),
		ContentType: spreadsheet.ContentType,
		Data:        data,
	}, nil
}

// ============================================================
// Workbook layout
// ============================================================

// Sheet names of the rekap workbook, in order
const (
	SheetRekapKas      = "Rekap Kas"
	SheetPemasukanLain = "Pemasukan Lain"
	SheetPengeluaran   = "Pengeluaran"
	SheetRingkasan     = "Ringkasan"
)

var (
	ledgerHeader = []interface{}{"Tanggal", "Keterangan", "Jumlah", "Dicatat Oleh"}
	ledgerWidths = []float64{14, 45, 16, 24}
)

// isDuesInflow reports whether tx is a dues payment: an inflow that came from
// a bill or follows the "<campaign> - <payer>" naming.
func isDuesInflow(tx *models.Transaction) bool {
	if tx.Type != domain.TransactionMasuk {
		return false
	}
	return tx.BillID != nil || strings.Contains(tx.Description, groupSeparator)
}

func ledgerRow(tx *models.Transaction) []interface{} {
	return []interface{}{
		tx.CreatedAt.Format("02/01/2006"),
		tx.Description,
		tx.Amount.InexactFloat64(),
		tx.RecorderName(),
	}
}

// BuildRekapSheets lays out the ledger in txs (newest first) as the four
// rekap sheets.
func BuildRekapSheets(txs []*models.Transaction) []spreadsheet.Sheet {
	var (
		groupOrder []string
		groups     = make(map[string][]*models.Transaction)
		other      []*models.Transaction
		outflow    []*models.Transaction
	)
	for _, tx := range txs {
		switch {
		case isDuesInflow(tx):
			name := GroupName(tx.Description)
			if _, ok := groups[name]; !ok {
				groupOrder = append(groupOrder, name)
			}
			groups[name] = append(groups[name], tx)
		case tx.Type == domain.TransactionMasuk:
			other = append(other, tx)
		case tx.Type == domain.TransactionKeluar:
			outflow = append(outflow, tx)
		}
	}

	// Rekap Kas
	rekap := [][]interface{}{ledgerHeader}
	duesTotal := decimal.Zero
	for _, name := range groupOrder {
		rekap = append(rekap, []interface{}{}, []interface{}{name})
		groupTotal := decimal.Zero
		for _, tx := range groups[name] {
			rekap = append(rekap, ledgerRow(tx))
			groupTotal = groupTotal.Add(tx.Amount)
		}
		rekap = append(rekap, []interface{}{"", "Subtotal " + name, groupTotal.InexactFloat64()})
		duesTotal = duesTotal.Add(groupTotal)
	}
	rekap = append(rekap, []interface{}{}, []interface{}{"", "TOTAL KAS:", duesTotal.InexactFloat64()})

	otherRows, otherTotal := ledgerRows(other)
	otherRows = append(otherRows, []interface{}{}, []interface{}{"", "TOTAL:", otherTotal.InexactFloat64()})

	outRows, outTotal := ledgerRows(outflow)
	outRows = append(outRows, []interface{}{}, []interface{}{"", "TOTAL:", outTotal.InexactFloat64()})

	inflow := duesTotal.Add(otherTotal)
	summaryRows := [][]interface{}{
		{"Keterangan", "Jumlah"},
		{"Total Pemasukan", inflow.InexactFloat64()},
		{"Total Pengeluaran", outTotal.InexactFloat64()},
		{"Saldo Akhir", inflow.Sub(outTotal).InexactFloat64()},
	}

	return []spreadsheet.Sheet{
		{Name: SheetRekapKas, Rows: rekap, Widths: ledgerWidths},
		{Name: SheetPemasukanLain, Rows: otherRows, Widths: ledgerWidths},
		{Name: SheetPengeluaran, Rows: outRows, Widths: ledgerWidths},
		{Name: SheetRingkasan, Rows: summaryRows, Widths: []float64{24, 18}},
	}
}

func ledgerRows(txs []*models.Transaction) ([][]interface{}, decimal.Decimal) {
	rows := [][]interface{}{ledgerHeader}
	total := decimal.Zero
	for _, tx := range txs {
		rows = append(rows, ledgerRow(tx))
		total = total.Add(tx.Amount)
	}
	return rows, total
}
