package service

import (
	"fmt"
	"io"

	"tajeryar/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

var transactionHeaders = []string{
	"Transaction ID", "Type", "Counterparty", "Date", "Status", "Item", "Quantity", "Unit",
	"Unit Price", "Item Total", "Transaction Total", "Description",
}

// ExportService renders transactions as an XLSX workbook, one row per item.
type ExportService struct {
	logger *zap.Logger
}

func NewExportService(logger *zap.Logger) *ExportService {
	return &ExportService{logger: logger}
}

func (s *ExportService) WriteXLSX(w io.Writer, transactions []*models.Transaction) error {
	f, err := s.Build(transactions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *ExportService) Build(transactions []*models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		f.Close()
		return nil, err
	}
	for i, header := range transactionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(transactionsSheet, cell, header)
	}

	row := 2
	for _, tx := range transactions {
		items := tx.Items
		if len(items) == 0 {
			items = []models.Item{{}}
		}
		for _, item := range items {
			values := []any{
				tx.ID.String(), string(tx.Type), tx.Counterparty, tx.Date, string(tx.Status),
				item.ItemName, item.Quantity, item.Unit, item.UnitPrice, item.TotalPrice,
				tx.TotalAmount, tx.Description,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(transactionsSheet, cell, v)
			}
			row++
		}
	}
	f.SetColWidth(transactionsSheet, "A", "A", 38)
	f.SetColWidth(transactionsSheet, "C", "F", 20)

	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	summary := Summarize(transactions)
	rows := [][]any{
		{"Metric", "Value"},
		{"Transactions", summary.Count},
		{"Buy transactions", summary.BuyCount},
		{"Sell transactions", summary.SellCount},
		{"Total buy amount", summary.BuyTotal.InexactFloat64()},
		{"Total sell amount", summary.SellTotal.InexactFloat64()},
		{"Net (sell - buy)", summary.SellTotal.Sub(summary.BuyTotal).InexactFloat64()},
	}
	for r, values := range rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue(summarySheet, cell, v)
		}
	}
	f.SetColWidth(summarySheet, "A", "A", 24)

	s.logger.Info("Workbook built", zap.Int("transactions", len(transactions)), zap.Int("rows", row-2))
	return f, nil
}

type ExportSummary struct {
	Count     int
	BuyCount  int
	SellCount int
	BuyTotal  decimal.Decimal
	SellTotal decimal.Decimal
}

// Summarize adds up transaction totals per type in decimal.
func Summarize(transactions []*models.Transaction) ExportSummary {
	var sum ExportSummary
	for _, tx := range transactions {
		sum.Count++
		amount := decimal.NewFromFloat(tx.TotalAmount)
		switch tx.Type {
		case models.TransactionTypeBuy:
			sum.BuyCount++
			sum.BuyTotal = sum.BuyTotal.Add(amount)
		case models.TransactionTypeSell:
			sum.SellCount++
			sum.SellTotal = sum.SellTotal.Add(amount)
		}
	}
	return sum
}
