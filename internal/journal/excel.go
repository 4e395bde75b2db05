package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteDayReportXLSX writes the day's trades and a small summary sheet to
// an Excel workbook.
func WriteDayReportXLSX(trades []TradeRecord, day time.Time, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	header := []interface{}{
		"ID", "Time", "Symbol", "Action", "Quantity", "Price",
		"Order ID", "Strategy", "PnL", "Commission", "Status",
	}
	if err := fx.SetSheetRow(tradesSheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(tradesSheet, "A1", "K1", headerStyle); err != nil {
		return err
	}

	var totalPnL, totalCommission, totalValue float64
	wins := 0
	for i, t := range trades {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			t.ID,
			t.Timestamp.Format("2006-01-02 15:04:05"),
			t.Symbol,
			t.Action,
			t.Quantity,
			t.Price,
			t.OrderID,
			t.Strategy,
			t.PnL,
			t.Commission,
			t.Status,
		}
		if err := fx.SetSheetRow(tradesSheet, cell, &row); err != nil {
			return err
		}

		totalPnL += t.PnL
		totalCommission += t.Commission
		totalValue += float64(t.Quantity) * t.Price
		if t.PnL > 0 {
			wins++
		}
	}

	summary := [][]interface{}{
		{"Date", day.Format("2006-01-02")},
		{"Trades", len(trades)},
		{"Winning Trades", wins},
		{"Total Turnover", totalValue},
		{"Total Commission", totalCommission},
		{"Realized PnL", totalPnL},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := fx.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}
