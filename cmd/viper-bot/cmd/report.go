package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandyviper/kite-viper-bot/internal/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a day's journaled trades",
	Long: `Summarize one trading day from the SQLite journal.

Example:
  viper-bot report
  viper-bot report --date 2026-08-25 --xlsx reports/day.xlsx`,
	RunE: runReport,
}

var (
	reportDate string
	reportXLSX string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportDate, "date", "", "trading day (YYYY-MM-DD, default today)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also write an Excel report to this path")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	day := time.Now()
	if reportDate != "" {
		day, err = time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
	}

	sink, err := journal.NewSQLiteSink(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer sink.Close()

	trades, err := sink.TradesByDay(day)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Printf("No trades journaled on %s\n", day.Format("2006-01-02"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADES " + day.Format("2006-01-02"))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Symbol", "Action", "Qty", "Price", "P&L", "Status"})

	var pnl, turnover float64
	for _, tr := range trades {
		pnl += tr.PnL
		turnover += tr.Price * float64(tr.Quantity)
		t.AppendRow(table.Row{
			tr.Timestamp.Format("15:04:05"),
			tr.Symbol,
			tr.Action,
			tr.Quantity,
			fmt.Sprintf("%.2f", tr.Price),
			fmt.Sprintf("%.2f", tr.PnL),
			tr.Status,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("₹%.2f", turnover), fmt.Sprintf("₹%.2f", pnl), ""})
	t.Render()

	if reportXLSX != "" {
		if err := journal.WriteDayReportXLSX(trades, day, reportXLSX); err != nil {
			return fmt.Errorf("write excel report: %w", err)
		}
		fmt.Printf("Excel report written to %s\n", reportXLSX)
	}
	return nil
}
