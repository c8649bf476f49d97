package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"lunchdesk/internal/models"
)

const (
	OrdersSheet  = "Orders"
	SummarySheet = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var orderHeader = []interface{}{
	"Order ID", "Day", "Delivery date", "Count", "Status",
	"Address", "Phone", "Dishes", "Unit price", "Total", "Currency",
}

var summaryHeader = []interface{}{"Day", "Delivery date", "Orders", "Portions", "Total"}

// FileName is the suggested download name for a week's export.
func FileName(weekStart time.Time) string {
	return fmt.Sprintf("orders-%s.xlsx", models.DateKey(weekStart))
}

// WeeklyOrders writes the kitchen and courier sheet for one delivery week:
// an Orders sheet with one row per order and a Summary sheet with per-day
// totals of active orders. Money columns are in major units.
func WeeklyOrders(w io.Writer, weekStart time.Time, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, OrdersSheet, 1, orderHeader); err != nil {
		return err
	}
	for i, order := range orders {
		row := i + 2
		values := []interface{}{
			order.ID,
			string(order.Day),
			models.DateKey(order.DeliveryDate),
			order.Count,
			string(order.Status),
			order.AddressSnapshot,
			order.PhoneSnapshot,
			strings.Join(order.MenuSnapshot, ", "),
			majorUnits(order.UnitPrice),
			majorUnits(order.Total()),
			order.Currency,
		}
		if err := writeRow(f, OrdersSheet, row, values); err != nil {
			return err
		}
	}
	if len(orders) > 0 {
		if err := styleRange(f, OrdersSheet, 9, 2, 10, len(orders)+1, money); err != nil {
			return err
		}
	}
	if err := styleRange(f, OrdersSheet, 1, 1, len(orderHeader), 1, bold); err != nil {
		return err
	}

	if err := writeSummary(f, weekStart, orders, money, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type dayTotals struct {
	orders   int
	portions int
	total    int64
}

func writeSummary(f *excelize.File, weekStart time.Time, orders []models.Order, money, bold int) error {
	totals := make(map[models.Weekday]*dayTotals, len(models.Weekdays))
	for _, day := range models.Weekdays {
		totals[day] = &dayTotals{}
	}
	for _, order := range orders {
		if !order.Status.Active() {
			continue
		}
		t, ok := totals[order.Day]
		if !ok {
			continue
		}
		t.orders++
		t.portions += order.Count
		t.total += order.Total()
	}

	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}
	for i, day := range models.Weekdays {
		t := totals[day]
		values := []interface{}{
			string(day),
			models.DateKey(day.DateIn(weekStart)),
			t.orders,
			t.portions,
			majorUnits(t.total),
		}
		if err := writeRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}
	if err := styleRange(f, SummarySheet, 5, 2, 5, len(models.Weekdays)+1, money); err != nil {
		return err
	}
	return styleRange(f, SummarySheet, 1, 1, len(summaryHeader), 1, bold)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, fromCol, fromRow, toCol, toRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func majorUnits(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}
