package google

import (
	"fmt"
	"strings"

	"ledger/internal/core"
)

// Header is written by humans setting up the sheet; it is tolerated on read.
var Header = []string{"Date", "Description", "Amount", "Type"}

func toRow(tx core.Transaction) []any {
	return []any{
		core.FormatDate(tx.Date),
		tx.Description,
		tx.Amount.InexactFloat64(),
		string(tx.Type),
	}
}

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions.
func parseRows(values [][]any) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 columns, got %d", i+1, len(row))
		}
		d, err := core.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		amt, err := core.ParseAmount(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, core.Transaction{
			Date:        d,
			Description: row[1],
			Amount:      amt,
			Type:        core.Type(safeGet(row, 3)),
		})
	}
	return out, nil
}

func isHeader(row []string) bool {
	return strings.EqualFold(safeGet(row, 0), Header[0])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
