// Package csvexport encodes transactions as the downloadable CSV file.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"ledger/internal/core"
)

const (
	FileName    = "transactions.csv"
	ContentType = "text/csv;charset=utf-8"
)

// Header is the literal first line of every export.
var Header = []string{"Date", "Description", "Amount", "Type"}

// Generate returns the CSV text for records: the header line followed by
// one line per record, joined by "\n" without a trailing newline.
//
// Fields that contain a comma, quote or line break, or that start with a
// space, are quoted as in RFC 4180. Every other field is written verbatim.
func Generate(records []core.Transaction) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write streams the same content as Generate to w. Rows reach w as the
// csv writer flushes; only the last newline is held back and dropped.
func Write(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(&trimFinalNewline{w: w})
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range records {
		row := []string{
			core.FormatDate(r.Date),
			r.Description,
			r.Amount.String(),
			string(r.Type),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// trimFinalNewline forwards writes to w, delaying a trailing '\n' until more
// data follows. The newline pending when writing stops is never emitted.
type trimFinalNewline struct {
	w       io.Writer
	pending bool
}

func (t *trimFinalNewline) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if t.pending {
		if _, err := t.w.Write([]byte{'\n'}); err != nil {
			return 0, err
		}
		t.pending = false
	}
	body := p
	if p[len(p)-1] == '\n' {
		body = p[:len(p)-1]
		t.pending = true
	}
	if len(body) > 0 {
		if _, err := t.w.Write(body); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
