package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// BankParser parses the standard statement export: a header row of
// Date,Description,Amount,Reference followed by one row per transaction.
type BankParser struct{}

const (
	bankNumFields = 4
	bankColDate   = 0
	bankColDesc   = 1
	bankColAmount = 2
	bankColRef    = 3
)

// Statement exports arrive with either UK-style or ISO dates.
var bankDateFormats = []string{"02/01/2006", "2006-01-02"}

// Format returns the parser name.
func (p *BankParser) Format() string { return "bank" }

// Parse reads a statement CSV and returns rows with normalized dates.
func (p *BankParser) Parse(r io.Reader) ([]BankRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = bankNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var rows []BankRow
	for i, rec := range records[1:] {
		row, err := parseBankRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseBankRow(rec []string) (BankRow, error) {
	date, err := parseBankDate(rec[bankColDate])
	if err != nil {
		return BankRow{}, err
	}

	amount, err := decimal.NewFromString(rec[bankColAmount])
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing amount %q: %w", rec[bankColAmount], err)
	}

	return BankRow{
		Date:        date.Format("2006-01-02"),
		Description: rec[bankColDesc],
		Amount:      amount.String(),
		Reference:   rec[bankColRef],
	}, nil
}

func parseBankDate(s string) (time.Time, error) {
	for _, layout := range bankDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}
