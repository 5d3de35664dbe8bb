package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
)

// Limits bound an uploaded statement. Zero values mean no limit.
type Limits struct {
	MaxFileBytes int64
	MaxRows      int
}

// Row is one parsed statement line
type Row struct {
	Line        int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        entity.TransactionType
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseCSV reads a statement with a header row naming the columns date,
// description and amount, plus an optional type column. Amounts are signed
// decimals; without a type a negative amount is an expense. Blank lines are
// skipped.
func ParseCSV(r io.Reader, limits Limits) ([]Row, error) {
	if limits.MaxFileBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, limits.MaxFileBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read statement: %w", err)
		}
		if int64(len(data)) > limits.MaxFileBytes {
			return nil, fmt.Errorf("%w: file larger than %d bytes", errs.ErrInvalidStatementFile, limits.MaxFileBytes)
		}
		r = bytes.NewReader(data)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", errs.ErrInvalidStatementFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidStatementFile, err.Error())
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrInvalidStatementFile, err.Error())
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}
		if limits.MaxRows > 0 && len(rows) == limits.MaxRows {
			return nil, fmt.Errorf("%w: more than %d rows", errs.ErrInvalidStatementFile, limits.MaxRows)
		}

		row, err := cols.parse(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", errs.ErrInvalidStatementFile, line, err.Error())
		}
		row.Line = line
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no transactions", errs.ErrInvalidStatementFile)
	}
	return rows, nil
}

type columns struct {
	date, description, amount, typ int
}

func columnIndex(header []string) (columns, error) {
	cols := columns{date: -1, description: -1, amount: -1, typ: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case "date":
			cols.date = i
		case "description":
			cols.description = i
		case "amount":
			cols.amount = i
		case "type":
			cols.typ = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.description < 0 {
		missing = append(missing, "description")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: header is missing %s", errs.ErrInvalidStatementFile, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) parse(record []string) (Row, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field(c.date))
	if err != nil {
		return Row{}, err
	}

	description := field(c.description)
	if description == "" {
		return Row{}, errors.New("empty description")
	}

	signed, err := entity.ParseSignedAmount(field(c.amount))
	if err != nil {
		return Row{}, err
	}

	row := Row{Date: date, Description: description}
	if typ := strings.ToLower(field(c.typ)); typ != "" {
		row.Type = entity.TransactionType(typ)
		if !row.Type.IsValid() {
			return Row{}, fmt.Errorf("unknown type %q", typ)
		}
		row.Amount = signed.Abs()
	} else {
		row.Amount, row.Type = entity.SplitSigned(signed)
	}
	return row, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
