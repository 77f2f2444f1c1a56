// Package catalog loads the phone catalogue from gzipped CSV files and
// imports it into the store.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"phonestore/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultStatus is assigned to rows without a status.
const DefaultStatus = "ACTIVE"

// Columns lists the CSV header in the order written by the sample generator.
var Columns = []string{
	"code", "brand", "model", "color", "storage", "ram",
	"sale_price", "purchase_cost", "stock", "status", "description", "image_url",
}

var requiredColumns = []string{"code", "brand", "model", "sale_price"}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Catalog is the parsed content of a catalogue file.
type Catalog struct {
	Phones   []model.Phone
	Rejected []RowError
}

// RowError describes a row that could not be turned into a phone.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Loader reads a catalogue file.
type Loader interface {
	// Load reads a gzipped CSV catalogue from path.
	Load(ctx context.Context, path string) (*Catalog, error)
}

// Parse reads CSV rows from r. The first row is the header; columns may
// appear in any order. Rows that fail validation are collected in Rejected
// and do not stop parsing. A later row with the same code replaces an
// earlier one.
func Parse(ctx context.Context, r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	cat := &Catalog{}
	byCode := make(map[string]int)
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++

		if row%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				cat.Rejected = append(cat.Rejected, RowError{Row: row, Err: err})
				continue
			}
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		if isBlank(record) {
			continue
		}

		phone, err := parseRow(record, index)
		if err != nil {
			cat.Rejected = append(cat.Rejected, RowError{Row: row, Err: err})
			continue
		}

		if i, ok := byCode[phone.Code]; ok {
			cat.Phones[i] = phone
			continue
		}
		byCode[phone.Code] = len(cat.Phones)
		cat.Phones = append(cat.Phones, phone)
	}

	return cat, nil
}

func parseRow(record []string, index map[string]int) (model.Phone, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	phone := model.Phone{
		Code:        field("code"),
		Brand:       field("brand"),
		Model:       field("model"),
		Color:       field("color"),
		Storage:     field("storage"),
		RAM:         field("ram"),
		Status:      strings.ToUpper(field("status")),
		Description: field("description"),
		ImageURL:    field("image_url"),
	}
	if phone.Code == "" || phone.Brand == "" || phone.Model == "" {
		return phone, errors.New("code, brand and model are required")
	}
	if phone.Status == "" {
		phone.Status = DefaultStatus
	}

	price, err := decimal.NewFromString(field("sale_price"))
	if err != nil || !price.IsPositive() {
		return phone, fmt.Errorf("invalid sale_price %q", field("sale_price"))
	}
	phone.SalePrice = model.RoundMoney(price)

	if raw := field("purchase_cost"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil || cost.IsNegative() {
			return phone, fmt.Errorf("invalid purchase_cost %q", raw)
		}
		phone.PurchaseCost = model.RoundMoney(cost)
	}

	if raw := field("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return phone, fmt.Errorf("invalid stock %q", raw)
		}
		phone.StockQuantity = stock
	}

	return phone, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
