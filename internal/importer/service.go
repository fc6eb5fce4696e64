package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

// maxRows caps a single upload so a runaway file cannot hold a request
// worker for minutes.
const maxRows = 5000

var requiredColumns = []string{"title", "brand", "category", "price_cents", "stock"}

// ProductCreator is the slice of the catalog service the importer needs.
type ProductCreator interface {
	CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error)
}

// Service ingests product CSV uploads.
type Service interface {
	ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// RowError records why one CSV row was rejected. Row numbers are 1-based
// and count the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes an upload. Rows fail independently; one bad row
// never blocks the rest of the file.
type ImportResult struct {
	Created int        `json:"created"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors,omitempty"`
}

type service struct {
	catalog ProductCreator
}

// NewService constructs an importer service instance.
func NewService(creator ProductCreator) (Service, error) {
	if creator == nil {
		return nil, fmt.Errorf("product creator required")
	}
	return &service{catalog: creator}, nil
}

func (s *service) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: row, Message: "malformed csv row"})
			continue
		}
		if row-1 > maxRows {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv exceeds 5000 rows")
		}

		input, err := parseRow(columns, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}

		if _, err := s.catalog.CreateProduct(ctx, *input); err != nil {
			typed := pkgerrors.As(err)
			if typed == nil {
				return nil, err
			}
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: row, Message: typed.Error()})
			continue
		}
		result.Created++
	}
	return result, nil
}

// mapColumns resolves header names to indices, case-insensitively.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required columns").
			WithDetails(map[string]any{"columns": missing})
	}
	return columns, nil
}

func parseRow(columns map[string]int, record []string) (*catalog.CreateProductInput, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	title := field("title")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	brand := field("brand")
	if brand == "" {
		return nil, fmt.Errorf("brand is required")
	}
	category := field("category")
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}

	priceCents, err := strconv.Atoi(field("price_cents"))
	if err != nil || priceCents < 1 {
		return nil, fmt.Errorf("price_cents must be a positive integer")
	}
	stock, err := strconv.Atoi(field("stock"))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("stock must be a non-negative integer")
	}

	input := &catalog.CreateProductInput{
		Title:        title,
		Brand:        brand,
		CategorySlug: category,
		PriceCents:   priceCents,
		Stock:        stock,
		IsActive:     true,
	}

	if raw := field("compare_at_price_cents"); raw != "" {
		compare, err := strconv.Atoi(raw)
		if err != nil || compare < 1 {
			return nil, fmt.Errorf("compare_at_price_cents must be a positive integer")
		}
		input.CompareAtPriceCents = &compare
	}
	if raw := field("description"); raw != "" {
		input.Description = &raw
	}
	// Tags are pipe-separated so commas stay free for the CSV itself.
	if raw := field("tags"); raw != "" {
		for _, tag := range strings.Split(raw, "|") {
			if tag = strings.TrimSpace(tag); tag != "" {
				input.Tags = append(input.Tags, tag)
			}
		}
	}
	if raw := field("image_url"); raw != "" {
		input.Images = append(input.Images, catalog.ProductImageDTO{URL: raw})
	}
	if raw := field("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("featured must be true or false")
		}
		input.IsFeatured = featured
	}
	if raw := field("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("active must be true or false")
		}
		input.IsActive = active
	}
	return input, nil
}
