// Package reports computes read-only projections of the stock ledger and
// catalog. Nothing here mutates state; every report is recomputed from a
// fresh read.
package reports

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

type ItemSource interface {
	ListItems(ctx context.Context) ([]ledger.Item, error)
}

type CategorySource interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

type Summary struct {
	TotalItems    int
	LowStockCount int
}

type CategoryCount struct {
	CategoryID int64
	Name       string
	ItemCount  int
}

type Service struct {
	items      ItemSource
	categories CategorySource
}

func NewService(items ItemSource, categories CategorySource) *Service {
	return &Service{items: items, categories: categories}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{TotalItems: len(items)}
	for _, it := range items {
		if it.LowStock() {
			sum.LowStockCount++
		}
	}
	return sum, nil
}

// TopItems returns up to n items ordered by quantity, highest first.
func (s *Service) TopItems(ctx context.Context, n int) ([]ledger.Item, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Quantity > items[j].Quantity })
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

// CategoryStats counts items per category. Categories with no items appear
// with a zero count.
func (s *Service) CategoryStats(ctx context.Context) ([]CategoryCount, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]int, len(cats))
	for _, it := range items {
		byID[it.CategoryID]++
	}
	out := make([]CategoryCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryCount{CategoryID: c.ID, Name: c.Name, ItemCount: byID[c.ID]})
	}
	return out, nil
}

func stockStatus(it ledger.Item) string {
	if it.LowStock() {
		return "Low Stock"
	}
	return "Good"
}

// WriteCSV streams the flat inventory export.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Item Name", "Quantity", "Min Level", "Unit", "Status"}); err != nil {
		return err
	}
	for _, it := range items {
		rec := []string{
			it.Name,
			strconv.FormatInt(it.Quantity, 10),
			strconv.FormatInt(it.MinLevel, 10),
			it.Unit,
			stockStatus(it),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same export as a spreadsheet.
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer) error {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{"Item Name", "Quantity", "Min Level", "Unit", "Status"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		rec := []interface{}{it.Name, it.Quantity, it.MinLevel, it.Unit, stockStatus(it)}
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return err
		}
		row++
	}
	return f.Write(w)
}
