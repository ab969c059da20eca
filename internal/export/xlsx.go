package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jeanpaul/postdeck/internal/post"
)

// SheetName is the worksheet holding the posts.
const SheetName = "Posts"

var header = []string{"ID", "Title", "Author", "Category", "Tags", "Content", "Created", "Updated"}

func writeXLSX(path string, posts []post.Post) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, p := range posts {
		updated := ""
		if p.UpdatedAt != nil {
			updated = formatTime(*p.UpdatedAt)
		}
		values := []interface{}{
			p.ID, p.Title, p.Author, p.Category,
			strings.Join(p.Tags, ", "), p.Content,
			formatTime(p.CreatedAt), updated,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "B", "B", 40)
	_ = f.SetColWidth(SheetName, "F", "F", 60)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func readXLSX(path string) ([]post.Input, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		// Fall back to the first sheet for hand-made workbooks.
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("export: %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("export: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []post.Input{}, nil
	}

	// Columns are matched by header name so they may come in any order.
	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "author", "category", "content"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("export: sheet %s has no %q column", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	inputs := make([]post.Input, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		inputs = append(inputs, post.Input{
			Title:    cell(row, "title"),
			Author:   cell(row, "author"),
			Category: cell(row, "category"),
			Tags:     cell(row, "tags"),
			Content:  cell(row, "content"),
		})
	}
	return inputs, nil
}
