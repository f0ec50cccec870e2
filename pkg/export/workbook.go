package export

import (
	"fmt"

	"github.com/Sternrassler/sograph-client/pkg/campaign"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates with every new file.
const defaultSheet = "Sheet1"

// Workbook groups rows by gem tier. Tiers keeps first-seen order; each
// tier's rows keep arrival order.
type Workbook struct {
	Tiers []campaign.Tier
	Rows  map[campaign.Tier][]campaign.Row
}

// Group buckets rows by tier.
func Group(rows []campaign.Row) *Workbook {
	wb := &Workbook{Rows: make(map[campaign.Tier][]campaign.Row)}
	for _, row := range rows {
		if _, seen := wb.Rows[row.Gems]; !seen {
			wb.Tiers = append(wb.Tiers, row.Gems)
		}
		wb.Rows[row.Gems] = append(wb.Rows[row.Gems], row)
	}
	return wb
}

// Len returns the total number of rows.
func (wb *Workbook) Len() int {
	n := 0
	for _, rows := range wb.Rows {
		n += len(rows)
	}
	return n
}

// Build renders the workbook: one sheet per tier named after it, a header
// row, then the tier's rows. The caller must Close the returned file.
func (wb *Workbook) Build() (*excelize.File, error) {
	if len(wb.Tiers) == 0 {
		return nil, ErrNoRows
	}

	f := excelize.NewFile()
	header := make([]any, 0, len(campaign.Headers()))
	for _, h := range campaign.Headers() {
		header = append(header, h)
	}

	for _, tier := range wb.Tiers {
		sheet := tier.String()
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := setRow(f, sheet, 1, header); err != nil {
			f.Close()
			return nil, err
		}
		for i, row := range wb.Rows[tier] {
			if err := setRow(f, sheet, i+2, row.Values()); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	first, err := f.GetSheetIndex(wb.Tiers[0].String())
	if err == nil && first >= 0 {
		f.SetActiveSheet(first)
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write sheet %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
