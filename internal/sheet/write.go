package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bartekus/sprintboard/internal/fileio"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// DefaultSheet is the sheet Write fills.
const DefaultSheet = "Sheet1"

// WriteSample writes a workbook holding the default configuration and categories.
func WriteSample(path string) error {
	return Write(path, sprint.Default(), metrics.DefaultCategories())
}

// Write stores cfg and set in the layout Load reads.
func Write(path string, cfg sprint.Config, set metrics.CategorySet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][4]any{
		{ColCategory, ColItem, ColMetric, ColValue},
		{RowSprint, nil, nil, cfg.SprintRange},
		{RowIncrement, nil, nil, cfg.Increment},
		{RowCurrentSprint, nil, nil, cfg.CurrentSprint},
	}
	for _, c := range set {
		rows = append(rows, [4]any{c.Name, nil, nil, nil})
		for _, item := range c.Items {
			rows = append(rows, [4]any{nil, item, nil, nil})
		}
		rows = append(rows,
			[4]any{nil, nil, MetricDelivered, c.Delivered},
			[4]any{nil, nil, MetricTotal, c.Total},
			[4]any{nil, nil, MetricHealth, c.Health},
		)
	}

	for r, row := range rows {
		for col, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(DefaultSheet, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return fileio.WriteAtomic(path, buf.Bytes(), 0o644)
}
