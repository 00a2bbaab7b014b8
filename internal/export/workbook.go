package export

import (
	"fmt"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"

	"github.com/xuri/excelize/v2"
)

const (
	MealsSheet    = "Meals"
	ShoppingSheet = "Shopping"
)

// WriteWorkbook saves the plan and shopping list as a two-sheet xlsx file.
func WriteWorkbook(path string, plan *planner.MealPlan, cat *catalog.Catalog, list *shopping.ShoppingList) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MealsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ShoppingSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	schedule := NewSchedule(plan, cat)
	if err := writeTable(f, MealsSheet, schedule.Headers, schedule.Rows, bold); err != nil {
		return err
	}
	if err := writeTable(f, ShoppingSheet, shopping.Headers, list.Rows(), bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]string, headerStyle int) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 24)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
