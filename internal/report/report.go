// Package report renders synchronization and teardown results as Excel
// workbooks for operators.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

const (
	SheetSummary  = "Summary"
	SheetWarnings = "Warnings"
	SheetDeleted  = "Deleted"
)

// WriteSeedReport writes a workbook with a Summary sheet of per-kind counts
// and a Warnings sheet listing unresolved lesson references.
func WriteSeedReport(w io.Writer, res *seeder.SeedResult) error {
	if res == nil {
		return fmt.Errorf("seed result is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	rows := [][]any{
		{"Subject", res.SubjectName},
		{"Subject ID", res.SubjectID},
		{"Subject created", res.SubjectCreated},
		{},
		{"Kind", "Created", "Updated"},
		{"chapters", res.ChaptersCreated, res.ChaptersUpdated},
		{"sections", res.SectionsCreated, res.SectionsUpdated},
		{"lessons", res.LessonsCreated, res.LessonsUpdated},
		{"tests", res.TestsCreated, res.TestsUpdated},
		{"questions", res.QuestionsCreated, 0},
		{"questionOptions", res.QuestionOptionsCreated, 0},
		{"testQuestionLinks", res.TestQuestionLinksCreated, res.TestQuestionLinksUpdated},
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	if err := boldRow(f, SheetSummary, 5, 3); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetWarnings); err != nil {
		return err
	}
	warnings := [][]any{{"Path", "Test", "Question", "Lesson slug"}}
	for _, wr := range res.Warnings {
		warnings = append(warnings, []any{wr.Path, wr.TestSlug, wr.QuestionIndex + 1, wr.LessonSlug})
	}
	if err := writeRows(f, SheetWarnings, warnings); err != nil {
		return err
	}
	if err := boldRow(f, SheetWarnings, 1, 4); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteTeardownReport writes a workbook with one row per deleted kind,
// sorted by kind name.
func WriteTeardownReport(w io.Writer, res *seeder.TeardownResult) error {
	if res == nil {
		return fmt.Errorf("teardown result is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDeleted); err != nil {
		return err
	}
	kinds := make([]string, 0, len(res.Deleted))
	for k := range res.Deleted {
		kinds = append(kinds, string(k))
	}
	slices.Sort(kinds)

	rows := [][]any{{"Kind", "Deleted"}}
	for _, k := range kinds {
		rows = append(rows, []any{k, res.Deleted[seeder.Kind(k)]})
	}
	if err := writeRows(f, SheetDeleted, rows); err != nil {
		return err
	}
	if err := boldRow(f, SheetDeleted, 1, 2); err != nil {
		return err
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 32)
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
