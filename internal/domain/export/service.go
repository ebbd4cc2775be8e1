// Package export renders parsed timetable entries as CSV or XLSX downloads,
// giving users a spreadsheet view of what the extractor recovered alongside
// the calendar file.
package export

import (
	"fmt"
	"log/slog"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

const sheetName = "Timetable"

var xlsxHeaders = []string{"Course Code", "Day", "Start Time", "End Time", "Location", "Lecturer"}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// EntriesCSV marshals entries using the csv struct tags on timetable.Entry.
func (s *Service) EntriesCSV(entries []timetable.Entry) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&entries)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}

// EntriesXLSX builds a single-sheet workbook: a header row plus one row per
// entry, in extraction order.
func (s *Service) EntriesXLSX(entries []timetable.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", slog.Any("error", err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, entry := range entries {
		values := []string{
			entry.CourseCode,
			string(entry.Day),
			entry.StartTime,
			entry.EndTime,
			entry.Location,
			entry.Lecturer,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
