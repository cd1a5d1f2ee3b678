// Package importer reads clinical outcome spreadsheets into raw rows for the clinical import service.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ecg-academy/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("importer: missing header row")

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("importer: unsupported file format")

const (
	colPatientEncounterID  = "patientencounterid"
	colAttendingEmployeeID = "attendingemployeeid"
	colShiftDateTime       = "shiftdatetime"
	colECGTime             = "ecgtime"
	colDoorTime            = "doortime"
	colActivationTime      = "activationtime"
	colCathStartTime       = "cathstarttime"
	colIsTrueOMI           = "istrueomi"
	colIsCulpritOcclusion  = "isculpritocclusion"
	colAdjudicator         = "adjudicator"
)

var timestampColumns = map[string]bool{
	colShiftDateTime:  true,
	colECGTime:        true,
	colDoorTime:       true,
	colActivationTime: true,
	colCathStartTime:  true,
}

var booleanColumns = map[string]bool{
	colIsTrueOMI:          true,
	colIsCulpritOcclusion: true,
}

// Columns lists the recognised header names. Matching ignores case, spaces and underscores.
var Columns = []string{
	"patientEncounterId", "attendingEmployeeId", "shiftDateTime",
	"ecgTime", "doorTime", "activationTime", "cathStartTime",
	"isTrueOMI", "isCulpritOcclusion", "adjudicator",
}

// ReadFile picks the reader by file extension.
func ReadFile(path string) ([]domain.ClinicalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV reads a CSV whose first record is the header.
func ReadCSV(r io.Reader) ([]domain.ClinicalRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return fromRecords(records, nil)
}

// ReadXLSX reads the named sheet, or the first sheet when sheet is empty.
// Date cells stored as Excel serial numbers are converted to zone-less ISO timestamps
// and boolean cells to "true"/"false".
func ReadXLSX(r io.Reader, sheet string) ([]domain.ClinicalRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %q: %w", sheet, err)
	}

	cell := func(column string, rowIdx, colIdx int, raw string) string {
		switch {
		case timestampColumns[column]:
			return excelTimestamp(raw)
		case booleanColumns[column]:
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return raw
			}
			if typ, err := f.GetCellType(sheet, name); err == nil && typ == excelize.CellTypeBool {
				return strconv.FormatBool(raw == "1" || strings.EqualFold(raw, "true"))
			}
		}
		return raw
	}
	return fromRecords(records, cell)
}

// excelTimestamp converts a serial date number; anything else is returned unchanged.
func excelTimestamp(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Round(time.Second).Format("2006-01-02T15:04:05")
}

type cellFunc func(column string, rowIdx, colIdx int, raw string) string

func fromRecords(records [][]string, cell cellFunc) ([]domain.ClinicalRow, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	header := make([]string, len(records[0]))
	known := 0
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
		if isKnownColumn(header[i]) {
			known++
		}
	}
	if known == 0 {
		return nil, ErrNoHeader
	}

	rows := make([]domain.ClinicalRow, 0, len(records)-1)
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		record := records[rowIdx]
		if blank(record) {
			continue
		}
		var row domain.ClinicalRow
		for colIdx, raw := range record {
			if colIdx >= len(header) {
				break
			}
			column := header[colIdx]
			value := strings.TrimSpace(raw)
			if cell != nil && value != "" {
				value = cell(column, rowIdx, colIdx, value)
			}
			assign(&row, column, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func assign(row *domain.ClinicalRow, column, value string) {
	switch column {
	case colPatientEncounterID:
		row.PatientEncounterID = value
	case colAttendingEmployeeID:
		row.AttendingEmployeeID = value
	case colShiftDateTime:
		row.ShiftDateTime = value
	case colECGTime:
		row.ECGTime = value
	case colDoorTime:
		row.DoorTime = value
	case colActivationTime:
		row.ActivationTime = value
	case colCathStartTime:
		row.CathStartTime = value
	case colIsTrueOMI:
		row.IsTrueOMI = domain.FlexBool(domain.Truthy(value))
	case colIsCulpritOcclusion:
		row.IsCulpritOcclusion = domain.FlexBool(domain.Truthy(value))
	case colAdjudicator:
		row.Adjudicator = value
	}
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

func isKnownColumn(column string) bool {
	for _, c := range Columns {
		if normalizeHeader(c) == column {
			return true
		}
	}
	return false
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
