package directory

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

const (
	noCategoryMessage     = "관련 시술 카테고리를 찾지 못해 병원 정보를 필터링할 수 없습니다."
	missingDatasetMessage = "병원 목록 파일을 찾을 수 없어 병원 정보를 제공할 수 없습니다."
)

// Loader serves the clinic dataset backing the prompt's hospital slot. The
// file is re-read on every filter call; rows are never mutated. Both the CSV
// export and the spreadsheet variant of the dataset are accepted, picked by
// extension.
type Loader struct {
	path    string
	maxRows int
}

func NewLoader(path string, maxRows int) *Loader {
	if maxRows <= 0 {
		maxRows = 5
	}
	return &Loader{path: path, maxRows: maxRows}
}

// FilterByCategory returns the rendered rows whose 카테고리 column contains
// category as a substring, capped at maxRows. Every degraded outcome (no
// category, unreadable dataset, zero matches) is a fixed readable message,
// never an error.
func (l *Loader) FilterByCategory(category string) string {
	if category == "" {
		return noCategoryMessage
	}

	records, err := l.load()
	if err != nil {
		slog.Warn("clinic_dataset_unavailable", "path", l.path, "error", err)
		return missingDatasetMessage
	}

	matched := make([]domain.ClinicRecord, 0, l.maxRows)
	for _, record := range records {
		if !strings.Contains(record.Category, category) {
			continue
		}
		matched = append(matched, record)
		if len(matched) == l.maxRows {
			break
		}
	}
	if len(matched) == 0 {
		return fmt.Sprintf("'%s' 카테고리에 해당하는 병원 정보를 찾을 수 없습니다.", category)
	}
	return renderRecords(matched)
}

func (l *Loader) load() ([]domain.ClinicRecord, error) {
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".xlsx":
		return l.loadXLSX()
	default:
		return l.loadCSV()
	}
}

func (l *Loader) loadCSV() ([]domain.ClinicRecord, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clinic csv: %w", err)
	}
	return recordsFromRows(rows), nil
}

func (l *Loader) loadXLSX() ([]domain.ClinicRecord, error) {
	book, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read clinic sheet %q: %w", sheet, err)
	}
	return recordsFromRows(rows), nil
}

type columnIndex struct {
	category, name, location, event, price int
}

func recordsFromRows(rows [][]string) []domain.ClinicRecord {
	if len(rows) < 2 {
		return nil
	}

	idx := mapHeader(rows[0])
	records := make([]domain.ClinicRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, domain.ClinicRecord{
			Category:   cell(row, idx.category),
			Name:       cell(row, idx.name),
			Location:   cell(row, idx.location),
			EventTitle: cell(row, idx.event),
			Price:      cell(row, idx.price),
		})
	}
	return records
}

func mapHeader(header []string) columnIndex {
	idx := columnIndex{category: -1, name: -1, location: -1, event: -1, price: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "카테고리":
			idx.category = i
		case "병원 이름":
			idx.name = i
		case "위치":
			idx.location = i
		case "이벤트 제목":
			idx.event = i
		case "가격":
			idx.price = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func renderRecords(records []domain.ClinicRecord) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "카테고리\t병원 이름\t위치\t이벤트 제목\t가격")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Category, r.Name, r.Location, r.EventTitle, r.Price)
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
