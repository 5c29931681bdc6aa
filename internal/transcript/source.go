package transcript

import (
	"context"
	"degreetrack/internal/course"
	"degreetrack/internal/logging"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Source fetches one batch of transcript rows.
type Source interface {
	Fetch(ctx context.Context) ([]Row, error)
}

// FileSource reads an exported transcript from disk. The format follows the
// file extension: .json, .csv or .xlsx.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	var rows []Row
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		rows, err = DecodeJSON(f)
	case ".csv":
		rows, err = DecodeCSV(f)
	case ".xlsx":
		rows, err = DecodeXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Path)
	}
	if err != nil {
		return nil, err
	}
	logging.ImportDebug("Read %d transcript rows from %s", len(rows), s.Path)
	return Clean(rows), nil
}

// jsonRow defers units parsing until the code is known to be usable.
type jsonRow struct {
	Code        string          `json:"code"`
	Grade       string          `json:"grade"`
	Units       json.RawMessage `json:"units"`
	Term        string          `json:"term"`
	Title       string          `json:"title"`
	Institution string          `json:"institution"`
}

// DecodeJSON reads a JSON array of rows. Rows without a usable code are
// skipped.
func DecodeJSON(r io.Reader) ([]Row, error) {
	var raw []jsonRow
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	rows := make([]Row, 0, len(raw))
	for _, jr := range raw {
		if malformedCode(jr.Code) {
			continue
		}
		row := Row{
			Code:        jr.Code,
			Grade:       jr.Grade,
			Term:        jr.Term,
			Title:       jr.Title,
			Institution: jr.Institution,
		}
		if len(jr.Units) > 0 && string(jr.Units) != "null" {
			if err := row.Units.UnmarshalJSON(jr.Units); err != nil {
				return nil, fmt.Errorf("row %q: %w", jr.Code, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeCSV reads rows with a header line naming the columns.
func DecodeCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript csv: %w", err)
	}
	return fromTable(records)
}

// DecodeXLSX reads the first sheet of a workbook with a header row.
func DecodeXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript workbook: %w", err)
	}
	defer f.Close()

	table, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript sheet: %w", err)
	}
	return fromTable(table)
}

// fromTable maps a header row plus records onto rows. Records without a
// usable code are skipped before any other cell is parsed, so summary lines
// never fail the batch.
func fromTable(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, nil
	}
	idx := headerIndex(table[0])
	if idx["code"] < 0 {
		return nil, fmt.Errorf("transcript header has no code column")
	}
	cell := func(row []string, col string) string {
		i := idx[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rows := make([]Row, 0, len(table)-1)
	for _, rec := range table[1:] {
		code := cell(rec, "code")
		if malformedCode(code) {
			continue
		}
		row := Row{
			Code:        code,
			Grade:       cell(rec, "grade"),
			Term:        cell(rec, "term"),
			Title:       cell(rec, "title"),
			Institution: cell(rec, "institution"),
		}
		if u := cell(rec, "units"); u != "" {
			amt, err := course.ParseAmount(u)
			if err != nil {
				return nil, fmt.Errorf("row %q: %w", row.Code, err)
			}
			row.Units = amt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	idx := map[string]int{"code": -1, "grade": -1, "units": -1, "term": -1, "title": -1, "institution": -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; ok && idx[key] < 0 {
			idx[key] = i
		}
	}
	return idx
}

// HTTPSource reads an exported JSON row feed. A non-2xx answer means the
// remote page could not be read and maps to ErrRemoteUnavailable. There is
// no retry; the user retries.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource builds an HTTPSource with a bounded client.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Row, error) {
	timer := logging.StartTimer(logging.CategoryImport, "HTTPSource.Fetch")
	defer timer.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Get(logging.CategoryImport).Warn("Transcript feed %s answered %d", s.URL, resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}
	rows, err := DecodeJSON(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return Clean(rows), nil
}

// Open picks a source for a path or URL.
func Open(target string, timeout time.Duration) Source {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return NewHTTPSource(target, timeout)
	}
	return FileSource{Path: target}
}
