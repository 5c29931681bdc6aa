package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClean(t *testing.T) {
	rows := Clean([]Row{
		{Code: "CMPSC 16", Grade: " A "},
		{Code: "-", Grade: "A"},
		{Code: "", Grade: "B"},
		{Code: " ** ", Grade: "B"},
		{Code: "MATH 3A", Institution: " UCSB "},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Grade)
	assert.Equal(t, "UCSB", rows[1].Institution)
}

func TestDecodeJSON(t *testing.T) {
	doc := `[{"code":"CMPSC 8","grade":"IP","units":4,"term":"F24","title":"Intro","institution":"UCSB"},
	         {"code":"ENGL 1A","grade":"A","units":"3.5","institution":"SBCC"}]`
	rows, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 400, rows[0].Units)
	assert.EqualValues(t, 350, rows[1].Units)
	assert.Equal(t, "SBCC", rows[1].Institution)
}

func TestDecodeJSONSkipsSummaryRows(t *testing.T) {
	doc := `[{"code":"MATH 3A","grade":"A-","units":4,"institution":"UCSB"},
	         {"code":"-","grade":"-","units":"-","title":"Term total"},
	         {"title":"Cumulative","units":"n/a"}]`
	rows, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MATH 3A", rows[0].Code)
	assert.EqualValues(t, 400, rows[0].Units)
}

func TestDecodeCSV(t *testing.T) {
	doc := "Institution,Code,Grade,Units,Term\nUCSB,CMPSC 16,A-,4,F23\nUCSB,-,W,4,F23\n"
	rows, err := DecodeCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CMPSC 16", rows[0].Code)
	assert.Equal(t, "A-", rows[0].Grade)
}

func TestDecodeCSVSkipsSummaryRows(t *testing.T) {
	doc := "code,grade,units,term,title,institution\n" +
		"MATH 3A,A-,4,F23,Calculus,UCSB\n" +
		"-,-,-,F23,Term total,UCSB\n" +
		",,n/a,,Cumulative,\n"
	rows, err := DecodeCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MATH 3A", rows[0].Code)
	assert.EqualValues(t, 400, rows[0].Units)
}

func TestDecodeCSVBadUnitsOnCourseRow(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("code,grade,units\nMATH 3A,A,four\n"))
	assert.Error(t, err)
}

func TestDecodeCSVMissingCodeColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("grade,units\nA,4\n"))
	assert.Error(t, err)
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"code", "grade", "units", "institution"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"MATH 3A", "B+", "4", "UCSB"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"-", "-", "-", "UCSB"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := DecodeXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1, "the term total row is skipped")
	assert.Equal(t, "MATH 3A", rows[0].Code)
	assert.EqualValues(t, 400, rows[0].Units)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"code":"CMPSC 8","grade":"A"},{"code":"-"}]`), 0644))

	rows, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = FileSource{Path: filepath.Join(dir, "history.txt")}.Fetch(context.Background())
	assert.Error(t, err)

	bad := filepath.Join(dir, "history.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0644))
	_, err = FileSource{Path: bad}.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"code":"CMPSC 16","grade":"A","units":4,"institution":"UCSB"}]`))
			return
		}
		http.Error(w, "not logged in", http.StatusUnauthorized)
	}))
	defer srv.Close()

	rows, err := NewHTTPSource(srv.URL+"/ok", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = NewHTTPSource(srv.URL+"/login", time.Second).Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrRemoteUnavailable), "got %v", err)
}

func TestWithRetryHint(t *testing.T) {
	err := WithRetryHint(fmt.Errorf("%w: status 401", ErrRemoteUnavailable))
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), RetryHint)

	other := errors.New("disk full")
	assert.Equal(t, other, WithRetryHint(other))
	assert.NoError(t, WithRetryHint(nil))
}

func TestOpen(t *testing.T) {
	if _, ok := Open("https://example.edu/rows", time.Second).(*HTTPSource); !ok {
		t.Error("expected HTTPSource for URL")
	}
	if _, ok := Open("rows.csv", time.Second).(FileSource); !ok {
		t.Error("expected FileSource for path")
	}
}
