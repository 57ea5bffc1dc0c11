package store

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/pkg/logger"
)

func newStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s, err := New(filepath.Join(t.TempDir(), "results"), logger.NewWriter(&buf))
	require.NoError(t, err)
	return s, &buf
}

func TestNewCreatesDir(t *testing.T) {
	s, _ := newStore(t)
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteTable(t *testing.T) {
	s, _ := newStore(t)
	rows := []models.Record{
		models.ListingRecord{Name: "John Smith", Age: "42", AssociatedPersons: []string{"A", "B"}},
		models.ListingRecord{Name: "Jon Smith, Jr."},
	}
	require.NoError(t, s.WriteTable("main.csv", models.MainColumns, rows...))

	data, err := os.ReadFile(s.Path("main.csv"))
	require.NoError(t, err)
	want := "name,age,address,state,associated_persons,phone,details_url\n" +
		"John Smith,42,N/A,N/A,A | B,N/A,N/A\n" +
		"\"Jon Smith, Jr.\",N/A,N/A,N/A,N/A,N/A,N/A\n"
	assert.Equal(t, want, string(data))
}

func TestWriteTableSingleRecordAndHeaderOnly(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.WriteTable("one.csv", models.QuickFactsColumns, models.QuickFacts{Name: "X", SourceURL: "u"}))
	require.NoError(t, s.WriteTable("none.csv", models.MainColumns))

	one, err := os.ReadFile(s.Path("one.csv"))
	require.NoError(t, err)
	assert.Equal(t, "name,emails,phone_numbers,source_url\nX,N/A,N/A,u\n", string(one))

	none, err := os.ReadFile(s.Path("none.csv"))
	require.NoError(t, err)
	assert.Equal(t, "name,age,address,state,associated_persons,phone,details_url\n", string(none))
}

func TestWriteTableIsIdempotent(t *testing.T) {
	s, buf := newStore(t)
	require.NoError(t, s.WriteTable("t.csv", models.QuickFactsColumns, models.QuickFacts{Name: "first"}))
	before, err := os.ReadFile(s.Path("t.csv"))
	require.NoError(t, err)

	require.NoError(t, s.WriteTable("t.csv", models.QuickFactsColumns, models.QuickFacts{Name: "second"}))
	after, err := os.ReadFile(s.Path("t.csv"))
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Contains(t, buf.String(), "already exists - skipping")
}

func TestWriteTableErrorIsLogged(t *testing.T) {
	s, buf := newStore(t)
	err := s.WriteTable(filepath.Join("missing-dir", "t.csv"), models.MainColumns)
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "[ERROR] Error saving")
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteTableFailureLeavesNoFile(t *testing.T) {
	s, buf := newStore(t)
	diskFull := errors.New("no space left on device")
	s.wrap = func(io.Writer) io.Writer { return failingWriter{err: diskFull} }

	err := s.WriteTable("t.csv", models.MainColumns, models.ListingRecord{Name: "John Smith"})
	assert.ErrorIs(t, err, diskFull)
	assert.False(t, s.Exists("t.csv"), "incomplete table must not count as written")
	assert.Contains(t, buf.String(), "[ERROR] Error saving")

	s.wrap = nil
	require.NoError(t, s.WriteTable("t.csv", models.MainColumns, models.ListingRecord{Name: "John Smith"}))
	data, err := os.ReadFile(s.Path("t.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "John Smith,N/A")
	assert.NotContains(t, buf.String(), "already exists - skipping")
}

func TestAppendRawMarkup(t *testing.T) {
	s, _ := newStore(t)
	pages := []string{"<html>one</html>", "<html>two</html>", "<html>three</html>"}
	for _, p := range pages {
		require.NoError(t, s.AppendRawMarkup("k_details.html", p))
	}

	data, err := os.ReadFile(s.Path("k_details.html"))
	require.NoError(t, err)
	want := pages[0] + ArchiveSeparator + pages[1] + ArchiveSeparator + pages[2]
	assert.Equal(t, want, string(data))
	assert.True(t, s.Exists("k_details.html"))
	assert.False(t, s.Exists("other.html"))
}
