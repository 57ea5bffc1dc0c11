// Package store persists results as CSV tables and a raw markup archive under
// one results directory. A table that already exists is never rewritten; its
// presence is what lets a later run skip work.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/pkg/logger"
)

// ArchiveSeparator precedes every page appended to an existing archive.
const ArchiveSeparator = "\n<!-- ====== NEW DETAILS PAGE ====== -->\n"

type Store struct {
	dir string
	log *logger.Logger
	// wrap, when set, sits between the CSV encoder and a table file
	wrap func(io.Writer) io.Writer
}

// New creates dir if it is missing.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// WriteTable writes a header and rows in column order. If the file already
// exists nothing is written and nil is returned. A table that fails part way
// is removed so a later run writes it again.
func (s *Store) WriteTable(name string, columns []string, rows ...models.Record) (err error) {
	path := s.Path(name)
	defer func() {
		if err != nil {
			s.log.Errorf("Error saving %s: %v", path, err)
		}
	}()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		s.log.Infof("File %s already exists - skipping", path)
		return nil
	}
	if err != nil {
		return err
	}

	var w io.Writer = f
	if s.wrap != nil {
		w = s.wrap(f)
	}
	err = writeCSV(w, columns, rows)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(path); rerr != nil {
			s.log.Warnf("remove incomplete %s: %v", path, rerr)
		}
		return err
	}
	s.log.Infof("Saved %s", path)
	return nil
}

func writeCSV(dst io.Writer, columns []string, rows []models.Record) error {
	w := csv.NewWriter(dst)
	if err := w.Write(columns); err != nil {
		return err
	}
	line := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			line[i] = row.Field(col)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// AppendRawMarkup creates name with content, or appends content after
// ArchiveSeparator when the archive already exists.
func (s *Store) AppendRawMarkup(name, content string) (err error) {
	path := s.Path(name)
	defer func() {
		if err != nil {
			s.log.Errorf("Error saving details HTML %s: %v", path, err)
		}
	}()

	created := true
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		created = false
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	body := content
	if !created {
		body = ArchiveSeparator + content
	}
	if _, err := f.WriteString(body); err != nil {
		return err
	}
	if created {
		s.log.Infof("Created new details HTML file: %s", path)
	} else {
		s.log.Infof("Appended to details HTML file: %s", path)
	}
	return nil
}
