
package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/internal/states"
)

var ErrNoIdentities = errors.New("no valid identities in input")

// ReadIdentities reads people to look up from a CSV (header with first_name,
// last_name and optional state) or NDJSON file of objects with the same keys.
// Rows without a first or last name are skipped. If ext cannot be determined,
// tries CSV first then NDJSON.
func ReadIdentities(path string) ([]models.Identity, error) {
	var (
		ids []models.Identity
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ids, err = readCSV(path)
	case ".ndjson", ".jsonl":
		ids, err = readNDJSON(path)
	default:
		ids, err = readCSV(path)
		if err != nil || len(ids) == 0 {
			ids, err = readNDJSON(path)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoIdentities
	}
	return ids, nil
}

func identity(first, last, state string) (models.Identity, bool) {
	id := models.Identity{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
	}
	if id.FirstName == "" || id.LastName == "" {
		return id, false
	}
	id.State, _ = states.Normalize(state)
	return id, true
}

func readCSV(path string) ([]models.Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []models.Identity
	for _, row := range rows[1:] {
		if id, ok := identity(get(row, "first_name"), get(row, "last_name"), get(row, "state")); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func readNDJSON(path string) ([]models.Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.Identity
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var obj struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			State     string `json:"state"`
		}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("read ndjson %s line %d: %w", path, line, err)
		}
		if id, ok := identity(obj.FirstName, obj.LastName, obj.State); ok {
			out = append(out, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
