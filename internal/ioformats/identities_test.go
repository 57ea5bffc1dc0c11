
package ioformats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustrmaps-go-crawler/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "people.csv", "\ufeffFirst_Name,last_name,state\n"+
		"John,Smith,CA\n"+
		" Mary-Ann , O Brien ,\n"+
		",Nobody,TX\n"+
		"Solo\n"+
		"Jane,Roe,Ontario\n")

	got, err := ReadIdentities(path)
	require.NoError(t, err)
	want := []models.Identity{
		{FirstName: "John", LastName: "Smith", State: "California"},
		{FirstName: "Mary-Ann", LastName: "O Brien"},
		{FirstName: "Jane", LastName: "Roe", State: "Ontario"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("identities mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVWithoutStateColumn(t *testing.T) {
	path := writeFile(t, "people.csv", "last_name,first_name\nSmith,John\n")
	got, err := ReadIdentities(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Identity{{FirstName: "John", LastName: "Smith"}}, got)
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	path := writeFile(t, "people.csv", "first_name,state\nJohn,CA\n")
	_, err := ReadIdentities(path)
	assert.ErrorIs(t, err, ErrNoIdentities)
}

func TestReadCSVMalformed(t *testing.T) {
	path := writeFile(t, "people.csv", "first_name,last_name\n\"John,Smith\n")
	_, err := ReadIdentities(path)
	assert.Error(t, err)
}

func TestReadNDJSON(t *testing.T) {
	path := writeFile(t, "people.ndjson", `{"first_name":"John","last_name":"Smith","state":"ny"}

{"first_name":"Jane"}
{"first_name":"Jane","last_name":"Roe"}
`)
	got, err := ReadIdentities(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Identity{
		{FirstName: "John", LastName: "Smith", State: "New York"},
		{FirstName: "Jane", LastName: "Roe"},
	}, got)
}

func TestReadNDJSONMalformed(t *testing.T) {
	path := writeFile(t, "people.jsonl", "{\"first_name\":\n")
	_, err := ReadIdentities(path)
	assert.Error(t, err)
}

func TestReadUnknownExtension(t *testing.T) {
	csvPath := writeFile(t, "people.txt", "first_name,last_name\nJohn,Smith\n")
	got, err := ReadIdentities(csvPath)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	jsonPath := writeFile(t, "people.in", `{"first_name":"John","last_name":"Smith"}`+"\n")
	got, err = ReadIdentities(jsonPath)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadIdentities(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
