
package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustrmaps-go-crawler/internal/models"
)

const listingHTML = `<!doctype html><html lang="en"><head>
<title>John Smith in California</title>
</head><body>
<div itemprop="Person">
  <span itemprop="name">John  Smith</span>
  <span class="age">Age 4,2</span>
  <span itemprop="streetAddress">12 Main St</span>
  <span itemprop="addressLocality">Fresno</span>
  <span itemprop="addressRegion">CA</span>
  <span itemprop="relatedTo"><span itemprop="name">Mary Smith</span></span>
  <span itemprop="relatedTo"><span itemprop="name">Tom Smith</span></span>
  <span itemprop="relatedTo">no name here</span>
  <span itemprop="telephone">(559) 555-0100</span>
  <a class="btn btn-success" href="/person/john-smith-123">Details</a>
</div>
<div itemprop="Person">
  <span itemprop="relatedTo"><span itemprop="name">Only Relative</span></span>
  <span itemprop="streetAddress">9 Elm St</span>
</div>
</body></html>`

func TestExtractListing(t *testing.T) {
	p := New(DefaultOrigin)
	doc, err := p.DocumentString(listingHTML)
	require.NoError(t, err)

	got := p.ExtractListing(doc)
	want := []models.ListingRecord{
		{
			// text is trimmed, never reflowed
			Name:              "John  Smith",
			Age:               "Age 42",
			Address:           "12 Main St, Fresno",
			State:             "California",
			AssociatedPersons: []string{"Mary Smith", "Tom Smith"},
			Phone:             "(559) 555-0100",
			DetailsURL:        "https://clustrmaps.com/person/john-smith-123",
		},
		{
			AssociatedPersons: []string{"Only Relative"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Mary Smith | Tom Smith", got[0].Field("associated_persons"))
	for _, col := range []string{"name", "age", "address", "state", "phone", "details_url"} {
		assert.Equal(t, models.NotAvailable, got[1].Field(col), col)
	}
}

func TestExtractListingEmpty(t *testing.T) {
	p := New(DefaultOrigin)
	doc, err := p.DocumentString(`<html><body><p>nothing</p></body></html>`)
	require.NoError(t, err)

	got := p.ExtractListing(doc)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, p.ExtractListing(nil))
}

func TestExtractListingCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	names := []string{"A One", "B Two", "C Three", "D Four"}
	for _, n := range names {
		b.WriteString(`<div itemprop="Person"><span itemprop="name">` + n + `</span></div>`)
	}
	b.WriteString("</body></html>")

	p := New(DefaultOrigin)
	doc, err := p.DocumentString(b.String())
	require.NoError(t, err)

	got := p.ExtractListing(doc)
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].Name)
	}
}

func TestDetailsLinkResolution(t *testing.T) {
	p := New("https://clustrmaps.com/")
	assert.Equal(t, "https://clustrmaps.com/person/a", p.resolve("/person/a"))
	assert.Equal(t, "https://clustrmaps.com/person/b", p.resolve("https://clustrmaps.com/person/b"))
	assert.Empty(t, p.resolve("https://elsewhere.example/person/c"))
	assert.Empty(t, p.resolve("  "))
}

func TestNewFallsBackToDefaultOrigin(t *testing.T) {
	assert.Equal(t, DefaultOrigin, New("").Origin())
	assert.Equal(t, DefaultOrigin, New("not a url").Origin())
}

func TestDocumentDecodesCharset(t *testing.T) {
	// "Café" in ISO-8859-1
	raw := []byte("<html><head><title>Caf\xe9</title></head></html>")
	p := New(DefaultOrigin)
	doc, err := p.Document(strings.NewReader(string(raw)), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "Café", Title(doc))
	assert.Empty(t, Title(nil))
}
