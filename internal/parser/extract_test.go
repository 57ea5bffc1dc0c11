
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustrmaps-go-crawler/internal/models"
)

const detailHTML = `<html><body>
<h1 class="person-name"> John   Smith </h1>
<div id="intro">
  <a href="mailto:zed@example.com">zed@example.com</a>
  <a href="mailto:amy@example.com">amy@example.com</a>
  <a href="mailto:amy@example.com"> amy@example.com </a>
  <a href="mailto:broken">not an address</a>
  <a href="tel:5595550100">(559) 555-0100</a>
  <a href="tel:5595550199">(559) 555-0199</a>
  <a href="tel:5595550100">(559) 555-0100</a>
  <a href="tel:"></a>
</div>
</body></html>`

func TestExtractQuickFacts(t *testing.T) {
	p := New(DefaultOrigin)
	doc, err := p.DocumentString(detailHTML)
	require.NoError(t, err)

	facts, err := ExtractQuickFacts(doc, "https://clustrmaps.com/person/x")
	require.NoError(t, err)
	assert.Equal(t, "John   Smith", facts.Name, "inner whitespace is kept")
	assert.Equal(t, []string{"amy@example.com", "zed@example.com"}, facts.Emails)
	assert.Equal(t, []string{"(559) 555-0100", "(559) 555-0199"}, facts.PhoneNumbers)
	assert.Equal(t, "amy@example.com | zed@example.com", facts.Field("emails"))
}

func TestExtractQuickFactsDefaults(t *testing.T) {
	p := New(DefaultOrigin)
	for _, markup := range []string{"", "<html>", "<<<>>>", `<a href="mailto:x">x</a>`} {
		doc, err := p.DocumentString(markup)
		require.NoError(t, err)

		facts, err := ExtractQuickFacts(doc, "u")
		assert.NoError(t, err)
		assert.Equal(t, models.NotAvailable, facts.Field("name"))
		assert.Equal(t, models.NotAvailable, facts.Field("emails"))
		assert.Equal(t, models.NotAvailable, facts.Field("phone_numbers"))
		assert.Equal(t, "u", facts.Field("source_url"))
	}

	facts, err := ExtractQuickFacts(nil, "u")
	assert.NoError(t, err)
	assert.Equal(t, "u", facts.SourceURL)
}
