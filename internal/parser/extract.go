
package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/internal/states"
)

const (
	personSel   = `div[itemprop="Person"]`
	nameSel     = `span[itemprop="name"]`
	relatedSel  = `span[itemprop="relatedTo"]`
	detailsSel  = `a.btn-success`
	headingSel  = `h1.person-name`
	mailtoSel   = `a[href^="mailto:"]`
	telSel      = `a[href^="tel:"]`
	addressJoin = ", "
)

// ExtractListing returns one record per person entry, in document order.
func (p *Parser) ExtractListing(doc *goquery.Document) []models.ListingRecord {
	records := []models.ListingRecord{}
	if doc == nil {
		return records
	}
	doc.Find(personSel).Each(func(i int, entry *goquery.Selection) {
		records = append(records, p.listingRecord(entry))
	})
	return records
}

func (p *Parser) listingRecord(entry *goquery.Selection) models.ListingRecord {
	var rec models.ListingRecord

	// the entry's own name, not one nested under a related person
	own := entry.Find(nameSel).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsUntilSelection(entry).Filter(relatedSel).Length() == 0
	})
	if own.Length() > 0 {
		rec.Name = strings.TrimSpace(own.First().Text())
	}

	if age := entry.Find("span.age"); age.Length() > 0 {
		rec.Age = strings.TrimSpace(strings.ReplaceAll(age.First().Text(), ",", ""))
	}

	street := entry.Find(`span[itemprop="streetAddress"]`)
	locality := entry.Find(`span[itemprop="addressLocality"]`)
	if street.Length() > 0 && locality.Length() > 0 {
		rec.Address = strings.TrimSpace(street.First().Text()) + addressJoin + strings.TrimSpace(locality.First().Text())
	}

	if region := entry.Find(`span[itemprop="addressRegion"]`); region.Length() > 0 {
		rec.State, _ = states.Normalize(strings.TrimSpace(region.First().Text()))
	}

	entry.Find(relatedSel).Each(func(_ int, rel *goquery.Selection) {
		name := rel.Find(nameSel)
		if name.Length() == 0 {
			return
		}
		if n := strings.TrimSpace(name.First().Text()); n != "" {
			rec.AssociatedPersons = append(rec.AssociatedPersons, n)
		}
	})

	if phone := entry.Find(`span[itemprop="telephone"]`); phone.Length() > 0 {
		rec.Phone = strings.TrimSpace(phone.First().Text())
	}

	if href, ok := entry.Find(detailsSel).First().Attr("href"); ok {
		rec.DetailsURL = p.resolve(href)
	}
	return rec
}

// ExtractQuickFacts never fails: a malformed page yields the defaults, and
// err reports what was recovered from, if anything.
func ExtractQuickFacts(doc *goquery.Document, sourceURL string) (facts models.QuickFacts, err error) {
	facts = models.QuickFacts{SourceURL: sourceURL}
	if doc == nil {
		return facts, nil
	}
	defer func() {
		if r := recover(); r != nil {
			facts = models.QuickFacts{SourceURL: sourceURL}
			err = fmt.Errorf("extract quick facts: %v", r)
		}
	}()

	facts.Name = strings.TrimSpace(doc.Find(headingSel).First().Text())

	facts.Emails = collect(doc.Find(mailtoSel), func(s string) bool {
		return strings.Contains(s, "@")
	})
	facts.PhoneNumbers = collect(doc.Find(telSel), func(s string) bool {
		return s != ""
	})
	return facts, nil
}

// collect returns the sorted, deduplicated visible text of sel accepted by keep.
func collect(sel *goquery.Selection, keep func(string) bool) []string {
	seen := map[string]struct{}{}
	sel.Each(func(_ int, s *goquery.Selection) {
		txt := strings.TrimSpace(s.Text())
		if keep(txt) {
			seen[txt] = struct{}{}
		}
	})
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
