
package classifier

import (
	"strings"

	"clustrmaps-go-crawler/internal/models"
)

// DefaultNotFoundMarkers are title fragments the site uses for a missing person.
var DefaultNotFoundMarkers = []string{"Page Not Found"}

// Classifier decides whether a fetched listing page exists. Markers are
// matched as exact-case substrings of the page title.
type Classifier struct {
	markers []string
}

func New(markers ...string) *Classifier {
	if len(markers) == 0 {
		markers = DefaultNotFoundMarkers
	}
	var kept []string
	for _, m := range markers {
		if strings.TrimSpace(m) != "" {
			kept = append(kept, m)
		}
	}
	return &Classifier{markers: kept}
}

func (c *Classifier) Classify(title string) models.Classification {
	for _, m := range c.markers {
		if strings.Contains(title, m) {
			return models.Classification{
				Label:  models.LabelNotFound,
				Reason: map[string]string{"title": "title contains " + `"` + m + `"`},
			}
		}
	}
	return models.Classification{Label: models.LabelFound}
}
