package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"clustrmaps-go-crawler/internal/models"
)

const DefaultSite = "clustrmaps.com"

// BuildURL derives the listing page of an identity:
// https://<site>/persons/<First-Name>-<Last_name>[/<State_Name>].
func BuildURL(site string, id models.Identity) string {
	parts := strings.Split(id.FirstName, "-")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	first := strings.Join(parts, "-")
	last := capitalize(strings.ReplaceAll(id.LastName, " ", "_"))

	u := "https://" + site + "/persons/" + first + "-" + last
	if id.HasState() {
		u += "/" + strings.ReplaceAll(id.State, " ", "_")
	}
	return u
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
