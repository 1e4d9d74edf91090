// Package extract pulls email addresses out of rendered page content.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

// assetExtensions are final domain labels that mark asset-filename false
// positives (logo@2x.png and friends), not addresses.
var assetExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// Emails returns every address found in content, deduplicated and sorted
// ascending. The content is scanned as-is and again as the text of the parsed
// document, so addresses hidden behind HTML entities are still found. The
// function is pure; identical input always yields identical output.
func Emails(content string) []string {
	seen := make(map[string]struct{})
	collect(content, seen)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		collect(doc.Text(), seen)
	}

	out := make([]string, 0, len(seen))
	for email := range seen {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

func collect(text string, seen map[string]struct{}) {
	for _, m := range emailRegex.FindAllString(text, -1) {
		if isAssetName(m) {
			continue
		}
		seen[m] = struct{}{}
	}
}

func isAssetName(email string) bool {
	idx := strings.LastIndex(email, ".")
	label := strings.ToLower(email[idx+1:])
	_, ok := assetExtensions[label]
	return ok
}
