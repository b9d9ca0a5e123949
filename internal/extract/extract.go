// Package extract turns raw scraped HTML into structured record candidates
// using site-specific or custom selector rule sets.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Known site kinds with built-in rule sets.
const (
	SiteUpwork    = "upwork"
	SitePythonOrg = "python.org"
	SiteGeneric   = "generic"
)

// Candidate is one structured listing carved out of a page, in document order.
type Candidate struct {
	NaturalKey  string
	Site        string
	URL         string
	Title       string
	Description string
	Budget      string
	Skills      []string
	PostedAt    string
}

// Stats describes what one extraction pass found.
type Stats struct {
	Site             string
	Selector         string
	ElementsFound    int
	Extracted        int
	DroppedNoKey     int
	LinkFallbackUsed bool
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxFallbackLinks  = 20
)

// DetectSite picks a site kind for a page. The URL hint wins when present;
// otherwise content markers decide, python.org before upwork, generic last.
func DetectSite(html, urlHint string) string {
	if hint := strings.ToLower(urlHint); hint != "" {
		if strings.Contains(hint, "python.org") {
			return SitePythonOrg
		}
		if strings.Contains(hint, "upwork.com") {
			return SiteUpwork
		}
	}

	lower := strings.ToLower(html)

	pythonMarkers := []string{"python.org", "python job board", "python software foundation"}
	for _, m := range pythonMarkers {
		if strings.Contains(lower, m) {
			return SitePythonOrg
		}
	}

	upworkMarkers := []string{`data-test="jobtile"`, `data-qa="job-tile"`, "job-tile-title"}
	for _, m := range upworkMarkers {
		if strings.Contains(lower, m) {
			return SiteUpwork
		}
	}

	return SiteGeneric
}

// Records extracts candidates from html using the given rule set. Candidates
// lacking a natural key (no key field and no URL to fall back on) are dropped
// and counted, never fatal. Returns ErrMalformedDocument only when the
// document cannot be parsed at all.
func Records(html string, rules *RuleSet) ([]Candidate, *Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	stats := &Stats{Site: rules.Site}

	var elements []*goquery.Selection
	for _, selector := range rules.Containers {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			stats.Selector = selector
			sel.Each(func(_ int, s *goquery.Selection) {
				elements = append(elements, s)
			})
			break
		}
	}

	if len(elements) == 0 && rules.LinkFallback {
		elements = fallbackLinks(doc)
		stats.LinkFallbackUsed = len(elements) > 0
	}
	stats.ElementsFound = len(elements)

	var candidates []Candidate
	for _, el := range elements {
		cand := extractCandidate(el, rules)
		if cand.NaturalKey == "" {
			stats.DroppedNoKey++
			continue
		}
		candidates = append(candidates, cand)
	}
	stats.Extracted = len(candidates)

	return candidates, stats, nil
}

func extractCandidate(el *goquery.Selection, rules *RuleSet) Candidate {
	cand := Candidate{Site: rules.Site}

	for _, rule := range rules.Fields {
		if rule.Field == FieldSkills {
			cand.Skills = extractSkills(el, rule)
			continue
		}

		value := firstMatch(el, rule)
		switch rule.Field {
		case FieldNaturalKey:
			cand.NaturalKey = value
		case FieldURL:
			cand.URL = resolveURL(value, rules.URLPrefix)
		case FieldTitle:
			cand.Title = truncate(value, maxTitleLen)
		case FieldDescription:
			cand.Description = truncate(value, maxDescriptionLen)
		case FieldBudget:
			cand.Budget = value
		case FieldPostedAt:
			cand.PostedAt = value
		}
	}

	// The URL doubles as the natural key for sites without stable listing ids.
	if cand.NaturalKey == "" {
		cand.NaturalKey = cand.URL
	}
	return cand
}

// firstMatch walks the rule's selector chain and returns the first non-empty
// value, falling back to the rule default.
func firstMatch(el *goquery.Selection, rule FieldRule) string {
	for _, selector := range rule.Selectors {
		target := el
		if selector != "" {
			target = el.Find(selector).First()
			if target.Length() == 0 {
				continue
			}
		}

		var value string
		if rule.Attr != "" {
			value, _ = target.Attr(rule.Attr)
		} else {
			value = target.Text()
		}
		value = cleanWhitespace(value)
		if value != "" {
			return value
		}
	}
	return rule.Default
}

// extractSkills collects every element matched by the first productive
// selector. Single comma-joined values are split; "+N more" chips are skipped.
func extractSkills(el *goquery.Selection, rule FieldRule) []string {
	for _, selector := range rule.Selectors {
		sel := el.Find(selector)
		if sel.Length() == 0 {
			continue
		}

		var skills []string
		sel.Each(func(_ int, s *goquery.Selection) {
			text := cleanWhitespace(s.Text())
			if text == "" || moreChip.MatchString(text) {
				return
			}
			if strings.Contains(text, ",") {
				for _, part := range strings.Split(text, ",") {
					if p := strings.TrimSpace(part); p != "" {
						skills = append(skills, p)
					}
				}
				return
			}
			skills = append(skills, text)
		})
		if len(skills) > 0 {
			return skills
		}
	}
	return nil
}

var (
	moreChip   = regexp.MustCompile(`^\+\d+$`)
	whitespace = regexp.MustCompile(`\s+`)
)

var linkKeywords = []string{"job", "position", "career", "opening", "vacancy", "work"}

var linkAvoid = []string{"filter", "search", "sort", "page", "next", "prev"}

// fallbackLinks scans anchor tags for listing-like links when no container
// selector produced anything, capped to keep noisy pages bounded.
func fallbackLinks(doc *goquery.Document) []*goquery.Selection {
	var links []*goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(cleanWhitespace(s.Text()))
		href, _ := s.Attr("href")
		href = strings.ToLower(href)

		matched := false
		for _, kw := range linkKeywords {
			if strings.Contains(text, kw) || strings.Contains(href, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
		for _, avoid := range linkAvoid {
			if strings.Contains(text, avoid) {
				return true
			}
		}

		links = append(links, s)
		return len(links) < maxFallbackLinks
	})
	return links
}

func resolveURL(href, prefix string) string {
	if href == "" || prefix == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return prefix + href
}

func cleanWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
