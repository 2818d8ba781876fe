package scrapers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Date extraction cascade: structured metadata, explicit time elements,
// localized numeric patterns, then Turkish month names. Timestamps carrying a
// trailing "Z" or numeric offset are treated as naive local times: the suffix
// is stripped, not converted.

var (
	offsetSuffixRe = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

	numericDateTimeRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})[\s\-–]*(\d{1,2}):(\d{2})`)
	numericDateRe     = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)

	monthDateTimeRe = regexp.MustCompile(`(\d{1,2})\s+\S+\s+(\d{4})[\s\-–]+(\d{1,2}):(\d{2})`)
	monthDateRe     = regexp.MustCompile(`(\d{1,2})\s+\S+\s+(\d{4})`)
)

// turkishMonths includes ASCII-folded spellings seen in the wild.
var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayıs":   time.May,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"agustos": time.August,
	"eylül":   time.September,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasım":   time.November,
	"kasim":   time.November,
	"aralık":  time.December,
	"aralik":  time.December,
}

// parseMachineTimestamp parses a machine-readable timestamp (meta content,
// time[datetime], JSON-LD) after stripping any trailing offset marker.
func parseMachineTimestamp(raw string) (time.Time, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return time.Time{}, false
	}
	clean = strings.TrimSuffix(clean, "Z")
	clean = offsetSuffixRe.ReplaceAllString(clean, "")

	ts, err := dateparse.ParseLocal(clean)
	if err != nil || ts.IsZero() {
		return time.Time{}, false
	}
	return ts, true
}

// metaPublishedDate tries the structured-metadata strategies: published-time
// meta annotations first, then the first time element's datetime attribute.
func metaPublishedDate(doc *goquery.Document) (time.Time, bool) {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[name="publish_date"]`,
		`meta[itemprop="datePublished"]`,
	}
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if ts, ok := parseMachineTimestamp(content); ok {
				return ts, true
			}
		}
	}

	if attr, ok := doc.Find("time").First().Attr("datetime"); ok {
		if ts, ok := parseMachineTimestamp(attr); ok {
			return ts, true
		}
	}

	return time.Time{}, false
}

// parseNumericDate matches the DD.MM.YYYY[ -]HH:MM pattern, falling back to
// date-only.
func parseNumericDate(text string) (time.Time, bool) {
	if m := numericDateTimeRe.FindStringSubmatch(text); m != nil {
		return localDate(m[3], m[2], m[1], m[4], m[5])
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		return localDate(m[3], m[2], m[1], "0", "0")
	}
	return time.Time{}, false
}

// parseTurkishMonthDate matches "D Month YYYY[ HH:MM]" against the Turkish
// month-name table.
func parseTurkishMonthDate(text string) (time.Time, bool) {
	lower := strings.ToLower(text)

	for name, month := range turkishMonths {
		if !strings.Contains(lower, name) {
			continue
		}

		if m := monthDateTimeRe.FindStringSubmatch(lower); m != nil {
			if ts, ok := localMonthDate(m[2], month, m[1], m[3], m[4]); ok {
				return ts, true
			}
		}
		if m := monthDateRe.FindStringSubmatch(lower); m != nil {
			if ts, ok := localMonthDate(m[2], month, m[1], "0", "0"); ok {
				return ts, true
			}
		}
	}

	return time.Time{}, false
}

// parseDateText runs the free-text strategies in cascade order.
func parseDateText(text string) (time.Time, bool) {
	if ts, ok := parseNumericDate(text); ok {
		return ts, true
	}
	return parseTurkishMonthDate(text)
}

// jsonLDDate extracts datePublished from ld+json blocks, directly or inside
// an @graph array.
func jsonLDDate(doc *goquery.Document) (time.Time, bool) {
	var found time.Time
	var ok bool

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := datePublishedFromJSON(s.Text())
		if raw == "" {
			return true
		}
		if ts, parsed := parseMachineTimestamp(raw); parsed {
			found, ok = ts, true
			return false
		}
		return true
	})

	return found, ok
}

var datePublishedRe = regexp.MustCompile(`"datePublished"\s*:\s*"([^"]+)"`)

// datePublishedFromJSON pulls the first datePublished value out of a JSON-LD
// payload. A full JSON decode is unnecessary: the value is always a flat
// string field whether it sits at the top level or inside @graph.
func datePublishedFromJSON(raw string) string {
	if m := datePublishedRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func localDate(year, month, day, hour, minute string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	if y == 0 || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(mo), d, h, mi, 0, 0, time.Local), true
}

func localMonthDate(year string, month time.Month, day, hour, minute string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	d, _ := strconv.Atoi(day)
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	if y == 0 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y, month, d, h, mi, 0, 0, time.Local), true
}
