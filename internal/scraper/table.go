package scraper

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// The CMS renders every detail page as one table.ewTable whose rows
// alternate header and value cells, and every list page as a
// table#ewlistmain whose rows carry a view link embedding the child id.

// detailFields flattens a detail table into header→value pairs. Cells
// pair up left to right within each row, so a row may carry more than
// one field.
func detailFields(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find("table.ewTable tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			header := cleanCell(cells.Eq(i).Text())
			value := cleanCell(cells.Eq(i + 1).Text())
			if header != "" {
				fields[strings.ToLower(header)] = value
			}
		}
	})
	return fields
}

// fieldByHeader finds a value by case-insensitive substring match on the
// header text. Empty values report as absent.
func fieldByHeader(fields map[string]string, substr string) (string, bool) {
	substr = strings.ToLower(substr)
	// exact header first so "term" does not land on "start term"
	if v, ok := fields[substr]; ok && v != "" {
		return v, true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, substr) && fields[k] != "" {
			return fields[k], true
		}
	}
	return "", false
}

// idsFromList extracts child identifiers from a list page's view links,
// preserving row order and deduplicating.
func idsFromList(doc *goquery.Document, param string) []int {
	seen := map[int]struct{}{}
	var ids []int
	doc.Find(`table#ewlistmain a[href*="` + param + `="]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		id, ok := idFromHref(href, param)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})
	return ids
}

// listRows iterates data rows of a list page, handing each row selection
// and the id carried by its view link.
func listRows(doc *goquery.Document, param string, fn func(id int, row *goquery.Selection)) {
	doc.Find("table#ewlistmain tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(`a[href*="` + param + `="]`).First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		id, ok := idFromHref(href, param)
		if !ok {
			return
		}
		fn(id, row)
	})
}

func idFromHref(href, param string) (int, bool) {
	parsed, err := url.Parse(href)
	if err != nil {
		return 0, false
	}
	raw := parsed.Query().Get(param)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseDate accepts the CMS date spelling and returns an ISO date, nil
// when missing or unparseable. Missing stays missing; the engine never
// guesses values.
func parseDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

func parseInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

func cleanCell(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
