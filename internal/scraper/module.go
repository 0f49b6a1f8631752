package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/limkokwing/registry-sync/internal/normalize"
)

// ModuleRecord carries the fields scraped from a student-module view.
// Marks and Grade already reflect registry overrides: when the CMS shows
// alter-mark / alter-grade values they supersede the raw ones.
type ModuleRecord struct {
	ID      int
	Code    string
	Name    string
	Status  *string
	Type    *string
	Credits int
	Marks   string
	Grade   string
}

// ModuleIDs returns all CMS student-module ids listed under a semester.
func (s *Scraper) ModuleIDs(ctx context.Context, semesterID int) ([]int, error) {
	return s.list(ctx, s.urls.ModuleList(semesterID), "StdModuleID")
}

// Module scrapes one student-module view page.
func (s *Scraper) Module(ctx context.Context, moduleID int) (*ModuleRecord, error) {
	fields, err := s.detail(ctx, s.urls.ModuleView(moduleID))
	if err != nil {
		return nil, err
	}

	rec := &ModuleRecord{ID: moduleID}
	if v, ok := fieldByHeader(fields, "module"); ok {
		rec.Code, rec.Name = splitModuleTitle(v)
	}
	if v, ok := fieldByHeader(fields, "status"); ok {
		rec.Status = &v
	}
	if v, ok := fieldByHeader(fields, "type"); ok {
		t := normalize.ModuleType(v)
		rec.Type = &t
	}
	if v, ok := fieldByHeader(fields, "credits"); ok {
		if n, numOK := parseInt(v); numOK {
			rec.Credits = n
		}
	}
	if v, ok := fieldByHeader(fields, "marks"); ok {
		rec.Marks = v
	}
	if v, ok := fieldByHeader(fields, "grade"); ok {
		rec.Grade = v
	}

	// registry overrides supersede the raw mark and grade
	if v, ok := fieldByHeader(fields, "alter mark"); ok {
		rec.Marks = v
	}
	if v, ok := fieldByHeader(fields, "alter grade"); ok {
		rec.Grade = v
	}

	rec.Grade = normalize.Grade(rec.Grade)
	return rec, nil
}

// ModuleListEntry is one row of a semester's module list, used to verify
// membership after an add and to map new CMS ids.
type ModuleListEntry struct {
	ID   int
	Code string
}

// ModuleListEntries scrapes the module list rows under a semester.
func (s *Scraper) ModuleListEntries(ctx context.Context, semesterID int) ([]ModuleListEntry, error) {
	doc, err := s.fetch.Document(ctx, s.urls.ModuleList(semesterID))
	if err != nil {
		return nil, err
	}

	var entries []ModuleListEntry
	listRows(doc, "StdModuleID", func(id int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		code, _ := splitModuleTitle(cleanCell(cells.Eq(0).Text()))
		entries = append(entries, ModuleListEntry{ID: id, Code: code})
	})
	return entries, nil
}

// splitModuleTitle splits "DIWA1110 Web Application Development" into
// code and name. Titles without a space are all code.
func splitModuleTitle(title string) (code, name string) {
	title = strings.TrimSpace(title)
	if i := strings.IndexByte(title, ' '); i > 0 {
		return title[:i], strings.TrimSpace(title[i+1:])
	}
	return title, ""
}
