package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// SemesterRecord carries the fields scraped from a student-semester view.
// SemesterNumber is the CMS spelling ("01".."10", "F1", "F2"); the
// reconciler maps it onto a structure semester.
type SemesterRecord struct {
	ID             int
	Term           *string
	SemesterNumber *string
	Status         *string
	CAFDate        *string
	SponsorCode    *string
}

// SemesterIDs returns all CMS semester ids listed under a program.
func (s *Scraper) SemesterIDs(ctx context.Context, programID int) ([]int, error) {
	return s.list(ctx, s.urls.SemesterList(programID), "StdSemesterID")
}

// Semester scrapes one student-semester view page.
func (s *Scraper) Semester(ctx context.Context, semesterID int) (*SemesterRecord, error) {
	fields, err := s.detail(ctx, s.urls.SemesterView(semesterID))
	if err != nil {
		return nil, err
	}

	rec := &SemesterRecord{ID: semesterID}
	if v, ok := fieldByHeader(fields, "term"); ok {
		rec.Term = &v
	}
	if v, ok := fieldByHeader(fields, "semester"); ok {
		rec.SemesterNumber = &v
	}
	if v, ok := fieldByHeader(fields, "status"); ok {
		rec.Status = &v
	}
	if v, ok := fieldByHeader(fields, "caf date"); ok {
		rec.CAFDate = parseDate(v)
	}
	if v, ok := fieldByHeader(fields, "sponsor"); ok {
		rec.SponsorCode = &v
	}
	return rec, nil
}

// SemesterListEntry is one row of a program's semester list. The create
// flow re-scrapes this list to locate a freshly assigned semester id by
// its term.
type SemesterListEntry struct {
	ID     int
	Term   string
	Status string
}

// SemesterListEntries scrapes the semester list rows under a program.
func (s *Scraper) SemesterListEntries(ctx context.Context, programID int) ([]SemesterListEntry, error) {
	doc, err := s.fetch.Document(ctx, s.urls.SemesterList(programID))
	if err != nil {
		return nil, err
	}

	var entries []SemesterListEntry
	listRows(doc, "StdSemesterID", func(id int, row *goquery.Selection) {
		cells := row.Find("td")
		entry := SemesterListEntry{ID: id}
		if cells.Length() > 0 {
			entry.Term = cleanCell(cells.Eq(0).Text())
		}
		if cells.Length() > 2 {
			entry.Status = cleanCell(cells.Eq(2).Text())
		}
		entries = append(entries, entry)
	})
	return entries, nil
}
