package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/limkokwing/registry-sync/internal/normalize"
)

// StudentRecord carries the fields scraped from the student view page.
// Absent fields stay nil rather than empty.
type StudentRecord struct {
	StdNo       int
	Name        *string
	NationalID  *string
	Gender      *string
	DateOfBirth *string
	Phone1      *string
	Phone2      *string
	Status      *string
}

// Student scrapes the student view page.
func (s *Scraper) Student(ctx context.Context, stdNo int) (*StudentRecord, error) {
	fields, err := s.detail(ctx, s.urls.StudentView(stdNo))
	if err != nil {
		return nil, err
	}

	rec := &StudentRecord{StdNo: stdNo}
	if v, ok := fieldByHeader(fields, "name"); ok {
		rec.Name = &v
	}
	if v, ok := fieldByHeader(fields, "ic/passport"); ok {
		rec.NationalID = &v
	} else if v, ok := fieldByHeader(fields, "national id"); ok {
		rec.NationalID = &v
	}
	if v, ok := fieldByHeader(fields, "sex"); ok {
		g := normalize.Gender(v)
		rec.Gender = &g
	}
	if v, ok := fieldByHeader(fields, "birthdate"); ok {
		rec.DateOfBirth = parseDate(v)
	}
	if v, ok := fieldByHeader(fields, "contact no"); ok {
		rec.Phone1 = &v
	}
	if v, ok := fieldByHeader(fields, "contact no 2"); ok {
		rec.Phone2 = &v
	}
	if v, ok := fieldByHeader(fields, "status"); ok {
		rec.Status = &v
	}
	return rec, nil
}

// NextOfKinRecord is one contact row from the personal page.
type NextOfKinRecord struct {
	Name         string
	Relationship string
	Phone        string
}

// PersonalRecord carries the personal page's demographic fields plus
// next-of-kin contacts.
type PersonalRecord struct {
	StdNo         int
	Country       *string
	Nationality   *string
	Race          *string
	Religion      *string
	MaritalStatus *string
	NextOfKin     []NextOfKinRecord
}

// Personal scrapes the personal view page, including the next-of-kin
// sub-table when present.
func (s *Scraper) Personal(ctx context.Context, stdNo int) (*PersonalRecord, error) {
	doc, err := s.fetch.Document(ctx, s.urls.PersonalView(stdNo))
	if err != nil {
		return nil, err
	}
	fields := detailFields(doc)

	rec := &PersonalRecord{StdNo: stdNo}
	if v, ok := fieldByHeader(fields, "country"); ok {
		c := normalize.Country(v)
		rec.Country = &c
	}
	if v, ok := fieldByHeader(fields, "nationality"); ok {
		n := normalize.Nationality(v)
		rec.Nationality = &n
	}
	if v, ok := fieldByHeader(fields, "race"); ok {
		rec.Race = &v
	}
	if v, ok := fieldByHeader(fields, "religion"); ok {
		rec.Religion = &v
	}
	if v, ok := fieldByHeader(fields, "marital"); ok {
		m := normalize.MaritalStatus(v)
		rec.MaritalStatus = &m
	}

	rec.NextOfKin = nextOfKinRows(doc)
	return rec, nil
}

// nextOfKinRows reads the contacts table, skipping its header row.
func nextOfKinRows(doc *goquery.Document) []NextOfKinRecord {
	var kin []NextOfKinRecord
	doc.Find("table#tblNextOfKin tr, table.ewTableNok tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		name := cleanCell(cells.Eq(0).Text())
		rel := cleanCell(cells.Eq(1).Text())
		phone := cleanCell(cells.Eq(2).Text())
		if name == "" || name == "Name" {
			return
		}
		kin = append(kin, NextOfKinRecord{
			Name:         name,
			Relationship: normalize.Relationship(rel),
			Phone:        phone,
		})
	})
	return kin
}

// EducationRow is one prior-education row from the education list.
type EducationRow struct {
	Level     string
	School    string
	Programme *string
	StartDate *string
	EndDate   *string
}

// EducationList scrapes the education history list page.
func (s *Scraper) EducationList(ctx context.Context, stdNo int) ([]EducationRow, error) {
	doc, err := s.fetch.Document(ctx, s.urls.EducationList(stdNo))
	if err != nil {
		return nil, err
	}

	var rows []EducationRow
	doc.Find("table#ewlistmain tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		level := cleanCell(cells.Eq(0).Text())
		school := cleanCell(cells.Eq(1).Text())
		if level == "" || school == "" || level == "Level" {
			return
		}
		r := EducationRow{
			Level:  normalize.EducationLevel(level),
			School: school,
		}
		if cells.Length() > 2 {
			r.Programme = optional(cleanCell(cells.Eq(2).Text()))
		}
		if cells.Length() > 3 {
			r.StartDate = parseDate(cleanCell(cells.Eq(3).Text()))
		}
		if cells.Length() > 4 {
			r.EndDate = parseDate(cleanCell(cells.Eq(4).Text()))
		}
		rows = append(rows, r)
	})
	return rows, nil
}
