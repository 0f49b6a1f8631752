package scraper

import (
	"context"
)

// ProgramRecord carries the fields scraped from a student-program view.
type ProgramRecord struct {
	ID             int
	StdNo          int
	ProgramName    *string
	StructureCode  *string
	RegDate        *string
	IntakeDate     *string
	StartTerm      *string
	Stream         *string
	Status         *string
	AssistProvider *string
	GraduationDate *string
}

// ProgramIDs returns all CMS program ids listed for a student.
func (s *Scraper) ProgramIDs(ctx context.Context, stdNo int) ([]int, error) {
	return s.list(ctx, s.urls.ProgramList(stdNo), "StdProgramID")
}

// Program scrapes one student-program view page.
func (s *Scraper) Program(ctx context.Context, programID int) (*ProgramRecord, error) {
	fields, err := s.detail(ctx, s.urls.ProgramView(programID))
	if err != nil {
		return nil, err
	}

	rec := &ProgramRecord{ID: programID}
	if v, ok := fieldByHeader(fields, "student id"); ok {
		if n, numOK := parseInt(v); numOK {
			rec.StdNo = n
		}
	}
	if v, ok := fieldByHeader(fields, "program"); ok {
		rec.ProgramName = &v
	}
	// the CMS labels the structure "version"
	if v, ok := fieldByHeader(fields, "version"); ok {
		rec.StructureCode = &v
	} else if v, ok := fieldByHeader(fields, "structure"); ok {
		rec.StructureCode = &v
	}
	if v, ok := fieldByHeader(fields, "registration date"); ok {
		rec.RegDate = parseDate(v)
	}
	if v, ok := fieldByHeader(fields, "intake date"); ok {
		rec.IntakeDate = parseDate(v)
	}
	if v, ok := fieldByHeader(fields, "start term"); ok {
		rec.StartTerm = &v
	}
	if v, ok := fieldByHeader(fields, "stream"); ok {
		rec.Stream = &v
	}
	if v, ok := fieldByHeader(fields, "status"); ok {
		rec.Status = &v
	}
	if v, ok := fieldByHeader(fields, "assist"); ok {
		rec.AssistProvider = &v
	}
	if v, ok := fieldByHeader(fields, "graduation"); ok {
		rec.GraduationDate = parseDate(v)
	}
	return rec, nil
}
