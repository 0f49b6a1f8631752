package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/cms/form"
	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type semesterScraper interface {
	Semester(ctx context.Context, semesterID int) (*scraper.SemesterRecord, error)
	SemesterListEntries(ctx context.Context, programID int) ([]scraper.SemesterListEntry, error)
}

type semesterReconciler interface {
	ReconcileSemester(ctx context.Context, programID, structureID int, rec *scraper.SemesterRecord) (*models.StudentSemester, error)
	ResolveStructureSemester(ctx context.Context, structureID int, number string) (*int, error)
}

// CreateSemesterRequest describes a new student-semester to register on
// the CMS.
type CreateSemesterRequest struct {
	ProgramID      int     `json:"program_id" validate:"required,gt=0"`
	Term           string  `json:"term" validate:"required"`
	SemesterNumber string  `json:"semester_number" validate:"required"`
	Status         string  `json:"status" validate:"required"`
	CAFDate        *string `json:"caf_date,omitempty"`
	SponsorID      *int    `json:"sponsor_id,omitempty"`
}

// EditSemesterRequest changes fields of an existing student-semester.
type EditSemesterRequest struct {
	SemesterID int     `json:"semester_id" validate:"required,gt=0"`
	Term       *string `json:"term,omitempty"`
	Status     *string `json:"status,omitempty"`
	CAFDate    *string `json:"caf_date,omitempty"`
	SponsorID  *int    `json:"sponsor_id,omitempty"`
}

// SemesterService creates and edits student-semesters on the CMS and
// mirrors the result locally.
type SemesterService struct {
	fetch     formFetcher
	push      formPusher
	urls      cms.URLs
	scrape    semesterScraper
	reconcile semesterReconciler
	programs  programReader
	semesters semesterReader
	campus    string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService. campus is the campus
// code the add form requires.
func NewSemesterService(fetch formFetcher, push formPusher, urls cms.URLs, scrape semesterScraper, reconcile semesterReconciler,
	programs programReader, semesters semesterReader, campus string,
	validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if campus == "" {
		campus = "Lesotho"
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{fetch: fetch, push: push, urls: urls, scrape: scrape, reconcile: reconcile,
		programs: programs, semesters: semesters, campus: campus, validator: validate, logger: logger}
}

// CreateSemester submits the semester add form, then locates the new
// entry in the program's semester list by term. The CMS assigns the
// semester id, so only the re-scrape can reveal it.
func (s *SemesterService) CreateSemester(ctx context.Context, req CreateSemesterRequest) (*models.StudentSemester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create request")
	}

	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"program "+strconv.Itoa(req.ProgramID)+" not in local store")
	}

	structureSemID, err := s.reconcile.ResolveStructureSemester(ctx, program.StructureID, req.SemesterNumber)
	if err != nil {
		return nil, err
	}
	if structureSemID == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrReference.Code, appErrors.ErrReference.Status,
			"semester number "+req.SemesterNumber+" has no slot in structure "+strconv.Itoa(program.StructureID))
	}

	addURL := s.urls.SemesterAdd(req.ProgramID)
	doc, err := s.fetch.Document(ctx, addURL)
	if err != nil {
		return nil, err
	}
	payload, err := form.FromDocument(doc, semesterAddForm)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"a_add":            form.Set("A"),
		"x_StdProgramID":   form.Set(strconv.Itoa(req.ProgramID)),
		"x_StructureID":    form.Set(strconv.Itoa(program.StructureID)),
		"x_TermCode":       form.Set(req.Term),
		"x_SemesterID":     form.Set(strconv.Itoa(*structureSemID)),
		"x_SemesterStatus": form.Set(req.Status),
		"x_CampusCode":     form.Set(s.campus),
	}
	if req.CAFDate != nil {
		overrides["x_StdSemCAFDate"] = form.Set(*req.CAFDate)
	}
	if req.SponsorID != nil {
		overrides["x_SponsorID"] = form.Set(strconv.Itoa(*req.SponsorID))
	}
	form.Overlay(payload, overrides)

	if _, err := s.push.PushForm(ctx, addURL, payload); err != nil {
		return nil, err
	}

	entries, err := s.scrape.SemesterListEntries(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	semesterID := 0
	for _, entry := range entries {
		if entry.Term == req.Term {
			semesterID = entry.ID
			break
		}
	}
	if semesterID == 0 {
		return nil, appErrors.Wrap(nil, appErrors.ErrCMSRejected.Code, appErrors.ErrCMSRejected.Status,
			"accepted semester for term "+req.Term+" not listed after create")
	}

	rec, err := s.scrape.Semester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	return s.reconcile.ReconcileSemester(ctx, req.ProgramID, program.StructureID, rec)
}

// EditSemester submits changes to the semester edit form. The CMS
// clears the term code on the first submission of this form and only
// accepts it on the second, so every edit posts twice.
func (s *SemesterService) EditSemester(ctx context.Context, req EditSemesterRequest) (*models.StudentSemester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit request")
	}

	existing, err := s.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status,
			"semester "+strconv.Itoa(req.SemesterID)+" not in local store")
	}
	program, err := s.programs.FindByID(ctx, existing.StudentProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, appErrors.Wrap(nil, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "program missing for semester")
	}

	editURL := s.urls.SemesterEdit(req.SemesterID)
	doc, err := s.fetch.Document(ctx, editURL)
	if err != nil {
		return nil, err
	}
	payload, err := form.FromDocument(doc, semesterEditForm)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{"a_edit": form.Set("U")}
	if req.Status != nil {
		overrides["x_SemesterStatus"] = form.Set(*req.Status)
	}
	if req.CAFDate != nil {
		overrides["x_StdSemCAFDate"] = form.Set(*req.CAFDate)
	}
	if req.SponsorID != nil {
		overrides["x_SponsorID"] = form.Set(strconv.Itoa(*req.SponsorID))
	}
	form.Overlay(payload, overrides)

	// The CMS blanks the term on the first submission of this form no
	// matter which field changed, so every edit posts twice: once with
	// an empty term, once with the wanted (or preserved) one.
	term := payload.Get("x_TermCode")
	if req.Term != nil {
		term = *req.Term
	}
	if form.NeedsTwoPassTerm(doc) {
		payload.Set("x_TermCode", "")
		if _, err := s.push.PushForm(ctx, editURL, payload); err != nil {
			return nil, err
		}
	}
	payload.Set("x_TermCode", term)
	if _, err := s.push.PushForm(ctx, editURL, payload); err != nil {
		return nil, err
	}

	rec, err := s.scrape.Semester(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	return s.reconcile.ReconcileSemester(ctx, existing.StudentProgramID, program.StructureID, rec)
}
