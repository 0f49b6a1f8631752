package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

type fakeScraper struct {
	students     map[int]*scraper.StudentRecord
	personals    map[int]*scraper.PersonalRecord
	education    map[int][]scraper.EducationRow
	programIDs   map[int][]int
	programs     map[int]*scraper.ProgramRecord
	semesterIDs  map[int][]int
	semesters    map[int]*scraper.SemesterRecord
	semesterList map[int][]scraper.SemesterListEntry
	moduleIDs    map[int][]int
	modules      map[int]*scraper.ModuleRecord
	moduleList   map[int][]scraper.ModuleListEntry

	moduleListCalls int
}

func notScraped(what string) error {
	return appErrors.Wrap(nil, appErrors.ErrParse.Code, appErrors.ErrParse.Status, what+" page not available")
}

func (f *fakeScraper) Student(_ context.Context, stdNo int) (*scraper.StudentRecord, error) {
	if rec, ok := f.students[stdNo]; ok {
		return rec, nil
	}
	return nil, notScraped("student")
}

func (f *fakeScraper) Personal(_ context.Context, stdNo int) (*scraper.PersonalRecord, error) {
	if rec, ok := f.personals[stdNo]; ok {
		return rec, nil
	}
	return nil, notScraped("personal")
}

func (f *fakeScraper) EducationList(_ context.Context, stdNo int) ([]scraper.EducationRow, error) {
	return f.education[stdNo], nil
}

func (f *fakeScraper) ProgramIDs(_ context.Context, stdNo int) ([]int, error) {
	return f.programIDs[stdNo], nil
}

func (f *fakeScraper) Program(_ context.Context, programID int) (*scraper.ProgramRecord, error) {
	if rec, ok := f.programs[programID]; ok {
		return rec, nil
	}
	return nil, notScraped("program")
}

func (f *fakeScraper) SemesterIDs(_ context.Context, programID int) ([]int, error) {
	return f.semesterIDs[programID], nil
}

func (f *fakeScraper) Semester(_ context.Context, semesterID int) (*scraper.SemesterRecord, error) {
	if rec, ok := f.semesters[semesterID]; ok {
		return rec, nil
	}
	return nil, notScraped("semester")
}

func (f *fakeScraper) SemesterListEntries(_ context.Context, programID int) ([]scraper.SemesterListEntry, error) {
	return f.semesterList[programID], nil
}

func (f *fakeScraper) ModuleIDs(_ context.Context, semesterID int) ([]int, error) {
	return f.moduleIDs[semesterID], nil
}

func (f *fakeScraper) Module(_ context.Context, moduleID int) (*scraper.ModuleRecord, error) {
	if rec, ok := f.modules[moduleID]; ok {
		return rec, nil
	}
	return nil, notScraped("module")
}

func (f *fakeScraper) ModuleListEntries(_ context.Context, semesterID int) ([]scraper.ModuleListEntry, error) {
	f.moduleListCalls++
	return f.moduleList[semesterID], nil
}

// fakeReconciler records what reached the store instead of persisting.
type fakeReconciler struct {
	refuse map[int]bool // program ids that fail structure resolution

	structureID int
	structSems  map[string]int
	primed      int

	students  []*scraper.StudentRecord
	personals []*scraper.PersonalRecord
	education map[int][]scraper.EducationRow
	programs  []*models.StudentProgram
	semesters []*models.StudentSemester
	modules   []*models.StudentModule
}

func (f *fakeReconciler) Prime(context.Context) error {
	f.primed++
	return nil
}

func (f *fakeReconciler) ReconcileStudent(_ context.Context, st *scraper.StudentRecord, personal *scraper.PersonalRecord) error {
	f.students = append(f.students, st)
	f.personals = append(f.personals, personal)
	return nil
}

func (f *fakeReconciler) ReconcileEducation(_ context.Context, stdNo int, rows []scraper.EducationRow) error {
	if f.education == nil {
		f.education = map[int][]scraper.EducationRow{}
	}
	f.education[stdNo] = rows
	return nil
}

func (f *fakeReconciler) ReconcileProgram(_ context.Context, rec *scraper.ProgramRecord) (*models.StudentProgram, error) {
	if f.refuse[rec.ID] {
		return nil, appErrors.Wrap(nil, appErrors.ErrReference.Code, appErrors.ErrReference.Status, "structure code not found")
	}
	program := &models.StudentProgram{ID: rec.ID, StdNo: rec.StdNo, StructureID: f.structureID, Status: string(models.ProgramStatusActive)}
	f.programs = append(f.programs, program)
	return program, nil
}

func (f *fakeReconciler) ReconcileSemester(_ context.Context, programID, structureID int, rec *scraper.SemesterRecord) (*models.StudentSemester, error) {
	semester := &models.StudentSemester{ID: rec.ID, StudentProgramID: programID}
	if rec.Term != nil {
		semester.Term = *rec.Term
	}
	f.semesters = append(f.semesters, semester)
	return semester, nil
}

func (f *fakeReconciler) ReconcileModule(_ context.Context, semesterID, structureID int, rec *scraper.ModuleRecord) (*models.StudentModule, error) {
	module := &models.StudentModule{ID: rec.ID, StudentSemesterID: semesterID, Grade: rec.Grade}
	f.modules = append(f.modules, module)
	return module, nil
}

func (f *fakeReconciler) ResolveStructureSemester(_ context.Context, structureID int, number string) (*int, error) {
	if id, ok := f.structSems[number]; ok {
		return &id, nil
	}
	return nil, nil
}

// fakePages serves canned HTML per URL.
type fakePages struct {
	pages map[string]string
}

func (f *fakePages) Document(_ context.Context, pageURL string) (*goquery.Document, error) {
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, notScraped(pageURL)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

type pushCall struct {
	URL     string
	Payload url.Values
}

// fakePusher accepts every submission unless the URL is marked to
// reject, and records each payload for inspection.
type fakePusher struct {
	calls  []pushCall
	reject map[string]bool
	onPush func()
}

func (f *fakePusher) PushForm(_ context.Context, pageURL string, payload url.Values) (string, error) {
	copied := url.Values{}
	for k, v := range payload {
		copied[k] = append([]string(nil), v...)
	}
	f.calls = append(f.calls, pushCall{URL: pageURL, Payload: copied})
	if f.onPush != nil {
		f.onPush()
	}
	if f.reject[pageURL] {
		return "error page", appErrors.Wrap(nil, appErrors.ErrCMSRejected.Code, appErrors.ErrCMSRejected.Status, "no success marker")
	}
	return "Update Successful", nil
}

type fakeProgramStore struct {
	programs map[int]*models.StudentProgram
	active   map[int]*models.StudentProgram

	updated map[int]int
	deleted []int
}

func (f *fakeProgramStore) FindByID(_ context.Context, id int) (*models.StudentProgram, error) {
	return f.programs[id], nil
}

func (f *fakeProgramStore) ActiveByStudent(_ context.Context, stdNo int) (*models.StudentProgram, error) {
	return f.active[stdNo], nil
}

func (f *fakeProgramStore) UpdateStructure(_ context.Context, programID, structureID int) error {
	if f.updated == nil {
		f.updated = map[int]int{}
	}
	f.updated[programID] = structureID
	return nil
}

func (f *fakeProgramStore) DeleteByStudent(_ context.Context, stdNo int) error {
	f.deleted = append(f.deleted, stdNo)
	return nil
}

type fakeSemesterStore struct {
	semesters map[int]*models.StudentSemester
}

func (f *fakeSemesterStore) FindByID(_ context.Context, id int) (*models.StudentSemester, error) {
	return f.semesters[id], nil
}

type fakeModuleStore struct {
	modules map[int]*models.StudentModule
	grades  map[int][2]string
}

func (f *fakeModuleStore) FindByID(_ context.Context, id int) (*models.StudentModule, error) {
	return f.modules[id], nil
}

func (f *fakeModuleStore) UpdateGrade(_ context.Context, id int, marks, grade string) error {
	if f.grades == nil {
		f.grades = map[int][2]string{}
	}
	f.grades[id] = [2]string{marks, grade}
	return nil
}

type fakeCurriculum struct {
	semesterModules map[int]*models.SemesterModule
	modulesByID     map[int]*models.Module
}

func (f *fakeCurriculum) SemesterModuleByID(_ context.Context, id int) (*models.SemesterModule, error) {
	return f.semesterModules[id], nil
}

func (f *fakeCurriculum) ModuleByID(_ context.Context, id int) (*models.Module, error) {
	return f.modulesByID[id], nil
}

type fakeRequestStore struct {
	requests   map[int]*models.RegistrationRequest
	modules    map[int][]models.RequestedModule
	registered []int
}

func (f *fakeRequestStore) FindByID(_ context.Context, id int) (*models.RegistrationRequest, error) {
	return f.requests[id], nil
}

func (f *fakeRequestStore) RequestedModules(_ context.Context, requestID int) ([]models.RequestedModule, error) {
	return f.modules[requestID], nil
}

func (f *fakeRequestStore) MarkRegistered(_ context.Context, id int) error {
	f.registered = append(f.registered, id)
	return nil
}

// progressLog captures reported boundaries.
type progressLog struct {
	steps []string
}

func (p *progressLog) record(step string, current, total int) {
	p.steps = append(p.steps, step)
}
