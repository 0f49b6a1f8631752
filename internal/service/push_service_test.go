package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limkokwing/registry-sync/internal/cms"
	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

const studentEditPage = `<html><body>
<form id="fr_studentedit" action="r_studentedit.php" method="post">
<input type="hidden" name="x_StudentID" value="901010123">
<input type="hidden" name="token" value="abc123">
<input type="text" name="x_Name" value="Thabo Mokoena">
<input type="text" name="x_ContactNo" value="58000000">
<select name="x_Sex"><option value="M" selected>Male</option><option value="F">Female</option></select>
<input type="checkbox" name="x_Sponsored" value="1">
</form></body></html>`

const moduleEditPage = `<html><body>
<form id="fr_stdmoduleedit" action="r_stdmoduleedit.php" method="post">
<input type="hidden" name="x_StdModuleID" value="88001">
<input type="hidden" name="x_StdSemesterID" value="45678">
<input type="text" name="x_StdModStatCode" value="Active">
<input type="text" name="x_StdModCredits" value="10">
<input type="text" name="x_AlterMark" value="">
<input type="text" name="x_AlterGrade" value="">
</form></body></html>`

func testURLs() cms.URLs { return cms.NewURLs("https://cms.example.ac.ls") }

func newPushFixture() (*PushService, *fakePusher, *fakeReconciler, *fakeScraper) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.StudentEdit(901010123): studentEditPage,
		urls.ModuleEdit(88001):      moduleEditPage,
	}}
	pusher := &fakePusher{}
	reconcile := &fakeReconciler{structureID: 44}
	scrape := &fakeScraper{
		students: map[int]*scraper.StudentRecord{901010123: {StdNo: 901010123, Name: strPtr("Thabo Mokoena")}},
		modules:  map[int]*scraper.ModuleRecord{88001: {ID: 88001, Code: "DIWA1110", Grade: "C+"}},
	}
	modules := &fakeModuleStore{modules: map[int]*models.StudentModule{
		88001: {ID: 88001, StudentSemesterID: 45678, SemesterModuleID: 5001},
	}}
	semesters := &fakeSemesterStore{semesters: map[int]*models.StudentSemester{
		45678: {ID: 45678, StudentProgramID: 31001, Term: "2024-08"},
	}}
	programs := &fakeProgramStore{programs: map[int]*models.StudentProgram{
		31001: {ID: 31001, StdNo: 901010123, StructureID: 44},
	}}
	svc := NewPushService(pages, pusher, urls, scrape, reconcile, modules, semesters, programs, nil, nil)
	return svc, pusher, reconcile, scrape
}

func TestPushStudentPreservesFormAndOverlays(t *testing.T) {
	svc, pusher, reconcile, _ := newPushFixture()

	err := svc.PushStudent(context.Background(), PushStudentRequest{
		StdNo:  901010123,
		Fields: map[string]*string{"x_ContactNo": strPtr("59999999")},
	})
	require.NoError(t, err)

	require.Len(t, pusher.calls, 1)
	payload := pusher.calls[0].Payload
	assert.Equal(t, "U", payload.Get("a_edit"))
	assert.Equal(t, "59999999", payload.Get("x_ContactNo"))
	// untouched fields round-trip unchanged
	assert.Equal(t, "901010123", payload.Get("x_StudentID"))
	assert.Equal(t, "abc123", payload.Get("token"))
	assert.Equal(t, "Thabo Mokoena", payload.Get("x_Name"))
	assert.Equal(t, "M", payload.Get("x_Sex"))
	// unchecked checkbox stays out of the submission
	_, sent := payload["x_Sponsored"]
	assert.False(t, sent)

	require.Len(t, reconcile.students, 1, "the accepted edit is re-scraped into the store")
}

func TestPushStudentRejectionSkipsLocalWrite(t *testing.T) {
	svc, pusher, reconcile, _ := newPushFixture()
	pusher.reject = map[string]bool{testURLs().StudentEdit(901010123): true}

	err := svc.PushStudent(context.Background(), PushStudentRequest{
		StdNo:  901010123,
		Fields: map[string]*string{"x_ContactNo": strPtr("59999999")},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCMSRejected))
	assert.Empty(t, reconcile.students)
}

func TestPushModuleOverlaysDiff(t *testing.T) {
	svc, pusher, reconcile, _ := newPushFixture()

	module, err := svc.PushModule(context.Background(), PushModuleRequest{
		ModuleID: 88001,
		ModuleDiff: ModuleDiff{
			Status:     strPtr("Repeat"),
			AlterMark:  strPtr("72"),
			AlterGrade: strPtr("B"),
			Credits:    intPtr(12),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 88001, module.ID)

	require.Len(t, pusher.calls, 1)
	payload := pusher.calls[0].Payload
	assert.Equal(t, "U", payload.Get("a_edit"))
	assert.Equal(t, "72", payload.Get("x_AlterMark"))
	assert.Equal(t, "B", payload.Get("x_AlterGrade"))
	assert.Equal(t, "12", payload.Get("x_StdModCredits"))
	assert.Equal(t, "Repeat", payload.Get("x_StdModStatCode"))
	assert.Equal(t, "88001", payload.Get("x_StdModuleID"))

	require.Len(t, reconcile.modules, 1)
	assert.Equal(t, 45678, reconcile.modules[0].StudentSemesterID)
}

func TestPushModuleUnknownModule(t *testing.T) {
	svc, _, _, _ := newPushFixture()

	_, err := svc.PushModule(context.Background(), PushModuleRequest{ModuleID: 404})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBulkPushModulesContinuesPastFailures(t *testing.T) {
	svc, _, _, _ := newPushFixture()
	progress := &progressLog{}

	result, err := svc.BulkPushModules(context.Background(), BulkPushModulesRequest{
		ModuleIDs:  []int{88001, 404},
		ModuleDiff: ModuleDiff{AlterMark: strPtr("72")},
	}, progress.record)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "404")
	assert.Len(t, progress.steps, 3, "initial report plus one per item")
}
