package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

const semesterAddPage = `<html><body>
<form id="fr_stdsemesteradd" action="r_stdsemesteradd.php" method="post">
<input type="hidden" name="x_StdProgramID" value="">
<input type="hidden" name="token" value="add456">
<select name="x_SemesterStatus"><option value="Active">Active</option><option value="Repeat">Repeat</option></select>
</form></body></html>`

const semesterEditPage = `<html><body>
<form id="fr_stdsemesteredit" action="r_stdsemesteredit.php" method="post">
<input type="hidden" name="x_StdSemesterID" value="45678">
<input type="text" name="x_TermCode" value="2024-08">
<input type="text" name="x_StdSemCAFDate" value="2024-08-01">
<select name="x_SemesterStatus"><option value="Active" selected>Active</option></select>
</form></body></html>`

func newSemesterFixture() (*SemesterService, *fakePusher, *fakeScraper, *fakeReconciler) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.SemesterAdd(31001):  semesterAddPage,
		urls.SemesterEdit(45678): semesterEditPage,
	}}
	pusher := &fakePusher{}
	scrape := &fakeScraper{
		semesters: map[int]*scraper.SemesterRecord{
			45678: {ID: 45678, Term: strPtr("2024-08"), SemesterNumber: strPtr("01")},
			45901: {ID: 45901, Term: strPtr("2025-02"), SemesterNumber: strPtr("02")},
		},
		semesterList: map[int][]scraper.SemesterListEntry{31001: {
			{ID: 45678, Term: "2024-08", Status: "Active"},
			{ID: 45901, Term: "2025-02", Status: "Active"},
		}},
	}
	reconcile := &fakeReconciler{structureID: 44, structSems: map[string]int{"01": 100, "02": 101}}
	programs := &fakeProgramStore{programs: map[int]*models.StudentProgram{
		31001: {ID: 31001, StdNo: 901010123, StructureID: 44},
	}}
	semesters := &fakeSemesterStore{semesters: map[int]*models.StudentSemester{
		45678: {ID: 45678, StudentProgramID: 31001, Term: "2024-08"},
	}}
	svc := NewSemesterService(pages, pusher, urls, scrape, reconcile, programs, semesters, "Lesotho", nil, nil)
	return svc, pusher, scrape, reconcile
}

func TestCreateSemesterSubmitsAndRelocatesByTerm(t *testing.T) {
	svc, pusher, _, reconcile := newSemesterFixture()

	semester, err := svc.CreateSemester(context.Background(), CreateSemesterRequest{
		ProgramID:      31001,
		Term:           "2025-02",
		SemesterNumber: "02",
		Status:         "Active",
		SponsorID:      intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, 45901, semester.ID, "id comes from the post-create list scrape")

	require.Len(t, pusher.calls, 1)
	payload := pusher.calls[0].Payload
	assert.Equal(t, "A", payload.Get("a_add"))
	assert.Equal(t, "31001", payload.Get("x_StdProgramID"))
	assert.Equal(t, "44", payload.Get("x_StructureID"))
	assert.Equal(t, "2025-02", payload.Get("x_TermCode"))
	assert.Equal(t, "101", payload.Get("x_SemesterID"))
	assert.Equal(t, "Lesotho", payload.Get("x_CampusCode"))
	assert.Equal(t, "4", payload.Get("x_SponsorID"))
	assert.Equal(t, "add456", payload.Get("token"))

	require.Len(t, reconcile.semesters, 1)
	assert.Equal(t, "2025-02", reconcile.semesters[0].Term)
}

func TestCreateSemesterUnknownSemesterNumber(t *testing.T) {
	svc, pusher, _, _ := newSemesterFixture()

	_, err := svc.CreateSemester(context.Background(), CreateSemesterRequest{
		ProgramID:      31001,
		Term:           "2025-02",
		SemesterNumber: "09",
		Status:         "Active",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrReference))
	assert.Empty(t, pusher.calls, "nothing is posted without a structure semester")
}

func TestCreateSemesterNotListedAfterAccept(t *testing.T) {
	svc, _, scrape, _ := newSemesterFixture()
	scrape.semesterList[31001] = scrape.semesterList[31001][:1]

	_, err := svc.CreateSemester(context.Background(), CreateSemesterRequest{
		ProgramID:      31001,
		Term:           "2025-02",
		SemesterNumber: "02",
		Status:         "Active",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCMSRejected))
}

func TestEditSemesterTermChangePostsTwice(t *testing.T) {
	svc, pusher, _, _ := newSemesterFixture()

	_, err := svc.EditSemester(context.Background(), EditSemesterRequest{
		SemesterID: 45678,
		Term:       strPtr("2025-02"),
		Status:     strPtr("Repeat"),
	})
	require.NoError(t, err)

	require.Len(t, pusher.calls, 2, "the edit form drops the term on the first submit")
	first := pusher.calls[0].Payload
	second := pusher.calls[1].Payload
	assert.Equal(t, "", first.Get("x_TermCode"))
	assert.Equal(t, "2025-02", second.Get("x_TermCode"))
	// the rest of the payload is identical across passes
	assert.Equal(t, "U", first.Get("a_edit"))
	assert.Equal(t, "Repeat", first.Get("x_SemesterStatus"))
	assert.Equal(t, "Repeat", second.Get("x_SemesterStatus"))
	assert.Equal(t, "45678", second.Get("x_StdSemesterID"))
	assert.Equal(t, "2024-08-01", second.Get("x_StdSemCAFDate"), "untouched fields round-trip")
}

func TestEditSemesterStatusOnlyStillPostsTwice(t *testing.T) {
	svc, pusher, _, _ := newSemesterFixture()

	_, err := svc.EditSemester(context.Background(), EditSemesterRequest{
		SemesterID: 45678,
		Status:     strPtr("Repeat"),
	})
	require.NoError(t, err)

	// the CMS blanks the term on the first submit even when the edit
	// never touches it, so the preserved term must ride the second pass
	require.Len(t, pusher.calls, 2)
	assert.Equal(t, "", pusher.calls[0].Payload.Get("x_TermCode"))
	assert.Equal(t, "2024-08", pusher.calls[1].Payload.Get("x_TermCode"))
	assert.Equal(t, "Repeat", pusher.calls[1].Payload.Get("x_SemesterStatus"))
}
