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

const moduleAddPage = `<html><body>
<form id="fr_stdmoduleadd" action="r_stdmoduleadd1.php" method="post">
<input type="hidden" name="x_StdSemesterID" value="45678">
<input type="hidden" name="token" value="take789">
</form></body></html>`

func newModuleFixture() (*ModuleService, *fakePusher, *fakeScraper, *fakeReconciler) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.ModuleAdd(): moduleAddPage,
	}}
	pusher := &fakePusher{}
	scrape := &fakeScraper{
		moduleList: map[int][]scraper.ModuleListEntry{45678: {
			{ID: 88001, Code: "DIWA1110"},
		}},
		modules: map[int]*scraper.ModuleRecord{
			88001: {ID: 88001, Code: "DIWA1110", Grade: "C+"},
			88002: {ID: 88002, Code: "BIDC1210", Grade: "NM"},
		},
	}
	reconcile := &fakeReconciler{structureID: 44}
	curriculum := &fakeCurriculum{
		semesterModules: map[int]*models.SemesterModule{
			5002: {ID: 5002, ModuleID: 78, Credits: 10},
		},
		modulesByID: map[int]*models.Module{
			78: {ID: 78, Code: "BIDC1210", Name: "Business Information and Data Communication"},
		},
	}
	semesters := &fakeSemesterStore{semesters: map[int]*models.StudentSemester{
		45678: {ID: 45678, StudentProgramID: 31001, Term: "2024-08"},
	}}
	programs := &fakeProgramStore{programs: map[int]*models.StudentProgram{
		31001: {ID: 31001, StdNo: 901010123, StructureID: 44},
	}}
	svc := NewModuleService(pages, pusher, urls, scrape, reconcile, curriculum, semesters, programs, 1200, nil, nil)
	return svc, pusher, scrape, reconcile
}

func TestAddModulePostsCompositeAndVerifies(t *testing.T) {
	svc, pusher, scrape, reconcile := newModuleFixture()
	// the CMS lists the new module only after the add is accepted
	pusher.onPush = func() {
		scrape.moduleList[45678] = append(scrape.moduleList[45678], scraper.ModuleListEntry{ID: 88002, Code: "BIDC1210"})
	}

	module, err := svc.AddModule(context.Background(), AddModuleRequest{
		SemesterID:       45678,
		SemesterModuleID: 5002,
		ModuleStatus:     "Add",
		Credits:          10,
	})
	require.NoError(t, err)
	assert.Equal(t, 88002, module.ID)

	require.Len(t, pusher.calls, 1)
	payload := pusher.calls[0].Payload
	assert.Equal(t, "Add Modules", payload.Get("Submit"))
	assert.Empty(t, payload.Get("a_add"), "the add page submits by button, not action flag")
	assert.Equal(t, []string{"5002-Add-10-1200"}, payload["take[]"])
	assert.Equal(t, "take789", payload.Get("token"), "hidden fields ride along")

	require.Len(t, reconcile.modules, 1)
	assert.Equal(t, 45678, reconcile.modules[0].StudentSemesterID)
}

func TestAddModuleAlreadyPresent(t *testing.T) {
	svc, pusher, scrape, _ := newModuleFixture()
	scrape.moduleList[45678] = append(scrape.moduleList[45678], scraper.ModuleListEntry{ID: 88002, Code: "BIDC1210"})

	_, err := svc.AddModule(context.Background(), AddModuleRequest{
		SemesterID:       45678,
		SemesterModuleID: 5002,
		ModuleStatus:     "Add",
		Credits:          10,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, pusher.calls, "no duplicate registration is posted")
}

func TestAddModuleUnknownSemesterModule(t *testing.T) {
	svc, _, _, _ := newModuleFixture()

	_, err := svc.AddModule(context.Background(), AddModuleRequest{
		SemesterID:       45678,
		SemesterModuleID: 9999,
		ModuleStatus:     "Add",
		Credits:          10,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrReference))
}

func TestAddModuleNotListedAfterPost(t *testing.T) {
	svc, _, _, _ := newModuleFixture()

	// the list never picks up the module, so verification fails
	_, err := svc.AddModule(context.Background(), AddModuleRequest{
		SemesterID:       45678,
		SemesterModuleID: 5002,
		ModuleStatus:     "Add",
		Credits:          10,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCMSRejected))
}
