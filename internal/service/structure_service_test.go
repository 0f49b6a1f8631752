package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const programEditPage = `<html><body>
<form id="fr_stdprogramedit" action="r_stdprogramedit.php" method="post">
<input type="hidden" name="x_StdProgramID" value="31001">
<input type="hidden" name="x_StructureID" value="44">
<input type="text" name="x_IntakeDate" value="2023-08-01">
<input type="text" name="x_SponsorName" value="NMDS">
<input type="text" name="x_GownCollected" value="No">
<select name="x_ProgramStatus"><option value="Active" selected>Active</option></select>
</form></body></html>`

func TestBulkChangeStructureOverridesOnlyStructure(t *testing.T) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.ProgramEdit(31001): programEditPage,
	}}
	pusher := &fakePusher{}
	programs := &fakeProgramStore{}
	svc := NewStructureService(pages, pusher, urls, programs, nil, nil)
	progress := &progressLog{}

	result, err := svc.BulkChangeStructure(context.Background(), BulkChangeStructureRequest{
		ProgramIDs:  []int{31001},
		StructureID: 51,
	}, progress.record)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Zero(t, result.Failed)

	require.Len(t, pusher.calls, 1)
	payload := pusher.calls[0].Payload
	assert.Equal(t, "51", payload.Get("x_StructureID"))
	assert.Equal(t, "U", payload.Get("a_edit"))
	// the peripheral fields go back exactly as fetched
	assert.Equal(t, "2023-08-01", payload.Get("x_IntakeDate"))
	assert.Equal(t, "NMDS", payload.Get("x_SponsorName"))
	assert.Equal(t, "No", payload.Get("x_GownCollected"))
	assert.Equal(t, "Active", payload.Get("x_ProgramStatus"))

	assert.Equal(t, map[int]int{31001: 51}, programs.updated)
}

func TestBulkChangeStructurePartialFailure(t *testing.T) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.ProgramEdit(31001): programEditPage,
		// 29500 has no edit page, so its fetch fails
	}}
	pusher := &fakePusher{}
	programs := &fakeProgramStore{}
	svc := NewStructureService(pages, pusher, urls, programs, nil, nil)

	result, err := svc.BulkChangeStructure(context.Background(), BulkChangeStructureRequest{
		ProgramIDs:  []int{29500, 31001},
		StructureID: 51,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "29500")
	assert.Equal(t, map[int]int{31001: 51}, programs.updated, "only accepted changes land locally")
}

func TestBulkChangeStructureCMSRejectionSkipsLocalUpdate(t *testing.T) {
	urls := testURLs()
	pages := &fakePages{pages: map[string]string{
		urls.ProgramEdit(31001): programEditPage,
	}}
	pusher := &fakePusher{reject: map[string]bool{urls.ProgramEdit(31001): true}}
	programs := &fakeProgramStore{}
	svc := NewStructureService(pages, pusher, urls, programs, nil, nil)

	result, err := svc.BulkChangeStructure(context.Background(), BulkChangeStructureRequest{
		ProgramIDs:  []int{31001},
		StructureID: 51,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, programs.updated)
}
