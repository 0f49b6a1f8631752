// Package service holds the sync orchestrators. Each service depends on
// consumer-side interfaces over the scrapers, the form pusher and the
// local store, reports coarse progress through a callback and aggregates
// per-item outcomes for batch flows.
package service

import "fmt"

// Progress receives (step, current, total) at coarse workflow
// boundaries. A nil Progress is valid and reports nowhere.
type Progress func(step string, current, total int)

func (p Progress) report(step string, current, total int) {
	if p != nil {
		p(step, current, total)
	}
}

// BatchResult aggregates per-item outcomes of a bulk operation. A failed
// item never aborts its siblings.
type BatchResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func (b *BatchResult) fail(id int, err error) {
	b.Failed++
	b.Errors = append(b.Errors, fmt.Sprintf("%d: %v", id, err))
}

// CMS form selectors. Every edit page carries exactly one named form;
// the add pages follow the same naming scheme.
const (
	studentEditForm  = "form#fr_studentedit"
	programEditForm  = "form#fr_stdprogramedit"
	semesterAddForm  = "form#fr_stdsemesteradd"
	semesterEditForm = "form#fr_stdsemesteredit"
	moduleAddForm    = "form#fr_stdmoduleadd"
	moduleEditForm   = "form#fr_stdmoduleedit"
)
