package models

// Assessment is one graded component of a module in a term, e.g. an exam
// weighted 60% out of 100 marks.
type Assessment struct {
	ID         int     `db:"id" json:"id"`
	ModuleID   int     `db:"module_id" json:"module_id"`
	TermCode   string  `db:"term_code" json:"term_code"`
	Name       string  `db:"name" json:"name"`
	TotalMarks float64 `db:"total_marks" json:"total_marks"`
	Weight     float64 `db:"weight" json:"weight"`
}

// AssessmentMark is one student's mark for an assessment.
type AssessmentMark struct {
	ID           int     `db:"id" json:"id"`
	AssessmentID int     `db:"assessment_id" json:"assessment_id"`
	StdNo        int     `db:"std_no" json:"std_no"`
	Marks        float64 `db:"marks" json:"marks"`
}
