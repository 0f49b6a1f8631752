package models

// ProgramStatus is the enrolment-level program status taxonomy.
type ProgramStatus string

const (
	ProgramStatusActive    ProgramStatus = "Active"
	ProgramStatusChanged   ProgramStatus = "Changed"
	ProgramStatusCompleted ProgramStatus = "Completed"
	ProgramStatusDeleted   ProgramStatus = "Deleted"
	ProgramStatusInactive  ProgramStatus = "Inactive"
)

// StudentProgram mirrors one CMS student-program record. ID equals the
// CMS StdProgramID.
type StudentProgram struct {
	ID             int     `db:"id" json:"id"`
	StdNo          int     `db:"std_no" json:"std_no"`
	StructureID    int     `db:"structure_id" json:"structure_id"`
	IntakeDate     *string `db:"intake_date" json:"intake_date,omitempty"`
	RegDate        *string `db:"reg_date" json:"reg_date,omitempty"`
	StartTerm      *string `db:"start_term" json:"start_term,omitempty"`
	Stream         *string `db:"stream" json:"stream,omitempty"`
	Status         string  `db:"status" json:"status"`
	AssistProvider *string `db:"assist_provider" json:"assist_provider,omitempty"`
	GraduationDate *string `db:"graduation_date" json:"graduation_date,omitempty"`
}

// StudentSemester mirrors one CMS student-semester record. ID equals the
// CMS StdSemesterID; (StudentProgramID, Term) is unique.
type StudentSemester struct {
	ID                  int     `db:"id" json:"id"`
	StudentProgramID    int     `db:"student_program_id" json:"student_program_id"`
	Term                string  `db:"term" json:"term"`
	StructureSemesterID *int    `db:"structure_semester_id" json:"structure_semester_id,omitempty"`
	Status              string  `db:"status" json:"status"`
	CAFDate             *string `db:"caf_date" json:"caf_date,omitempty"`
	SponsorID           *int    `db:"sponsor_id" json:"sponsor_id,omitempty"`
}

// StudentModule mirrors one CMS student-module record. ID equals the CMS
// StdModuleID. SemesterModuleID is zero when the curriculum lookup missed.
type StudentModule struct {
	ID                int    `db:"id" json:"id"`
	StudentSemesterID int    `db:"student_semester_id" json:"student_semester_id"`
	SemesterModuleID  int    `db:"semester_module_id" json:"semester_module_id"`
	Status            string `db:"status" json:"status"`
	Credits           int    `db:"credits" json:"credits"`
	Marks             string `db:"marks" json:"marks"`
	Grade             string `db:"grade" json:"grade"`
}

// Sponsor is a funding body referenced by code from semester records.
type Sponsor struct {
	ID   int    `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}
