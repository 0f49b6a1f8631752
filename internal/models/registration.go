package models

// RegistrationRequestStatus tracks the approval workflow state the
// enrollment orchestrator consumes. Approval itself happens elsewhere.
type RegistrationRequestStatus string

const (
	RequestStatusPending    RegistrationRequestStatus = "pending"
	RequestStatusApproved   RegistrationRequestStatus = "approved"
	RequestStatusRegistered RegistrationRequestStatus = "registered"
	RequestStatusRejected   RegistrationRequestStatus = "rejected"
)

// RegistrationRequest is a student's request to register modules for a
// term, already cleared by the approval workflow.
type RegistrationRequest struct {
	ID              int                       `db:"id" json:"id"`
	StdNo           int                       `db:"std_no" json:"std_no"`
	TermCode        string                    `db:"term_code" json:"term_code"`
	SemesterStatus  string                    `db:"semester_status" json:"semester_status"`
	SponsorID       *int                      `db:"sponsor_id" json:"sponsor_id,omitempty"`
	Status          RegistrationRequestStatus `db:"status" json:"status"`
	SemesterNumber  *string                   `db:"semester_number" json:"semester_number,omitempty"`
}

// RequestedModule is one module inside a registration request.
type RequestedModule struct {
	ID               int    `db:"id" json:"id"`
	RequestID        int    `db:"request_id" json:"request_id"`
	SemesterModuleID int    `db:"semester_module_id" json:"semester_module_id"`
	ModuleStatus     string `db:"module_status" json:"module_status"`
}

// Clearance is one department's sign-off on a registration request.
type Clearance struct {
	ID         int    `db:"id" json:"id"`
	RequestID  int    `db:"request_id" json:"request_id"`
	Department string `db:"department" json:"department"`
	Status     string `db:"status" json:"status"`
}
