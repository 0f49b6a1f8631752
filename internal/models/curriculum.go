package models

// School is the root of the curriculum tree.
type School struct {
	ID   int    `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Program is an academic programme owned by a School.
type Program struct {
	ID       int    `db:"id" json:"id"`
	SchoolID int    `db:"school_id" json:"school_id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
}

// Structure is a versioned curriculum skeleton owned by a Program.
// Student records point into it; sync flows never modify it.
type Structure struct {
	ID        int    `db:"id" json:"id"`
	ProgramID int    `db:"program_id" json:"program_id"`
	Code      string `db:"code" json:"code"`
}

// StructureSemester is one ordered slot in a Structure. SemesterNumber
// carries the CMS spelling ("01".."10" or "F1", "F2" for foundation).
type StructureSemester struct {
	ID             int    `db:"id" json:"id"`
	StructureID    int    `db:"structure_id" json:"structure_id"`
	SemesterNumber string `db:"semester_number" json:"semester_number"`
	Name           string `db:"name" json:"name"`
}

// Module is a teachable unit referenced by SemesterModule join rows.
type Module struct {
	ID   int    `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// SemesterModule binds a Module into a StructureSemester with its type
// and credit weighting.
type SemesterModule struct {
	ID                  int    `db:"id" json:"id"`
	StructureSemesterID int    `db:"structure_semester_id" json:"structure_semester_id"`
	ModuleID            int    `db:"module_id" json:"module_id"`
	Type                string `db:"type" json:"type"`
	Credits             int    `db:"credits" json:"credits"`
}

// Term is an academic term referenced by code, e.g. "2024-08".
type Term struct {
	ID       int    `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	IsActive bool   `db:"is_active" json:"is_active"`
	Year     int    `db:"year" json:"year"`
}
