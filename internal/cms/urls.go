package cms

import "fmt"

// URLs builds the CMS endpoint set relative to one base URL. Every
// endpoint is an HTML page; the query-string identifiers are the same
// ones the reconciler keys on.
type URLs struct {
	base string
}

// NewURLs wraps a base URL like "https://host/campus/registry".
func NewURLs(base string) URLs {
	return URLs{base: base}
}

func (u URLs) StudentView(stdNo int) string {
	return fmt.Sprintf("%s/r_studentview.php?StudentID=%d", u.base, stdNo)
}

func (u URLs) StudentEdit(stdNo int) string {
	return fmt.Sprintf("%s/r_studentedit.php?StudentID=%d", u.base, stdNo)
}

func (u URLs) PersonalView(stdNo int) string {
	return fmt.Sprintf("%s/r_stdpersonalview.php?StdPersonalID=%d", u.base, stdNo)
}

func (u URLs) EducationList(stdNo int) string {
	return fmt.Sprintf("%s/r_stdeducationlist.php?showmaster=1&StudentID=%d", u.base, stdNo)
}

func (u URLs) ProgramList(stdNo int) string {
	return fmt.Sprintf("%s/r_stdprogramlist.php?showmaster=1&StudentID=%d", u.base, stdNo)
}

func (u URLs) ProgramView(programID int) string {
	return fmt.Sprintf("%s/r_stdprogramview.php?StdProgramID=%d", u.base, programID)
}

func (u URLs) ProgramEdit(programID int) string {
	return fmt.Sprintf("%s/r_stdprogramedit.php?StdProgramID=%d", u.base, programID)
}

func (u URLs) SemesterList(programID int) string {
	return fmt.Sprintf("%s/r_stdsemesterlist.php?showmaster=1&StdProgramID=%d", u.base, programID)
}

func (u URLs) SemesterView(semesterID int) string {
	return fmt.Sprintf("%s/r_stdsemesterview.php?StdSemesterID=%d", u.base, semesterID)
}

func (u URLs) SemesterAdd(programID int) string {
	return fmt.Sprintf("%s/r_stdsemesteradd.php?StdProgramID=%d", u.base, programID)
}

func (u URLs) SemesterEdit(semesterID int) string {
	return fmt.Sprintf("%s/r_stdsemesteredit.php?StdSemesterID=%d", u.base, semesterID)
}

func (u URLs) ModuleList(semesterID int) string {
	return fmt.Sprintf("%s/r_stdmodulelist.php?showmaster=1&StdSemesterID=%d", u.base, semesterID)
}

// ModuleAdd is the add-modules form action; the CMS scopes it to the
// semester visited on the preceding ModuleList request.
func (u URLs) ModuleAdd() string {
	return fmt.Sprintf("%s/r_stdmoduleadd1.php", u.base)
}

func (u URLs) ModuleView(moduleID int) string {
	return fmt.Sprintf("%s/r_stdmoduleview.php?StdModuleID=%d", u.base, moduleID)
}

func (u URLs) ModuleEdit(moduleID int) string {
	return fmt.Sprintf("%s/r_stdmoduleedit.php?StdModuleID=%d", u.base, moduleID)
}

func (u URLs) Login() string {
	return fmt.Sprintf("%s/login.php", u.base)
}
