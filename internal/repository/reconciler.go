package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/normalize"
	"github.com/limkokwing/registry-sync/internal/scraper"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

// Reconciler folds scraped CMS records into the local store. Upserts are
// idempotent and keyed by CMS identifiers; curriculum references are
// resolved here, through caches primed before a fan-out.
type Reconciler struct {
	Students   *StudentRepository
	Programs   *ProgramRepository
	Semesters  *SemesterRepository
	Modules    *ModuleRepository
	Curriculum *CurriculumRepository

	caches *Caches
	logger *zap.Logger
}

// NewReconciler wires the per-entity repositories over one DB handle.
func NewReconciler(db *sqlx.DB, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		Students:   NewStudentRepository(db),
		Programs:   NewProgramRepository(db),
		Semesters:  NewSemesterRepository(db),
		Modules:    NewModuleRepository(db),
		Curriculum: NewCurriculumRepository(db),
		caches:     NewCaches(),
		logger:     logger,
	}
}

// Caches exposes the lookup caches for priming and scrape-time
// resolution.
func (rc *Reconciler) Caches() *Caches {
	return rc.caches
}

// Prime loads every sponsor before a fan-out so semester upserts do not
// each hit the store.
func (rc *Reconciler) Prime(ctx context.Context) error {
	return rc.caches.PrimeSponsors(ctx, rc.Curriculum)
}

// PrimeStructure loads the semester map for one structure, amortising
// lookups across a program's module scrapes.
func (rc *Reconciler) PrimeStructure(ctx context.Context, structureID int) error {
	return rc.caches.PrimeStructure(ctx, rc.Curriculum, structureID)
}

// ResolveStructureSemester resolves (structure, semester number) through
// the primed cache, priming the structure on first use. Returns nil when
// the number has no slot in the structure.
func (rc *Reconciler) ResolveStructureSemester(ctx context.Context, structureID int, number string) (*int, error) {
	if err := rc.PrimeStructure(ctx, structureID); err != nil {
		return nil, err
	}
	if id, ok := rc.caches.StructureSemesterID(structureID, number); ok {
		return &id, nil
	}
	return nil, nil
}

// ReconcileStudent merges the student and personal scrapes into one
// upsert, plus next-of-kin replacement.
func (rc *Reconciler) ReconcileStudent(ctx context.Context, st *scraper.StudentRecord, personal *scraper.PersonalRecord) error {
	student := &models.Student{StdNo: st.StdNo}
	if st.Name != nil {
		student.Name = *st.Name
	}
	if st.Gender != nil {
		student.Gender = *st.Gender
	}
	student.NationalID = st.NationalID
	student.DateOfBirth = st.DateOfBirth
	student.Phone1 = st.Phone1
	student.Phone2 = st.Phone2
	student.Status = st.Status

	if personal != nil {
		student.Country = personal.Country
		student.Nationality = personal.Nationality
		student.Race = personal.Race
		student.Religion = personal.Religion
		student.MaritalStatus = personal.MaritalStatus
	}

	if err := rc.Students.Upsert(ctx, student); err != nil {
		return err
	}

	if personal != nil && len(personal.NextOfKin) > 0 {
		kin := make([]models.NextOfKin, 0, len(personal.NextOfKin))
		for _, k := range personal.NextOfKin {
			kin = append(kin, models.NextOfKin{
				StdNo:        st.StdNo,
				Name:         k.Name,
				Relationship: k.Relationship,
				Phone:        k.Phone,
			})
		}
		if err := rc.Students.ReplaceNextOfKin(ctx, st.StdNo, kin); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileEducation upserts each scraped education row.
func (rc *Reconciler) ReconcileEducation(ctx context.Context, stdNo int, rows []scraper.EducationRow) error {
	for _, row := range rows {
		rec := &models.EducationRecord{
			StdNo:     stdNo,
			Level:     row.Level,
			School:    row.School,
			Programme: row.Programme,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
		}
		if err := rc.Students.UpsertEducation(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileProgram resolves the scraped structure code and upserts the
// program. An unresolved code refuses a create but lets an update of an
// existing row proceed with its stored structure.
func (rc *Reconciler) ReconcileProgram(ctx context.Context, rec *scraper.ProgramRecord) (*models.StudentProgram, error) {
	var structureID int
	if rec.StructureCode != nil {
		structure, err := rc.Curriculum.StructureByCode(ctx, *rec.StructureCode)
		if err != nil {
			return nil, err
		}
		if structure != nil {
			structureID = structure.ID
		}
	}

	existing, err := rc.Programs.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	if structureID == 0 {
		code := ""
		if rec.StructureCode != nil {
			code = *rec.StructureCode
		}
		if existing == nil {
			rc.logger.Warn("unknown structure code, refusing program create",
				zap.Int("program_id", rec.ID), zap.String("structure_code", code))
			return nil, appErrors.Wrap(nil, appErrors.ErrReference.Code, appErrors.ErrReference.Status,
				"structure code "+code+" not found")
		}
		structureID = existing.StructureID
		rc.logger.Warn("unknown structure code, keeping stored structure",
			zap.Int("program_id", rec.ID), zap.String("structure_code", code))
	}

	program := &models.StudentProgram{
		ID:             rec.ID,
		StdNo:          rec.StdNo,
		StructureID:    structureID,
		IntakeDate:     rec.IntakeDate,
		RegDate:        rec.RegDate,
		StartTerm:      rec.StartTerm,
		Stream:         rec.Stream,
		Status:         string(models.ProgramStatusActive),
		AssistProvider: rec.AssistProvider,
		GraduationDate: rec.GraduationDate,
	}
	if rec.Status != nil {
		program.Status = *rec.Status
	}

	if err := rc.Programs.Upsert(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// ReconcileSemester upserts a scraped semester under its program,
// resolving the structure semester (with the foundation remap) and the
// sponsor. Unresolved references warn and leave the column null.
func (rc *Reconciler) ReconcileSemester(ctx context.Context, programID, structureID int, rec *scraper.SemesterRecord) (*models.StudentSemester, error) {
	semester := &models.StudentSemester{
		ID:               rec.ID,
		StudentProgramID: programID,
		CAFDate:          rec.CAFDate,
	}
	if rec.Term != nil {
		semester.Term = *rec.Term
	}
	if rec.Status != nil {
		semester.Status = *rec.Status
	}

	if rec.SemesterNumber != nil {
		if err := rc.PrimeStructure(ctx, structureID); err != nil {
			return nil, err
		}
		if id, ok := rc.caches.StructureSemesterID(structureID, *rec.SemesterNumber); ok {
			semester.StructureSemesterID = &id
		} else {
			rc.logger.Warn("structure semester not resolved",
				zap.Int("structure_id", structureID), zap.String("semester_number", *rec.SemesterNumber))
		}
	}

	if rec.SponsorCode != nil {
		if id, ok := rc.caches.SponsorID(*rec.SponsorCode); ok {
			semester.SponsorID = &id
		} else {
			rc.logger.Warn("sponsor code not resolved", zap.String("sponsor_code", *rec.SponsorCode))
		}
	}

	if err := rc.Semesters.Upsert(ctx, semester); err != nil {
		return nil, err
	}
	return semester, nil
}

// ReconcileModule upserts a scraped module under its semester, resolving
// the semester-module by (module code, structure). A miss warns and
// persists the row with a zero reference rather than dropping data.
func (rc *Reconciler) ReconcileModule(ctx context.Context, semesterID, structureID int, rec *scraper.ModuleRecord) (*models.StudentModule, error) {
	module := &models.StudentModule{
		ID:                rec.ID,
		StudentSemesterID: semesterID,
		Credits:           rec.Credits,
		Marks:             rec.Marks,
		Grade:             normalize.Grade(rec.Grade),
	}
	if rec.Status != nil {
		module.Status = *rec.Status
	}

	sm, err := rc.Curriculum.SemesterModuleByCode(ctx, rec.Code, structureID)
	if err != nil {
		return nil, err
	}
	if sm != nil {
		module.SemesterModuleID = sm.ID
	} else {
		rc.logger.Warn("semester module not resolved",
			zap.String("module_code", rec.Code), zap.Int("structure_id", structureID))
	}

	if err := rc.Modules.Upsert(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}
