package normalize

import (
	"strconv"
	"strings"
)

// Canonical grade symbols. Everything persisted locally passes through
// Grade first, so these are the only values the store ever sees.
const (
	GradeAPlus  = "A+"
	GradeA      = "A"
	GradeAMinus = "A-"
	GradeBPlus  = "B+"
	GradeB      = "B"
	GradeBMinus = "B-"
	GradeCPlus  = "C+"
	GradeC      = "C"
	GradeCMinus = "C-"
	GradeF      = "F"
	GradePP     = "PP"
	GradePC     = "PC"
	GradePX     = "PX"
	GradeAP     = "AP"
	GradeX      = "X"
	GradeDEF    = "DEF"
	GradeGNS    = "GNS"
	GradeANN    = "ANN"
	GradeFIN    = "FIN"
	GradeFX     = "FX"
	GradeDNC    = "DNC"
	GradeDNA    = "DNA"
	GradeDNS    = "DNS"
	GradeEXP    = "EXP"
	GradeNM     = "NM"
)

var canonicalGrades = map[string]struct{}{
	GradeAPlus: {}, GradeA: {}, GradeAMinus: {},
	GradeBPlus: {}, GradeB: {}, GradeBMinus: {},
	GradeCPlus: {}, GradeC: {}, GradeCMinus: {},
	GradeF: {}, GradePP: {}, GradePC: {}, GradePX: {}, GradeAP: {},
	GradeX: {}, GradeDEF: {}, GradeGNS: {}, GradeANN: {}, GradeFIN: {},
	GradeFX: {}, GradeDNC: {}, GradeDNA: {}, GradeDNS: {}, GradeEXP: {},
	GradeNM: {},
}

// gradeAliases folds the textual variants the CMS has been observed to
// emit. Keys are upper-cased and space-collapsed before lookup.
var gradeAliases = map[string]string{
	"PASS":                GradePP,
	"PASSED":              GradePP,
	"PROVISIONAL PASS":    GradePP,
	"PASS CONCEDED":       GradePC,
	"CONCEDED PASS":       GradePC,
	"PASS SUPPLEMENTARY":  GradePX,
	"SUPPLEMENTARY PASS":  GradePX,
	"AEGROTAT PASS":       GradeAP,
	"AEGROTAT":            GradeAP,
	"FAIL":                GradeF,
	"FAILED":              GradeF,
	"FAIL SUPPLEMENTARY":  GradeFX,
	"SUPPLEMENTARY":       GradeFX,
	"SUP":                 GradeFX,
	"W":                   GradeX,
	"WD":                  GradeX,
	"WITHDRAW":            GradeX,
	"WITHDRAWN":           GradeX,
	"CANCELLED":           GradeX,
	"DFR":                 GradeDEF,
	"DEFER":               GradeDEF,
	"DEFERRED":            GradeDEF,
	"DEFERRED EXAM":       GradeDEF,
	"GRADE NOT SUBMITTED": GradeGNS,
	"NOT SUBMITTED":       GradeGNS,
	"ANNULLED":            GradeANN,
	"ANUL":                GradeANN,
	"FINAL":               GradeFIN,
	"INCOMPLETE":          GradeDNC,
	"DID NOT COMPLETE":    GradeDNC,
	"DID NOT ATTEND":      GradeDNA,
	"ABSENT":              GradeDNA,
	"DID NOT SIT":         GradeDNS,
	"EXEMPTED":            GradeEXP,
	"EXEMPT":              GradeEXP,
	"EXEMPTION":           GradeEXP,
	"NO MARK":             GradeNM,
	"NO MARKS":            GradeNM,
	"NOT MARKED":          GradeNM,
	"-":                   GradeNM,
	"":                    GradeNM,
}

// Grade maps a raw CMS grade value into the canonical taxonomy.
// Canonical symbols are fixed points; numeric percentages convert via
// the band table; anything unrecognised becomes NM.
func Grade(raw string) string {
	cleaned := collapseSpaces(strings.ToUpper(strings.TrimSpace(raw)))

	if _, ok := canonicalGrades[cleaned]; ok {
		return cleaned
	}
	if alias, ok := gradeAliases[cleaned]; ok {
		return alias
	}

	cleaned = strings.TrimSuffix(cleaned, "%")
	if marks, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return GradeFromMarks(marks)
	}

	return GradeNM
}

// GradeFromMarks converts a numeric mark into a letter via the fixed
// band table.
func GradeFromMarks(marks float64) string {
	switch {
	case marks >= 90:
		return GradeAPlus
	case marks >= 85:
		return GradeA
	case marks >= 80:
		return GradeAMinus
	case marks >= 75:
		return GradeBPlus
	case marks >= 70:
		return GradeB
	case marks >= 65:
		return GradeBMinus
	case marks >= 60:
		return GradeCPlus
	case marks >= 55:
		return GradeC
	case marks >= 50:
		return GradeCMinus
	case marks >= 45:
		return GradePP
	default:
		return GradeF
	}
}

// IsCanonicalGrade reports whether g is in the canonical taxonomy.
func IsCanonicalGrade(g string) bool {
	_, ok := canonicalGrades[g]
	return ok
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
