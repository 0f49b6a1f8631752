package normalize

import "strings"

// Module types as the curriculum records them.
const (
	ModuleTypeMajor    = "Major"
	ModuleTypeMinor    = "Minor"
	ModuleTypeCore     = "Core"
	ModuleTypeDelete   = "Delete"
	ModuleTypeElective = "Elective"
)

var moduleTypeAliases = map[string]string{
	"MAJOR":      ModuleTypeMajor,
	"MAJ":        ModuleTypeMajor,
	"COMPULSORY": ModuleTypeMajor,
	"MINOR":      ModuleTypeMinor,
	"MIN":        ModuleTypeMinor,
	"CORE":       ModuleTypeCore,
	"DELETE":     ModuleTypeDelete,
	"DELETED":    ModuleTypeDelete,
	"DEL":        ModuleTypeDelete,
	"ELECTIVE":   ModuleTypeElective,
	"OPTIONAL":   ModuleTypeElective,
	"OPTION":     ModuleTypeElective,
}

// ModuleType maps a raw module-type value, defaulting to Core.
func ModuleType(raw string) string {
	if v, ok := moduleTypeAliases[keyOf(raw)]; ok {
		return v
	}
	return ModuleTypeCore
}

// romanNumerals is ordered longest-first so "VIII" folds before "V".
var romanNumerals = []struct {
	roman  string
	arabic string
}{
	{"viii", "8"}, {"vii", "7"}, {"iii", "3"},
	{"ix", "9"}, {"iv", "4"}, {"vi", "6"}, {"ii", "2"},
	{"x", "10"}, {"v", "5"}, {"i", "1"},
}

// ModuleName folds a module name for fuzzy identity comparison:
// lowercase, "&" becomes "and", trailing Roman numerals I..X become
// digits, whitespace collapses.
func ModuleName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "&", " and ")

	words := strings.Fields(s)
	for i, w := range words {
		for _, rn := range romanNumerals {
			if w == rn.roman {
				words[i] = rn.arabic
				break
			}
		}
	}

	return strings.Join(words, " ")
}

// SameModuleName reports whether two module names fold to the same
// identity, used by outstanding-module comparison.
func SameModuleName(a, b string) bool {
	return ModuleName(a) == ModuleName(b)
}
