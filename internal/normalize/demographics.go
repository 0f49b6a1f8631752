package normalize

import "strings"

// The CMS free-text fields carry years of inconsistent data entry, so
// the alias maps are forgiving and an unmapped value never blocks an
// upsert.

var genderAliases = map[string]string{
	"M": "Male", "MALE": "Male", "MAN": "Male",
	"F": "Female", "FEMALE": "Female", "WOMAN": "Female",
}

// Gender maps a raw value into {Male, Female, Unknown}.
func Gender(raw string) string {
	if v, ok := genderAliases[keyOf(raw)]; ok {
		return v
	}
	return "Unknown"
}

var maritalAliases = map[string]string{
	"SINGLE": "Single", "NEVER MARRIED": "Single",
	"MARRIED":  "Married",
	"DIVORCED": "Divorced", "SEPARATED": "Divorced",
	"WIDOWED": "Widowed", "WIDOW": "Widowed", "WIDOWER": "Widowed",
}

// MaritalStatus maps a raw value into the marital taxonomy, defaulting
// to Unknown.
func MaritalStatus(raw string) string {
	if v, ok := maritalAliases[keyOf(raw)]; ok {
		return v
	}
	return "Unknown"
}

var educationLevelAliases = map[string]string{
	"PRIMARY":     "Primary",
	"JC":          "Junior Certificate",
	"JUNIOR":      "Junior Certificate",
	"LGCSE":       "High School",
	"COSC":        "High School",
	"HIGH SCHOOL": "High School",
	"SECONDARY":   "High School",
	"CERTIFICATE": "Certificate",
	"DIPLOMA":     "Diploma",
	"ASSOCIATE":   "Associate Degree",
	"DEGREE":      "Degree",
	"BACHELOR":    "Degree",
	"BACHELORS":   "Degree",
	"HONOURS":     "Honours",
	"HONORS":      "Honours",
	"MASTERS":     "Masters",
	"MASTER":      "Masters",
	"PHD":         "Doctorate",
	"DOCTORATE":   "Doctorate",
}

// EducationLevel maps a raw value into the education-level taxonomy,
// defaulting to Other.
func EducationLevel(raw string) string {
	if v, ok := educationLevelAliases[keyOf(raw)]; ok {
		return v
	}
	return "Other"
}

var relationshipAliases = map[string]string{
	"MOTHER": "Parent", "FATHER": "Parent", "PARENT": "Parent",
	"GUARDIAN": "Guardian",
	"BROTHER":  "Sibling", "SISTER": "Sibling", "SIBLING": "Sibling",
	"HUSBAND": "Spouse", "WIFE": "Spouse", "SPOUSE": "Spouse",
	"UNCLE": "Relative", "AUNT": "Relative", "AUNTY": "Relative",
	"GRANDMOTHER": "Relative", "GRANDFATHER": "Relative", "COUSIN": "Relative",
	"SON": "Child", "DAUGHTER": "Child", "CHILD": "Child",
	"FRIEND": "Friend",
}

// Relationship maps a next-of-kin relationship into its taxonomy,
// defaulting to Other.
func Relationship(raw string) string {
	if v, ok := relationshipAliases[keyOf(raw)]; ok {
		return v
	}
	return "Other"
}

var countryAliases = map[string]string{
	"LESOTHO": "Lesotho", "LS": "Lesotho", "LSO": "Lesotho",
	"SOUTH AFRICA": "South Africa", "RSA": "South Africa", "SA": "South Africa", "ZA": "South Africa",
	"BOTSWANA": "Botswana", "BW": "Botswana",
	"ZIMBABWE": "Zimbabwe", "ZW": "Zimbabwe",
	"ESWATINI": "Eswatini", "SWAZILAND": "Eswatini",
	"MOZAMBIQUE": "Mozambique", "MZ": "Mozambique",
}

// Country maps a raw country value, passing through unrecognised
// non-empty values title-cased as entered.
func Country(raw string) string {
	key := keyOf(raw)
	if key == "" {
		return "Unknown"
	}
	if v, ok := countryAliases[key]; ok {
		return v
	}
	return strings.TrimSpace(raw)
}

var nationalityAliases = map[string]string{
	"MOSOTHO": "Mosotho", "BASOTHO": "Mosotho", "LESOTHO": "Mosotho", "SESOTHO": "Mosotho",
	"SOUTH AFRICAN": "South African", "RSA": "South African",
	"MOTSWANA": "Motswana", "BATSWANA": "Motswana", "BOTSWANA": "Motswana",
	"ZIMBABWEAN": "Zimbabwean", "ZIMBABWE": "Zimbabwean",
	"SWAZI": "Swazi", "ESWATINI": "Swazi",
}

// Nationality maps a raw nationality value, passing through
// unrecognised non-empty values as entered.
func Nationality(raw string) string {
	key := keyOf(raw)
	if key == "" {
		return "Unknown"
	}
	if v, ok := nationalityAliases[key]; ok {
		return v
	}
	return strings.TrimSpace(raw)
}

func keyOf(raw string) string {
	return collapseSpaces(strings.ToUpper(strings.TrimSpace(raw)))
}
