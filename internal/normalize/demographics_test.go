package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGender(t *testing.T) {
	assert.Equal(t, "Male", Gender("M"))
	assert.Equal(t, "Male", Gender("male"))
	assert.Equal(t, "Female", Gender(" F "))
	assert.Equal(t, "Unknown", Gender(""))
	assert.Equal(t, "Unknown", Gender("N/A"))
}

func TestMaritalStatus(t *testing.T) {
	assert.Equal(t, "Single", MaritalStatus("never married"))
	assert.Equal(t, "Widowed", MaritalStatus("Widower"))
	assert.Equal(t, "Unknown", MaritalStatus("complicated"))
}

func TestEducationLevel(t *testing.T) {
	assert.Equal(t, "High School", EducationLevel("LGCSE"))
	assert.Equal(t, "High School", EducationLevel("COSC"))
	assert.Equal(t, "Degree", EducationLevel("Bachelors"))
	assert.Equal(t, "Other", EducationLevel("night classes"))
}

func TestRelationship(t *testing.T) {
	assert.Equal(t, "Parent", Relationship("Mother"))
	assert.Equal(t, "Relative", Relationship("AUNTY"))
	assert.Equal(t, "Other", Relationship("neighbour"))
}

func TestCountry(t *testing.T) {
	assert.Equal(t, "Lesotho", Country("LSO"))
	assert.Equal(t, "South Africa", Country("RSA"))
	assert.Equal(t, "Unknown", Country(""))
	// unrecognised values pass through rather than degrade to Unknown
	assert.Equal(t, "Kenya", Country("Kenya"))
}

func TestNationality(t *testing.T) {
	assert.Equal(t, "Mosotho", Nationality("Basotho"))
	assert.Equal(t, "Unknown", Nationality(" "))
	assert.Equal(t, "Kenyan", Nationality("Kenyan"))
}
