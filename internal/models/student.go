package models

// Student mirrors one CMS student record. The primary key is the CMS
// student number, so upserts address rows by the remote identifier.
type Student struct {
	StdNo         int     `db:"std_no" json:"std_no"`
	Name          string  `db:"name" json:"name"`
	NationalID    *string `db:"national_id" json:"national_id,omitempty"`
	Gender        string  `db:"gender" json:"gender"`
	DateOfBirth   *string `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone1        *string `db:"phone1" json:"phone1,omitempty"`
	Phone2        *string `db:"phone2" json:"phone2,omitempty"`
	Country       *string `db:"country" json:"country,omitempty"`
	Nationality   *string `db:"nationality" json:"nationality,omitempty"`
	Race          *string `db:"race" json:"race,omitempty"`
	Religion      *string `db:"religion" json:"religion,omitempty"`
	MaritalStatus *string `db:"marital_status" json:"marital_status,omitempty"`
	Status        *string `db:"status" json:"status,omitempty"`
}

// NextOfKin is one emergency contact scraped from the personal page.
type NextOfKin struct {
	ID           int    `db:"id" json:"id"`
	StdNo        int    `db:"std_no" json:"std_no"`
	Name         string `db:"name" json:"name"`
	Relationship string `db:"relationship" json:"relationship"`
	Phone        string `db:"phone" json:"phone"`
}

// EducationRecord is one prior-education row for a student.
type EducationRecord struct {
	ID        int     `db:"id" json:"id"`
	StdNo     int     `db:"std_no" json:"std_no"`
	Level     string  `db:"level" json:"level"`
	School    string  `db:"school" json:"school"`
	Programme *string `db:"programme" json:"programme,omitempty"`
	StartDate *string `db:"start_date" json:"start_date,omitempty"`
	EndDate   *string `db:"end_date" json:"end_date,omitempty"`
}
