package application

import (
	"time"

	"github.com/uptrace/bun"
)

// Application is one admissions submission. All applicant-provided fields are
// free-form strings; only name, email, phone and idNumber are required at
// submission time. The (email, id_number) pair is the dedup key and carries a
// composite unique constraint as the authoritative guard.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	Name           string `bun:"name" json:"name"`
	Email          string `bun:"email,unique:app_email_id_number" json:"email"`
	Phone          string `bun:"phone" json:"phone"`
	IDNumber       string `bun:"id_number,unique:app_email_id_number" json:"idNumber"`
	IndexNumber    string `bun:"index_number" json:"indexNumber"`
	DOB            string `bun:"dob" json:"dob"`
	Gender         string `bun:"gender" json:"gender"`
	Address        string `bun:"address" json:"address"`
	HighSchool     string `bun:"high_school" json:"highSchool"`
	Grades         string `bun:"grades" json:"grades"`
	Course         string `bun:"course" json:"course"`
	OtherCourse    string `bun:"other_course" json:"otherCourse"`
	Message        string `bun:"message" json:"message"`
	Nationality    string `bun:"nationality" json:"nationality"`
	Country        string `bun:"country" json:"country"`
	District       string `bun:"district" json:"district"`
	Sector         string `bun:"sector" json:"sector"`
	Cell           string `bun:"cell" json:"cell"`
	FatherName     string `bun:"father_name" json:"fatherName"`
	MotherName     string `bun:"mother_name" json:"motherName"`
	GuardianName   string `bun:"guardian_name" json:"guardianName"`
	Disability     string `bun:"disability" json:"disability"`
	CompletionYear string `bun:"completion_year" json:"completionYear"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// SubmittedEvent is published to NATS after an application is persisted.
type SubmittedEvent struct {
	ApplicationID int64     `json:"applicationId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Course        string    `json:"course"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// updatableColumns maps JSON field names accepted by the update endpoint to
// their columns. Unknown keys in an update body are ignored.
var updatableColumns = map[string]string{
	"name":           "name",
	"email":          "email",
	"phone":          "phone",
	"idNumber":       "id_number",
	"indexNumber":    "index_number",
	"dob":            "dob",
	"gender":         "gender",
	"address":        "address",
	"highSchool":     "high_school",
	"grades":         "grades",
	"course":         "course",
	"otherCourse":    "other_course",
	"message":        "message",
	"nationality":    "nationality",
	"country":        "country",
	"district":       "district",
	"sector":         "sector",
	"cell":           "cell",
	"fatherName":     "father_name",
	"motherName":     "mother_name",
	"guardianName":   "guardian_name",
	"disability":     "disability",
	"completionYear": "completion_year",
}
