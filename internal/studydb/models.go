package studydb

// Study is one vignette study with its presentation template.
type Study struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	VignetteTemplate string `json:"vignette_template,omitempty"`
}

// User is a study participant, identified by a generated uuid.
type User struct {
	UUID  string `json:"uuid"`
	Email string `json:"email,omitempty"`
}

// AnswerType describes the scoring range of a study question's answers.
type AnswerType struct {
	ID           int64  `json:"id"`
	ShortName    string `json:"short_name"`
	Description  string `json:"description"`
	MostPositive int    `json:"most_positive"`
	MostNegative int    `json:"most_negative"`
}

// Question is one study question row.
type Question struct {
	ID           int64  `json:"id"`
	Text         string `json:"question"`
	AnswerTypeID int64  `json:"answer_type_id"`
}

// QuestionAnswer is a participant's answer to one question about one
// vignette, keyed by the vignette's canonical id.
type QuestionAnswer struct {
	QuestionID int64  `json:"question_id"`
	UserUUID   string `json:"user_uuid"`
	VignetteID string `json:"vignette_id"`
	Answer     string `json:"answer"`
}

// Demographics holds the optional demographic data of a participant.
type Demographics struct {
	UserUUID         string `json:"-"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	Education        string `json:"education"`
	ZipCode          string `json:"zip_code"`
	Country          string `json:"country"`
	EmploymentStatus string `json:"employment_status"`
	AvgCurrentIncome string `json:"avg_current_income"`
}
