package database

import "database/sql"

// DeliveryModel is one option of the delivery model category group.
type DeliveryModel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// IncentiveType is one option of the incentive type category group.
type IncentiveType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AnswerType describes the scoring range of a question's answers.
type AnswerType struct {
	ID           int64  `json:"id"`
	ShortName    string `json:"short_name"`
	Description  string `json:"description"`
	MostPositive int    `json:"most_positive"`
	MostNegative int    `json:"most_negative"`
}

// Factor routes a question's score to either a delivery model or an incentive
// type; the schema enforces that exactly one of the two references is set.
type Factor struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	DeliveryModelID sql.NullInt64 `json:"-"`
	IncentiveTypeID sql.NullInt64 `json:"-"`
}

// Survey is a named collection of questions.
type Survey struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Question is one survey question row.
type Question struct {
	ID           int64  `json:"id"`
	Text         string `json:"question"`
	Weight       int    `json:"weight"`
	FactorID     int64  `json:"factor_id,omitempty"`
	AnswerTypeID int64  `json:"answer_type_id"`
}

// SurveyQuestion is a question joined with the answer type needed to render
// its input control.
type SurveyQuestion struct {
	Question   Question   `json:"question"`
	AnswerType AnswerType `json:"answer_type"`
}

// Admin is an account allowed into the configuration app.
type Admin struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
