package studydb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles study schema database operations. It implements
// vignette.Store for the generator.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateStudy inserts a study with its vignette template.
func (r *Repository) CreateStudy(ctx context.Context, name, description, template string) (*Study, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO study (name, description, vignette_template) VALUES (?, ?, ?)`,
		name, description, template)
	if err != nil {
		return nil, fmt.Errorf("failed to create study: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Study{ID: id, Name: name, Description: description, VignetteTemplate: template}, nil
}

// GetStudy returns one study, or nil when it does not exist.
func (r *Repository) GetStudy(ctx context.Context, studyID int64) (*Study, error) {
	var s Study
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(vignette_template, '')
		 FROM study WHERE id = ?`, studyID).
		Scan(&s.ID, &s.Name, &s.Description, &s.VignetteTemplate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query study: %w", err)
	}
	return &s, nil
}

// GetVignetteTemplate returns the template string of a study, or "" when the
// study does not exist or carries no template.
func (r *Repository) GetVignetteTemplate(ctx context.Context, studyID int64) (string, error) {
	var template sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT vignette_template FROM study WHERE id = ?`, studyID).Scan(&template)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query vignette template: %w", err)
	}
	return template.String, nil
}

// AddVignetteText records the text fragment for one level of one factor.
func (r *Repository) AddVignetteText(ctx context.Context, factor, level, text string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vignette (factor, level, text) VALUES (?, ?, ?)
		ON CONFLICT(factor, level) DO UPDATE SET text = excluded.text`,
		factor, level, text)
	if err != nil {
		return fmt.Errorf("failed to add vignette text: %w", err)
	}
	return nil
}

// GetFactors returns the full factor table: factor name to level key to text
// fragment.
func (r *Repository) GetFactors(ctx context.Context) (map[string]map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT factor, level, text FROM vignette`)
	if err != nil {
		return nil, fmt.Errorf("failed to query factors: %w", err)
	}
	defer rows.Close()

	factors := make(map[string]map[string]string)
	for rows.Next() {
		var factor, level, text string
		if err := rows.Scan(&factor, &level, &text); err != nil {
			return nil, fmt.Errorf("failed to scan factor row: %w", err)
		}
		if factors[factor] == nil {
			factors[factor] = make(map[string]string)
		}
		factors[factor][level] = text
	}
	return factors, rows.Err()
}

// CreateUser creates a participant with a fresh uuid.
func (r *Repository) CreateUser(ctx context.Context, email string) (*User, error) {
	user := &User{UUID: uuid.New().String(), Email: email}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user (uuid, email) VALUES (?, ?)`, user.UUID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser returns a participant, or nil when the uuid is unknown.
func (r *Repository) GetUser(ctx context.Context, userUUID string) (*User, error) {
	var u User
	var email sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT uuid, email FROM user WHERE uuid = ?`, userUUID).Scan(&u.UUID, &email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.Email = email.String
	return &u, nil
}

// CreateAnswerType inserts an answer type.
func (r *Repository) CreateAnswerType(ctx context.Context, shortName, description string, mostPositive, mostNegative int) (*AnswerType, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO answer_type (short_name, description, most_positive, most_negative) VALUES (?, ?, ?, ?)`,
		shortName, description, mostPositive, mostNegative)
	if err != nil {
		return nil, fmt.Errorf("failed to create answer type: %w", err)
	}
	id, _ := res.LastInsertId()
	return &AnswerType{
		ID: id, ShortName: shortName, Description: description,
		MostPositive: mostPositive, MostNegative: mostNegative,
	}, nil
}

// CreateQuestion inserts a study question.
func (r *Repository) CreateQuestion(ctx context.Context, text string, answerTypeID int64) (*Question, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO question (question, a_id) VALUES (?, ?)`, text, answerTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Question{ID: id, Text: text, AnswerTypeID: answerTypeID}, nil
}

// GetStudyQuestions returns every study question.
func (r *Repository) GetStudyQuestions(ctx context.Context) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, question, a_id FROM question ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query study questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.AnswerTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan study question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ensureStudyResult creates the participant's result row if it does not
// exist yet.
func (r *Repository) ensureStudyResult(ctx context.Context, userUUID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO study_result (u_id) VALUES (?)`, userUUID)
	if err != nil {
		return fmt.Errorf("failed to ensure study result: %w", err)
	}
	return nil
}

// AddQuestionAnswer records a participant's answer to one question about one
// vignette.
func (r *Repository) AddQuestionAnswer(ctx context.Context, userUUID string, questionID int64, vignetteID, answer string) error {
	if err := r.ensureStudyResult(ctx, userUUID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO question_answer (q_id, s_id, vignette_id, answer) VALUES (?, ?, ?, ?)
		ON CONFLICT(q_id, s_id, vignette_id) DO UPDATE SET answer = excluded.answer`,
		questionID, userUUID, vignetteID, answer)
	if err != nil {
		return fmt.Errorf("failed to save question answer: %w", err)
	}
	return nil
}

// GetAnsweredQuestions returns every answer a participant has given.
func (r *Repository) GetAnsweredQuestions(ctx context.Context, userUUID string) ([]QuestionAnswer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q_id, s_id, vignette_id, COALESCE(answer, '')
		FROM question_answer WHERE s_id = ?`, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var answers []QuestionAnswer
	for rows.Next() {
		var qa QuestionAnswer
		if err := rows.Scan(&qa.QuestionID, &qa.UserUUID, &qa.VignetteID, &qa.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan question answer: %w", err)
		}
		answers = append(answers, qa)
	}
	return answers, rows.Err()
}

// AddFeedback stores the free-text feedback of a participant.
func (r *Repository) AddFeedback(ctx context.Context, userUUID, feedback01, feedback02, feedback03 string) error {
	if err := r.ensureStudyResult(ctx, userUUID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE study_result SET feedback01 = ?, feedback02 = ?, feedback03 = ? WHERE u_id = ?`,
		feedback01, feedback02, feedback03, userUUID)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// AddDemographics stores (or replaces) the demographic data of a participant.
func (r *Repository) AddDemographics(ctx context.Context, d Demographics) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO demographics (u_id, age, gender, education, zip_code, country, employment_status, avg_current_income)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(u_id) DO UPDATE SET
			age = excluded.age,
			gender = excluded.gender,
			education = excluded.education,
			zip_code = excluded.zip_code,
			country = excluded.country,
			employment_status = excluded.employment_status,
			avg_current_income = excluded.avg_current_income`,
		d.UserUUID, d.Age, d.Gender, d.Education, d.ZipCode, d.Country, d.EmploymentStatus, d.AvgCurrentIncome)
	if err != nil {
		return fmt.Errorf("failed to save demographics: %w", err)
	}
	return nil
}

// AddPersonalData appends an additional personal data record to a
// participant.
func (r *Repository) AddPersonalData(ctx context.Context, userUUID, description, data string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO personal_data (u_id, description, data) VALUES (?, ?, ?)`,
		userUUID, description, data)
	if err != nil {
		return fmt.Errorf("failed to save personal data: %w", err)
	}
	return nil
}
