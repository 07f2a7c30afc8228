package services

import (
	"fmt"
	"unicode/utf8"

	"ytquiz/models"
)

// GeneratedQuestion is one validated question from the LLM payload.
type GeneratedQuestion struct {
	Title   string   `json:"question_title"`
	Options []string `json:"question_options"`
	Answer  string   `json:"answer"`
}

// GeneratedQuiz is the validated payload handed to persistence.
type GeneratedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions"`
}

// ValidateQuizPayload checks a decoded JSON value against the quiz schema and
// returns it as a typed payload. Any single violation rejects the whole
// payload.
func ValidateQuizPayload(data any, numQuestions int) (*GeneratedQuiz, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, schemaViolation("Quiz must be a JSON object.")
	}
	for _, key := range []string{"title", "description", "questions"} {
		if _, ok := obj[key]; !ok {
			return nil, schemaViolation("Quiz JSON must contain title, description, questions.")
		}
	}

	title, ok := obj["title"].(string)
	if !ok {
		return nil, schemaViolation("Quiz title must be a string.")
	}
	if utf8.RuneCountInString(title) > models.MaxQuizTitleLength {
		return nil, schemaViolation(fmt.Sprintf("Quiz title must be at most %d characters.", models.MaxQuizTitleLength))
	}
	description, ok := obj["description"].(string)
	if !ok {
		return nil, schemaViolation("Quiz description must be a string.")
	}

	items, ok := obj["questions"].([]any)
	if !ok || len(items) != numQuestions {
		return nil, schemaViolation(fmt.Sprintf("Quiz must contain exactly %d questions.", numQuestions))
	}

	quiz := &GeneratedQuiz{
		Title:       title,
		Description: description,
		Questions:   make([]GeneratedQuestion, 0, len(items)),
	}
	for i, item := range items {
		q, err := validateQuestion(item)
		if err != nil {
			return nil, schemaViolation(fmt.Sprintf("Question %d: %s", i+1, err.Error()))
		}
		quiz.Questions = append(quiz.Questions, *q)
	}
	return quiz, nil
}

func validateQuestion(item any) (*GeneratedQuestion, error) {
	q, ok := item.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("each question must be a JSON object")
	}
	for _, key := range []string{"question_title", "question_options", "answer"} {
		if _, ok := q[key]; !ok {
			return nil, fmt.Errorf("each question must have question_title, question_options, answer")
		}
	}

	title, ok := q["question_title"].(string)
	if !ok {
		return nil, fmt.Errorf("question_title must be a string")
	}
	if utf8.RuneCountInString(title) > models.MaxQuestionTitleLength {
		return nil, fmt.Errorf("question_title must be at most %d characters", models.MaxQuestionTitleLength)
	}

	rawOpts, ok := q["question_options"].([]any)
	if !ok || len(rawOpts) != models.OptionsPerQuestion {
		return nil, fmt.Errorf("each question must have exactly %d distinct options", models.OptionsPerQuestion)
	}
	options := make([]string, 0, len(rawOpts))
	seen := make(map[string]struct{}, len(rawOpts))
	for _, o := range rawOpts {
		s, ok := o.(string)
		if !ok {
			return nil, fmt.Errorf("options must be strings")
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("each question must have exactly %d distinct options", models.OptionsPerQuestion)
		}
		seen[s] = struct{}{}
		options = append(options, s)
	}

	answer, ok := q["answer"].(string)
	if !ok {
		return nil, fmt.Errorf("answer must be one of question_options")
	}
	if _, ok := seen[answer]; !ok {
		return nil, fmt.Errorf("answer must be one of question_options")
	}
	if utf8.RuneCountInString(answer) > models.MaxAnswerLength {
		return nil, fmt.Errorf("answer must be at most %d characters", models.MaxAnswerLength)
	}

	return &GeneratedQuestion{Title: title, Options: options, Answer: answer}, nil
}

func schemaViolation(reason string) error {
	return newPipelineError(KindSchemaViolation, reason, nil)
}
