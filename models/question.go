package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// OptionsPerQuestion is the fixed number of answer options.
	OptionsPerQuestion = 4
	// Column limits, in characters.
	MaxQuestionTitleLength = 500
	MaxAnswerLength        = 255
)

type Question struct {
	ID        uint                        `json:"id" gorm:"primaryKey"`
	QuizID    uint                        `json:"-" gorm:"not null;index"`
	Title     string                      `json:"question_title" gorm:"size:500;not null"`
	Options   datatypes.JSONSlice[string] `json:"question_options" gorm:"not null"`
	Answer    string                      `json:"answer" gorm:"size:255;not null"`
	Position  int                         `json:"-" gorm:"not null"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}
