package models

import (
	"time"
)

// MaxQuizTitleLength is the title column limit, in characters.
const MaxQuizTitleLength = 255

// Quiz is generated from a YouTube video transcript and owned by one user.
// Deleting a quiz deletes its questions.
type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"-" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	User      User       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}
