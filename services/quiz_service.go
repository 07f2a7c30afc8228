package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"ytquiz/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrQuizForbidden   = errors.New("quiz belongs to another user")
	ErrInvalidMetadata = errors.New("invalid quiz metadata")
)

type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

// UpdateQuizRequest replaces all quiz metadata. Questions are never touched.
type UpdateQuizRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	VideoURL    string `json:"video_url" binding:"required"`
}

// PatchQuizRequest updates the metadata fields that are present.
type PatchQuizRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	VideoURL    *string `json:"video_url"`
}

// SaveGeneratedQuiz writes the quiz and all of its questions in one
// transaction. Either everything is stored or nothing is.
func (s *QuizService) SaveGeneratedQuiz(ctx context.Context, ownerID uint, videoURL string, payload *GeneratedQuiz) (*models.Quiz, error) {
	// Start transaction
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	quiz := models.Quiz{
		UserID:      ownerID,
		Title:       payload.Title,
		Description: payload.Description,
		VideoURL:    videoURL,
	}
	if err := tx.Omit(clause.Associations).Create(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		questions = append(questions, models.Question{
			QuizID:   quiz.ID,
			Title:    q.Title,
			Options:  datatypes.JSONSlice[string](q.Options),
			Answer:   q.Answer,
			Position: i,
		})
	}
	if len(questions) > 0 {
		if err := tx.CreateInBatches(&questions, 100).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	quiz.Questions = questions
	return &quiz, nil
}

func (s *QuizService) GetUserQuizzes(userID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Where("user_id = ?", userID).
		Preload("Questions", orderQuestions).
		Order("created_at DESC").
		Order("id DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// GetQuizByID loads a quiz with its questions. A missing quiz is
// ErrQuizNotFound; someone else's quiz is ErrQuizForbidden.
func (s *QuizService) GetQuizByID(quizID uint, userID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Preload("Questions", orderQuestions).First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, ErrQuizForbidden
	}
	return &quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, userID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return nil, err
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	videoURL, err := validateVideoURL(req.VideoURL)
	if err != nil {
		return nil, err
	}

	return s.saveMetadata(quiz, map[string]any{
		"title":       title,
		"description": description,
		"video_url":   videoURL,
	})
}

func (s *QuizService) PatchQuiz(quizID uint, userID uint, req *PatchQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if req.Description != nil {
		description, err := validateDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if req.VideoURL != nil {
		videoURL, err := validateVideoURL(*req.VideoURL)
		if err != nil {
			return nil, err
		}
		updates["video_url"] = videoURL
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one field must be provided", ErrInvalidMetadata)
	}

	return s.saveMetadata(quiz, updates)
}

func (s *QuizService) saveMetadata(quiz *models.Quiz, updates map[string]any) (*models.Quiz, error) {
	if err := s.db.Model(quiz).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetQuizByID(quiz.ID, quiz.UserID)
}

// DeleteQuiz removes the quiz and, with it, every question it owns.
func (s *QuizService) DeleteQuiz(quizID uint, userID uint) error {
	quiz, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, quiz.ID).Error
	})
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("questions.position").Order("questions.id")
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title may not be blank", ErrInvalidMetadata)
	}
	if utf8.RuneCountInString(title) > models.MaxQuizTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrInvalidMetadata, models.MaxQuizTitleLength)
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: description may not be blank", ErrInvalidMetadata)
	}
	return description, nil
}

func validateVideoURL(raw string) (string, error) {
	canonical, err := NormalizeVideoURL(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: invalid YouTube URL", ErrInvalidMetadata)
	}
	return canonical, nil
}
