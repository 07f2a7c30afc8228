package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ytquiz/models"
	"ytquiz/services"

	"github.com/gin-gonic/gin"
)

// QuizCreator runs the YouTube-to-quiz pipeline.
type QuizCreator interface {
	CreateQuizFromYouTube(ctx context.Context, rawURL string, ownerID uint, numQuestions int) (*models.Quiz, error)
}

type QuizHandler struct {
	creator     QuizCreator
	quizService *services.QuizService
	debug       bool
}

func NewQuizHandler(creator QuizCreator, quizService *services.QuizService, debug bool) *QuizHandler {
	return &QuizHandler{
		creator:     creator,
		quizService: quizService,
		debug:       debug,
	}
}

type createQuizRequest struct {
	URL string `json:"url"`
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing 'url'."})
		return
	}

	// A client disconnect must not abort a half-finished pipeline run.
	ctx := context.WithoutCancel(c.Request.Context())
	quiz, err := h.creator.CreateQuizFromYouTube(ctx, url, userID, 0)
	if err != nil {
		if services.IsPipelineError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) GetUserQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.GetUserQuizzes(userID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizByID(quizID, userID)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	// Ownership is checked before the body so a stranger gets 403/404, not 400.
	if _, err := h.quizService.GetQuizByID(quizID, userID); err != nil {
		h.storeError(c, err)
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(quizID, userID, &req)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) PatchQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if _, err := h.quizService.GetQuizByID(quizID, userID); err != nil {
		h.storeError(c, err)
		return
	}

	var req services.PatchQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	quiz, err := h.quizService.PatchQuiz(quizID, userID, &req)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuiz(quizID, userID); err != nil {
		h.storeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Quiz not found."})
	case errors.Is(err, services.ErrQuizForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to access this quiz."})
	case errors.Is(err, services.ErrInvalidMetadata):
		c.JSON(http.StatusBadRequest, gin.H{"detail": metadataDetail(err)})
	default:
		h.internalError(c, err)
	}
}

func (h *QuizHandler) internalError(c *gin.Context, err error) {
	slog.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
	if h.debug {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error: " + err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
}

func quizIDParam(c *gin.Context) (uint, bool) {
	quizID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid quiz ID."})
		return 0, false
	}
	return uint(quizID), true
}

// metadataDetail turns "invalid quiz metadata: invalid YouTube URL" into
// "Invalid YouTube URL."
func metadataDetail(err error) string {
	msg := strings.TrimPrefix(err.Error(), services.ErrInvalidMetadata.Error()+": ")
	if msg == "" {
		return "Invalid quiz metadata."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
