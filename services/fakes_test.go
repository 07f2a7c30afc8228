package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"ytquiz/models"
)

type fakeProvider struct {
	info        *VideoInfo
	infoErr     error
	downloadErr error
	// ext is appended to the output base when the fake writes the audio file.
	ext        string
	downloaded []string
	infoCalls  int
}

func (f *fakeProvider) ExtractInfo(ctx context.Context, url string) (*VideoInfo, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.info == nil {
		return &VideoInfo{ID: "AAAAAAAAAAA", Title: "video", Duration: 60}, nil
	}
	return f.info, nil
}

func (f *fakeProvider) DownloadAudio(ctx context.Context, url, outputBase string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	ext := f.ext
	if ext == "" {
		ext = ".m4a"
	}
	path := outputBase + ext
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	f.downloaded = append(f.downloaded, path)
	return path, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	// seen records whether the audio file existed when Transcribe ran.
	seen []bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	_, statErr := os.Stat(audioPath)
	f.seen = append(f.seen, statErr == nil)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeEngine struct {
	model      *fakeModel
	loadErr    error
	loadedWith []string
}

func (f *fakeEngine) LoadModel(ctx context.Context, name, decoderPath string) (SpeechModel, error) {
	f.loadedWith = append(f.loadedWith, name+"|"+decoderPath)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.model, nil
}

type fakeModel struct {
	text string
	err  error
}

func (f *fakeModel) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	models  []string
}

func (f *fakeLLM) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.models = append(f.models, model)
	return f.reply, f.err
}

type fakeStore struct {
	saved []*GeneratedQuiz
	err   error
}

func (f *fakeStore) SaveGeneratedQuiz(ctx context.Context, ownerID uint, videoURL string, payload *GeneratedQuiz) (*models.Quiz, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, payload)
	quiz := &models.Quiz{
		ID:          uint(len(f.saved)),
		UserID:      ownerID,
		Title:       payload.Title,
		Description: payload.Description,
		VideoURL:    videoURL,
	}
	for i, q := range payload.Questions {
		quiz.Questions = append(quiz.Questions, models.Question{
			ID:       uint(i + 1),
			Title:    q.Title,
			Options:  q.Options,
			Answer:   q.Answer,
			Position: i,
		})
	}
	return quiz, nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, videoID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.data[videoID]
	return text, ok
}

func (c *memoryCache) Set(ctx context.Context, videoID, transcript string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[videoID] = transcript
	c.sets++
}

type recordingNotifier struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingNotifier) Notify(userID uint, event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, event.Stage)
}

// quizJSON builds a valid model reply with n questions.
func quizJSON(n int) string {
	questions := make([]map[string]any, n)
	for i := range questions {
		questions[i] = map[string]any{
			"question_title":   fmt.Sprintf("Question %d?", i+1),
			"question_options": []string{"A", "B", "C", "D"},
			"answer":           "B",
		}
	}
	out, _ := json.Marshal(map[string]any{
		"title":       "Go Basics",
		"description": "A short talk about Go.",
		"questions":   questions,
	})
	return string(out)
}

// quizData decodes quizJSON the way the generator would see it.
func quizData(n int) map[string]any {
	var data map[string]any
	_ = json.Unmarshal([]byte(quizJSON(n)), &data)
	return data
}
