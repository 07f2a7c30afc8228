package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const quizPromptTemplate = `Based on the following transcript, generate a quiz in valid JSON format.

The quiz must follow this exact structure:

{
  "title": "A concise quiz title based on the topic of the transcript.",
  "description": "A summary of the transcript in no more than 150 characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The question goes here.",
      "question_options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    }
  ]
}

Requirements:
- The "questions" array must contain exactly %d questions.
- Each question must have exactly 4 distinct answer options.
- Only one correct answer per question, and it must be present in "question_options".
- The output must be valid JSON and parsable as-is. Do NOT include markdown fences or explanations.

Transcript:
"""%s"""`

// TextGenerator sends a prompt to a generative-text model.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// BuildQuizPrompt returns the same prompt for the same inputs.
func BuildQuizPrompt(transcript string, numQuestions int) string {
	return fmt.Sprintf(quizPromptTemplate, numQuestions, transcript)
}

// ExtractJSONText unwraps the JSON object from a model reply. A fenced block
// wins over surrounding prose, a bare language tag line inside the fence is
// dropped, and otherwise the text between the first '{' and the last '}' is
// taken. Text with no object in it is rejected.
func ExtractJSONText(reply string) (string, error) {
	s := strings.TrimSpace(reply)

	if strings.Contains(s, "```") {
		s = strings.Split(s, "```")[1]
		lines := strings.Split(s, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if strings.ToLower(strings.TrimSpace(l)) == "json" {
				continue
			}
			kept = append(kept, l)
		}
		s = strings.Join(kept, "\n")
	}

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end < start {
			return "", newPipelineError(KindInvalidLLMOutput, "LLM response did not contain a JSON object.", nil)
		}
		s = s[start : end+1]
	}
	return s, nil
}

// ParseQuizReply extracts and decodes the JSON object in a model reply.
func ParseQuizReply(reply string) (any, error) {
	text, err := ExtractJSONText(reply)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, newPipelineError(KindInvalidLLMOutput, fmt.Sprintf("LLM returned invalid JSON: %v", err), err)
	}
	return data, nil
}

// QuizGenerator asks the model for a quiz and validates what comes back.
type QuizGenerator struct {
	llm    TextGenerator
	apiKey string
	model  string
}

func NewQuizGenerator(llm TextGenerator, apiKey, model string) *QuizGenerator {
	return &QuizGenerator{llm: llm, apiKey: apiKey, model: model}
}

func (g *QuizGenerator) Generate(ctx context.Context, transcript string, numQuestions int) (*GeneratedQuiz, error) {
	if g.apiKey == "" || g.llm == nil {
		return nil, newPipelineError(KindLLMNotConfigured, "GEMINI_API_KEY is not configured.", nil)
	}

	reply, err := g.llm.Generate(ctx, g.model, BuildQuizPrompt(transcript, numQuestions))
	if err != nil {
		return nil, newPipelineError(KindLLMRequestFailed, fmt.Sprintf("Gemini request failed: %v", err), err)
	}
	slog.Debug("llm reply received", slog.String("model", g.model), slog.Int("chars", len(reply)))

	data, err := ParseQuizReply(reply)
	if err != nil {
		return nil, err
	}
	return ValidateQuizPayload(data, numQuestions)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	apiKey string
}

func NewGeminiGenerator(apiKey string) *GeminiGenerator {
	return &GeminiGenerator{apiKey: apiKey}
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
