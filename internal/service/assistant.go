package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

const (
	MinDraftCount = 1
	MaxDraftCount = 20

	snippetRadius = 50
)

// DraftRequest asks the assistant for machine-generated questions.
type DraftRequest struct {
	Count  int
	Topic  string
	APIKey string // used when no key is configured
}

// DraftParseError reports a reply that is not a JSON array.
type DraftParseError struct {
	Err     error
	Offset  int64
	Snippet string
}

func (e *DraftParseError) Error() string {
	return fmt.Sprintf("invalid JSON format: %v at position %d near %q", e.Err, e.Offset, e.Snippet)
}

func (e *DraftParseError) Unwrap() error { return e.Err }

// DraftValidationError reports the first array element with the wrong shape.
type DraftValidationError struct {
	Position int
	Reason   error
	Raw      string
}

func (e *DraftValidationError) Error() string {
	return fmt.Sprintf("invalid question format at index %d: %v: %s", e.Position, e.Reason, e.Raw)
}

func (e *DraftValidationError) Unwrap() error { return e.Reason }

// AssistantService drafts questions with a text-generation endpoint.
type AssistantService struct {
	generator TextGenerator
	authoring *AuthoringService
	apiKey    string
	logger    *zap.Logger
}

func NewAssistantService(generator TextGenerator, authoring *AuthoringService, apiKey string, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		generator: generator,
		authoring: authoring,
		apiKey:    strings.TrimSpace(apiKey),
		logger:    logger,
	}
}

// Generate requests req.Count questions about req.Topic and, when every element
// of the reply is valid, replaces the author's question list with them. Any
// failure leaves the draft untouched.
func (s *AssistantService) Generate(ctx context.Context, author entities.Identity, req DraftRequest) (entities.TestDraft, error) {
	if req.Count < MinDraftCount || req.Count > MaxDraftCount {
		return entities.TestDraft{}, fmt.Errorf("%w: number of questions must be between %d and %d",
			ErrInvalidDraftRequest, MinDraftCount, MaxDraftCount)
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return entities.TestDraft{}, fmt.Errorf("%w: question type is empty", ErrInvalidDraftRequest)
	}

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = strings.TrimSpace(req.APIKey)
	}
	if apiKey == "" {
		return entities.TestDraft{}, ErrMissingAPIKey
	}

	text, err := s.generator.Generate(ctx, apiKey, draftPrompt(req.Count, topic))
	if err != nil {
		return entities.TestDraft{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	s.logger.Debug("draft reply received",
		zap.String("author", author.UserID),
		zap.Int("length", len(text)),
	)

	questions, err := ParseDraftQuestions(text)
	if err != nil {
		s.logger.Warn("draft reply rejected",
			zap.String("author", author.UserID),
			zap.Error(err),
		)
		return entities.TestDraft{}, err
	}

	return s.authoring.ReplaceQuestions(author, questions), nil
}

func draftPrompt(count int, topic string) string {
	return fmt.Sprintf(
		"Generate %d %s quiz questions. Each question should have a text, 4 options, and the index of the "+
			"correct answer (0-3). Return *only* a JSON array with no additional text, e.g., "+
			`[{"text": "What is the capital of France?", "options": ["Berlin", "Madrid", "Paris", "Rome"], "correctAnswer": 2}, ...].`,
		count, topic,
	)
}

// CleanGeneratedText strips markdown code fences and surrounding whitespace.
func CleanGeneratedText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "[{") {
			text = text[nl+1:] // language tag such as "json"
		} else {
			text = strings.TrimPrefix(text, "json")
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

type rawDraftQuestion struct {
	Text          json.RawMessage `json:"text"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
}

// ParseDraftQuestions turns a generated reply into questions. The whole batch
// is rejected if any element is malformed.
func ParseDraftQuestions(text string) ([]entities.Question, error) {
	cleaned := CleanGeneratedText(text)

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elems); err != nil {
		return nil, newDraftParseError(cleaned, err)
	}
	if len(elems) == 0 {
		return nil, ErrEmptyDraftBatch
	}

	questions := make([]entities.Question, 0, len(elems))
	for i, elem := range elems {
		q, err := decodeDraftQuestion(elem)
		if err != nil {
			return nil, &DraftValidationError{Position: i, Reason: err, Raw: string(elem)}
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func decodeDraftQuestion(elem json.RawMessage) (entities.Question, error) {
	var raw rawDraftQuestion
	if err := json.Unmarshal(elem, &raw); err != nil {
		return entities.Question{}, errors.New("element is not an object")
	}

	var q entities.Question
	if err := json.Unmarshal(raw.Text, &q.Text); err != nil || strings.TrimSpace(q.Text) == "" {
		return entities.Question{}, entities.ErrQuestionText
	}
	if err := json.Unmarshal(raw.Options, &q.Options); err != nil || len(q.Options) != entities.OptionsPerQuestion {
		return entities.Question{}, entities.ErrQuestionOptions
	}

	idx, err := strconv.Atoi(string(bytes.TrimSpace(raw.CorrectAnswer)))
	if err != nil || !entities.ValidOptionIndex(idx) {
		return entities.Question{}, entities.ErrCorrectAnswerIndex
	}
	q.CorrectAnswerIndex = idx

	return q, nil
}

func newDraftParseError(cleaned string, err error) *DraftParseError {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	start := max(0, int(offset)-snippetRadius)
	end := min(len(cleaned), int(offset)+snippetRadius)
	if start > end {
		start = end
	}

	return &DraftParseError{Err: err, Offset: offset, Snippet: cleaned[start:end]}
}
