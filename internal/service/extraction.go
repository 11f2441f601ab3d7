package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/model"
)

const (
	extractionMaxRetries = 3
	extractionMaxTokens  = 2048
	extractionMaxElapsed = 45 * time.Second
)

// ImageInput is one uploaded photo of a recipe page
type ImageInput struct {
	ContentType string
	Data        []byte
}

// messageCreator is the part of the Anthropic client the extractor calls
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// usageRecorder is the part of UsageService the extractor writes to
type usageRecorder interface {
	RecordUsage(ctx context.Context, record UsageRecord) error
}

type ExtractionService struct {
	messages   messageCreator
	model      anthropic.Model
	usage      usageRecorder
	newBackOff func() backoff.BackOff
}

// NewExtractionService returns nil when apiKey is empty; handlers answer
// extraction requests with 503 in that case.
func NewExtractionService(apiKey, modelName string, usage usageRecorder) *ExtractionService {
	if apiKey == "" {
		return nil
	}
	// retries are handled here so the SDK's own are switched off
	client := anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return newExtractionService(&client.Messages, modelName, usage)
}

func newExtractionService(messages messageCreator, modelName string, usage usageRecorder) *ExtractionService {
	return &ExtractionService{
		messages: messages,
		model:    anthropic.Model(modelName),
		usage:    usage,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxElapsedTime = extractionMaxElapsed
			return bo
		},
	}
}

// ExtractFromImages treats every image as a page of the same recipe
func (s *ExtractionService) ExtractFromImages(ctx context.Context, userID uuid.UUID, images []ImageInput) (string, error) {
	if s == nil {
		return "", ErrExtractionDisabled
	}
	if len(images) == 0 {
		return "", ErrNoImages
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			mediaType(img.ContentType),
			base64.StdEncoding.EncodeToString(img.Data),
		))
	}
	blocks = append(blocks, anthropic.NewTextBlock("Convert the recipe in these images."))

	return s.extract(ctx, userID, model.ImportTypeImage, blocks)
}

func (s *ExtractionService) ExtractFromText(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	if s == nil {
		return "", ErrExtractionDisabled
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return s.extract(ctx, userID, model.ImportTypeText, []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(text),
	})
}

func (s *ExtractionService) extract(ctx context.Context, userID uuid.UUID, importType string, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: extractionMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: recipeSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}

	var message *anthropic.Message
	attempt := 0
	op := func() error {
		attempt++
		msg, err := s.messages.New(ctx, params)
		if err != nil {
			if isRetryable(err) {
				log.Printf("[ExtractionService] Attempt %d failed, retrying: %v", attempt, err)
				return err
			}
			return backoff.Permanent(err)
		}
		message = msg
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), extractionMaxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("extraction failed after %d attempt(s): %w", attempt, err)
	}

	s.recordUsage(ctx, userID, importType, message)

	markdown := messageText(message)
	if markdown == "" {
		return "", ErrEmptyExtraction
	}
	return markdown, nil
}

// recordUsage is best effort; a failed insert never fails the import
func (s *ExtractionService) recordUsage(ctx context.Context, userID uuid.UUID, importType string, message *anthropic.Message) {
	if s.usage == nil {
		return
	}
	err := s.usage.RecordUsage(ctx, UsageRecord{
		UserID:           userID,
		ImportType:       importType,
		Model:            string(s.model),
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
	})
	if err != nil {
		log.Printf("[ExtractionService] Failed to track usage: %v", err)
	}
}

func messageText(message *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

func mediaType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

const recipeSystemPrompt = `You are an experienced chef who rewrites recipes for home cooks.
The input is a recipe given as text or as one or more photos. Several photos are pages of the same recipe and must be merged into one.

Reply with the recipe in Markdown and nothing else, using these sections in order:

# <Recipe name>
Use the name from the source, or invent a fitting one. This must be the first line.

## Description
Two to four sentences. Mention difficulty, spiciness and total time (including rise or fermentation) when the source gives them.

## Yield
Only when the source states one, e.g. "4 servings" or "3 280 g dough balls". Match singular and plural to the number.

## Time Estimates
Only the kinds the source gives: Preparation, Cooking, Rise, Fermentation, Pre-heat. Never guess a time.

## Ingredients
A bulleted list in sentence case, in the order the steps use them, with exact quantities. Keep groups as "### Group name" sub-lists.
Abbreviate units as tsp, Tbsp, fl oz, cup, pt, qt, gal, oz, lb, mL, L, g, kg, with exactly that casing.

## Instructions
A numbered list of steps.

## Notes
A bulleted list of any extra notes from the source. Leave the section out when there are none.

Do not use code blocks. Do not change measurements. Do not abbreviate ingredient names.`
