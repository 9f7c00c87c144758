// Package vision analyzes user-submitted images through a vision-capable
// provider adapter and shapes the reply for elderly users: sensitive-data
// warnings and step-by-step extraction.
package vision

import (
	"context"
	"log"
	"strings"

	"github.com/naviai/naviai/internal/domain/video"
	"github.com/naviai/naviai/internal/i18n"
	"github.com/naviai/naviai/internal/infra/config"
	"github.com/naviai/naviai/internal/infra/llm"
)

const (
	visionTemperature = 0.5
	visionMaxTokens   = 2048
)

// Response is the structured result of one image analysis.
type Response struct {
	Description      string              `json:"description"`
	HasSensitiveData bool                `json:"has_sensitive_data"`
	Steps            []string            `json:"steps,omitempty"`
	SuggestedVideo   *video.TrustedVideo `json:"suggested_video,omitempty"`
}

// Service runs vision turns against the default adapter.
type Service struct {
	registry *llm.Registry
	videos   *video.Service
	cfg      config.Config
}

// NewService wires a vision Service.
func NewService(registry *llm.Registry, videos *video.Service, cfg config.Config) *Service {
	return &Service{registry: registry, videos: videos, cfg: cfg}
}

// Analyze describes the image, flags sensitive-data mentions, and extracts
// step-by-step instructions when present.
//
// Detection runs against both locales at once: the model occasionally answers
// with mixed-language terms, and a missed sensitive-data warning is worse
// than an occasional extra one. Provider failures degrade to the locale's
// vision fallback text, never an error.
func (s *Service) Analyze(ctx context.Context, imageBase64, mediaType, question, locale string) (*Response, error) {
	adapter, err := s.registry.Default()
	if err != nil {
		return nil, err
	}

	userContent := question
	if userContent == "" {
		userContent = i18n.T(i18n.KeyDefaultImageQuestion, locale)
	}

	req := llm.Request{
		Messages:       []llm.Message{llm.TextMessage(llm.RoleUser, userContent)},
		Model:          s.cfg.VisionModel(adapter.Name()),
		SystemPrompt:   i18n.T(i18n.KeyVisionSystemPrompt, locale),
		Temperature:    visionTemperature,
		MaxTokens:      visionMaxTokens,
		ImageBase64:    imageBase64,
		ImageMediaType: mediaType,
	}

	resp, err := adapter.CompleteVision(ctx, req)
	if err != nil {
		log.Printf("vision: completion via %s failed: %v", adapter.Name(), err)
		return &Response{
			Description:      i18n.T(i18n.KeyVisionFallback, locale),
			HasSensitiveData: false,
		}, nil
	}

	out := &Response{
		Description:      resp.Content,
		HasSensitiveData: i18n.SensitivePatternAll().MatchString(resp.Content),
	}

	if stepRe := i18n.StepPatternAll(); stepRe.MatchString(resp.Content) {
		for _, part := range stepRe.Split(resp.Content, -1) {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out.Steps = append(out.Steps, trimmed)
			}
		}
	}

	// A question about the image can still surface a matching tutorial video
	if question != "" {
		if matches := s.videos.Search(ctx, question, 1); len(matches) > 0 {
			out.SuggestedVideo = &matches[0]
		}
	}

	return out, nil
}
