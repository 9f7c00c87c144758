// Package speech wraps the OpenAI audio endpoints: Whisper transcription for
// speech-to-text and the TTS endpoint for text-to-speech. Both are thin
// pass-throughs; no codec handling happens here.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no OpenAI API key is available; the
// speech endpoints need one even when chat runs on another provider.
var ErrNotConfigured = errors.New("speech service not configured: set OPENAI_API_KEY")

// whisperLanguages maps our locale tags to Whisper's ISO-639-1 hints.
var whisperLanguages = map[string]string{
	"pt-BR": "pt",
	"en":    "en",
}

// ttsVoices maps locale tags onto a natural-sounding voice per language.
var ttsVoices = map[string]openai.SpeechVoice{
	"pt-BR": openai.VoiceOnyx,
	"en":    openai.VoiceAlloy,
}

// Service issues transcription and synthesis calls.
type Service struct {
	client *openai.Client
}

// NewService creates a speech Service. An empty apiKey yields a service whose
// operations fail with ErrNotConfigured, so the rest of the server can start
// without speech support.
func NewService(apiKey string) *Service {
	if apiKey == "" {
		return &Service{}
	}
	return &Service{client: openai.NewClient(apiKey)}
}

// Transcribe converts audio bytes to text using Whisper. The filename only
// carries the container hint for the upstream API.
func (s *Service) Transcribe(ctx context.Context, audio []byte, filename, locale string) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	if filename == "" {
		filename = "audio.webm"
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: whisperLanguages[locale],
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcription: %w", err)
	}
	return resp.Text, nil
}

// Synthesize converts text to MP3 audio bytes.
func (s *Service) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	voice, ok := ttsVoices[locale]
	if !ok {
		voice = ttsVoices["pt-BR"]
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech: read synthesis response: %w", err)
	}
	return audio, nil
}
