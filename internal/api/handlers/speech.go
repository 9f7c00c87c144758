// HTTP handlers for speech-to-text and text-to-speech.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	domainauth "github.com/naviai/naviai/internal/domain/auth"
	"github.com/naviai/naviai/internal/domain/speech"
)

// maxAudioUploadBytes bounds the multipart audio upload (25 MB, the Whisper
// API's own file limit).
const maxAudioUploadBytes = 25 << 20

// SpeechHandler handles the /api/v1/stt and /api/v1/tts routes.
type SpeechHandler struct {
	speechService *speech.Service
	authService   domainauth.Service
}

// NewSpeechHandler creates a SpeechHandler.
func NewSpeechHandler(speechService *speech.Service, authService domainauth.Service) *SpeechHandler {
	return &SpeechHandler{speechService: speechService, authService: authService}
}

// TranscribeResponse is the response body for the transcription endpoint.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// SpeakRequest is the request body for POST /api/v1/tts/speak.
type SpeakRequest struct {
	Text string `json:"text"`
}

// Transcribe handles POST /api/v1/stt/transcribe.
// Expects a multipart form with the audio in the "audio" field.
//
// Response codes:
//   - 200 OK: transcription text
//   - 400 Bad Request: missing or oversized audio upload
//   - 503 Service Unavailable: speech service not configured
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio upload")
		return
	}

	locale := h.authService.Locale(r.Context(), userID)

	text, err := h.speechService.Transcribe(r.Context(), audio, header.Filename, locale)
	if err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, TranscribeResponse{Text: text})
}

// Speak handles POST /api/v1/tts/speak.
// Streams the synthesized speech back as audio/mpeg.
//
// Response codes:
//   - 200 OK: MP3 audio bytes
//   - 400 Bad Request: invalid JSON or empty text
//   - 503 Service Unavailable: speech service not configured
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	locale := h.authService.Locale(r.Context(), userID)

	audio, err := h.speechService.Synthesize(r.Context(), req.Text, locale)
	if err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio) //nolint:errcheck
}
