// Tests for the speech endpoints.
// The unconfigured path is the one worth testing here; real transcription and
// synthesis are exercised against the upstream API, not in unit tests.
package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/naviai/naviai/internal/domain/auth"
	"github.com/naviai/naviai/internal/domain/speech"
)

func newSpeechHandler(t *testing.T) *SpeechHandler {
	t.Helper()
	db := mustOpenDB(t)
	insertUser(t, db, "user-1", "pt-BR")
	return NewSpeechHandler(speech.NewService(""), domainauth.NewService(db))
}

func audioUpload(t *testing.T, field string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "voz.webm")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("fake audio bytes")) //nolint:errcheck
	mw.Close()                           //nolint:errcheck

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stt/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSpeechHandler_Transcribe_NotConfigured(t *testing.T) {
	t.Parallel()

	h := newSpeechHandler(t)

	rr := httptest.NewRecorder()
	h.Transcribe(rr, asUser(audioUpload(t, "audio"), "user-1"))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503 without an API key", rr.Code)
	}
}

func TestSpeechHandler_Transcribe_MissingAudio(t *testing.T) {
	t.Parallel()

	h := newSpeechHandler(t)

	rr := httptest.NewRecorder()
	h.Transcribe(rr, asUser(audioUpload(t, "wrong_field"), "user-1"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400 without the audio field", rr.Code)
	}
}

func TestSpeechHandler_Speak_NotConfigured(t *testing.T) {
	t.Parallel()

	h := newSpeechHandler(t)

	rr := httptest.NewRecorder()
	h.Speak(rr, asUser(postJSON(t, "/api/v1/tts/speak", SpeakRequest{Text: "ola"}), "user-1"))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503 without an API key", rr.Code)
	}
}

func TestSpeechHandler_Speak_EmptyText(t *testing.T) {
	t.Parallel()

	h := newSpeechHandler(t)

	rr := httptest.NewRecorder()
	h.Speak(rr, asUser(postJSON(t, "/api/v1/tts/speak", SpeakRequest{}), "user-1"))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400 for empty text", rr.Code)
	}
}
