package minimax

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatReturnsFirstChoice(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text/chatcompletion_v2" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "你好，我是采访助手。"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	text, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "你好"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if text != "你好，我是采访助手。" {
		t.Fatalf("unexpected completion text %q", text)
	}
	if gotBody["model"] != DefaultChatModel {
		t.Fatalf("expected default model %q, got %v", DefaultChatModel, gotBody["model"])
	}
	if gotBody["temperature"] != 0.7 {
		t.Fatalf("expected default temperature 0.7, got %v", gotBody["temperature"])
	}
	if gotBody["max_tokens"] != float64(1000) {
		t.Fatalf("expected default max_tokens 1000, got %v", gotBody["max_tokens"])
	}
}

func TestChatErrorCarriesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "你好"}},
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", statusErr.Status)
	}
}

func TestAnalyzeImageDefaultPromptIsDeterministic(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "一张老照片"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	img := base64.StdEncoding.EncodeToString([]byte("fake-image"))
	for i := 0; i < 2; i++ {
		analysis, err := client.AnalyzeImage(context.Background(), img, "")
		if err != nil {
			t.Fatalf("analyze %d: %v", i, err)
		}
		if analysis.Description != "一张老照片" {
			t.Fatalf("unexpected description %q", analysis.Description)
		}
		if len(analysis.Raw) == 0 {
			t.Fatalf("raw response should be kept")
		}
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] {
		t.Fatalf("same image without a custom prompt must send identical requests")
	}
	if !strings.Contains(bodies[0], DefaultAnalyzePrompt) {
		t.Fatalf("request should carry the default prompt")
	}
	if !strings.Contains(bodies[0], "data:image/jpeg;base64,"+img) {
		t.Fatalf("request should inline the image as a data URI")
	}
}

func TestTextToSpeechDecodesHexAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/t2a_v2" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":       map[string]any{"audio": "68656c6c6f"},
			"extra_info": map[string]any{"audio_length": 1.5},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	speech, err := client.TextToSpeech(context.Background(), "你好", "")
	if err != nil {
		t.Fatalf("tts: %v", err)
	}
	const prefix = "data:audio/mp3;base64,"
	if !strings.HasPrefix(speech.AudioDataURI, prefix) {
		t.Fatalf("unexpected data URI %q", speech.AudioDataURI)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(speech.AudioDataURI, prefix))
	if err != nil {
		t.Fatalf("decode data URI: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("decoded audio = %q, want %q", decoded, "hello")
	}
	if speech.Duration != 1.5 {
		t.Fatalf("duration = %v, want 1.5", speech.Duration)
	}
}

func TestTextToSpeechFailsWithoutAudioData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.TextToSpeech(context.Background(), "你好", "")
	if err == nil || !strings.Contains(err.Error(), "missing audio data") {
		t.Fatalf("expected missing audio data error, got %v", err)
	}
}
