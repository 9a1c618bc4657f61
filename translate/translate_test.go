package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseTranslations(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		got, err := parseTranslations(`["Hallo", "Welt"]`, 2)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"Hallo", "Welt"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("markdown fence stripped", func(t *testing.T) {
		content := "```json\n[\"Hallo\"]\n```"
		got, err := parseTranslations(content, 1)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != "Hallo" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		if _, err := parseTranslations(`["a"]`, 2); err == nil {
			t.Error("expected error on length mismatch")
		}
	})

	t.Run("not an array", func(t *testing.T) {
		if _, err := parseTranslations(`{"a": "b"}`, 1); err == nil {
			t.Error("expected error on non-array response")
		}
	})
}

func TestExtractResponseText(t *testing.T) {
	openai := `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`
	if got, err := extractResponseText([]byte(openai)); err != nil || got != "hello" {
		t.Errorf("openai: got %q, %v", got, err)
	}

	gemini := `{"candidates":[{"content":{"parts":[{"text":"bonjour"}]}}]}`
	if got, err := extractResponseText([]byte(gemini)); err != nil || got != "bonjour" {
		t.Errorf("gemini: got %q, %v", got, err)
	}

	apiErr := `{"error":{"message":"quota exceeded"}}`
	if _, err := extractResponseText([]byte(apiErr)); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error shape: got %v", err)
	}
}

func TestTranslate_OpenAIEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		var input []string
		if err := json.Unmarshal([]byte(req.Messages[1].Content), &input); err != nil {
			t.Fatalf("user prompt is not a JSON array: %v", err)
		}

		out := make([]string, len(input))
		for i, s := range input {
			out[i] = "DE:" + s
		}
		content, _ := json.Marshal(out)
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, string(content))
	}))
	defer server.Close()

	opts := Options{
		Provider: Provider{
			ID:      ProviderOpenAI,
			BaseURL: server.URL,
			APIKey:  "test-key",
			Model:   "test-model",
			Timeout: 5 * time.Second,
		},
		Language: "de",
	}

	got, err := Translate(context.Background(), map[string]string{
		"greeting": "Hello",
		"farewell": "Bye",
		"empty":    "",
	}, opts)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"greeting": "DE:Hello",
		"farewell": "DE:Bye",
		"empty":    "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Translate = %v, want %v", got, want)
	}
}

func TestTranslate_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"[\"Hallo\"]"}}]}`)
	}))
	defer server.Close()

	opts := Options{
		Provider: Provider{ID: ProviderOllama, BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second},
		Language: "de",
	}

	got, err := Translate(context.Background(), map[string]string{"k": "Hello"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got["k"] != "Hallo" {
		t.Errorf("got %v", got)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestTranslate_AuthErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	opts := Options{
		Provider: Provider{ID: ProviderOpenAI, BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second},
		Language: "de",
	}

	if _, err := Translate(context.Background(), map[string]string{"k": "Hello"}, opts); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestTranslate_NothingToDo(t *testing.T) {
	// No HTTP server: a map of empty strings must not hit the network.
	opts := Options{Provider: Provider{ID: ProviderOpenAI, BaseURL: "http://127.0.0.1:0"}}
	got, err := Translate(context.Background(), map[string]string{"k": ""}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got["k"] != "" {
		t.Errorf("got %v", got)
	}
}

func TestResolvedPrompt(t *testing.T) {
	opts := Options{Language: "de"}
	prompt := opts.resolvedPrompt()
	if !strings.Contains(prompt, "Deutsch") {
		t.Errorf("prompt should name the target language, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "{{targetLang}}") {
		t.Error("placeholder not replaced")
	}
}
