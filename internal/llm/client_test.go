package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func newClient(rt roundTrip) *Client {
	return &Client{
		BaseURL:    "https://api.test/v1/chat/completions",
		APIKey:     "key",
		Model:      "clf-test",
		HTTPClient: &http.Client{Transport: rt},
	}
}

func TestChatSuccess(t *testing.T) {
	client := newClient(func(req *http.Request) *http.Response {
		if got := req.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("auth header = %q", got)
		}
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "classify") {
			t.Fatalf("payload missing user message: %s", body)
		}
		return &http.Response{
			StatusCode: 200,
			Body: io.NopCloser(strings.NewReader(`{
				"choices":[{"message":{"role":"assistant","content":"ok"}}]
			}`)),
			Header: make(http.Header),
		}
	})
	out, err := client.Chat(context.Background(), "system", "classify this")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %q", out)
	}
}

func TestChatStatusError(t *testing.T) {
	client := newClient(func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: 429,
			Body:       io.NopCloser(strings.NewReader("slow down")),
			Header:     make(http.Header),
		}
	})
	_, err := client.Chat(context.Background(), "s", "u")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 429 {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	client := newClient(func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[]}`)),
			Header:     make(http.Header),
		}
	})
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatRequiresConfig(t *testing.T) {
	c := &Client{}
	if _, err := c.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected config error")
	}
}
