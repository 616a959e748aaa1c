// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func newOpenAIServer(t *testing.T, captured *capturedRequest, tokens []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range tokens {
			_, _ = io.WriteString(w, sseChunk(tok))
			w.(http.Flusher).Flush()
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIStreamer_StreamsTokensInOrder(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAIServer(t, &captured, []string{"Octopuses ", "have ", "three hearts."})
	defer srv.Close()

	s := NewOpenAIStreamer(srv.URL+"/v1", "sk-test", "gpt-test")

	var got []Chunk
	err := s.Stream(context.Background(), Request{
		SystemPrompt: "be brief",
		Messages:     []Message{{Role: "user", Content: "Tell me a fun fact"}},
	}, func(c Chunk) { got = append(got, c) })
	require.NoError(t, err)

	require.Len(t, got, 4)
	var sb strings.Builder
	for _, c := range got[:3] {
		assert.False(t, c.Done)
		sb.WriteString(c.Content)
	}
	assert.Equal(t, "Octopuses have three hearts.", sb.String())
	assert.True(t, got[3].Done)

	assert.Equal(t, "gpt-test", captured.Model)
	assert.True(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "be brief"}, captured.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "Tell me a fun fact"}, captured.Messages[1])
}

func TestOpenAIStreamer_RequestModelOverride(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAIServer(t, &captured, nil)
	defer srv.Close()

	s := NewOpenAIStreamer(srv.URL+"/v1/", "sk-test", "gpt-test")
	err := s.Stream(context.Background(), Request{Model: "other"}, func(Chunk) {})
	require.NoError(t, err)
	assert.Equal(t, "other", captured.Model)
}

func TestOpenAIStreamer_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool { return errorsType(err) == ErrTypeUnauthorized }},
		{"not found", http.StatusNotFound, IsModelNotFound},
		{"server error", http.StatusInternalServerError, IsUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
			}))
			defer srv.Close()

			s := NewOpenAIStreamer(srv.URL+"/v1", "sk-test", "gpt-test")
			called := false
			err := s.Stream(context.Background(), Request{}, func(Chunk) { called = true })

			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error classification: %v", err)
			assert.False(t, called, "callback must not run on failure")
		})
	}
}

func TestOpenAIStreamer_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewOpenAIStreamer(url+"/v1", "", "gpt-test")
	err := s.Stream(context.Background(), Request{}, func(Chunk) {})
	assert.True(t, IsUnavailable(err), "got %v", err)
}

func errorsType(err error) ErrorType {
	if ce, ok := err.(*ClientError); ok {
		return ce.Type
	}
	return ErrTypeUnknown
}
