package ollamacloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordflux/wordflux/pkg/providers"
	"github.com/wordflux/wordflux/pkg/translation"
)

func testClient(serverURL string) *Client {
	c := New("test-key")
	c.baseURL = serverURL
	return c
}

func userMessages(content string) []providers.Message {
	return []providers.Message{
		{Role: providers.RoleSystem, Content: "translate"},
		{Role: providers.RoleUser, Content: content},
	}
}

func TestComplete(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var gotReq chatRequest
		var gotAuth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			resp := chatResponse{Model: gotReq.Model}
			resp.Message.Role = "assistant"
			resp.Message.Content = "  <R0>Bonjour</R0>  "
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		out, err := c.Complete(context.Background(), "qwen3:235b-cloud", userMessages("<R0>Hello</R0>"))
		require.NoError(t, err)

		assert.Equal(t, "<R0>Bonjour</R0>", out, "response is trimmed")
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "qwen3:235b", gotReq.Model, "-cloud suffix stripped")
		assert.False(t, gotReq.Stream)
	})

	t.Run("429 maps to rate limit with retry-after", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "17")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Complete(context.Background(), "m", userMessages("hi"))
		require.Error(t, err)

		var te *translation.Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, translation.CodeRateLimit, te.Code)
		assert.Equal(t, 17, te.RetryAfter)
		assert.True(t, te.Retryable)
	})

	t.Run("500 maps to retryable server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Complete(context.Background(), "m", userMessages("hi"))
		require.Error(t, err)
		assert.True(t, translation.IsRetryable(err))
	})

	t.Run("401 maps to non-retryable client error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Complete(context.Background(), "m", userMessages("hi"))
		require.Error(t, err)
		assert.False(t, translation.IsRetryable(err))
	})

	t.Run("malformed body is a server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json at all"))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Complete(context.Background(), "m", userMessages("hi"))
		require.Error(t, err)

		var te *translation.Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, translation.CodeServer, te.Code)
	})

	t.Run("context cancellation propagates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := testClient(srv.URL).Complete(ctx, "m", userMessages("hi"))
		assert.Error(t, err)
	})
}
