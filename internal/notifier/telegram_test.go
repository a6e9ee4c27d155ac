package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "", zap.NewNop())
	n.APIBase = srv.URL
	return n
}

func TestSend_Text(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "hello", payload["text"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	require.NoError(t, n.Send(context.Background(), Text("hello")))
}

func TestSend_Photo(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendPhoto", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Equal(t, "caption text", r.FormValue("caption"))
		f, hdr, err := r.FormFile("photo")
		assert.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "btc.png", hdr.Filename)
		assert.Equal(t, []byte{1, 2, 3}, data)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	err := n.Send(context.Background(), Message{Text: "caption text", Image: []byte{1, 2, 3}, ImageName: "btc.png"})
	require.NoError(t, err)
}

func TestSend_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})
	err := n.Send(context.Background(), Text("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithRetry_SucceedsAfterFailure(t *testing.T) {
	var calls int32
	n := newTestNotifier(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	require.NoError(t, n.SendWithRetry(context.Background(), Text("x"), 2))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := n.SendWithRetry(ctx, Text("x"), 3)
	assert.Error(t, err)
}
