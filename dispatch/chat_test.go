package dispatch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healx-platform/healx-api/dispatch"
)

func TestHTTPChatRespond(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-1", body["sessionId"])
		assert.Equal(t, "my arm is bleeding", body["message"])

		json.NewEncoder(w).Encode(map[string]string{"reply": "apply firm pressure"})
	}))
	defer srv.Close()

	chat := dispatch.NewHTTPChat(srv.URL)
	reply, err := chat.Respond(context.Background(), "sess-1", "my arm is bleeding")
	assert.NoError(t, err)
	assert.Equal(t, "apply firm pressure", reply)
}

func TestHTTPChatRespondServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	chat := dispatch.NewHTTPChat(srv.URL)
	_, err := chat.Respond(context.Background(), "sess-1", "hello")
	assert.Error(t, err)
}

func TestHTTPChatRespondEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"reply": ""})
	}))
	defer srv.Close()

	chat := dispatch.NewHTTPChat(srv.URL)
	_, err := chat.Respond(context.Background(), "sess-1", "hello")
	assert.Error(t, err)
}
