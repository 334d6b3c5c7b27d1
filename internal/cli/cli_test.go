package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	chats []string
	keys  []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.keys = append(f.keys, r.Header.Get("X-API-Key"))
	switch {
	case r.URL.Path == "/summarize":
		_, _ = w.Write([]byte(`{"session_id":"s1","summary":"It is about Go."}`))
	case r.URL.Path == "/chat":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.chats = append(f.chats, body["message"])
		_, _ = w.Write([]byte(`{"response":"echo ` + body["message"] + `"}`))
	case r.URL.Path == "/sessions":
		_, _ = w.Write([]byte(`{"sessions":[{"session_id":"s1","pdf_name":"A.pdf","created_at":"2024-01-01T00:00:00Z"}]}`))
	case r.URL.Path == "/history/s1":
		_, _ = w.Write([]byte(`{"session_id":"s1","messages":[{"role":"assistant","content":"PDF Summary: It is about Go.","timestamp":"2024-01-01T00:00:00Z"}]}`))
	case strings.HasPrefix(r.URL.Path, "/reload_session/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":40401,"message":"Session not found in database"}`))
	default:
		http.NotFound(w, r)
	}
}

func run(t *testing.T, api *fakeAPI, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", srv.URL, "--api-key", "secret"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUploadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	api := &fakeAPI{}
	out, err := run(t, api, "", "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "session: s1")
	assert.Contains(t, out, "It is about Go.")
	assert.Equal(t, []string{"secret"}, api.keys)
}

func TestUploadCommand_MissingFile(t *testing.T) {
	_, err := run(t, &fakeAPI{}, "", "upload", filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestChatCommand_SingleMessage(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "", "chat", "s1", "what", "is", "it?")
	require.NoError(t, err)
	assert.Equal(t, "echo what is it?\n", out)
	assert.Equal(t, []string{"what is it?"}, api.chats)
}

func TestChatCommand_Interactive(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "first\n\nsecond\nexit\nignored\n", "chat", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, api.chats)
	assert.Contains(t, out, "echo first")
	assert.Contains(t, out, "echo second")
}

func TestSessionsAndHistoryCommands(t *testing.T) {
	out, err := run(t, &fakeAPI{}, "", "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "s1\tA.pdf\t")

	out, err = run(t, &fakeAPI{}, "", "history", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "assistant: PDF Summary: It is about Go.")
}

func TestReloadCommand_Error(t *testing.T) {
	_, err := run(t, &fakeAPI{}, "", "reload", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Session not found in database")
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PDFCHAT_API_KEY", "from-env")
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", srv.URL, "sessions"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, []string{"from-env"}, api.keys)
}
