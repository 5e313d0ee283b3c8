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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/internal/config"
	"github.com/postcraft/postcraft/internal/models"
	"github.com/postcraft/postcraft/internal/storage"
)

// harness runs commands against one shared in-memory backend, like
// successive invocations against the same data directory
type harness struct {
	t       *testing.T
	cfg     *config.Config
	backend *storage.MemoryBackend
}

type result struct {
	code   int
	stdout string
	stderr string
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t: t,
		cfg: &config.Config{
			Storage: config.StorageConfig{Type: config.StorageMemory},
			Webhook: config.WebhookConfig{Timeout: 5 * time.Second},
			Onboarding: config.OnboardingConfig{
				GenerateWebhook: "https://gen.example.com",
				PublishWebhook:  "https://pub.example.com",
			},
			Log: config.LogConfig{Level: "error", Format: "console"},
		},
		backend: storage.NewMemoryBackend(),
	}
}

func (h *harness) run(stdin string, args ...string) result {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), h.cfg, args,
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithBackend(h.backend),
		WithLogger(zap.NewNop()),
	)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func (h *harness) posts() []models.Post {
	h.t.Helper()
	data, err := h.backend.Load(context.Background(), storage.KeyPosts)
	require.NoError(h.t, err)
	var posts []models.Post
	require.NoError(h.t, json.Unmarshal(data, &posts))
	return posts
}

// recorder is a webhook endpoint remembering every request body
type recorder struct {
	*httptest.Server
	mu     sync.Mutex
	bodies []map[string]any
}

func newRecorder(t *testing.T, status int, body string) *recorder {
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, got)
		rec.mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) requests() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.bodies...)
}

const generatedBody = `{"post_content":"Hiring is changing. Are you ready?","image_url":"https://img.example.com/p.png"}`

func TestCLI_RequiresOnboarding(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"generate", "topic"},
		{"publish"},
		{"posts", "list"},
		{"settings", "show"},
	} {
		res := h.run("", args...)
		assert.Equal(t, 1, res.code, args)
		assert.Contains(t, res.stderr, "postcraft onboard", args)
	}
}

func TestCLI_Onboard(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "onboard")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `"name" not set`)

	res = h.run("", "onboard", "--name", "  Ada ")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Welcome, Ada!")

	res = h.run("", "onboard", "--name", "Grace")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "already exist")

	res = h.run("", "settings", "show", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	var s models.UserSettings
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &s))
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "https://gen.example.com", s.GenerateWebhook)
	assert.Equal(t, "https://pub.example.com", s.PublishWebhook)
}

func TestCLI_GenerateEditPublish(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	pub := newRecorder(t, http.StatusOK, "Accepted")
	slack := newRecorder(t, http.StatusOK, "ok")
	h := newHarness(t)

	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL, "--publish-webhook", pub.URL).code)
	require.Zero(t, h.run("", "settings", "set", "--slack-webhook", slack.URL, "--hashtags=false").code)

	res := h.run("", "generate", "AI", "in", "hiring")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Hiring is changing.\n\nAre you ready?")
	assert.Contains(t, res.stdout, "draft-in-edit")

	reqs := gen.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "AI in hiring", reqs[0]["topic"])
	assert.Equal(t, false, reqs[0]["content_preferences"].(map[string]any)["include_hashtags"])

	posts := h.posts()
	require.Len(t, posts, 1)
	id := posts[0].ID

	res = h.run("", "posts", "edit", id, "--content", "My own words.")
	require.Equal(t, 0, res.code, res.stderr)

	res = h.run("n\n", "publish")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Publish cancelled.")
	assert.Empty(t, pub.requests())

	res = h.run("y\n", "publish")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Post published successfully!")

	pubReqs := pub.requests()
	require.Len(t, pubReqs, 1)
	assert.Equal(t, "My own words.", pubReqs[0]["post_content"])
	assert.Equal(t, "Ada", pubReqs[0]["user_name"])

	slackReqs := slack.requests()
	require.Len(t, slackReqs, 1)
	assert.Equal(t, `🚀 New LinkedIn post published: "AI in hiring"`, slackReqs[0]["text"])

	assert.True(t, h.posts()[0].Published)

	res = h.run("", "posts", "current")
	assert.Contains(t, res.stdout, "No post is open for editing.")

	res = h.run("", "publish")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "no post is open for editing")
}

func TestCLI_GenerateFailureNotifiesOnce(t *testing.T) {
	gen := newRecorder(t, http.StatusInternalServerError, "boom")
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)

	res := h.run("", "generate", "topic")

	assert.Equal(t, 1, res.code)
	assert.Equal(t, "❌ Failed to generate post. Please try again.\n", res.stderr)
	assert.Empty(t, h.posts())
}

func TestCLI_GenerateEmptyTopic(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)

	res := h.run("", "generate", "   ")

	assert.Equal(t, 1, res.code)
	assert.NotContains(t, res.stderr, "❌")
	assert.Empty(t, gen.requests())
}

func TestCLI_GenerateWithVoice(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)

	res := h.run("~remote\nremote work\n~and\nand teams\n", "generate", "Thoughts on", "--voice")
	require.Equal(t, 0, res.code, res.stderr)

	reqs := gen.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Thoughts on remote work and teams", reqs[0]["topic"])
}

func TestCLI_GenerateVoiceErrorKeepsTypedTopic(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)

	missing := filepath.Join(t.TempDir(), "mic")
	res := h.run("", "generate", "typed topic", "--voice", "--voice-source", missing)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "No microphone found")

	res = h.run("!no-speech\n", "generate", "typed topic", "--voice")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "No speech detected")

	for _, req := range gen.requests() {
		assert.Equal(t, "typed topic", req["topic"])
	}
}

func TestCLI_PublishFailureKeepsPost(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	pub := newRecorder(t, http.StatusServiceUnavailable, "")
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL, "--publish-webhook", pub.URL).code)
	require.Zero(t, h.run("", "generate", "topic").code)

	res := h.run("", "publish", "--yes")

	assert.Equal(t, 1, res.code)
	assert.Equal(t, "❌ Failed to publish post. Please try again.\n", res.stderr)
	assert.False(t, h.posts()[0].Published)

	res = h.run("", "posts", "current")
	assert.Contains(t, res.stdout, "draft-in-edit")
}

func TestCLI_PostsListOpenDelete(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)

	res := h.run("", "posts", "list")
	assert.Contains(t, res.stdout, "No posts yet.")

	require.Zero(t, h.run("", "generate", "first topic").code)
	require.Zero(t, h.run("", "generate", "second topic").code)
	posts := h.posts()
	require.Len(t, posts, 2)
	first, second := posts[1], posts[0]

	res = h.run("", "posts", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "2 posts, 0 published")
	assert.Less(t, strings.Index(res.stdout, "second topic"), strings.Index(res.stdout, "first topic"))

	res = h.run("", "posts", "open", first.ID)
	require.Equal(t, 0, res.code, res.stderr)
	res = h.run("", "posts", "current")
	assert.Contains(t, res.stdout, first.ID)

	res = h.run("no\n", "posts", "delete", first.ID)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Are you sure you want to delete this post?")
	assert.Len(t, h.posts(), 2)

	res = h.run("", "posts", "delete", first.ID, "--yes")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, []models.Post{second}, h.posts())

	res = h.run("", "posts", "current")
	assert.Contains(t, res.stdout, "No post is open for editing.")

	res = h.run("", "posts", "delete", "missing", "--yes")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "post not found")
}

func TestCLI_PostsEditFromFile(t *testing.T) {
	gen := newRecorder(t, http.StatusOK, generatedBody)
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada", "--generate-webhook", gen.URL).code)
	require.Zero(t, h.run("", "generate", "topic").code)
	id := h.posts()[0].ID

	path := filepath.Join(t.TempDir(), "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("From a file.\n"), 0o644))

	require.Zero(t, h.run("", "posts", "edit", id, "--file", path).code)
	assert.Equal(t, "From a file.", h.posts()[0].Content)

	require.Zero(t, h.run("From stdin.\n", "posts", "edit", id, "--file", "-").code)
	assert.Equal(t, "From stdin.", h.posts()[0].Content)

	res := h.run("", "posts", "edit", id)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "--content or --file")
}

func TestCLI_SettingsSet(t *testing.T) {
	h := newHarness(t)
	require.Zero(t, h.run("", "onboard", "--name", "Ada").code)

	res := h.run("", "settings", "set")
	assert.Equal(t, 1, res.code)

	res = h.run("", "settings", "set", "--tone", "sarcastic")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown tone")

	res = h.run("", "settings", "set", "--max-posts-per-day", "many")
	assert.Equal(t, 1, res.code)

	res = h.run("", "settings", "set", "--tone", "casual", "--company", "Acme", "--max-posts-per-day", "5")
	require.Equal(t, 0, res.code, res.stderr)

	res = h.run("", "settings", "show")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Regexp(t, `tone\s+casual`, res.stdout)
	assert.Regexp(t, `company\s+Acme`, res.stdout)
	assert.Regexp(t, `max-posts-per-day\s+5`, res.stdout)
	assert.Regexp(t, `length\s+medium`, res.stdout)
	assert.Regexp(t, `hashtags\s+true`, res.stdout)
}

func TestCLI_SettingsSetHelpShowsOnboardingDefaults(t *testing.T) {
	h := newHarness(t)

	res := h.run("", "settings", "set", "--help")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Regexp(t, `--max-posts-per-day int\s+Maximum posts per day \(default 3\)`, res.stdout)
	assert.Regexp(t, `--hashtags\s+Include hashtags \(default true\)`, res.stdout)
	assert.Regexp(t, `--approval-required\s+Require content approval \(default true\)`, res.stdout)
	assert.Contains(t, res.stdout, `(default "professional")`)
	assert.Contains(t, res.stdout, `(default "medium")`)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "shorter than max", input: "hello", maxLen: 10, want: "hello"},
		{name: "equal to max", input: "hello", maxLen: 5, want: "hello"},
		{name: "longer than max", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "very short max", input: "hello", maxLen: 3, want: "..."},
		{name: "runes", input: "héllo wörld", maxLen: 8, want: "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxLen))
		})
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "Go?"))
	assert.True(t, confirm(strings.NewReader(" YES \n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader("n\n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Go?"))
	assert.Contains(t, out.String(), "Go? [y/N]: ")
}
