package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/queue"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingNotifier struct {
	mu       sync.Mutex
	enqueued []int64
	executed []int64
}

func (n *recordingNotifier) CommandEnqueued(id int64, _ models.Action) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enqueued = append(n.enqueued, id)
}

func (n *recordingNotifier) CommandExecuted(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.executed = append(n.executed, id)
}

func newTestServer(t *testing.T) (*Server, *queue.Store, *recordingNotifier) {
	t.Helper()
	store, err := queue.Open(filepath.Join(t.TempDir(), "modqueue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	notifier := &recordingNotifier{}
	s := NewServer("")
	SetupQueueRoutes(s, RoutesConfig{
		Store:     store,
		Auth:      NewAuthenticator(testSecret),
		Notifier:  notifier,
		Instance:  "test",
		BatchSize: queue.DefaultBatchSize,
		Now:       func() time.Time { return time.UnixMilli(1700000000000) },
	})
	return s, store, notifier
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthNeedsNoSecret(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, path := range []string{"/", "/api/health"} {
		w := do(t, s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		decode(t, w, &body)
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, "test", body["instance"])
		assert.EqualValues(t, 1700000000000, body["timestamp"])
	}
}

func TestSubmitWithWrongSecretIsRejected(t *testing.T) {
	s, store, notifier := newTestServer(t)

	w := do(t, s, http.MethodPost, "/command", `{"action":"ban","data":{"userId":"123"},"secret":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/command", `{"action":"ban","data":{"userId":"123"}}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodPost, "/command", `{"action":"ban","data":{"userId":"123"},"secret":"S3CRET"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "the secret is case-sensitive")

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Pending)
	assert.Zero(t, st.Bans)
	assert.Empty(t, notifier.enqueued)
}

func TestBanScenarioOverHTTP(t *testing.T) {
	s, _, notifier := newTestServer(t)

	w := do(t, s, http.MethodPost, "/command", `{"action":"ban","data":{"userId":"123","reason":"cheating"},"secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var submitted struct {
		Success   bool  `json:"success"`
		CommandID int64 `json:"commandId"`
	}
	decode(t, w, &submitted)
	assert.True(t, submitted.Success)
	assert.Positive(t, submitted.CommandID)
	assert.Equal(t, []int64{submitted.CommandID}, notifier.enqueued)

	w = do(t, s, http.MethodGet, "/commands?secret=s3cret", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []struct {
		ID        int64           `json:"id"`
		Action    string          `json:"action"`
		Data      json.RawMessage `json:"data"`
		CreatedAt int64           `json:"created_at"`
	}
	decode(t, w, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.CommandID, pending[0].ID)
	assert.Equal(t, "ban", pending[0].Action)
	assert.JSONEq(t, `{"userId":"123","reason":"cheating"}`, string(pending[0].Data))

	w = do(t, s, http.MethodGet, "/bans", "", SecretHeader, testSecret)
	require.Equal(t, http.StatusOK, w.Code)
	var bans []map[string]interface{}
	decode(t, w, &bans)
	require.Len(t, bans, 1)
	assert.Equal(t, "123", bans[0]["roblox_id"])
	assert.Nil(t, bans[0]["expires_at"])

	w = do(t, s, http.MethodPost, "/commands/complete", `{"commandId":`+jsonInt(submitted.CommandID)+`,"secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	// second acknowledgement is still ok but does not notify again
	w = do(t, s, http.MethodPost, "/commands/complete", `{"commandId":"`+jsonInt(submitted.CommandID)+`","secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{submitted.CommandID}, notifier.executed)

	w = do(t, s, http.MethodGet, "/commands?secret=s3cret", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSubmitValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing action", `{"data":{"userId":"1"},"secret":"s3cret"}`, "Missing action or data"},
		{"missing data", `{"action":"kick","secret":"s3cret"}`, "Missing action or data"},
		{"null data", `{"action":"kick","data":null,"secret":"s3cret"}`, "Missing action or data"},
		{"ban without user", `{"action":"ban","data":{"reason":"x"},"secret":"s3cret"}`, "ban requires userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/command", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestCompleteRequiresCommandID(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/commands/complete", `{"secret":"s3cret"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing commandId"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/commands/complete", `{"commandId":424242,"secret":"s3cret"}`)
	assert.Equal(t, http.StatusOK, w.Code, "unknown ids are acknowledged")
}

func TestPendingLimit(t *testing.T) {
	s, store, _ := newTestServer(t)

	for i := 0; i < 5; i++ {
		_, err := store.Enqueue(context.Background(), models.ActionAnnounce, json.RawMessage(`{"message":"hi"}`))
		require.NoError(t, err)
	}

	w := do(t, s, http.MethodGet, "/commands?secret=s3cret&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []map[string]interface{}
	decode(t, w, &pending)
	assert.Len(t, pending, 2)

	w = do(t, s, http.MethodGet, "/commands?secret=s3cret&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSingleBanAndGroups(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/bans/55?secret=s3cret", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/command", `{"action":"ban","data":{"userId":55,"reason":"r","expiresAt":1800000000000},"secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodPost, "/command", `{"action":"blacklistcrew","data":{"groupId":"9"},"secret":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/bans/55?secret=s3cret", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ban map[string]interface{}
	decode(t, w, &ban)
	assert.EqualValues(t, 1800000000000, ban["expires_at"])

	w = do(t, s, http.MethodGet, "/blacklistedcrews?secret=s3cret", "")
	require.Equal(t, http.StatusOK, w.Code)
	var groups []map[string]interface{}
	decode(t, w, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "9", groups[0]["group_id"])
	assert.Equal(t, "System", groups[0]["blacklisted_by"])

	w = do(t, s, http.MethodGet, "/api/stats?secret=s3cret", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Queue queue.Stats `json:"queue"`
	}
	decode(t, w, &stats)
	assert.Equal(t, int64(2), stats.Queue.Pending)
	assert.Equal(t, int64(1), stats.Queue.Bans)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))

	w = do(t, s, http.MethodDelete, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecoveryAnswers500(t *testing.T) {
	s := NewServer("")
	s.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(t, s, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
