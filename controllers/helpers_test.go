// file: controllers/helpers_test.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go-live-polls/services"
)

// stubWebSocket records that the upgrade route reached it.
type stubWebSocket struct{ called bool }

func (s *stubWebSocket) ServeWs(w http.ResponseWriter, _ *http.Request) {
	s.called = true
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type testDeps struct {
	sessions *services.MockSessionService
	polls    *services.MockPollService
	votes    *services.MockVoteService
	ws       *stubWebSocket
}

// setupTestRouter creates a Gin engine with cookie sessions and every route
// wired to mocked services.
func setupTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))

	deps := &testDeps{
		sessions: &services.MockSessionService{},
		polls:    &services.MockPollService{},
		votes:    &services.MockVoteService{},
		ws:       &stubWebSocket{},
	}
	sc := NewSessionController(deps.sessions, "http://localhost:8080")
	sc.QREncoder = fakeQREncoder
	pc := NewPollController(deps.polls, deps.votes)
	RegisterRoutes(router, sc, pc, deps.ws)

	t.Cleanup(func() {
		deps.sessions.AssertExpectations(t)
		deps.polls.AssertExpectations(t)
		deps.votes.AssertExpectations(t)
	})
	return router, deps
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
