package endpoint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/server/endpoint"
	"github.com/kbukum/statekit/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type node struct {
	*component.Base
}

func newNode(name string, opts ...component.Option) *node {
	n := &node{}
	opts = append([]component.Option{component.WithDomain(name), component.WithLogger(logger.Nop())}, opts...)
	n.Base = component.New(n, opts...)
	return n
}

// slow blocks GetState until released.
type slow struct {
	*node
	release chan struct{}
}

func (s *slow) GetState(ctx context.Context) state.Info {
	<-s.release
	return s.node.GetState(ctx)
}

type response struct {
	Status     string       `json:"status"`
	Service    string       `json:"service"`
	State      state.State  `json:"state"`
	Reason     string       `json:"reason"`
	Components []state.Info `json:"components"`
}

func serve(t *testing.T, h gin.HandlerFunc) (int, response) {
	t.Helper()
	r := gin.New()
	r.GET("/probe", h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/probe", http.NoBody))

	var body response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func initialized(t *testing.T) (*node, *node) {
	t.Helper()
	root := newNode("app")
	db := newNode("db")
	require.NoError(t, root.RegisterSubcomponent(db))
	require.NoError(t, root.Initialize(context.Background()))
	return root, db
}

func TestHealth_OK(t *testing.T) {
	root, _ := initialized(t)

	code, body := serve(t, endpoint.Health(endpoint.Config{ServiceName: "svc"}, root))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", body.Status)
	assert.Equal(t, "svc", body.Service)
	assert.Equal(t, state.OK, body.State)
	require.Len(t, body.Components, 1)
	assert.Equal(t, "app", body.Components[0].Name)
	assert.Equal(t, "db", body.Components[0].Components[0].Name)
}

func TestHealth_DegradedStillServes(t *testing.T) {
	root, db := initialized(t)
	db.UpdateState(context.Background(), state.To(state.Failed), state.Because("connection refused"))

	code, body := serve(t, endpoint.Health(endpoint.Config{}, root))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Status)
	app := body.Components[0]
	assert.Empty(t, app.Reason, "healthy nodes are reported without reason")
	assert.Equal(t, state.Failed, app.Components[0].State)
	assert.Equal(t, "connection refused", app.Components[0].Reason)
}

func TestHealth_Unavailable(t *testing.T) {
	for _, s := range []state.State{state.Failed, state.Unavailable, state.Initializing, state.Uninitialized} {
		t.Run(string(s), func(t *testing.T) {
			root := newNode("app")
			root.UpdateState(context.Background(), state.To(s), state.Because("down"))

			code, body := serve(t, endpoint.Health(endpoint.Config{}, root))

			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, "down", body.Status)
			assert.Equal(t, "down", body.Components[0].Reason)
		})
	}
}

func TestHealth_Timeout(t *testing.T) {
	root, _ := initialized(t)
	blocked := &slow{node: root, release: make(chan struct{})}
	defer close(blocked.release)

	code, body := serve(t, endpoint.Health(endpoint.Config{Timeout: 20 * time.Millisecond}, blocked))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", body.Status)
	assert.Equal(t, "health check timed out", body.Reason)
}

func TestReadiness(t *testing.T) {
	root, _ := initialized(t)
	code, body := serve(t, endpoint.Readiness(endpoint.Config{}, root))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body.Status)

	cold := newNode("cold")
	code, body = serve(t, endpoint.Readiness(endpoint.Config{}, cold))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Status)

	lazy := newNode("lazy", component.WithLazyStartup())
	code, _ = serve(t, endpoint.Readiness(endpoint.Config{}, lazy))
	assert.Equal(t, http.StatusOK, code)
}

func TestLiveness(t *testing.T) {
	code, body := serve(t, endpoint.Liveness("svc"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body.Status)
}

func TestRegisterAndMetrics(t *testing.T) {
	root, _ := initialized(t)
	r := gin.New()
	endpoint.Register(r, endpoint.Config{ServiceName: "svc"}, root)

	for _, path := range []string{"/health", "/ready", "/live"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `statekit_component_state{path="app.db",state="OK"} 1`), body)
	assert.Contains(t, body, `statekit_component_healthy{path="app"} 1`)
}
