package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbehnke/cdma-visualizer/internal/testhelpers"
	"github.com/dbehnke/cdma-visualizer/pkg/config"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

type testEnv struct {
	server *Server
	http   *httptest.Server
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	var logs bytes.Buffer
	log := logger.NewTestLogger(&logs)
	events := make(chan simulation.Event, 16)
	sim := simulation.NewFromConfig(cfg.Simulation, log, events)
	s := NewServer(cfg, log, sim, events, "test", "now")

	ctx, cancel := context.WithCancel(context.Background())
	s.startWorkers(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return &testEnv{server: s, http: ts, logs: &logs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, e.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(bytes.TrimSpace(raw)) > 0 && method != http.MethodHead {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func TestSimulateSuccess(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Post(env.http.URL+"/api/simulate", "application/json",
		strings.NewReader(`{"stations":["1","0"]}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"originalData": ["1", "0"],
		"walshCodes": [[1, 1], [1, -1]],
		"encodedSignals": [[1, 1], [-1, 1]],
		"combined": [0, 2],
		"decoded": [[1], [0]]
	}`, string(raw))
}

func TestSimulateScenarios(t *testing.T) {
	env := newTestEnv(t, nil)
	client := testhelpers.NewAPIClient(env.http.URL)

	for _, sc := range testhelpers.Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			status, resp, err := client.Simulate(sc.Stations)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, status, resp.Error)

			assert.Equal(t, sc.Stations, resp.OriginalData)
			assert.Len(t, resp.WalshCodes[0], sc.WalshSize)
			assert.Equal(t, sc.Combined, resp.Combined)
			assert.Equal(t, sc.Decoded(), resp.Decoded)
		})
	}
}

func TestSimulateLegacyRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodPost, "/simulate", `{"stations":["10","01","11"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{
		[]interface{}{1.0, 0.0},
		[]interface{}{0.0, 1.0},
		[]interface{}{1.0, 1.0},
	}, body["decoded"])
}

func TestSimulateClientErrors(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Simulation.MaxStations = 2
		cfg.Simulation.MaxBitLength = 4
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "No stations provided"},
		{"missing stations", `{}`, "No stations provided"},
		{"empty stations", `{"stations":[]}`, "No stations provided"},
		{"malformed", `{"stations":`, "Invalid request body"},
		{"wrong type", `{"stations":"101"}`, "Invalid request body"},
		{"invalid symbol", `{"stations":["101","1x1"]}`, "Station 2 has invalid data. Please use only 0s and 1s."},
		{"blank station", `{"stations":["  "]}`, "Station 1 has invalid data. Please use only 0s and 1s."},
		{"too long", `{"stations":["10101"]}`, "Station 1 has too much data (max 4 bits)."},
		{"unequal", `{"stations":["101","1"]}`, "Station 2 has 1 bits but station 1 has 3. All stations must have the same length."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/simulate", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.want, body["error"])
		})
	}

	status, body := env.do(t, http.MethodPost, "/api/simulate", `{"stations":["1","0","1"]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "too many stations")
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/simulate", "/simulate"} {
		status, body := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, status, path)
		assert.Equal(t, "Method not allowed", body["error"], path)
	}

	status, _ := env.do(t, http.MethodPost, "/api/walsh/4", "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodOptions, env.http.URL+"/api/simulate", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWalshEndpoint(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Simulation.MaxWalshSize = 8
	})

	status, body := env.do(t, http.MethodGet, "/api/walsh/4", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4.0, body["size"])
	assert.Equal(t, []interface{}{
		[]interface{}{1.0, 1.0, 1.0, 1.0},
		[]interface{}{1.0, -1.0, 1.0, -1.0},
		[]interface{}{1.0, 1.0, -1.0, -1.0},
		[]interface{}{1.0, -1.0, -1.0, 1.0},
	}, body["matrix"])

	status, _ = env.do(t, http.MethodGet, "/walsh/1", "")
	assert.Equal(t, http.StatusOK, status)

	for _, size := range []string{"0", "3", "-2", "abc", "4.0"} {
		status, body = env.do(t, http.MethodGet, "/api/walsh/"+size, "")
		assert.Equal(t, http.StatusBadRequest, status, size)
		assert.Equal(t, "Size must be a positive power of 2", body["error"], size)
	}

	status, body = env.do(t, http.MethodGet, "/api/walsh/16", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "exceeds limit of 8")

	assert.Equal(t, uint64(2), env.server.snapshot().MatricesServed)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/api/unknown", "/api/walsh", "/missing.txt"} {
		status, body := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "Route not found", body["error"], path)
	}
}

func TestStaticIndex(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.http.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "CDMA Visualizer")
}

func TestHealthAndSystemInfo(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = env.do(t, http.MethodGet, "/api/system/info", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, 32.0, body["maxStations"])
}

func TestStatsAndHistory(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Simulation.HistorySize = 2
	})

	env.do(t, http.MethodPost, "/api/simulate", `{"stations":["1","0"]}`)
	env.do(t, http.MethodPost, "/api/simulate", `{"stations":["2"]}`)
	env.do(t, http.MethodPost, "/api/simulate", `{"stations":["11","00","10"]}`)

	require.Eventually(t, func() bool {
		return env.server.snapshot().TotalSimulations == 3
	}, 2*time.Second, 10*time.Millisecond)

	status, body := env.do(t, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3.0, body["totalSimulations"])
	assert.Equal(t, 1.0, body["clientErrors"])
	assert.Equal(t, 0.0, body["failedSimulations"])
	assert.Equal(t, 5.0, body["stationsProcessed"])

	status, body = env.do(t, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusOK, status)
	history, ok := body["history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 2)

	newest := history[0].(map[string]interface{})
	assert.Equal(t, simulation.EventSimulated, newest["type"])
	assert.Equal(t, 3.0, newest["stations"])
	assert.Equal(t, 4.0, newest["walshSize"])
	assert.Equal(t, []interface{}{"11", "00", "10"}, newest["originalData"])

	failed := history[1].(map[string]interface{})
	assert.Equal(t, simulation.EventFailed, failed["type"])
	assert.Contains(t, failed["error"], "Station 1 has invalid data")

	_, body = env.do(t, http.MethodGet, "/api/history?limit=1", "")
	assert.Len(t, body["history"], 1)
}

type wsMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func TestWebSocketBroadcast(t *testing.T) {
	env := newTestEnv(t, nil)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var hello wsMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "stats_update", hello.Type)
	assert.Contains(t, hello.Data, "totalSimulations")

	require.Eventually(t, func() bool {
		return env.server.websocketHub.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.do(t, http.MethodPost, "/api/simulate", `{"stations":["01","10"]}`)

	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "simulation", msg.Type)
	assert.Equal(t, simulation.EventSimulated, msg.Data["type"])
	result, ok := msg.Data["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{0.0, -2.0, 0.0, 2.0}, result["combined"])
}

func TestWebSocketDisabled(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.WebSocket.Enabled = false
	})

	status, body := env.do(t, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", body["error"])
}

func TestRecoveryMiddleware(t *testing.T) {
	var logs bytes.Buffer
	s := NewServer(config.Default(), logger.NewTestLogger(&logs), simulation.New(simulation.Options{}), nil, "test", "now")

	handler := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/simulate", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong!"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "Handler panic")
}

func TestStartRejectsSecondStart(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	s := NewServer(cfg, logger.Nop(), simulation.New(simulation.Options{}), nil, "test", "now")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.running
	}, 2*time.Second, 10*time.Millisecond)

	assert.Error(t, s.Start(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
