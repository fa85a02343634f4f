package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	enrichmocks "github.com/anstrom/netsentinel/internal/enrich/mocks"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/scanning"
	storemocks "github.com/anstrom/netsentinel/internal/store/mocks"
)

var fixtureTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type mockController struct {
	mock.Mock
}

func (m *mockController) Start(req scanning.Request) error {
	return m.Called(req).Error(0)
}

func (m *mockController) Status() scanning.Status {
	return m.Called().Get(0).(scanning.Status)
}

type mockRetrier struct {
	mock.Mock
}

func (m *mockRetrier) Retry(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRetrier) Pending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) WebhookURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockNotifier) SendTest(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// testEnv wires a HandlerManager to mocks and serves it through a real
// router so path variables resolve.
type testEnv struct {
	scans      *storemocks.MockScanStore
	alerts     *storemocks.MockAlertStore
	settings   *storemocks.MockSettingsStore
	enricher   *enrichmocks.MockEnricher
	controller *mockController
	retrier    *mockRetrier
	notifier   *mockNotifier
	router     *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	env := &testEnv{
		scans:      storemocks.NewMockScanStore(ctrl),
		alerts:     storemocks.NewMockAlertStore(ctrl),
		settings:   storemocks.NewMockSettingsStore(ctrl),
		enricher:   enrichmocks.NewMockEnricher(ctrl),
		controller: &mockController{},
		retrier:    &mockRetrier{},
		notifier:   &mockNotifier{},
		router:     mux.NewRouter(),
	}
	t.Cleanup(func() {
		env.controller.AssertExpectations(t)
		env.retrier.AssertExpectations(t)
		env.notifier.AssertExpectations(t)
	})

	hm := New(Dependencies{
		Scans:          env.scans,
		Alerts:         env.alerts,
		Settings:       env.settings,
		Controller:     env.controller,
		Retrier:        env.retrier,
		Notifier:       env.notifier,
		Enricher:       env.enricher,
		Version:        "test",
		Model:          "llama3.2",
		AlertListLimit: 100,
		Logger:         logging.Discard(),
	})
	env.router.HandleFunc("/", hm.Index).Methods(http.MethodGet)
	hm.RegisterRoutes(env.router.PathPrefix("/api").Subrouter())
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func fixtureSnapshot() *models.Snapshot {
	s := models.NewSnapshot("10.0.0.0/24", fixtureTime, []models.Device{
		{
			IP:       "10.0.0.2",
			MAC:      "aa:bb:cc:00:00:02",
			Hostname: models.StringPtr("nas.lan"),
			Vendor:   "Synology",
			Ports:    []models.Port{{Port: 22, Service: "ssh"}, {Port: 445, Service: "microsoft-ds"}},
			Risk:     models.RiskAssessment{Score: 45, Level: models.RiskMedium, Reasons: []string{"SMB exposed"}},
		},
		{
			IP:   "10.0.0.5",
			MAC:  "aa:bb:cc:00:00:05",
			Risk: models.RiskAssessment{Score: 10, Level: models.RiskLow, Reasons: []string{"Unknown vendor"}},
		},
	})
	s.ID = 7
	return s
}
