package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/scanning"
)

func TestScanHandler_StartScan(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		setup    func(c *mockController)
		expected int
		message  string
	}{
		{
			name: "empty body scans ports by default",
			setup: func(c *mockController) {
				c.On("Start", scanning.Request{ScanPorts: true}).Return(nil)
			},
			expected: http.StatusOK,
			message:  "Scan initiated in background",
		},
		{
			name: "explicit network without ports",
			body: map[string]interface{}{"network": "192.168.1.0/24", "scan_ports": false},
			setup: func(c *mockController) {
				c.On("Start", scanning.Request{Network: "192.168.1.0/24", ScanPorts: false}).Return(nil)
			},
			expected: http.StatusOK,
		},
		{
			name:     "invalid cidr",
			body:     map[string]interface{}{"network": "192.168.1.0/99"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "unknown field",
			body:     map[string]interface{}{"target": "10.0.0.0/8"},
			expected: http.StatusBadRequest,
		},
		{
			name: "already running",
			setup: func(c *mockController) {
				c.On("Start", scanning.Request{ScanPorts: true}).Return(errors.ErrAlreadyRunning())
			},
			expected: http.StatusConflict,
			message:  "Scan already in progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env.controller)
			}

			rec := env.do(http.MethodPost, "/api/scan/start", tt.body)
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
			if tt.message != "" {
				assert.Contains(t, rec.Body.String(), tt.message)
			}
		})
	}
}

func TestScanHandler_Latest(t *testing.T) {
	t.Run("returns snapshot", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)

		rec := env.do(http.MethodGet, "/api/scan/latest", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "10.0.0.0/24", body["network"])
		assert.EqualValues(t, 2, body["device_count"])
		devices := body["devices"].([]interface{})
		first := devices[0].(map[string]interface{})
		assert.Equal(t, "10.0.0.2", first["ip"])
		assert.Contains(t, first, "risk")
		second := devices[1].(map[string]interface{})
		assert.Nil(t, second["hostname"])
	})

	t.Run("no scan yet", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).Return(nil, errors.ErrNotFound("scan"))

		rec := env.do(http.MethodGet, "/api/scan/latest", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "No scan results found. Run a scan first.", body.Message)
		assert.Equal(t, string(errors.CodeNotFound), body.Code)
	})

	t.Run("store failure hides details", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Latest(gomock.Any()).
			Return(nil, errors.ErrDatabaseQuery("SELECT secret", assert.AnError))

		rec := env.do(http.MethodGet, "/api/scan/latest", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "SELECT secret")
	})
}

func TestScanHandler_History(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().List(gomock.Any(), defaultListLimit).
			Return([]models.HistoryEntry{fixtureSnapshot().Summary()}, nil)

		rec := env.do(http.MethodGet, "/api/scan/history", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[HistoryResponse](t, rec)
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, int64(7), body.Scans[0].ID)
		assert.Equal(t, 2, body.Scans[0].TotalOpenPorts)
	})

	t.Run("limit capped", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().List(gomock.Any(), maxListLimit).Return(nil, nil)

		rec := env.do(http.MethodGet, "/api/scan/history?limit=5000", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"scans":[],"count":0}`, rec.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/scan/history?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScanHandler_GetScan(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Get(gomock.Any(), int64(7)).Return(fixtureSnapshot(), nil)

		rec := env.do(http.MethodGet, "/api/scan/history/7", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		env := newTestEnv(t)
		env.scans.EXPECT().Get(gomock.Any(), int64(99)).Return(nil, errors.ErrNotFound("scan"))

		rec := env.do(http.MethodGet, "/api/scan/history/99", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Scan 99 not found")
	})

	t.Run("zero id", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/scan/history/0", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScanHandler_Device(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		latest   bool
		expected int
	}{
		{name: "present", ip: "10.0.0.2", latest: true, expected: http.StatusOK},
		{name: "absent", ip: "10.0.0.9", latest: true, expected: http.StatusNotFound},
		{name: "not an ip", ip: "nas.lan", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.latest {
				env.scans.EXPECT().Latest(gomock.Any()).Return(fixtureSnapshot(), nil)
			}

			rec := env.do(http.MethodGet, "/api/scan/device/"+tt.ip, nil)
			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusOK {
				device := decode[models.Device](t, rec)
				assert.Equal(t, models.RiskMedium, device.Risk.Level)
			}
		})
	}
}

func TestScanHandler_Status(t *testing.T) {
	env := newTestEnv(t)
	env.controller.On("Status").Return(scanning.Status{
		State:          scanning.StateRunning,
		ScanInProgress: true,
		Network:        "10.0.0.0/24",
	})

	rec := env.do(http.MethodGet, "/api/scan/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "RUNNING", body["state"])
	assert.Equal(t, true, body["scan_in_progress"])
}
