package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/models"
)

func testAlerts() []models.Alert {
	return []models.Alert{
		{
			ID:        2,
			ScanID:    7,
			DeviceIP:  "10.0.0.2",
			AlertType: models.AlertNewOpenPort,
			Message:   "New open port 445 on 10.0.0.2",
			Severity:  models.SeverityMedium,
			CreatedAt: fixtureTime,
		},
		{
			ID:        1,
			ScanID:    7,
			DeviceIP:  "10.0.0.5",
			AlertType: models.AlertNewDevice,
			Message:   "New device detected: 10.0.0.5",
			Severity:  models.SeverityLow,
			Notified:  true,
			CreatedAt: fixtureTime,
		},
	}
}

func TestAlertHandler_List(t *testing.T) {
	t.Run("configured default limit", func(t *testing.T) {
		env := newTestEnv(t)
		env.alerts.EXPECT().ListAlerts(gomock.Any(), 100).Return(testAlerts(), nil)

		rec := env.do(http.MethodGet, "/api/alerts", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[map[string]interface{}](t, rec)
		assert.EqualValues(t, 2, body["count"])
		first := body["alerts"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "NEW_OPEN_PORT", first["alert_type"])
		assert.Equal(t, "MEDIUM", first["severity"])
		assert.Equal(t, false, first["notified"])
	})

	t.Run("explicit limit", func(t *testing.T) {
		env := newTestEnv(t)
		env.alerts.EXPECT().ListAlerts(gomock.Any(), 5).Return(nil, nil)

		rec := env.do(http.MethodGet, "/api/alerts?limit=5", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"alerts":[],"count":0}`, rec.Body.String())
	})

	t.Run("negative limit", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/alerts?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAlertHandler_Unnotified(t *testing.T) {
	env := newTestEnv(t)
	env.alerts.EXPECT().ListUnnotified(gomock.Any(), 100).Return(testAlerts()[:1], nil)

	rec := env.do(http.MethodGet, "/api/alerts/unnotified", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[AlertListResponse](t, rec)
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.Alerts[0].Notified)
}

func TestAlertHandler_Retry(t *testing.T) {
	t.Run("dispatches pending", func(t *testing.T) {
		env := newTestEnv(t)
		env.retrier.On("Retry", mock.Anything).Return(3, nil)
		env.retrier.On("Pending", mock.Anything).Return(0, nil)

		rec := env.do(http.MethodPost, "/api/alerts/retry", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, RetryResponse{Status: "retried", Dispatched: 3}, decode[RetryResponse](t, rec))
	})

	t.Run("webhook missing", func(t *testing.T) {
		env := newTestEnv(t)
		env.retrier.On("Retry", mock.Anything).
			Return(0, errors.ErrServiceUnavailable("discord", nil))

		rec := env.do(http.MethodPost, "/api/alerts/retry", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("dispatch failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.retrier.On("Retry", mock.Anything).
			Return(0, errors.ErrNotification("discord", assert.AnError))

		rec := env.do(http.MethodPost, "/api/alerts/retry", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed to retry alert dispatch")
	})
}
