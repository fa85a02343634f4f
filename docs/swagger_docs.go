// Package docs provides Swagger documentation for the netsentinel API.
//
// This file contains the API endpoint documentation as swaggo annotations.
// Run `swag init` to regenerate the OpenAPI specification in ./swagger.
//
//go:generate swag init -g swagger_docs.go -o ./swagger --parseDependency --parseInternal
package docs

import (
	"net/http"
	"time"
)

// @title Network Sentinel API
// @version 1.0.0
// @description Home and small-office network monitor. Sweeps a subnet, probes common ports,
// @description scores every device for risk, keeps a scan history and raises alerts on changes.
// @description
// @description ## Authentication
// @description When authentication is enabled, every /api endpoint except /api/health requires an
// @description API key in the `X-API-Key` header or as `Authorization: Bearer <key>`.
//
// @contact.name netsentinel
// @contact.url https://github.com/anstrom/netsentinel
//
// @license.name MIT
//
// @host localhost:8080
// @BasePath /api
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime" example:"2h30m45s"`
	Checks    map[string]string `json:"checks"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Not Found"`
	Message   string    `json:"message" example:"No scan results found. Run a scan first."`
	Code      string    `json:"code,omitempty" example:"NOT_FOUND"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty" example:"0b5e6f0e-3c1d-4f7a-9a63-3f2d3c1e9b10"`
}

// StatusResponse acknowledges an action
type StatusResponse struct {
	Status  string `json:"status" example:"started"`
	Message string `json:"message" example:"Scan initiated in background"`
}

// StartScanRequest starts a scan
type StartScanRequest struct {
	Network   string `json:"network,omitempty" example:"192.168.1.0/24"`
	ScanPorts bool   `json:"scan_ports" example:"true"`
}

// PortResponse is an open port
type PortResponse struct {
	Port    int    `json:"port" example:"22"`
	Service string `json:"service" example:"SSH"`
}

// RiskResponse is a device's risk assessment
type RiskResponse struct {
	Score   int      `json:"score" example:"35"`
	Level   string   `json:"level" example:"MEDIUM" enums:"MINIMAL,LOW,MEDIUM,HIGH"`
	Reasons []string `json:"reasons" example:"Remote access port 22 (SSH) open"`
}

// DeviceResponse is one device of a snapshot
type DeviceResponse struct {
	IP       string         `json:"ip" example:"192.168.1.20"`
	MAC      string         `json:"mac" example:"b8:27:eb:12:34:56"`
	Hostname *string        `json:"hostname" example:"raspberrypi.lan"`
	Vendor   string         `json:"vendor" example:"Raspberry Pi Foundation"`
	Ports    []PortResponse `json:"ports"`
	Risk     RiskResponse   `json:"risk"`
}

// SnapshotResponse is a completed scan
type SnapshotResponse struct {
	ID          int64            `json:"id" example:"12"`
	ScanTime    time.Time        `json:"scan_time"`
	Network     string           `json:"network" example:"192.168.1.0/24"`
	DeviceCount int              `json:"device_count" example:"14"`
	Devices     []DeviceResponse `json:"devices"`
}

// HistoryEntryResponse summarizes one scan
type HistoryEntryResponse struct {
	ID               int64     `json:"id" example:"12"`
	ScanTime         time.Time `json:"scan_time"`
	Network          string    `json:"network" example:"192.168.1.0/24"`
	DeviceCount      int       `json:"device_count" example:"14"`
	HighRiskCount    int       `json:"high_risk_count" example:"1"`
	MediumRiskCount  int       `json:"medium_risk_count" example:"3"`
	LowRiskCount     int       `json:"low_risk_count" example:"6"`
	MinimalRiskCount int       `json:"minimal_risk_count" example:"4"`
	TotalOpenPorts   int       `json:"total_open_ports" example:"21"`
}

// HistoryResponse lists scans, most recent first
type HistoryResponse struct {
	Scans []HistoryEntryResponse `json:"scans"`
	Count int                    `json:"count" example:"1"`
}

// ScanStatusResponse is the orchestrator state
type ScanStatusResponse struct {
	State          string     `json:"state" example:"IDLE" enums:"IDLE,RUNNING,COMPLETED,FAILED"`
	ScanInProgress bool       `json:"scan_in_progress" example:"false"`
	Network        string     `json:"network,omitempty" example:"192.168.1.0/24"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	LastScanID     int64      `json:"last_scan_id,omitempty" example:"12"`
	LastScanTime   *time.Time `json:"last_scan_time,omitempty"`
	LastResult     string     `json:"last_result,omitempty" example:"COMPLETED"`
	LastError      string     `json:"last_error,omitempty"`
}

// AlertResponse is a detected change
type AlertResponse struct {
	ID        int64     `json:"id" example:"40"`
	ScanID    int64     `json:"scan_id" example:"12"`
	DeviceIP  string    `json:"device_ip" example:"192.168.1.20"`
	AlertType string    `json:"alert_type" example:"NEW_DEVICE" enums:"NEW_DEVICE,NEW_HIGH_RISK,RISK_ESCALATION,NEW_OPEN_PORT"`
	Message   string    `json:"message" example:"New device detected: 192.168.1.20"`
	Severity  string    `json:"severity" example:"LOW" enums:"MINIMAL,LOW,MEDIUM,HIGH"`
	Notified  bool      `json:"notified" example:"true"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertListResponse lists alerts
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Count  int             `json:"count" example:"1"`
}

// RetryResponse reports a dispatch retry
type RetryResponse struct {
	Status     string `json:"status" example:"retried"`
	Dispatched int    `json:"dispatched" example:"3"`
	Pending    int    `json:"pending" example:"0"`
}

// RiskCountsResponse counts devices per level
type RiskCountsResponse struct {
	High    int `json:"HIGH" example:"1"`
	Medium  int `json:"MEDIUM" example:"3"`
	Low     int `json:"LOW" example:"6"`
	Minimal int `json:"MINIMAL" example:"4"`
}

// SummaryResponse is the AI quick summary
type SummaryResponse struct {
	Summary      string             `json:"summary" example:"14 devices, one exposes Telnet."`
	RiskCounts   RiskCountsResponse `json:"risk_counts"`
	TotalDevices int                `json:"total_devices" example:"14"`
}

// AnalyzeRequest selects the devices to analyze
type AnalyzeRequest struct {
	DeviceIP string `json:"device_ip,omitempty" example:"192.168.1.20"`
}

// AnalysisResponse is the AI security analysis
type AnalysisResponse struct {
	Analysis        string    `json:"analysis"`
	AnalyzedDevices int       `json:"analyzed_devices" example:"14"`
	Model           string    `json:"model" example:"llama3.2:1b"`
	Timestamp       time.Time `json:"timestamp"`
}

// OllamaStatusResponse describes the model runtime
type OllamaStatusResponse struct {
	Available      bool     `json:"available" example:"true"`
	Host           string   `json:"host" example:"http://localhost:11434"`
	Model          string   `json:"model" example:"llama3.2:1b"`
	ModelAvailable bool     `json:"model_available" example:"true"`
	Models         []string `json:"models" example:"llama3.2:1b"`
	Message        string   `json:"message,omitempty"`
}

// DiscordSettingsRequest stores the webhook URL
type DiscordSettingsRequest struct {
	WebhookURL string `json:"webhook_url" example:"https://discord.com/api/webhooks/123/abc"`
}

// DiscordSettingsResponse reports the webhook configuration
type DiscordSettingsResponse struct {
	Configured       bool    `json:"configured" example:"true"`
	WebhookURLMasked *string `json:"webhook_url_masked" example:"https://discord.com/api/webhooks/123/abc..."`
}

// StatsResponse aggregates the history
type StatsResponse struct {
	HasData           bool                `json:"has_data" example:"true"`
	Message           string              `json:"message,omitempty"`
	TotalScans        int                 `json:"total_scans" example:"30"`
	LatestDeviceCount int                 `json:"latest_device_count" example:"14"`
	RiskCounts        *RiskCountsResponse `json:"risk_counts,omitempty"`
	TotalOpenPorts    int                 `json:"total_open_ports" example:"21"`
	UnnotifiedAlerts  int                 `json:"unnotified_alerts" example:"0"`
	LastScanTime      *time.Time          `json:"last_scan_time,omitempty"`
}

// Health godoc
// @Summary Health check
// @Description Returns service health including database connectivity. Never requires authentication.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Failure 429 {object} ErrorResponse
// @Router /health [get]
// @ID getHealth
func Health(_ http.ResponseWriter, _ *http.Request) {}

// StartScan godoc
// @Summary Start scan
// @Description Starts a scan in the background. Poll /scan/status or /scan/latest for the result.
// @Tags Scans
// @Accept json
// @Produce json
// @Param scan body StartScanRequest false "Scan options"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/start [post]
// @ID startScan
func StartScan(_ http.ResponseWriter, _ *http.Request) {}

// ScanStatus godoc
// @Summary Scan status
// @Description Returns the orchestrator state
// @Tags Scans
// @Produce json
// @Success 200 {object} ScanStatusResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/status [get]
// @ID getScanStatus
func ScanStatus(_ http.ResponseWriter, _ *http.Request) {}

// LatestScan godoc
// @Summary Latest scan
// @Description Returns the most recent completed snapshot
// @Tags Scans
// @Produce json
// @Success 200 {object} SnapshotResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/latest [get]
// @ID getLatestScan
func LatestScan(_ http.ResponseWriter, _ *http.Request) {}

// ScanHistory godoc
// @Summary Scan history
// @Description Lists scan summaries, most recent first
// @Tags Scans
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/history [get]
// @ID listScanHistory
func ScanHistory(_ http.ResponseWriter, _ *http.Request) {}

// GetScan godoc
// @Summary Get scan
// @Description Returns one stored snapshot
// @Tags Scans
// @Produce json
// @Param id path int true "Scan ID"
// @Success 200 {object} SnapshotResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/history/{id} [get]
// @ID getScan
func GetScan(_ http.ResponseWriter, _ *http.Request) {}

// GetDevice godoc
// @Summary Get device
// @Description Returns one device from the latest snapshot
// @Tags Scans
// @Produce json
// @Param ip path string true "Device IP"
// @Success 200 {object} DeviceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /scan/device/{ip} [get]
// @ID getDevice
func GetDevice(_ http.ResponseWriter, _ *http.Request) {}

// ListAlerts godoc
// @Summary List alerts
// @Description Lists alerts, newest first
// @Tags Alerts
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} AlertListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts [get]
// @ID listAlerts
func ListAlerts(_ http.ResponseWriter, _ *http.Request) {}

// ListUnnotifiedAlerts godoc
// @Summary List undelivered alerts
// @Description Lists alerts whose webhook dispatch has not succeeded, oldest first
// @Tags Alerts
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} AlertListResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/unnotified [get]
// @ID listUnnotifiedAlerts
func ListUnnotifiedAlerts(_ http.ResponseWriter, _ *http.Request) {}

// RetryAlerts godoc
// @Summary Retry alert dispatch
// @Description Re-sends undelivered alerts and marks the successes
// @Tags Alerts
// @Produce json
// @Success 200 {object} RetryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /alerts/retry [post]
// @ID retryAlerts
func RetryAlerts(_ http.ResponseWriter, _ *http.Request) {}

// QuickSummary godoc
// @Summary AI quick summary
// @Description Short model-generated overview of the latest scan
// @Tags AI
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /ai/quick-summary [get]
// @ID getQuickSummary
func QuickSummary(_ http.ResponseWriter, _ *http.Request) {}

// Analyze godoc
// @Summary AI security analysis
// @Description Detailed model-generated review of the latest scan, optionally for one device
// @Tags AI
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest false "Device selection"
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /ai/analyze [post]
// @ID analyze
func Analyze(_ http.ResponseWriter, _ *http.Request) {}

// OllamaStatus godoc
// @Summary Model runtime status
// @Description Reports whether the Ollama runtime and the configured model are available
// @Tags AI
// @Produce json
// @Success 200 {object} OllamaStatusResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /ollama/status [get]
// @ID getOllamaStatus
func OllamaStatus(_ http.ResponseWriter, _ *http.Request) {}

// GetDiscordSettings godoc
// @Summary Discord settings
// @Description Reports whether a webhook is configured. The URL is masked.
// @Tags Settings
// @Produce json
// @Success 200 {object} DiscordSettingsResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /settings/discord [get]
// @ID getDiscordSettings
func GetDiscordSettings(_ http.ResponseWriter, _ *http.Request) {}

// SaveDiscordSettings godoc
// @Summary Save Discord settings
// @Description Stores the webhook URL alerts are sent to
// @Tags Settings
// @Accept json
// @Produce json
// @Param settings body DiscordSettingsRequest true "Webhook"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /settings/discord [post]
// @ID saveDiscordSettings
func SaveDiscordSettings(_ http.ResponseWriter, _ *http.Request) {}

// TestDiscord godoc
// @Summary Send test notification
// @Description Sends one test alert to the configured webhook
// @Tags Settings
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /settings/discord/test [post]
// @ID testDiscord
func TestDiscord(_ http.ResponseWriter, _ *http.Request) {}

// Stats godoc
// @Summary Dashboard statistics
// @Description Aggregates the latest scan and the history
// @Tags Reports
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 401 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /stats [get]
// @ID getStats
func Stats(_ http.ResponseWriter, _ *http.Request) {}

// ReportPDF godoc
// @Summary PDF report
// @Description Renders a snapshot as a PDF security report
// @Tags Reports
// @Produce application/pdf
// @Param scan_id query int false "Scan ID, defaults to the latest"
// @Param include_ai query bool false "Append the AI analysis"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /report/pdf [get]
// @ID getReportPDF
func ReportPDF(_ http.ResponseWriter, _ *http.Request) {}
