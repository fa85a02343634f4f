// Package risk scores devices from their observable facts. Scoring is a pure
// function of the input: the same facts always yield the same assessment.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anstrom/netsentinel/internal/models"
)

// Class groups service rules that share a weight.
type Class int

const (
	// ClassHighRisk covers cleartext or commonly unauthenticated services.
	ClassHighRisk Class = iota
	// ClassRemoteAccess covers remote-management ports.
	ClassRemoteAccess
)

// ServiceRule describes one port the scorer reacts to.
type ServiceRule struct {
	Port    int
	Service string
	Why     string
	Class   Class
}

// ServiceRules is the fixed port rule table.
var ServiceRules = []ServiceRule{
	{21, "FTP", "Unencrypted file transfer", ClassHighRisk},
	{23, "Telnet", "Unencrypted remote access", ClassHighRisk},
	{445, "SMB", "Potential ransomware vector", ClassHighRisk},
	{1883, "MQTT", "Unauthenticated message broker", ClassHighRisk},
	{6379, "Redis", "Database exposed - often no auth", ClassHighRisk},
	{27017, "MongoDB", "Database exposed - often no auth", ClassHighRisk},
	{22, "SSH", "Remote access enabled", ClassRemoteAccess},
	{3389, "RDP", "Remote desktop exposure", ClassRemoteAccess},
	{5900, "VNC", "Remote desktop exposure", ClassRemoteAccess},
}

// Reasons that are not tied to a port.
const (
	ReasonNewDevice          = "new device on network"
	ReasonUnknownVendor      = "unknown vendor"
	ReasonUnresolvedHostname = "hostname not resolved"
	ReasonNoExposedServices  = "no exposed services"
)

// Threshold maps a minimum score to a level.
type Threshold struct {
	Min   int
	Level models.RiskLevel
}

// Thresholds are ordered from the highest level down.
var Thresholds = []Threshold{
	{70, models.RiskHigh},
	{40, models.RiskMedium},
	{15, models.RiskLow},
	{0, models.RiskMinimal},
}

const (
	minScore = 0
	maxScore = 100
)

// Weights are the score contributions of each rule.
type Weights struct {
	HighRiskService int
	RemoteAccess    int
	NewDevice       int
	UnknownIdentity int
}

// DefaultWeights returns the stock rule weights.
func DefaultWeights() Weights {
	return Weights{
		HighRiskService: 70,
		RemoteAccess:    25,
		NewDevice:       10,
		UnknownIdentity: 10,
	}
}

// Input holds the facts the scorer looks at.
type Input struct {
	Ports            []models.Port
	Vendor           string
	HostnameResolved bool
	// FirstSeen is true when the device was absent from the previous
	// snapshot, or there is no previous snapshot.
	FirstSeen bool
}

// InputFor extracts scorer input from a device.
func InputFor(d *models.Device, firstSeen bool) Input {
	return Input{
		Ports:            d.Ports,
		Vendor:           d.Vendor,
		HostnameResolved: d.Hostname != nil && *d.Hostname != "",
		FirstSeen:        firstSeen,
	}
}

// Scorer applies the rule table.
type Scorer struct {
	weights Weights
	rules   map[int]ServiceRule
}

// NewScorer builds a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	rules := make(map[int]ServiceRule, len(ServiceRules))
	for _, r := range ServiceRules {
		rules[r.Port] = r
	}
	return &Scorer{weights: w, rules: rules}
}

// Score evaluates every rule in order and sums the weights. All applicable
// rules fire and contribute a reason.
func (s *Scorer) Score(in Input) models.RiskAssessment {
	score := 0
	reasons := []string{}

	ports := uniquePorts(in.Ports)

	for _, class := range []Class{ClassHighRisk, ClassRemoteAccess} {
		for _, p := range ports {
			rule, ok := s.rules[p]
			if !ok || rule.Class != class {
				continue
			}
			w := s.weightFor(class)
			score += w
			reasons = append(reasons, fmt.Sprintf("%s: Port %d (%s) - %s",
				levelLabel(class), rule.Port, rule.Service, rule.Why))
		}
	}

	if in.FirstSeen {
		score += s.weights.NewDevice
		reasons = append(reasons, ReasonNewDevice)
	}

	vendorKnown := KnownVendor(in.Vendor)
	if !vendorKnown || !in.HostnameResolved {
		score += s.weights.UnknownIdentity
		if !vendorKnown {
			reasons = append(reasons, ReasonUnknownVendor)
		}
		if !in.HostnameResolved {
			reasons = append(reasons, ReasonUnresolvedHostname)
		}
	}

	if len(ports) == 0 && vendorKnown && !in.FirstSeen {
		reasons = append(reasons, ReasonNoExposedServices)
	}

	score = clamp(score)
	return models.RiskAssessment{
		Score:   score,
		Level:   LevelFor(score),
		Reasons: reasons,
	}
}

// ScoreDevice scores d and returns the assessment.
func (s *Scorer) ScoreDevice(d *models.Device, firstSeen bool) models.RiskAssessment {
	return s.Score(InputFor(d, firstSeen))
}

func (s *Scorer) weightFor(c Class) int {
	if c == ClassHighRisk {
		return s.weights.HighRiskService
	}
	return s.weights.RemoteAccess
}

func levelLabel(c Class) models.RiskLevel {
	if c == ClassHighRisk {
		return models.RiskHigh
	}
	return models.RiskMedium
}

// LevelFor maps a score onto its level.
func LevelFor(score int) models.RiskLevel {
	for _, t := range Thresholds {
		if score >= t.Min {
			return t.Level
		}
	}
	return models.RiskMinimal
}

// IsHighRiskPort reports whether port belongs to the high-risk class.
func IsHighRiskPort(port int) bool {
	for _, r := range ServiceRules {
		if r.Port == port {
			return r.Class == ClassHighRisk
		}
	}
	return false
}

// KnownVendor reports whether the vendor string identifies a manufacturer.
// Randomized MACs carry no manufacturer and count as unknown.
func KnownVendor(vendor string) bool {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case "", "unknown", "randomized":
		return false
	}
	return true
}

func uniquePorts(ports []models.Port) []int {
	seen := make(map[int]struct{}, len(ports))
	out := make([]int, 0, len(ports))
	for _, p := range ports {
		if _, ok := seen[p.Port]; ok {
			continue
		}
		seen[p.Port] = struct{}{}
		out = append(out, p.Port)
	}
	sort.Ints(out)
	return out
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
