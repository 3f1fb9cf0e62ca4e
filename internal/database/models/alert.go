package models

// AlertEvent is the denormalized snapshot persisted when an attack crosses the
// alert threshold. It has its own lifecycle: creation is best-effort and
// asynchronous, and it carries no reference back to the AttackEvent id.
type AlertEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"` // ISO-8601
	SourceIP  string `json:"source_ip"`
	RiskScore int    `json:"risk_score"`
	Country   string `json:"country,omitempty"`
	IsTor     bool   `json:"is_tor"`
	IsVPN     bool   `json:"is_vpn"`
	Path      string `json:"path"`
}

// AlertTypeHighRisk is the only alert type the dispatcher emits today
const AlertTypeHighRisk = "HIGH_RISK_ATTACK"
