package models

import (
	json "github.com/goccy/go-json"
)

// AttackEvent is one immutable record of a captured, enriched request.
// The store assigns the ID on insert; id order equals commit order and is the
// only valid progress cursor (timestamps may tie under concurrent writers).
type AttackEvent struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	Timestamp float64 `gorm:"type:real;not null;index" json:"timestamp"` // epoch seconds, capture time
	ClientIP  string  `gorm:"column:client_ip;not null" json:"client_ip"`
	Path      string  `gorm:"column:path" json:"path"`
	Method    string  `gorm:"column:method" json:"method"`
	Headers   string  `gorm:"column:headers" json:"headers"` // JSON object, duplicate names joined by the gateway
	GeoInfo   string  `gorm:"column:geo_info" json:"geo_info,omitempty"`
	ASNInfo   string  `gorm:"column:asn_info" json:"asn_info,omitempty"`
	IsTor     bool    `gorm:"column:is_tor" json:"is_tor"`
	IsVPN     bool    `gorm:"column:is_vpn" json:"is_vpn"`
	RiskScore int     `gorm:"column:risk_score" json:"risk_score"` // 0-100
}

func (AttackEvent) TableName() string {
	return "attacks"
}

// EncodeHeaders serializes a header map to the JSON text stored in the headers
// column. Map keys marshal in sorted order, so the stored form is deterministic.
func EncodeHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "{}"
	}
	buf, err := json.Marshal(headers)
	if err != nil {
		return "{}"
	}
	return string(buf)
}

// HeaderMap decodes the headers column back into a map
func (e *AttackEvent) HeaderMap() map[string]string {
	headers := map[string]string{}
	if e.Headers != "" {
		_ = json.Unmarshal([]byte(e.Headers), &headers)
	}
	return headers
}
