package enrich

import (
	"strings"
)

// Score weights. The score is a deterministic additive heuristic, summed and
// clamped to [0, 100].
const (
	torWeight     = 30
	vpnWeight     = 20
	curlWeight    = 15
	botWeight     = 10
	scannerWeight = 20
	countryWeight = 10

	MaxScore = 100
)

// Organizations whose names contain these keywords are treated as VPN,
// proxy or datacenter address space.
var vpnKeywords = []string{
	"VPN", "PROXY", "HOSTING", "CLOUD", "DATACENTER", "AMAZON", "GOOGLE", "DIGITAL OCEAN",
}

// Countries that add geographic risk
var riskCountries = map[string]bool{
	"Russia":      true,
	"China":       true,
	"North Korea": true,
}

// IsVPNOrg reports whether the ASN organization name looks like VPN, proxy or
// datacenter space. Case-insensitive; false for an absent org.
func IsVPNOrg(org string) bool {
	if org == "" {
		return false
	}
	upper := strings.ToUpper(org)
	for _, keyword := range vpnKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// Score computes the risk score for one request. Pure: no I/O, and stable for
// identical inputs.
func Score(geo GeoInfo, isTor, isVPN bool, headers map[string]string) int {
	score := 0

	if isTor {
		score += torWeight
	}
	if isVPN {
		score += vpnWeight
	}

	ua := strings.ToLower(userAgent(headers))
	if strings.Contains(ua, "curl") {
		score += curlWeight
	}
	if strings.Contains(ua, "bot") {
		score += botWeight
	}
	if strings.Contains(ua, "scanner") {
		score += scannerWeight
	}

	if riskCountries[geo.Country] {
		score += countryWeight
	}

	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// userAgent finds the User-Agent header regardless of name casing
func userAgent(headers map[string]string) string {
	for name, value := range headers {
		if strings.EqualFold(name, "User-Agent") {
			return value
		}
	}
	return ""
}
