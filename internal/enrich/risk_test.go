package enrich

import (
	"testing"
)

func TestScoreWeights(t *testing.T) {
	tests := []struct {
		name     string
		geo      GeoInfo
		isTor    bool
		isVPN    bool
		headers  map[string]string
		expected int
	}{
		{"no signals", GeoInfo{}, false, false, nil, 0},
		{"tor only", GeoInfo{}, true, false, nil, 30},
		{"vpn only", GeoInfo{}, false, true, nil, 20},
		{"curl user agent", GeoInfo{}, false, false, map[string]string{"User-Agent": "curl/7.0"}, 15},
		{"bot user agent", GeoInfo{}, false, false, map[string]string{"User-Agent": "Googlebot/2.1"}, 10},
		{"scanner user agent", GeoInfo{}, false, false, map[string]string{"User-Agent": "sqlmap/1.0 scanner"}, 20},
		{"lowercase header name", GeoInfo{}, false, false, map[string]string{"user-agent": "curl/7.0"}, 15},
		{"risk country", GeoInfo{Country: "Russia"}, false, false, nil, 10},
		{"safe country", GeoInfo{Country: "Norway"}, false, false, nil, 0},
		{"curl plus country", GeoInfo{Country: "Russia"}, false, false, map[string]string{"User-Agent": "curl/7.0"}, 25},
		{"everything", GeoInfo{Country: "Russia"}, true, true, map[string]string{"User-Agent": "scanner"}, 80},
		{"clamped at 100", GeoInfo{Country: "China"}, true, true, map[string]string{"User-Agent": "curl bot scanner"}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.geo, tt.isTor, tt.isVPN, tt.headers)
			if got != tt.expected {
				t.Errorf("Score() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	// Stack every additive signal; the result must stay within [0, 100]
	headers := map[string]string{"User-Agent": "curl botscanner"}
	score := Score(GeoInfo{Country: "North Korea"}, true, true, headers)
	if score < 0 || score > MaxScore {
		t.Fatalf("score %d out of bounds", score)
	}
}

func TestScoreIsPure(t *testing.T) {
	geo := GeoInfo{Country: "China", Org: "Some Cloud"}
	headers := map[string]string{"User-Agent": "curl/8.0", "Accept": "*/*"}

	first := Score(geo, true, false, headers)
	for i := 0; i < 10; i++ {
		if got := Score(geo, true, false, headers); got != first {
			t.Fatalf("score not stable: got %d then %d", first, got)
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	geo := GeoInfo{Country: "Russia"}
	headers := map[string]string{"User-Agent": "Mozilla/5.0"}

	base := Score(geo, false, false, headers)

	if got := Score(geo, true, false, headers); got < base {
		t.Errorf("enabling tor decreased score: %d -> %d", base, got)
	}
	if got := Score(geo, false, true, headers); got < base {
		t.Errorf("enabling vpn decreased score: %d -> %d", base, got)
	}

	withKeyword := map[string]string{"User-Agent": "Mozilla/5.0 scanner"}
	if got := Score(geo, false, false, withKeyword); got < base {
		t.Errorf("adding scanner keyword decreased score: %d -> %d", base, got)
	}
}

func TestIsVPNOrg(t *testing.T) {
	tests := []struct {
		org      string
		expected bool
	}{
		{"", false},
		{"Telenor Norge AS", false},
		{"NordVPN", true},
		{"nordvpn", true},
		{"Amazon.com, Inc.", true},
		{"Google LLC", true},
		{"Digital Ocean LLC", true},
		{"Acme Hosting Ltd", true},
		{"Proxy Networks", true},
		{"Big Cloud Co", true},
		{"Frankfurt Datacenter GmbH", true},
	}

	for _, tt := range tests {
		if got := IsVPNOrg(tt.org); got != tt.expected {
			t.Errorf("IsVPNOrg(%q) = %v, want %v", tt.org, got, tt.expected)
		}
	}
}
