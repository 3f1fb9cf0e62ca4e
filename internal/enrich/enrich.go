// Package enrich turns a raw captured request into threat signals and a risk
// score. It is synchronous and side-effect-free except for the one outbound
// geolocation lookup, which degrades to an empty result on any failure.
package enrich

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mjollne/varde/internal/util"

	json "github.com/goccy/go-json"
)

// GeoInfo is the subset of the geolocation response we keep
type GeoInfo struct {
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Region      string `json:"regionName,omitempty"`
	City        string `json:"city,omitempty"`
	Org         string `json:"org,omitempty"`
	Query       string `json:"query,omitempty"`
}

// Empty reports whether the lookup produced no data
func (g GeoInfo) Empty() bool {
	return g == GeoInfo{}
}

// TorPredicate reports whether an address is a known Tor exit node.
// NoTorFeed is the reference policy; swap in a real exit-node feed here.
type TorPredicate func(ip string) bool

// NoTorFeed is a placeholder predicate that never flags an address. This is an
// extension point: production deployments should plug in a fed exit-node list.
func NoTorFeed(ip string) bool {
	return false
}

// Result bundles the signals derived for one request
type Result struct {
	Geo       GeoInfo
	IsTor     bool
	IsVPN     bool
	RiskScore int
}

// Enricher performs the geo lookup and signal derivation. Construct once and
// share; it is safe for concurrent use.
type Enricher struct {
	apiURL string
	client *http.Client
	isTor  TorPredicate
}

// New returns an Enricher talking to the given geolocation API (ip-api.com
// JSON shape). A zero timeout falls back to 5 seconds.
func New(apiURL string, timeout time.Duration, tor TorPredicate) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if tor == nil {
		tor = NoTorFeed
	}
	return &Enricher{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
		isTor:  tor,
	}
}

// Lookup queries the geolocation service for the given address. On timeout,
// non-200 response or any transport failure it returns an empty GeoInfo; it
// never propagates an error to the capture path.
func (e *Enricher) Lookup(ip string) GeoInfo {
	var geo GeoInfo

	resp, err := e.client.Get(fmt.Sprintf("%s/%s", e.apiURL, ip))
	if err != nil {
		util.PrintWarningf("geo lookup failed for %s: %v", ip, err)
		return geo
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.PrintWarningf("geo lookup for %s returned status %d", ip, resp.StatusCode)
		return geo
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GeoInfo{}
	}
	if err := json.Unmarshal(body, &geo); err != nil {
		return GeoInfo{}
	}
	return geo
}

// Enrich derives all threat signals for one request
func (e *Enricher) Enrich(ip string, headers map[string]string) Result {
	geo := e.Lookup(ip)
	isTor := e.isTor(ip)
	isVPN := IsVPNOrg(geo.Org)

	return Result{
		Geo:       geo,
		IsTor:     isTor,
		IsVPN:     isVPN,
		RiskScore: Score(geo, isTor, isVPN, headers),
	}
}
