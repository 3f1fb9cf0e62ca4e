// Package tracker is the capture orchestration: one inbound RequestEvent runs
// synchronously through enrichment and storage, and high-risk events trigger a
// detached alert dispatch. No error on this path ever reaches the remote peer;
// the facade must never reveal backend trouble to a prober.
package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mjollne/varde/internal/alert"
	"github.com/mjollne/varde/internal/database"
	"github.com/mjollne/varde/internal/database/models"
	"github.com/mjollne/varde/internal/enrich"
	"github.com/mjollne/varde/internal/util"

	json "github.com/goccy/go-json"
)

// RequestEvent is the one shape the core accepts at its boundary. The capture
// gateway has already joined duplicate header names and truncated the body.
type RequestEvent struct {
	CaptureTime float64           `json:"capture_time"` // epoch seconds
	ClientIP    string            `json:"client_ip"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	RawBody     []byte            `json:"raw_body"` // informational only, <= ~4000 bytes
}

// captureRecord is the full raw-payload evidence artifact, mirroring what goes
// into the store plus the body the store does not keep
type captureRecord struct {
	Timestamp float64           `json:"timestamp"`
	Datetime  string            `json:"datetime"`
	ClientIP  string            `json:"client_ip"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Headers   map[string]string `json:"headers"`
	RawBody   string            `json:"raw_body,omitempty"`
	GeoInfo   enrich.GeoInfo    `json:"geo_info"`
	IsTor     bool              `json:"is_tor"`
	IsVPN     bool              `json:"is_vpn"`
	RiskScore int               `json:"risk_score"`
}

// Tracker wires enrichment, the store and the alert dispatcher together
type Tracker struct {
	store       *database.AttackStore
	enricher    *enrich.Enricher
	alerts      *alert.Dispatcher
	evidenceDir string
	threshold   int
}

// New builds a tracker. Events scoring above threshold trigger an alert.
func New(store *database.AttackStore, enricher *enrich.Enricher, alerts *alert.Dispatcher, evidenceDir string, threshold int) *Tracker {
	return &Tracker{
		store:       store,
		enricher:    enricher,
		alerts:      alerts,
		evidenceDir: evidenceDir,
		threshold:   threshold,
	}
}

// Capture runs one request through the pipeline and returns the enriched
// event. It never returns an error: persistence failures are logged and the
// capture path still completes so the facade can answer normally.
func (t *Tracker) Capture(req RequestEvent) models.AttackEvent {
	if req.CaptureTime == 0 {
		req.CaptureTime = float64(time.Now().Unix())
	}

	res := t.enricher.Enrich(req.ClientIP, req.Headers)

	event := models.AttackEvent{
		Timestamp: req.CaptureTime,
		ClientIP:  req.ClientIP,
		Method:    req.Method,
		Path:      req.Path,
		Headers:   models.EncodeHeaders(req.Headers),
		ASNInfo:   res.Geo.Org,
		IsTor:     res.IsTor,
		IsVPN:     res.IsVPN,
		RiskScore: res.RiskScore,
	}
	if !res.Geo.Empty() {
		if buf, err := json.Marshal(res.Geo); err == nil {
			event.GeoInfo = string(buf)
		}
	}

	t.writeCaptureRecord(req, res)

	if _, err := t.store.Insert(&event); err != nil {
		util.PrintErrorf("attack insert failed for %s: %v", req.ClientIP, err)
	}

	if event.RiskScore > t.threshold {
		util.PrintWarningf("high risk attack: %s -> %s (score %d)", event.ClientIP, event.Path, event.RiskScore)
		t.alerts.Dispatch(event, res.Geo.Country)
	}

	return event
}

// writeCaptureRecord keeps the full request, body included, as a raw-payload
// evidence artifact. Best-effort like everything else off the capture path.
func (t *Tracker) writeCaptureRecord(req RequestEvent, res enrich.Result) {
	record := captureRecord{
		Timestamp: req.CaptureTime,
		Datetime:  util.ISOTimestamp(req.CaptureTime),
		ClientIP:  req.ClientIP,
		Method:    req.Method,
		Path:      req.Path,
		Headers:   req.Headers,
		RawBody:   string(req.RawBody),
		GeoInfo:   res.Geo,
		IsTor:     res.IsTor,
		IsVPN:     res.IsVPN,
		RiskScore: res.RiskScore,
	}

	buf, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		util.PrintWarningf("capture record encode failed: %v", err)
		return
	}

	name := captureArtifactName(int64(req.CaptureTime), req.ClientIP)
	if err := os.WriteFile(filepath.Join(t.evidenceDir, name), buf, 0o644); err != nil {
		util.PrintWarningf("capture record write failed: %v", err)
	}
}

func captureArtifactName(epoch int64, sourceIP string) string {
	return fmt.Sprintf("attack_%d_%s.json", epoch, strings.ReplaceAll(sourceIP, ":", "_"))
}
