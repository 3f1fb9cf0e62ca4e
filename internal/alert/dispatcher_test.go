package alert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mjollne/varde/internal/database/models"

	json "github.com/goccy/go-json"
)

func TestDispatchWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDispatcher(dir)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	event := models.AttackEvent{
		ID:        7,
		Timestamp: 1700000000,
		ClientIP:  "198.51.100.9",
		Path:      "/admin",
		IsTor:     true,
		IsVPN:     true,
		RiskScore: 80,
	}
	d.Dispatch(event, "Russia")
	d.Wait()

	path := filepath.Join(dir, ArtifactName(1700000000, "198.51.100.9"))
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("alert artifact missing: %v", err)
	}

	var record models.AlertEvent
	if err := json.Unmarshal(buf, &record); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if record.Type != models.AlertTypeHighRisk {
		t.Errorf("type = %q", record.Type)
	}
	if record.SourceIP != "198.51.100.9" || record.RiskScore != 80 {
		t.Errorf("snapshot mismatch: %+v", record)
	}
	if record.Country != "Russia" || !record.IsTor || !record.IsVPN || record.Path != "/admin" {
		t.Errorf("snapshot mismatch: %+v", record)
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		epoch    int64
		ip       string
		expected string
	}{
		{1700000000, "198.51.100.9", "ALERT_1700000000_198.51.100.9.json"},
		// IPv6 colons cannot appear in file names
		{1700000001, "2001:db8::1", "ALERT_1700000001_2001_db8__1.json"},
	}
	for _, tt := range tests {
		if got := ArtifactName(tt.epoch, tt.ip); got != tt.expected {
			t.Errorf("ArtifactName(%d, %q) = %q, want %q", tt.epoch, tt.ip, got, tt.expected)
		}
	}
}

func TestDispatchFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDispatcher(dir)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	// Pull the evidence root out from under the dispatcher; the dispatch must
	// not panic or block, only log
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	d.Dispatch(models.AttackEvent{Timestamp: 1700000000, ClientIP: "203.0.113.5", RiskScore: 60}, "")
	d.Wait()

	if _, err := os.Stat(filepath.Join(dir, ArtifactName(1700000000, "203.0.113.5"))); err == nil {
		t.Error("artifact appeared despite missing evidence root")
	}
}
