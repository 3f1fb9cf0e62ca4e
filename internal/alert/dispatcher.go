// Package alert persists denormalized alert artifacts for high-risk events.
// Dispatch is fire-and-forget: the capture path never blocks on it, failures
// are logged and discarded, and there is no retry. Alerts are best-effort
// telemetry, not a delivery-guaranteed channel.
package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mjollne/varde/internal/database/models"
	"github.com/mjollne/varde/internal/fs"
	"github.com/mjollne/varde/internal/util"

	json "github.com/goccy/go-json"
)

// Dispatcher owns AlertEvent artifacts under the evidence root
type Dispatcher struct {
	dir string
	wg  sync.WaitGroup
}

// NewDispatcher ensures the evidence root exists and returns a dispatcher
func NewDispatcher(dir string) (*Dispatcher, error) {
	if err := fs.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &Dispatcher{dir: dir}, nil
}

// Dispatch submits one alert as a detached task. There is no bound on in-flight
// dispatches; a bounded queue could be added without changing observable
// behavior.
func (d *Dispatcher) Dispatch(event models.AttackEvent, country string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.write(event, country); err != nil {
			util.PrintErrorf("alert write failed for %s: %v", event.ClientIP, err)
		}
	}()
}

// Wait blocks until all in-flight dispatches have finished. Used at shutdown
// and in tests; callers on the capture path never wait.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// ArtifactName composes the deterministic file name for an alert: the creation
// epoch seconds plus the source address, so two sources alerting within the
// same second cannot collide.
func ArtifactName(epoch int64, sourceIP string) string {
	return fmt.Sprintf("ALERT_%d_%s.json", epoch, strings.ReplaceAll(sourceIP, ":", "_"))
}

func (d *Dispatcher) write(event models.AttackEvent, country string) error {
	record := models.AlertEvent{
		Type:      models.AlertTypeHighRisk,
		Timestamp: util.ISOTimestamp(event.Timestamp),
		SourceIP:  event.ClientIP,
		RiskScore: event.RiskScore,
		Country:   country,
		IsTor:     event.IsTor,
		IsVPN:     event.IsVPN,
		Path:      event.Path,
	}

	buf, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	name := ArtifactName(int64(event.Timestamp), event.ClientIP)
	return os.WriteFile(filepath.Join(d.dir, name), buf, 0o644)
}
