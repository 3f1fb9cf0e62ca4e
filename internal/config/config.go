package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mjollne/varde/internal/fs"
	"github.com/mjollne/varde/internal/util"

	"gopkg.in/yaml.v3"
)

// Cfg holds the process-wide configuration. It is loaded once at startup and
// passed into each component at construction.
// Named Cfg to avoid confusion with the Fiber Config struct.
type Cfg struct {
	Server struct {
		ListenAddr   string `yaml:"listen_addr"`
		ReadTimeout  int    `yaml:"read_timeout,omitempty"`
		WriteTimeout int    `yaml:"write_timeout,omitempty"`
	} `yaml:"server"`
	Tracker struct {
		DataDir        string `yaml:"data_dir"`
		Database       string `yaml:"database"`
		EvidenceDir    string `yaml:"evidence_dir"`
		AdminToken     string `yaml:"admin_token"`
		GeoAPIURL      string `yaml:"geo_api_url"`
		GeoTimeout     int    `yaml:"geo_timeout"`
		PollInterval   int    `yaml:"poll_interval"`
		RecentLimit    int    `yaml:"recent_limit"`
		AlertThreshold int    `yaml:"alert_threshold"`
	} `yaml:"tracker"`
}

// Defaults returns a configuration with every field set to its default value
func Defaults() *Cfg {
	var cfg Cfg
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig loads the configuration from the given path
func LoadConfig(path string) (*Cfg, error) {
	file, err := fs.GetFile(path)
	if err != nil {
		util.PrintErrorf("Failed to load configuration file: %s", path)
		return nil, err
	}
	defer file.Close()

	buf, err := os.ReadFile(file.Name())
	if err != nil {
		return nil, err
	}

	var cfg Cfg
	if err = yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	util.PrintSuccess(fmt.Sprintf("Loaded configuration file: %s", path))
	return &cfg, nil
}

// WriteConfig writes the configuration back to the given path
func WriteConfig(cfg *Cfg, path string) error {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// DatabasePath is the sqlite file location, rooted under the data dir
func (c *Cfg) DatabasePath() string {
	if filepath.IsAbs(c.Tracker.Database) {
		return c.Tracker.Database
	}
	return filepath.Join(c.Tracker.DataDir, c.Tracker.Database)
}

// EvidencePath is the evidence root, rooted under the data dir
func (c *Cfg) EvidencePath() string {
	if filepath.IsAbs(c.Tracker.EvidenceDir) {
		return c.Tracker.EvidenceDir
	}
	return filepath.Join(c.Tracker.DataDir, c.Tracker.EvidenceDir)
}

func (c *Cfg) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Tracker.DataDir == "" {
		c.Tracker.DataDir = "data"
	}
	if c.Tracker.Database == "" {
		c.Tracker.Database = "attacks.db"
	}
	if c.Tracker.EvidenceDir == "" {
		c.Tracker.EvidenceDir = "evidence"
	}
	if c.Tracker.GeoAPIURL == "" {
		c.Tracker.GeoAPIURL = "http://ip-api.com/json"
	}
	if c.Tracker.GeoTimeout == 0 {
		c.Tracker.GeoTimeout = 5
	}
	if c.Tracker.PollInterval == 0 {
		c.Tracker.PollInterval = 1
	}
	if c.Tracker.RecentLimit == 0 {
		c.Tracker.RecentLimit = 500
	}
	if c.Tracker.AlertThreshold == 0 {
		c.Tracker.AlertThreshold = 50
	}
}
