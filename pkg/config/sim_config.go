// Package config handles simulator configuration. The fields here are
// all in PascalCase but in a config.yml they'll be in camelCase. You can
// view the current defaults with `osched --config`. To live-reconfigure
// a running session send a `config` control message with a subset of
// these fields; unset fields are merged in from whatever is currently
// running.
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	yaml "github.com/jesseduffield/yaml"
)

// Policy names accepted by Configure/init/config.
const (
	PolicyFCFS       = "FCFS"
	PolicySJF        = "SJF"
	PolicyPriorityNP = "PRIORITY-NP"
	PolicyPriorityP  = "PRIORITY-P"
	PolicyRR         = "RR"
	PolicyMLQ        = "MLQ"
)

// Memory modes.
const (
	MemoryOff  = "OFF"
	MemoryFull = "FULL"
)

// Replacement policy names accepted in FULL memory mode.
const (
	ReplacementFIFO  = "FIFO"
	ReplacementLRU   = "LRU"
	ReplacementLFU   = "LFU"
	ReplacementClock = "CLOCK"
	ReplacementOPT   = "OPT"
)

// SimConfig holds every field the `init`/`config` control messages can
// set. Configure applies the values as given and does not fill in zero
// fields (DefaultSimConfig supplies a complete set);
// on a later `config` message only the non-zero fields of the inbound
// payload overwrite the running configuration (see pkg/session, which
// merges partial updates onto this struct with imdario/mergo).
type SimConfig struct {
	// Policy selects the CPU scheduling discipline.
	Policy string `yaml:"policy,omitempty"`

	// TickMS is a pacing hint for observers; the simulator itself never
	// sleeps on it.
	TickMS int `yaml:"tickMs,omitempty"`

	// Quantum is the RR/MLQ time slice, required >=1 when Policy is RR
	// or MLQ.
	Quantum int `yaml:"quantum,omitempty"`

	// MemoryMode is MemoryOff or MemoryFull.
	MemoryMode string `yaml:"memoryMode,omitempty"`

	// PageSize must be a power of two.
	PageSize int `yaml:"pageSize,omitempty"`

	// FrameCount is the number of physical frames in FULL mode.
	FrameCount int `yaml:"frameCount,omitempty"`

	// ReplacementPolicy selects the page-replacement discipline in FULL
	// mode.
	ReplacementPolicy string `yaml:"replacementPolicy,omitempty"`

	// GlobalFaultPenalty is the number of ticks a process spends in
	// WAITING_MEM after any page fault.
	GlobalFaultPenalty int `yaml:"globalFaultPenalty,omitempty"`
}

// DefaultSimConfig returns the simulator defaults applied before any
// init/config message is received.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Policy:             PolicyFCFS,
		TickMS:             200,
		Quantum:            2,
		MemoryMode:         MemoryOff,
		PageSize:           4096,
		FrameCount:         4,
		ReplacementPolicy:  ReplacementLRU,
		GlobalFaultPenalty: 2,
	}
}

// AppConfig contains the base configuration fields required for osched.
type AppConfig struct {
	Debug       bool `long:"debug" env:"DEBUG" default:"false"`
	Version     string
	Commit      string
	BuildDate   string
	Name        string
	BuildSource string
	SimConfig   *SimConfig
	ConfigDir   string
}

// NewAppConfig makes a new app config, resolving the on-disk config
// directory and loading any saved SimConfig defaults.
func NewAppConfig(name, version, commit, date, buildSource string, debuggingFlag bool) (*AppConfig, error) {
	configDir, err := findOrCreateConfigDir(name)
	if err != nil {
		return nil, err
	}

	simConfig, err := loadSimConfigWithDefaults(configDir)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Name:        name,
		Version:     version,
		Commit:      commit,
		BuildDate:   date,
		Debug:       debuggingFlag || os.Getenv("DEBUG") == "TRUE",
		BuildSource: buildSource,
		SimConfig:   simConfig,
		ConfigDir:   configDir,
	}

	return appConfig, nil
}

func configDir(projectName string) string {
	if envConfigDir := os.Getenv("CONFIG_DIR"); envConfigDir != "" {
		return envConfigDir
	}
	configDirs := xdg.New("", projectName)
	return configDirs.ConfigHome()
}

func findOrCreateConfigDir(projectName string) (string, error) {
	folder := configDir(projectName)

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	return folder, nil
}

func loadSimConfigWithDefaults(configDir string) (*SimConfig, error) {
	config := DefaultSimConfig()

	return loadSimConfig(configDir, &config)
}

func loadSimConfig(configDir string, base *SimConfig) (*SimConfig, error) {
	fileName := filepath.Join(configDir, "config.yml")

	if _, err := os.Stat(fileName); err != nil {
		if os.IsNotExist(err) {
			file, err := os.Create(fileName)
			if err != nil {
				return nil, err
			}
			file.Close()
		} else {
			return nil, err
		}
	}

	content, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(content, base); err != nil {
		return nil, err
	}

	return base, nil
}

// WriteToSimConfig allows you to persist a value to the on-disk config.
func (c *AppConfig) WriteToSimConfig(updateConfig func(*SimConfig) error) error {
	simConfig, err := loadSimConfig(c.ConfigDir, &SimConfig{})
	if err != nil {
		return err
	}

	if err := updateConfig(simConfig); err != nil {
		return err
	}

	file, err := os.OpenFile(c.ConfigFilename(), os.O_WRONLY|os.O_CREATE, 0o666)
	if err != nil {
		return err
	}
	defer file.Close()

	return yaml.NewEncoder(file).Encode(simConfig)
}

// ConfigFilename returns the filename of the current config file.
func (c *AppConfig) ConfigFilename() string {
	return filepath.Join(c.ConfigDir, "config.yml")
}

// RefreshInterval is unused by the core simulator (pacing is a UI
// concern, spec.md §1) but kept as a documented hint observers may poll
// for, mirroring the teacher's DockerRefreshInterval knob.
func (c *SimConfig) RefreshInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}
