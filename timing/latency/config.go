package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TimingConfig holds the stall parameters of the timing model.
type TimingConfig struct {
	// CacheMissDelay is the full cost in cycles of a cache miss, for both
	// instruction fetches and data accesses. Default: 10 cycles.
	CacheMissDelay uint64 `json:"cache_miss_delay" yaml:"cache_miss_delay"`

	// BranchMispredictPenalty is the number of cycles added when a branch
	// resolves against the static prediction. Default: 1 cycle.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty" yaml:"branch_mispredict_penalty"`

	// ClockFrequencyMHz converts cycles to simulated time in reports.
	// Default: 1000 MHz.
	ClockFrequencyMHz float64 `json:"clock_frequency_mhz" yaml:"clock_frequency_mhz"`
}

// DefaultTimingConfig returns the stall parameters of the reference
// five-stage pipeline.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		CacheMissDelay:          10,
		BranchMispredictPenalty: 1,
		ClockFrequencyMHz:       1000,
	}
}

// LoadConfig loads a TimingConfig from a YAML or JSON file. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a file. Paths ending in .json are
// written as JSON, everything else as YAML.
func (c *TimingConfig) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the stall parameters are usable.
func (c *TimingConfig) Validate() error {
	if c.CacheMissDelay == 0 {
		return fmt.Errorf("cache_miss_delay must be > 0")
	}
	if c.BranchMispredictPenalty == 0 {
		return fmt.Errorf("branch_mispredict_penalty must be > 0")
	}
	if c.ClockFrequencyMHz <= 0 {
		return fmt.Errorf("clock_frequency_mhz must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
