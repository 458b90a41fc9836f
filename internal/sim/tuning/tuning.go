package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	BoundaryR  int   `yaml:"world_boundary_r"`
	Seed       int64 `yaml:"seed"`

	// Overlay cadences, in ticks.
	ScanPollTicks      uint64 `yaml:"scan_poll_ticks"`
	SlowRefreshTicks   uint64 `yaml:"slow_refresh_ticks"`
	PanelPushTicks     uint64 `yaml:"panel_push_ticks"`
	SnapshotEveryTicks uint64 `yaml:"snapshot_every_ticks"`

	DrillRadius float64 `yaml:"drill_radius"`
	SurveyTicks int     `yaml:"survey_ticks"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         5,
		BoundaryR:          64,
		Seed:               1337,
		ScanPollTicks:      5, // ~1s of sim time at the default tick rate
		SlowRefreshTicks:   15,
		PanelPushTicks:     5,
		SnapshotEveryTicks: 1500,
		DrillRadius:        2.6,
		SurveyTicks:        10,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
