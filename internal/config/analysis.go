package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default analysis parameter values. These match the tuning used in the
// field for 10-second GPS reporting intervals on slow-moving equipment.
const (
	// DefaultEpsMeters is the default DBSCAN neighborhood radius in meters.
	DefaultEpsMeters = 25.0
	// DefaultMinSurfaceHa is the minimum accepted zone surface in hectares.
	DefaultMinSurfaceHa = 0.1
	// DefaultAlpha is the default concave-hull concavity parameter.
	DefaultAlpha = 0.02
	// DefaultJitterScale is the coordinate joggle amplitude in projected meters.
	DefaultJitterScale = 1e-6
	// DefaultTrackSimplifyMeters is the Douglas-Peucker tolerance applied to
	// reconstructed track lines before they are persisted.
	DefaultTrackSimplifyMeters = 0.5
)

// DefaultTrackGap is the time gap that splits a day's transit points into
// separate track segments.
const DefaultTrackGap = 10 * time.Minute

// AnalysisConfig represents the tunable parameters of the zone analysis
// pipeline. Fields are pointers so a partial JSON file only overrides what it
// names; the Get* methods provide fallback defaults for unset fields.
type AnalysisConfig struct {
	EpsMeters           *float64 `json:"eps_meters,omitempty"`
	MinSurfaceHa        *float64 `json:"min_surface_ha,omitempty"`
	Alpha               *float64 `json:"alpha,omitempty"`
	JitterScale         *float64 `json:"jitter_scale,omitempty"`
	TrackGap            *string  `json:"track_gap,omitempty"` // duration string like "10m"
	TrackSimplifyMeters *float64 `json:"track_simplify_m,omitempty"`
}

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file. Fields omitted
// from the file retain their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid. All numeric
// analysis parameters must be strictly positive; non-positive values are a
// caller error rather than something the pipeline compensates for.
func (c *AnalysisConfig) Validate() error {
	if c.EpsMeters != nil && *c.EpsMeters <= 0 {
		return fmt.Errorf("eps_meters must be positive, got %f", *c.EpsMeters)
	}
	if c.MinSurfaceHa != nil && *c.MinSurfaceHa <= 0 {
		return fmt.Errorf("min_surface_ha must be positive, got %f", *c.MinSurfaceHa)
	}
	if c.Alpha != nil && *c.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, got %f", *c.Alpha)
	}
	if c.JitterScale != nil && *c.JitterScale <= 0 {
		return fmt.Errorf("jitter_scale must be positive, got %f", *c.JitterScale)
	}
	if c.TrackGap != nil && *c.TrackGap != "" {
		d, err := time.ParseDuration(*c.TrackGap)
		if err != nil {
			return fmt.Errorf("invalid track_gap '%s': %w", *c.TrackGap, err)
		}
		if d <= 0 {
			return fmt.Errorf("track_gap must be positive, got %s", d)
		}
	}
	if c.TrackSimplifyMeters != nil && *c.TrackSimplifyMeters < 0 {
		return fmt.Errorf("track_simplify_m must be non-negative, got %f", *c.TrackSimplifyMeters)
	}
	return nil
}

// GetEpsMeters returns the eps_meters value or the default.
func (c *AnalysisConfig) GetEpsMeters() float64 {
	if c.EpsMeters == nil {
		return DefaultEpsMeters
	}
	return *c.EpsMeters
}

// GetMinSurfaceHa returns the min_surface_ha value or the default.
func (c *AnalysisConfig) GetMinSurfaceHa() float64 {
	if c.MinSurfaceHa == nil {
		return DefaultMinSurfaceHa
	}
	return *c.MinSurfaceHa
}

// GetAlpha returns the alpha value or the default.
func (c *AnalysisConfig) GetAlpha() float64 {
	if c.Alpha == nil {
		return DefaultAlpha
	}
	return *c.Alpha
}

// GetJitterScale returns the jitter_scale value or the default.
func (c *AnalysisConfig) GetJitterScale() float64 {
	if c.JitterScale == nil {
		return DefaultJitterScale
	}
	return *c.JitterScale
}

// GetTrackGap parses and returns the track_gap value as a time.Duration.
func (c *AnalysisConfig) GetTrackGap() time.Duration {
	if c.TrackGap == nil || *c.TrackGap == "" {
		return DefaultTrackGap
	}
	d, err := time.ParseDuration(*c.TrackGap)
	if err != nil {
		return DefaultTrackGap
	}
	return d
}

// GetTrackSimplifyMeters returns the track_simplify_m value or the default.
func (c *AnalysisConfig) GetTrackSimplifyMeters() float64 {
	if c.TrackSimplifyMeters == nil {
		return DefaultTrackSimplifyMeters
	}
	return *c.TrackSimplifyMeters
}
