package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	if got := cfg.GetEpsMeters(); got != DefaultEpsMeters {
		t.Errorf("expected eps %f, got %f", DefaultEpsMeters, got)
	}
	if got := cfg.GetMinSurfaceHa(); got != DefaultMinSurfaceHa {
		t.Errorf("expected min surface %f, got %f", DefaultMinSurfaceHa, got)
	}
	if got := cfg.GetAlpha(); got != DefaultAlpha {
		t.Errorf("expected alpha %f, got %f", DefaultAlpha, got)
	}
	if got := cfg.GetTrackGap(); got != DefaultTrackGap {
		t.Errorf("expected track gap %s, got %s", DefaultTrackGap, got)
	}
	if got := cfg.GetJitterScale(); got != DefaultJitterScale {
		t.Errorf("expected jitter %g, got %g", DefaultJitterScale, got)
	}
}

func TestValidateRejectsNonPositive(t *testing.T) {
	cases := []struct {
		name string
		cfg  AnalysisConfig
	}{
		{"zero eps", AnalysisConfig{EpsMeters: ptrFloat64(0)}},
		{"negative eps", AnalysisConfig{EpsMeters: ptrFloat64(-5)}},
		{"zero min surface", AnalysisConfig{MinSurfaceHa: ptrFloat64(0)}},
		{"negative alpha", AnalysisConfig{Alpha: ptrFloat64(-0.02)}},
		{"zero jitter", AnalysisConfig{JitterScale: ptrFloat64(0)}},
		{"garbage gap", AnalysisConfig{TrackGap: ptrString("not-a-duration")}},
		{"negative gap", AnalysisConfig{TrackGap: ptrString("-10m")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsPositive(t *testing.T) {
	cfg := AnalysisConfig{
		EpsMeters:    ptrFloat64(30),
		MinSurfaceHa: ptrFloat64(0.25),
		Alpha:        ptrFloat64(0.05),
		TrackGap:     ptrString("15m"),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if got := cfg.GetTrackGap(); got != 15*time.Minute {
		t.Errorf("expected 15m track gap, got %s", got)
	}
}

func TestLoadAnalysisConfigPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.json")
	if err := os.WriteFile(path, []byte(`{"eps_meters": 40}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAnalysisConfig(path)
	if err != nil {
		t.Fatalf("LoadAnalysisConfig failed: %v", err)
	}
	if got := cfg.GetEpsMeters(); got != 40 {
		t.Errorf("expected eps 40, got %f", got)
	}
	// Unset fields fall back to defaults.
	if got := cfg.GetAlpha(); got != DefaultAlpha {
		t.Errorf("expected default alpha, got %f", got)
	}
}

func TestLoadAnalysisConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadAnalysisConfig("params.yaml"); err == nil {
		t.Error("expected error for non-JSON extension")
	}
}

func TestLoadAnalysisConfigRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.json")
	if err := os.WriteFile(path, []byte(`{"alpha": -1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAnalysisConfig(path); err == nil {
		t.Error("expected validation error for negative alpha")
	}
}
