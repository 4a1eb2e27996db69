package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/curvature.report/internal/fsutil"
)

func TestDefaultExplorerConfig(t *testing.T) {
	cfg := DefaultExplorerConfig()

	if cfg.SigmaMax == nil || *cfg.SigmaMax != 5 {
		t.Errorf("Expected SigmaMax 5, got %v", cfg.SigmaMax)
	}
	if cfg.GridPoints == nil || *cfg.GridPoints != 500 {
		t.Errorf("Expected GridPoints 500, got %v", cfg.GridPoints)
	}
	if cfg.HighCurvatureColor == nil || *cfg.HighCurvatureColor != "#0E6089" {
		t.Errorf("Expected HighCurvatureColor '#0E6089', got %v", cfg.HighCurvatureColor)
	}
	if cfg.InflectionColor == nil || *cfg.InflectionColor != "#5E50A3" {
		t.Errorf("Expected InflectionColor '#5E50A3', got %v", cfg.InflectionColor)
	}

	if cfg.GetSigma() != 0 {
		t.Errorf("GetSigma() = %f, want 0", cfg.GetSigma())
	}
	if cfg.GetRangeHeadroom() != 1.05 {
		t.Errorf("GetRangeHeadroom() = %f, want 1.05", cfg.GetRangeHeadroom())
	}
	if cfg.GetListen() != ":8090" {
		t.Errorf("GetListen() = %q, want ':8090'", cfg.GetListen())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadExplorerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "explorer.json")

	testJSON := `{
  "sigma": 1.5,
  "curvature_threshold": 0.2,
  "gradient_threshold": 0.3,
  "grid_points": 200,
  "label": "run 7"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadExplorerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetSigma() != 1.5 {
		t.Errorf("GetSigma() = %f, want 1.5", cfg.GetSigma())
	}
	if cfg.GetCurvatureThreshold() != 0.2 {
		t.Errorf("GetCurvatureThreshold() = %f, want 0.2", cfg.GetCurvatureThreshold())
	}
	if cfg.GetGradientThreshold() != 0.3 {
		t.Errorf("GetGradientThreshold() = %f, want 0.3", cfg.GetGradientThreshold())
	}
	if cfg.GetGridPoints() != 200 {
		t.Errorf("GetGridPoints() = %d, want 200", cfg.GetGridPoints())
	}
	if cfg.GetLabel() != "run 7" {
		t.Errorf("GetLabel() = %q, want 'run 7'", cfg.GetLabel())
	}

	// Omitted fields fall back to defaults
	if cfg.SigmaMax != nil {
		t.Errorf("Expected SigmaMax nil, got %v", *cfg.SigmaMax)
	}
	if cfg.GetSigmaMax() != 5 {
		t.Errorf("GetSigmaMax() = %f, want 5", cfg.GetSigmaMax())
	}
}

func TestLoadExplorerConfigFS_Memory(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	if err := mfs.WriteFile("/cfg/explorer.json", []byte(`{"inflection_color": "#112233"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadExplorerConfigFS(mfs, "/cfg/explorer.json")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetInflectionColor() != "#112233" {
		t.Errorf("GetInflectionColor() = %q, want '#112233'", cfg.GetInflectionColor())
	}
	if cfg.GetHighCurvatureColor() != "#0E6089" {
		t.Errorf("GetHighCurvatureColor() = %q, want default", cfg.GetHighCurvatureColor())
	}
}

func TestLoadExplorerConfig_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	_ = mfs.WriteFile("/bad.json", []byte(`{not json`), 0644)
	_ = mfs.WriteFile("/config.yaml", []byte(`sigma: 1`), 0644)
	_ = mfs.WriteFile("/big.json", []byte(strings.Repeat(" ", maxConfigSize+1)), 0644)
	_ = mfs.WriteFile("/neg.json", []byte(`{"sigma": -1}`), 0644)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", "/config.yaml", ".json extension"},
		{"missing", "/missing.json", "failed to stat"},
		{"oversized", "/big.json", "too large"},
		{"malformed", "/bad.json", "failed to parse"},
		{"invalid value", "/neg.json", "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadExplorerConfigFS(mfs, tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExplorerConfig
		wantErr bool
	}{
		{"empty", ExplorerConfig{}, false},
		{"negative sigma", ExplorerConfig{Sigma: ptrFloat64(-0.1)}, true},
		{"sigma above max", ExplorerConfig{Sigma: ptrFloat64(6)}, true},
		{"sigma at custom max", ExplorerConfig{Sigma: ptrFloat64(8), SigmaMax: ptrFloat64(8)}, false},
		{"zero sigma max", ExplorerConfig{SigmaMax: ptrFloat64(0)}, true},
		{"negative curvature threshold", ExplorerConfig{CurvatureThreshold: ptrFloat64(-1)}, true},
		{"negative gradient threshold", ExplorerConfig{GradientThreshold: ptrFloat64(-1)}, true},
		{"single grid point", ExplorerConfig{GridPoints: ptrInt(1)}, true},
		{"headroom below one", ExplorerConfig{RangeHeadroom: ptrFloat64(0.9)}, true},
		{"bad color", ExplorerConfig{HighCurvatureColor: ptrString("blue")}, true},
		{"short color", ExplorerConfig{InflectionColor: ptrString("#abc")}, true},
		{"zero png width", ExplorerConfig{PNGWidthInches: ptrFloat64(0)}, true},
		{"negative png height", ExplorerConfig{PNGHeightInches: ptrFloat64(-2)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultExplorerConfig()

	if cfg.GetSigmaMax() != want.GetSigmaMax() {
		t.Errorf("defaults file sigma_max = %f, code default %f", cfg.GetSigmaMax(), want.GetSigmaMax())
	}
	if cfg.GetGridPoints() != want.GetGridPoints() {
		t.Errorf("defaults file grid_points = %d, code default %d", cfg.GetGridPoints(), want.GetGridPoints())
	}
	if cfg.GetHighCurvatureColor() != want.GetHighCurvatureColor() {
		t.Errorf("defaults file high_curvature_color = %q, code default %q", cfg.GetHighCurvatureColor(), want.GetHighCurvatureColor())
	}
	if cfg.GetRangeHeadroom() != want.GetRangeHeadroom() {
		t.Errorf("defaults file range_headroom = %f, code default %f", cfg.GetRangeHeadroom(), want.GetRangeHeadroom())
	}
}
