package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"regexp"

	"github.com/banshee-data/curvature.report/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical explorer defaults file.
const DefaultConfigPath = "config/explorer.defaults.json"

// maxConfigSize bounds the size of a config file (1MB).
const maxConfigSize = 1 * 1024 * 1024

// ExplorerConfig is the startup configuration of the curvature explorer.
// Every field is optional; the Get* accessors supply defaults so partial
// files are safe.
type ExplorerConfig struct {
	// Initial slider values
	Sigma              *float64 `json:"sigma,omitempty"`
	CurvatureThreshold *float64 `json:"curvature_threshold,omitempty"`
	GradientThreshold  *float64 `json:"gradient_threshold,omitempty"`

	// Sigma slider upper bound
	SigmaMax *float64 `json:"sigma_max,omitempty"`

	// Display grid and threshold slider scaling
	GridPoints    *int     `json:"grid_points,omitempty"`
	RangeHeadroom *float64 `json:"range_headroom,omitempty"` // threshold slider max = headroom * max |f|

	// Marker colors, "#rrggbb"
	HighCurvatureColor *string `json:"high_curvature_color,omitempty"`
	InflectionColor    *string `json:"inflection_color,omitempty"`

	// Panel label shown above the sliders
	Label *string `json:"label,omitempty"`

	// Server and render output
	Listen          *string  `json:"listen,omitempty"`
	PNGWidthInches  *float64 `json:"png_width_inches,omitempty"`
	PNGHeightInches *float64 `json:"png_height_inches,omitempty"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyExplorerConfig returns an ExplorerConfig with all fields set to nil.
func EmptyExplorerConfig() *ExplorerConfig {
	return &ExplorerConfig{}
}

// DefaultExplorerConfig returns a config with every field set to its default.
func DefaultExplorerConfig() *ExplorerConfig {
	var c ExplorerConfig
	return &ExplorerConfig{
		Sigma:              ptrFloat64(c.GetSigma()),
		CurvatureThreshold: ptrFloat64(c.GetCurvatureThreshold()),
		GradientThreshold:  ptrFloat64(c.GetGradientThreshold()),
		SigmaMax:           ptrFloat64(c.GetSigmaMax()),
		GridPoints:         ptrInt(c.GetGridPoints()),
		RangeHeadroom:      ptrFloat64(c.GetRangeHeadroom()),
		HighCurvatureColor: ptrString(c.GetHighCurvatureColor()),
		InflectionColor:    ptrString(c.GetInflectionColor()),
		Label:              ptrString(c.GetLabel()),
		Listen:             ptrString(c.GetListen()),
		PNGWidthInches:     ptrFloat64(c.GetPNGWidthInches()),
		PNGHeightInches:    ptrFloat64(c.GetPNGHeightInches()),
	}
}

// LoadExplorerConfig loads an ExplorerConfig from a JSON file on disk.
func LoadExplorerConfig(path string) (*ExplorerConfig, error) {
	return LoadExplorerConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadExplorerConfigFS loads an ExplorerConfig from fsys.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the JSON keep their defaults.
func LoadExplorerConfigFS(fsys fsutil.FileSystem, path string) (*ExplorerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExplorerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ExplorerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/surface/pngplot/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadExplorerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ExplorerConfig) Validate() error {
	if err := nonNegative("sigma", c.Sigma); err != nil {
		return err
	}
	if err := nonNegative("curvature_threshold", c.CurvatureThreshold); err != nil {
		return err
	}
	if err := nonNegative("gradient_threshold", c.GradientThreshold); err != nil {
		return err
	}
	if c.SigmaMax != nil && !(*c.SigmaMax > 0) {
		return fmt.Errorf("sigma_max must be positive, got %f", *c.SigmaMax)
	}
	if c.GetSigma() > c.GetSigmaMax() {
		return fmt.Errorf("sigma %f exceeds sigma_max %f", c.GetSigma(), c.GetSigmaMax())
	}
	if c.GridPoints != nil && *c.GridPoints < 2 {
		return fmt.Errorf("grid_points must be at least 2, got %d", *c.GridPoints)
	}
	if c.RangeHeadroom != nil && !(*c.RangeHeadroom >= 1) {
		return fmt.Errorf("range_headroom must be at least 1, got %f", *c.RangeHeadroom)
	}
	for name, v := range map[string]*string{
		"high_curvature_color": c.HighCurvatureColor,
		"inflection_color":     c.InflectionColor,
	} {
		if v != nil && !hexColor.MatchString(*v) {
			return fmt.Errorf("%s must look like #rrggbb, got %q", name, *v)
		}
	}
	if c.PNGWidthInches != nil && !(*c.PNGWidthInches > 0) {
		return fmt.Errorf("png_width_inches must be positive, got %f", *c.PNGWidthInches)
	}
	if c.PNGHeightInches != nil && !(*c.PNGHeightInches > 0) {
		return fmt.Errorf("png_height_inches must be positive, got %f", *c.PNGHeightInches)
	}
	return nil
}

func nonNegative(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, *v)
	}
	return nil
}

// GetSigma returns the initial sigma or the default (no smoothing).
func (c *ExplorerConfig) GetSigma() float64 {
	if c.Sigma == nil {
		return 0
	}
	return *c.Sigma
}

// GetCurvatureThreshold returns the initial curvature threshold or the default.
func (c *ExplorerConfig) GetCurvatureThreshold() float64 {
	if c.CurvatureThreshold == nil {
		return 0
	}
	return *c.CurvatureThreshold
}

// GetGradientThreshold returns the initial gradient threshold or the default.
func (c *ExplorerConfig) GetGradientThreshold() float64 {
	if c.GradientThreshold == nil {
		return 0
	}
	return *c.GradientThreshold
}

// GetSigmaMax returns the sigma slider upper bound or the default.
func (c *ExplorerConfig) GetSigmaMax() float64 {
	if c.SigmaMax == nil {
		return 5
	}
	return *c.SigmaMax
}

// GetGridPoints returns the display grid size or the default.
func (c *ExplorerConfig) GetGridPoints() int {
	if c.GridPoints == nil {
		return 500
	}
	return *c.GridPoints
}

// GetRangeHeadroom returns the threshold slider headroom factor or the default.
func (c *ExplorerConfig) GetRangeHeadroom() float64 {
	if c.RangeHeadroom == nil {
		return 1.05
	}
	return *c.RangeHeadroom
}

// GetHighCurvatureColor returns the high-curvature marker color or the default.
func (c *ExplorerConfig) GetHighCurvatureColor() string {
	if c.HighCurvatureColor == nil {
		return "#0E6089"
	}
	return *c.HighCurvatureColor
}

// GetInflectionColor returns the inflection marker color or the default.
func (c *ExplorerConfig) GetInflectionColor() string {
	if c.InflectionColor == nil {
		return "#5E50A3"
	}
	return *c.InflectionColor
}

// GetLabel returns the panel label or the default (none).
func (c *ExplorerConfig) GetLabel() string {
	if c.Label == nil {
		return ""
	}
	return *c.Label
}

// GetListen returns the HTTP listen address or the default.
func (c *ExplorerConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8090"
	}
	return *c.Listen
}

// GetPNGWidthInches returns the PNG render width or the default.
func (c *ExplorerConfig) GetPNGWidthInches() float64 {
	if c.PNGWidthInches == nil {
		return 10
	}
	return *c.PNGWidthInches
}

// GetPNGHeightInches returns the PNG render height or the default.
func (c *ExplorerConfig) GetPNGHeightInches() float64 {
	if c.PNGHeightInches == nil {
		return 9
	}
	return *c.PNGHeightInches
}
