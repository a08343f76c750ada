package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDemo  = "precession"
	DefaultSteps = 300
	DefaultTerms = 1

	// CoilPhysical selects K = μ0·S/(4π) instead of a number.
	CoilPhysical = "physical"
)

// Demos lists every demo a config may name.
var Demos = []string{"precession", "rotating-frame", "resonant", "off-resonant", "coil", "gradient", "fourier"}

// StaticDemos have no time axis.
var StaticDemos = []string{"gradient", "fourier"}

type Config struct {
	Demo         string             `yaml:"demo" toml:"demo"`
	Steps        int                `yaml:"steps" toml:"steps"`
	Mode         string             `yaml:"mode,omitempty" toml:"mode,omitempty"`
	Params       map[string]float64 `yaml:"params,omitempty" toml:"params,omitempty"`
	Dipoles      [][3]float64       `yaml:"dipoles,omitempty" toml:"dipoles,omitempty"`
	Snap         *bool              `yaml:"snap,omitempty" toml:"snap,omitempty"`
	CoilConstant string             `yaml:"coil_constant,omitempty" toml:"coil_constant,omitempty"`
	Function     string             `yaml:"function,omitempty" toml:"function,omitempty"`
	Terms        int                `yaml:"terms,omitempty" toml:"terms,omitempty"`
	Gradient     GradientConfig     `yaml:"gradient,omitempty" toml:"gradient,omitempty"`
	Output       string             `yaml:"output,omitempty" toml:"output,omitempty"`
}

// GradientConfig holds gradient strengths in mT/m.
type GradientConfig struct {
	Gx float64 `yaml:"gx" toml:"gx"`
	Gy float64 `yaml:"gy" toml:"gy"`
	Gz float64 `yaml:"gz" toml:"gz"`
}

// SnapEnabled reports whether coil dipoles snap to the placement grid. An
// unset snap means no.
func (c *Config) SnapEnabled() bool {
	return c.Snap != nil && *c.Snap
}

func DefaultConfig() *Config {
	return &Config{
		Demo:     DefaultDemo,
		Steps:    DefaultSteps,
		Function: "sign",
		Terms:    DefaultTerms,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load decodes a YAML or TOML file onto the defaults. The format follows the
// file extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IsStatic reports whether the configured demo has no time axis.
func (c *Config) IsStatic() bool {
	return slices.Contains(StaticDemos, c.Demo)
}

// Validate checks what can be checked without building the demo. Parameter
// domains are left to the demo's own setters.
func (c *Config) Validate() error {
	if !slices.Contains(Demos, c.Demo) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownDemo, c.Demo)
	}
	if !c.IsStatic() && c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.Terms < 0 {
		return fmt.Errorf("%w: terms must not be negative, got %d", dynamo.ErrParameterBounds, c.Terms)
	}
	if _, err := c.CoilK(); err != nil {
		return err
	}
	return nil
}

// CoilK resolves coil_constant: empty means 1, "physical" means μ0·S/(4π),
// anything else must be a positive number.
func (c *Config) CoilK() (float64, error) {
	switch c.CoilConstant {
	case "":
		return 1, nil
	case CoilPhysical:
		return physics.VacuumPermeability * physics.CoilSurface / (4 * math.Pi), nil
	}
	k, err := strconv.ParseFloat(c.CoilConstant, 64)
	if err != nil || k <= 0 {
		return 0, fmt.Errorf("%w: coil_constant %q", dynamo.ErrParameterBounds, c.CoilConstant)
	}
	return k, nil
}
