package config

import "sort"

var Presets = map[string]map[string]*Config{
	"precession": {
		"3T-90deg": {
			Demo: "precession", Steps: 300,
			Params: map[string]float64{"b0": 3, "tilt": 90},
		},
		"1.5T-15deg": {
			Demo: "precession", Steps: 600,
			Params: map[string]float64{"b0": 1.5, "tilt": 15},
		},
	},
	"rotating-frame": {
		"phase-90": {
			Demo: "rotating-frame", Steps: 300,
			Params: map[string]float64{"b0": 3, "phase": 90},
		},
	},
	"resonant": {
		"wcs-3T": {
			Demo: "resonant", Steps: 1000, Mode: "wcs",
			Params: map[string]float64{"b0": 3, "b1": 5e-6, "phase": 0},
		},
		"rrf-3T": {
			Demo: "resonant", Steps: 1000, Mode: "rrf",
			Params: map[string]float64{"b0": 3, "b1": 5e-6, "phase": 0},
		},
	},
	"off-resonant": {
		"above-10ppm": {
			Demo: "off-resonant", Steps: 1000, Mode: "rrf",
			Params: map[string]float64{"b0": 3, "b1": 5e-6, "ppm": 10},
		},
		"below-5ppm": {
			Demo: "off-resonant", Steps: 1000, Mode: "rrf",
			Params: map[string]float64{"b0": 3, "b1": 5e-6, "ppm": -5},
		},
	},
	"coil": {
		"single": {
			Demo: "coil", Steps: 300,
			Dipoles: [][3]float64{{8, 0, 0}},
		},
		"pair": {
			Demo: "coil", Steps: 300,
			Dipoles: [][3]float64{{8, 0, 0}, {-8, 0, 0}},
		},
		"ring": {
			Demo: "coil", Steps: 300,
			Dipoles: [][3]float64{
				{5, 0, 0}, {4.2, 4.2, 0}, {0, 6, 0}, {-4.2, 4.2, 0},
				{-6, 0, 0}, {-4.2, -4.2, 0}, {0, -6, 0}, {4.2, -4.2, 0},
			},
		},
	},
	"gradient": {
		"x-axis": {
			Demo: "gradient", Gradient: GradientConfig{Gx: 10},
		},
		"yz-plane": {
			Demo: "gradient", Gradient: GradientConfig{Gy: 10, Gz: 20},
		},
		"volume": {
			Demo: "gradient", Gradient: GradientConfig{Gx: 10, Gy: 10, Gz: 10},
		},
	},
	"fourier": {
		"sign-20": {
			Demo: "fourier", Function: "sign", Terms: 20,
		},
		"sawtooth-20": {
			Demo: "fourier", Function: "x/L", Terms: 20,
		},
	},
}

// GetPreset returns a copy of a preset so callers may override its fields.
func GetPreset(demo, preset string) *Config {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	cfg, ok := demoPresets[preset]
	if !ok {
		return nil
	}
	out := *cfg
	if cfg.Params != nil {
		out.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			out.Params[k] = v
		}
	}
	out.Dipoles = append([][3]float64(nil), cfg.Dipoles...)
	return &out
}

func ListPresets(demo string) []string {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(demoPresets))
	for name := range demoPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
