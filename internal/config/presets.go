package config

import "sort"

// Presets are ready-made parameter sets for common analysis situations.
var Presets = map[string]*Config{
	// quick trades lag coverage for speed on a first look.
	"quick": {
		Window:        5,
		Mode:          "valid",
		MaxLag:        64,
		Threshold:     0.0,
		MaxIterations: 50,
		Alpha:         0.5,
		Step:          1.0,
	},
	// thorough spends iterations and the full lag window.
	"thorough": {
		Window:        20,
		Mode:          "valid",
		MaxLag:        0,
		Threshold:     0.0,
		MaxIterations: 1000,
		Alpha:         0.3,
		Step:          1.0,
	},
	// noisy suits jittery data: wide windows, heavy EWMA, and a
	// correlation cutoff above the noise floor.
	"noisy": {
		Window:        50,
		Mode:          "same",
		MaxLag:        0,
		Threshold:     0.05,
		MaxIterations: 200,
		Alpha:         0.1,
		Step:          1.0,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	clone := *cfg
	return &clone
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
