package dispatch

import "github.com/evalgo-org/cutelyst-go/config"

// EngineConfig holds the orchestrator's tunables, loaded the way the rest
// of the codebase loads service config: environment variables through
// config.EnvConfig, with defaults matching §6's documented values.
type EngineConfig struct {
	// RecursionLimit bounds Forward/Detach nesting depth (§4.5, §7).
	// Sourced from RECURSION, default 10.
	RecursionLimit int
	// PluginSearchPath mirrors CUTELYST_PLUGINS_DIR: a semicolon-separated
	// list of directories consulted by plugin loaders above this package;
	// the dispatch core itself never reads the filesystem, it only carries
	// the value through for upstream callers (no package in this module
	// reads it).
	PluginSearchPath []string
}

// DefaultEngineConfig returns the documented defaults with no environment
// overrides applied.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{RecursionLimit: 10}
}

// LoadDispatchConfig reads RECURSION and CUTELYST_PLUGINS_DIR from the
// environment, using prefix the same way config.NewEnvConfig does
// elsewhere in this codebase (pass "" for the bare variable names).
func LoadDispatchConfig(prefix string) EngineConfig {
	ec := config.NewEnvConfig(prefix)
	cfg := DefaultEngineConfig()
	cfg.RecursionLimit = ec.GetInt("RECURSION", cfg.RecursionLimit)
	if paths := ec.GetString("CUTELYST_PLUGINS_DIR", ""); paths != "" {
		cfg.PluginSearchPath = splitSemicolon(paths)
	}
	return cfg
}

func splitSemicolon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
