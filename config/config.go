//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package config loads the process-wide runtime configuration and resolves
// the context-window limit precedence chain: an agent's own extra_config
// always wins over the runtime config file, which always wins over built-in
// defaults.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
)

const (
	envVar = "STEP_DEEPRESEARCH_CONFIG"

	defaultUpperLimit = 100_000
	defaultLowerRatio = 0.9

	extraConfigUpperKey     = "final_answer_context_upper_limit"
	extraConfigLowerKey     = "final_answer_context_lower_limit"
	extraConfigThresholdKey = "final_answer_context_threshold"
)

// Runtime is the process-wide runtime configuration, loaded once from YAML.
type Runtime struct {
	ContextUpperLimit int `yaml:"context_upper_limit"`
	ContextLowerLimit int `yaml:"context_lower_limit"`
}

// Default returns the built-in defaults: a 100,000 token ceiling and a floor
// at ~90% of it.
func Default() Runtime {
	return Runtime{
		ContextUpperLimit: defaultUpperLimit,
		ContextLowerLimit: int(defaultUpperLimit * defaultLowerRatio),
	}
}

// Load resolves the runtime config file from $STEP_DEEPRESEARCH_CONFIG, then
// <repoRoot>/config.yaml, and overlays it onto Default. A missing file (either
// path unset or the file absent) is not an error: it simply leaves the
// defaults in place, matching the teacher's own permissive config-file
// loading style.
func Load(repoRoot string) Runtime {
	cfg := Default()

	path := os.Getenv(envVar)
	if path == "" {
		path = filepath.Join(repoRoot, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warnf("config: failed to parse %s: %v, falling back to defaults", path, err)
		return Default()
	}
	if cfg.ContextUpperLimit <= 0 {
		cfg.ContextUpperLimit = defaultUpperLimit
	}
	if cfg.ContextLowerLimit <= 0 || cfg.ContextLowerLimit >= cfg.ContextUpperLimit {
		cfg.ContextLowerLimit = int(float64(cfg.ContextUpperLimit) * defaultLowerRatio)
	}
	return cfg
}

// ResolveContextLimits implements the precedence chain of spec §6:
// agent extra_config upper/lower limit > agent extra_config threshold >
// runtime config file limits > built-in defaults.
//
// extraConfig is read with loose typing (JSON-decoded agent config commonly
// comes back as map[string]any with float64 numbers) so both int and
// float64 values for the limit/threshold keys are accepted.
func ResolveContextLimits(extraConfig map[string]any, runtime Runtime) (upper, lower int) {
	upper, lower = runtime.ContextUpperLimit, runtime.ContextLowerLimit

	if v, ok := numberFromMap(extraConfig, extraConfigThresholdKey); ok && v > 0 && v < 1 {
		lower = int(float64(upper) * v)
	}

	if v, ok := numberFromMap(extraConfig, extraConfigUpperKey); ok && v > 0 {
		upper = int(v)
	}
	if v, ok := numberFromMap(extraConfig, extraConfigLowerKey); ok && v > 0 {
		lower = int(v)
	}

	if lower < 1 || lower >= upper {
		lower = int(float64(upper) * defaultLowerRatio)
		if lower < 1 {
			lower = 1
		}
	}
	return upper, lower
}

func numberFromMap(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
