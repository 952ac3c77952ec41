package config

import (
	"encoding/json"
	"maps"
	"os"
	"strconv"
	"strings"
)

// applyEnv overlays FIXGEN_* environment variables onto the config. Scalar
// fields map to fixed variable names; upload provider settings come from
// FIXGEN_UPLOAD_CONFIG (a JSON object) and FIXGEN_UPLOAD_CONFIG_* pairs.
func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("FIXGEN_ROOT", &cfg.Root)
	set("FIXGEN_EXTENSION", &cfg.Extension)
	set("FIXGEN_BUILD_COMMAND", &cfg.Build.Command)
	set("FIXGEN_BUILD_DIR", &cfg.Build.Dir)
	set("FIXGEN_PARSER_COMMAND", &cfg.Parser.Command)
	set("FIXGEN_PARSER_TIMEOUT", &cfg.Parser.Timeout)
	set("FIXGEN_UPLOAD_PROVIDER", &cfg.Upload.Provider)
	set("FIXGEN_WEBHOOK_URL", &cfg.Webhook.URL)
	set("FIXGEN_WEBHOOK_AUTH_TYPE", &cfg.Webhook.AuthType)
	set("FIXGEN_WEBHOOK_AUTH_TOKEN", &cfg.Webhook.AuthToken)

	if settings := envSettings("FIXGEN_UPLOAD_CONFIG"); settings != nil {
		if cfg.Upload.Settings == nil {
			cfg.Upload.Settings = make(map[string]any)
		}
		maps.Copy(cfg.Upload.Settings, settings)
	}
}

// envSettings collects provider settings from the environment: the bare
// prefix variable as a JSON object, then PREFIX_* variables as typed
// key=value pairs overriding it.
func envSettings(prefix string) map[string]any {
	settings := make(map[string]any)

	if jsonStr := os.Getenv(prefix); jsonStr != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
			maps.Copy(settings, parsed)
		}
	}

	envPrefix := prefix + "_"
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], envPrefix))
		settings[key] = inferValue(parts[1])
	}

	if len(settings) == 0 {
		return nil
	}
	return settings
}

// inferValue types a raw string value: integer first (so "1" is not read as
// a boolean), then float, then explicit true/false, else string.
func inferValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if intVal, err := strconv.Atoi(raw); err == nil {
		return intVal
	}
	if floatVal, err := strconv.ParseFloat(raw, 64); err == nil {
		return floatVal
	}
	if raw == "true" || raw == "false" {
		boolVal, _ := strconv.ParseBool(raw)
		return boolVal
	}
	return raw
}
