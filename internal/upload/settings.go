package upload

import (
	"fmt"
	"strconv"
)

// settingsMap wraps the config layer's untyped provider settings with typed
// accessors. YAML and environment sources both land here, so values may be
// strings even for boolean settings.
type settingsMap map[string]any

func (s settingsMap) requireString(key string) (string, error) {
	if val, ok := s[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str, nil
		}
	}
	return "", fmt.Errorf("minio: %s is required", key)
}

func (s settingsMap) stringOr(key, fallback string) string {
	if val, ok := s[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return fallback
}

func (s settingsMap) boolOr(key string, fallback bool) bool {
	if val, ok := s[key]; ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return fallback
}
