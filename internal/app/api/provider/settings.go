package provider

// Settings returns the "settings" section of a provider config map, or the
// map itself when it is flat.
func Settings(config map[string]interface{}) map[string]interface{} {
	if settings, ok := config["settings"].(map[string]interface{}); ok {
		return settings
	}
	return config
}

// Auth returns the "auth" section of a provider config map.
func Auth(config map[string]interface{}) map[string]interface{} {
	if auth, ok := config["auth"].(map[string]interface{}); ok {
		return auth
	}
	return map[string]interface{}{}
}

// StringValue reads a string setting, returning "" when absent or mistyped.
func StringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// IntValue reads an integer setting that may arrive as int or float64
// depending on how the config was decoded.
func IntValue(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
