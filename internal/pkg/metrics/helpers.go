package metrics

import (
	"strings"
)

// RecordTokenStoreOp records a persistent store call consistently
// store: store name (e.g., "file", "keyring", "session")
// operation: "get", "set" or "remove"
// err: error from the operation (nil if successful)
func RecordTokenStoreOp(store, operation string, err error) {
	result := "success"
	if err != nil {
		result = classifyStoreError(err)
	}
	TokenStoreOperations.WithLabelValues(store, operation, result).Inc()
}

// classifyStoreError categorizes store errors for metrics
func classifyStoreError(err error) string {
	if err == nil {
		return "success"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "permission denied"):
		return "permission"
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return "not_found"
	case strings.Contains(errStr, "dbus") || strings.Contains(errStr, "secret service"):
		return "keyring_unavailable"
	case strings.Contains(errStr, "securecookie") || strings.Contains(errStr, "cookie"):
		return "cookie"
	case strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") || strings.Contains(errStr, "invalid character"):
		return "corrupt"
	default:
		return "other"
	}
}
