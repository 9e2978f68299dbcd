package cache

import "strings"

const (
	GlobalKeyPrefix = "coursegen"
)

// GenerateCacheKey builds a namespaced Redis key for a service, object type and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// DraftLockKey is the key guarding in-flight generation for one course draft.
func DraftLockKey(draftID string) string {
	return GenerateCacheKey("generation", "draft_lock", draftID)
}
