package cache

import "strings"

const (
	GlobalKeyPrefix = "votist"
)

// GenerateCacheKey joins prefix, service, object type and identifier with ":".
// paramsKey, when given, are joined by "_" and appended as a last segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ProfileKey is the cache key of an identity provider profile.
func ProfileKey(subject string) string {
	return GenerateCacheKey("identity", "profile", subject)
}
