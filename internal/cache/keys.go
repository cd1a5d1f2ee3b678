package cache

import "strings"

const (
	GlobalKeyPrefix = "ecgacademy"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// LoginSessionKey marks a user's session whose login event was already logged.
func LoginSessionKey(uid, sessionID string) string {
	return GenerateCacheKey("session", "login", uid, sessionID)
}

// AdminUserStatsKey holds the serialized admin leaderboard.
func AdminUserStatsKey() string {
	return GenerateCacheKey("admin", "userstats", "all")
}

// QuizSubmissionKey remembers the response of an idempotent quiz submission.
func QuizSubmissionKey(attemptID string) string {
	return GenerateCacheKey("quiz", "submission", attemptID)
}
