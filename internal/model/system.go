package model

// Cache backends reported by the version endpoint.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// VersionInfo describes the running build and its database schema.
type VersionInfo struct {
	AppVersion       string          `json:"appVersion"`
	DBVersion        string          `json:"dbVersion"`
	Cache            string          `json:"cache"`
	Features         map[string]bool `json:"features"`
	MigrationNeeded  bool            `json:"migrationNeeded"`
	MigrationMessage *string         `json:"migrationMessage,omitempty"`
}
