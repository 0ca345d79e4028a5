package api

// Build metadata, set with
// -ldflags "-X github.com/anamarijapotokar/Baccarat/internal/api.EngineVersion=..."
var (
	EngineVersion = "dev"
	GitCommit     = "unknown"
	BuildTime     = "unknown"
)

// GetVersionInfo returns the build metadata stamped into responses and stored runs.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
	}
}
