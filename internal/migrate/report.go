package migrate

// SkipReason explains why a credential field was left alone.
type SkipReason string

const (
	SkipMissing            SkipReason = "missing"
	SkipEmpty              SkipReason = "empty"
	SkipAlreadyPlaceholder SkipReason = "already_placeholder"
	SkipUnsupportedType    SkipReason = "unsupported_type"
	SkipMapIgnored         SkipReason = "map_ignored"
)

// Change records one migrated field. It never carries the secret value,
// only its length for audit purposes.
type Change struct {
	AgentID   string `json:"agentId"`
	Path      string `json:"authStorePath"`
	ProfileID string `json:"profileId"`
	Provider  string `json:"provider"`
	Field     string `json:"field"`
	EnvVar    string `json:"envVar"`
	ValueLen  int    `json:"length"`
}

// Skip records one field (or whole credential) that was not migrated.
type Skip struct {
	ProfileID string     `json:"profileId"`
	Provider  string     `json:"provider"`
	Field     string     `json:"field,omitempty"`
	Reason    SkipReason `json:"reason"`
}

// FileReport is the outcome of migrating a single auth-store file.
// Changed is true iff Changes is non-empty, independent of dry-run mode.
// Error is set when the file's migration failed; its message contains
// names, paths and lengths only, never secret values.
type FileReport struct {
	AgentID string   `json:"agentId"`
	Path    string   `json:"authStorePath"`
	DryRun  bool     `json:"dryRun"`
	Changed bool     `json:"changed"`
	Changes []Change `json:"changes"`
	Skipped []Skip   `json:"skipped"`
	Backup  string   `json:"backupPath,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// TotalChanges sums migrated fields across reports.
func TotalChanges(reports []*FileReport) int {
	n := 0
	for _, r := range reports {
		n += len(r.Changes)
	}
	return n
}

// TotalFailures counts reports whose migration failed.
func TotalFailures(reports []*FileReport) int {
	n := 0
	for _, r := range reports {
		if r.Error != "" {
			n++
		}
	}
	return n
}
