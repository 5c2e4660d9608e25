package migrate

import (
	"os"
	"path/filepath"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// authStoreRelPath is where each agent keeps its auth store, relative to
// the agent's directory under <root>/agents/<id>.
var authStoreRelPath = filepath.Join("agent", "auth-profiles.json")

// Target is one discovered auth-store file.
type Target struct {
	AgentID string
	Path    string
}

// Discover enumerates agents under <rootDir>/agents and returns one target
// per agent whose auth-store file exists. agentID, when non-empty, narrows
// discovery to that single agent. A missing root (or agents directory) is
// a normal empty result, not an error: the tool may run before any agent
// has been provisioned.
func Discover(rootDir, agentID string) ([]Target, error) {
	agentsDir := filepath.Join(rootDir, "agents")

	entries, err := os.ReadDir(agentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, claverrors.DiscoveryError{Root: rootDir, Err: err}
	}

	var targets []Target
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if agentID != "" && id != agentID {
			continue
		}

		path := filepath.Join(agentsDir, id, authStoreRelPath)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		targets = append(targets, Target{AgentID: id, Path: path})
	}

	return targets, nil
}
