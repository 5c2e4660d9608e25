// Package authstore reads and rewrites per-agent auth-profiles.json files.
//
// An auth store is a JSON object with a "profiles" map (profile id →
// credential record). Every other top-level field is carried through a
// rewrite verbatim. Rewrites are atomic: the new content is written to a
// sibling temp file and renamed over the original.
package authstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	claverrors "github.com/openclaw/clawvault/internal/errors"
)

// FileMode is applied to rewritten auth stores and their backups. Auth
// stores hold credentials (or at minimum placeholders plus account
// metadata), so they stay owner-only.
const FileMode os.FileMode = 0o600

// Document is one parsed auth-store file. The root map holds the whole
// JSON document so unknown top-level fields survive a rewrite.
type Document struct {
	Path     string
	root     map[string]any
	profiles map[string]any
}

// Load reads and parses the auth store at path. A root that is not a JSON
// object, or one without a "profiles" object, is a FormatError carrying
// only the path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading auth store %s: %w", path, err)
	}

	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, claverrors.FormatError{Path: path, Message: "root is not a JSON object"}
	}

	rawProfiles, ok := root["profiles"]
	if !ok {
		return nil, claverrors.FormatError{Path: path, Message: "missing profiles object"}
	}
	profiles, ok := rawProfiles.(map[string]any)
	if !ok {
		return nil, claverrors.FormatError{Path: path, Message: "profiles is not an object"}
	}

	return &Document{Path: path, root: root, profiles: profiles}, nil
}

// ProfileIDs returns the profile ids in sorted order so migration output is
// stable across runs.
func (d *Document) ProfileIDs() []string {
	ids := make([]string, 0, len(d.profiles))
	for id := range d.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Profile returns the raw profile entry for id. The second return is false
// when the id is unknown.
func (d *Document) Profile(id string) (any, bool) {
	raw, ok := d.profiles[id]
	return raw, ok
}

// SetField overrides one field of a profile with the given string value.
// The profile entry must be an object; callers classify entries before
// mutating them.
func (d *Document) SetField(profileID, field, value string) {
	profile, ok := d.profiles[profileID].(map[string]any)
	if !ok {
		return
	}
	profile[field] = value
}

// PlaceholderNames returns the env var names referenced by ${NAME}
// placeholders across all profiles, sorted and deduplicated.
func (d *Document) PlaceholderNames() []string {
	seen := map[string]bool{}
	for _, raw := range d.profiles {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, v := range record {
			s, ok := v.(string)
			if !ok || !IsPlaceholder(s) {
				continue
			}
			seen[s[2:len(s)-1]] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render serializes the document with stable 2-space indentation.
func (d *Document) Render() ([]byte, error) {
	out, err := json.MarshalIndent(d.root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing auth store %s: %w", d.Path, err)
	}
	return append(out, '\n'), nil
}

// WriteAtomic writes data over the document's file via a sibling temp file
// and rename, keeping owner-only permissions throughout.
func (d *Document) WriteAtomic(data []byte) error {
	dir := filepath.Dir(d.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(d.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := tmp.Chmod(FileMode); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, d.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", d.Path, err)
	}
	return nil
}

// BackupPath returns the timestamped backup path for an auth store,
// <path>.bak.<unix-ms>.
func BackupPath(path string, now time.Time) string {
	return fmt.Sprintf("%s.bak.%d", path, now.UnixMilli())
}

// WriteBackup copies the current on-disk content of the document to a
// timestamped sibling backup and returns the backup path. The backup is a
// byte-for-byte copy of the pre-migration file.
func (d *Document) WriteBackup(now time.Time) (string, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s for backup: %w", d.Path, err)
	}
	backup := BackupPath(d.Path, now)
	if err := os.WriteFile(backup, data, FileMode); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", backup, err)
	}
	return backup, nil
}
