// Package manifest loads and saves the two app-level JSON manifests
// (the user manifest and the project manifest) at their fixed boot-time
// paths, adapted from the teacher's pkg/vault JSON config read/write
// pattern.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/state"
)

// UserManifestPath returns the absolute path of the user manifest file
// under the engine's config directory.
func UserManifestPath() (string, error) {
	dir, _, err := config.EnginePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.UserManifestFile), nil
}

// ProjectManifestPath returns the absolute path of the project manifest
// file under the engine's config directory.
func ProjectManifestPath() (string, error) {
	dir, _, err := config.EnginePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.ProjectManifestFile), nil
}

// LoadUserManifest reads and parses the user manifest at path. A
// missing file is reported as state.NotFoundError, not a Go error — the
// caller (the supervisor's boot sequence) stores that directly as
// AppState.UserManifest.
func LoadUserManifest(path string) state.Data[[]state.UserRecord] {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.Err[[]state.UserRecord](state.NotFoundError())
		}
		return state.Err[[]state.UserRecord](state.ParseError(err))
	}
	var records []state.UserRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return state.Err[[]state.UserRecord](state.ParseError(err))
	}
	return state.Ok(records)
}

// SaveUserManifest writes records to path as JSON, creating the parent
// directory if needed.
func SaveUserManifest(path string, records []state.UserRecord) error {
	return writeJSON(path, records)
}

// LoadProjectManifest reads and parses the project manifest (an ordered
// list of absolute project paths) at path.
func LoadProjectManifest(path string) state.Data[[]string] {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.Err[[]string](state.NotFoundError())
		}
		return state.Err[[]string](state.ParseError(err))
	}
	var paths []string
	if err := json.Unmarshal(content, &paths); err != nil {
		return state.Err[[]string](state.ParseError(err))
	}
	return state.Ok(paths)
}

// SaveProjectManifest writes paths to path as JSON, creating the parent
// directory if needed.
func SaveProjectManifest(path string, paths []string) error {
	return writeJSON(path, paths)
}

func writeJSON(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
