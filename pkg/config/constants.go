// Package config holds well-known names for the engine's on-disk layout:
// the per-project/per-container config directory, the resource file
// names inside it, and the engine's own process-level configuration file.
package config

const (
	UserConfigDirectoryNotFoundErrorMessage = "user config directory not found"

	// EngineConfigDirectory is the directory under the OS user-config
	// root that holds the engine's own process-level settings.
	EngineConfigDirectory = "syre"
	// EngineConfigFile is the engine's own YAML settings file.
	EngineConfigFile = "engine.yaml"

	// ResourceConfigDirectory is the well-known subdirectory name present
	// in a project's root and in every container directory, holding the
	// JSON resource files described below.
	ResourceConfigDirectory = ".syre"

	// ProjectPropertiesFile holds project properties (name, data/analysis
	// root subpaths, ...).
	ProjectPropertiesFile = "project.json"
	// ProjectSettingsFile holds project settings.
	ProjectSettingsFile = "project_settings.json"
	// AnalysesManifestFile holds the ordered list of analysis descriptors.
	AnalysesManifestFile = "analyses.json"

	// ContainerPropertiesFile holds container properties.
	ContainerPropertiesFile = "container.json"
	// ContainerSettingsFile holds container settings.
	ContainerSettingsFile = "container_settings.json"
	// AssetsManifestFile holds the ordered list of assets.
	AssetsManifestFile = "assets.json"

	// UserManifestFile is the app-level list of user records.
	UserManifestFile = "users.json"
	// ProjectManifestFile is the app-level ordered list of project paths.
	ProjectManifestFile = "projects.json"
)
