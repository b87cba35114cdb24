package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/manifest"
	"github.com/syre-project/engine/pkg/state"
)

var (
	initName         string
	initDataRoot     string
	initAnalysisRoot string
	initDescription  string
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new project at path and register it with the engine",
	Long: `init creates path's .syre/project.json resource file, creates its data
root directory, and adds path to the project manifest (rewritten in
sorted order) so "syre serve" picks it up on its next boot.

Unlike a full interactive project wizard, init only asks for what it
can't infer: if --name isn't given, it prompts for one.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (prompted for if omitted)")
	initCmd.Flags().StringVar(&initDataRoot, "data-root", "data", "data root, relative to path")
	initCmd.Flags().StringVar(&initAnalysisRoot, "analysis-root", "", "analysis root, relative to path (optional)")
	initCmd.Flags().StringVar(&initDescription, "description", "", "project description (optional)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	projectPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	name := initName
	if name == "" {
		name, err = promptProjectName(projectPath)
		if err != nil {
			return err
		}
	}

	cfgDir := filepath.Join(projectPath, config.ResourceConfigDirectory)
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", cfgDir, err)
	}
	if err := os.MkdirAll(filepath.Join(projectPath, initDataRoot), 0o755); err != nil {
		return fmt.Errorf("create data root: %w", err)
	}
	if initAnalysisRoot != "" {
		if err := os.MkdirAll(filepath.Join(projectPath, initAnalysisRoot), 0o755); err != nil {
			return fmt.Errorf("create analysis root: %w", err)
		}
	}

	props := state.ProjectProperties{
		Name:         name,
		DataRoot:     initDataRoot,
		AnalysisRoot: initAnalysisRoot,
		Description:  initDescription,
	}
	if err := writeProjectProperties(filepath.Join(cfgDir, config.ProjectPropertiesFile), props); err != nil {
		return err
	}

	if err := registerProject(projectPath); err != nil {
		return err
	}

	fmt.Printf("initialized project %q at %s\n", name, projectPath)
	return nil
}

func promptProjectName(projectPath string) (string, error) {
	fmt.Printf("Project name [%s]: ", filepath.Base(projectPath))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(line)
	if name == "" {
		name = filepath.Base(projectPath)
	}
	return name, nil
}

func writeProjectProperties(path string, props state.ProjectProperties) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project already initialized: %s exists", path)
	}
	content, err := json.MarshalIndent(props, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project properties: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}

func registerProject(projectPath string) error {
	projectManifestPath, err := manifest.ProjectManifestPath()
	if err != nil {
		return err
	}
	data := manifest.LoadProjectManifest(projectManifestPath)
	paths, _ := data.Get()
	for _, p := range paths {
		if p == projectPath {
			return nil
		}
	}
	paths = append(paths, projectPath)
	sort.Strings(paths)
	return manifest.SaveProjectManifest(projectManifestPath, paths)
}
