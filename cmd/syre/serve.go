package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/syre-project/engine/pkg/config"
	"github.com/syre-project/engine/pkg/identity"
	"github.com/syre-project/engine/pkg/manifest"
	"github.com/syre-project/engine/pkg/mcpserver"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/rawevent"
	"github.com/syre-project/engine/pkg/searchindex"
	"github.com/syre-project/engine/pkg/supervisor"
)

var serveEngineConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine daemon and expose it as an MCP server over stdio",
	Long: `serve bootstraps the engine from its user and project manifests, starts
the watch/coalesce/lift/reduce/publish pipeline, and registers watch,
unwatch, final_path, and query as MCP tools served over stdin/stdout.

Example MCP client configuration:
{
  "mcpServers": {
    "syre": {
      "command": "/path/to/syre",
      "args": ["serve"]
    }
  }
}`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveEngineConfigPath, "config", "", "path to engine.yaml (defaults to the OS user-config directory)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if debug {
		log.SetOutput(os.Stderr)
	}

	engineConfigDir, engineConfigFile, err := config.EnginePath()
	if err != nil {
		return err
	}
	if serveEngineConfigPath == "" {
		serveEngineConfigPath = engineConfigFile
	}
	engineCfg, err := config.LoadEngineConfig(serveEngineConfigPath)
	if err != nil {
		return err
	}

	userManifestPath, err := manifest.UserManifestPath()
	if err != nil {
		return err
	}
	projectManifestPath, err := manifest.ProjectManifestPath()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		<-sigs
		cancel()
	}()

	appState := supervisor.Bootstrap(userManifestPath, projectManifestPath)
	resolver := identity.NewResolver()

	source, err := rawevent.NewSource(rawevent.Options{
		Resolver:         resolver,
		DebounceInterval: engineCfg.DebounceInterval,
		BatchBufferSize:  engineCfg.RawEventBufferSize,
	})
	if err != nil {
		return err
	}
	defer source.Close()

	pub := publisher.New(appState)

	var searchIndex *searchindex.Index
	if engineCfg.SearchIndexEnabled {
		idx, err := searchindex.Open(filepath.Join(engineConfigDir, "search.db"))
		if err != nil {
			log.Printf("search index unavailable, search tool will error: %s", err)
		} else {
			defer idx.Close()
			searchIndex = idx
		}
	}

	sup := supervisor.New(appState, pub, resolver, source, searchIndex)

	if paths, ok := appState.ProjectManifest.Get(); ok {
		for _, p := range paths {
			if err := source.Watch(p); err != nil {
				log.Printf("failed to watch %s: %s", p, err)
			}
		}
	}

	s := server.NewMCPServer(
		"syre-engine",
		rootCmd.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(serveInstructions()),
	)

	notifier := mcpserver.NewNotifier(s, pub)
	mcpConfig := mcpserver.Config{Supervisor: sup, Publisher: pub, Notifier: notifier}
	if err := mcpserver.RegisterAll(s, mcpConfig); err != nil {
		return err
	}
	notifier.Start(ctx)

	go sup.Run(ctx)

	if debug {
		log.Printf("syre engine serving over stdio (search index enabled: %v)", searchIndex != nil)
	}
	return server.ServeStdio(s)
}

func serveInstructions() string {
	return `This MCP server exposes the syre engine's live project state.

Tools:
- watch {path} — start watching a project or data-root directory.
- unwatch {path} — stop watching a path and everything beneath it.
- final_path {path} — resolve a possibly-stale path to wherever its identity currently lives.
- query {kind, ...} — read the engine's live state. kind is one of:
  - project_by_id {resourceId} -> {project}
  - project_by_path {projectPath} -> {project}
  - container_by_path {projectPath, absGraphPath?} -> {container}
  - search {text, limit?} -> {hits}

Subscribe to "notifications/syre/update" for server-to-client push updates as watched paths change.`
}
