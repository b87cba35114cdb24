package supervisor

import (
	"context"
	"fmt"
	"log"

	"github.com/syre-project/engine/pkg/searchindex"
	"github.com/syre-project/engine/pkg/state"
)

// indexEffects keeps the optional search index in step with one
// batch's reducer effects. Every failure here is logged and
// swallowed — per spec.md, the index is a write-behind projection
// whose failure must never block the main pipeline.
func (s *Supervisor) indexEffects(ctx context.Context, effects state.EffectLog) {
	if s.searchIndex == nil {
		return
	}
	for _, u := range effects {
		if err := s.applyIndexUpdate(ctx, u); err != nil {
			log.Printf("supervisor: search index update: %v", err)
		}
	}
}

func (s *Supervisor) applyIndexUpdate(ctx context.Context, u state.Update) error {
	switch u.Kind {
	case state.UpdateProjectRemoved:
		return s.searchIndex.DeleteProject(ctx, u.ProjectPath)

	case state.UpdateSubtreeRemoved:
		return s.searchIndex.Delete(ctx, u.ResourceID)

	case state.UpdateContainerPropertiesChanged, state.UpdateSubgraphInserted, state.UpdateContainerRenamed:
		return s.indexContainer(ctx, u.ProjectPath, u.ResourceID)

	case state.UpdateContainerAssetsChanged:
		return s.indexAllAssets(ctx, u.ProjectPath, u.AbsGraphPath)

	case state.UpdateAssetAdded, state.UpdateAssetPathChanged, state.UpdateAssetMoved, state.UpdateAssetFsResourceChanged:
		return s.indexAsset(ctx, u.ProjectPath, u.AbsGraphPath, u.ResourceID)

	case state.UpdateAssetRemoved:
		return s.searchIndex.Delete(ctx, u.ResourceID)

	default:
		return nil
	}
}

func (s *Supervisor) indexContainer(ctx context.Context, projectPath string, nodeID state.ResourceId) error {
	g, err := projectGraph(s.appState, projectPath)
	if err != nil {
		return fmt.Errorf("index container: %w", err)
	}
	node, ok := g.Node(nodeID)
	if !ok {
		return fmt.Errorf("index container: node %s missing", nodeID)
	}
	props, ok := node.Properties.Get()
	if !ok {
		// Properties haven't loaded yet; nothing text-valued to index.
		return nil
	}
	return s.searchIndex.Upsert(ctx, searchindex.Document{
		ID:          nodeID,
		Kind:        searchindex.DocContainer,
		ProjectPath: projectPath,
		Name:        props.Name,
		DomainKind:  props.Kind,
		Description: props.Description,
		Tags:        props.Tags,
		Metadata:    props.Metadata,
	})
}

func (s *Supervisor) indexAsset(ctx context.Context, projectPath, absGraphPath string, assetID state.ResourceId) error {
	g, err := projectGraph(s.appState, projectPath)
	if err != nil {
		return fmt.Errorf("index asset: %w", err)
	}
	assets, err := containerAssets(g, absGraphPath)
	if err != nil {
		return fmt.Errorf("index asset: %w", err)
	}
	for _, a := range assets {
		if a.Properties.ID != assetID {
			continue
		}
		return s.searchIndex.Upsert(ctx, assetDocument(projectPath, a))
	}
	return fmt.Errorf("index asset: %s not found under %s", assetID, absGraphPath)
}

// indexAllAssets re-indexes every asset currently loaded in a
// container after a bulk SetAssetsAction. It does not delete documents
// for assets the new list dropped — a known gap recorded in the design
// ledger, since the reducer's effect carries no before/after diff to
// act on.
func (s *Supervisor) indexAllAssets(ctx context.Context, projectPath, absGraphPath string) error {
	g, err := projectGraph(s.appState, projectPath)
	if err != nil {
		return fmt.Errorf("index assets: %w", err)
	}
	assets, err := containerAssets(g, absGraphPath)
	if err != nil {
		return fmt.Errorf("index assets: %w", err)
	}
	for _, a := range assets {
		if err := s.searchIndex.Upsert(ctx, assetDocument(projectPath, a)); err != nil {
			return err
		}
	}
	return nil
}

func assetDocument(projectPath string, a state.Asset) searchindex.Document {
	return searchindex.Document{
		ID:          a.Properties.ID,
		Kind:        searchindex.DocAsset,
		ProjectPath: projectPath,
		Name:        a.Properties.Name,
		DomainKind:  a.Properties.Kind,
		Description: a.Properties.Description,
		Tags:        a.Properties.Tags,
		Metadata:    a.Properties.Metadata,
		AssetPath:   a.Path,
	}
}
