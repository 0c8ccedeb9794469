// Package storage reads the entity files produced by the brand-asset,
// persona and campaign stores. It never writes them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/decision-quality/pkg/models"
)

// File names looked up in the workspace directory.
const (
	AssetsFile    = "assets.yaml"
	PersonasFile  = "personas.yaml"
	CampaignsFile = "campaigns.yaml"
)

// AssetsDocument is the top-level structure of assets.yaml.
type AssetsDocument struct {
	Version string              `yaml:"version"`
	Assets  []models.BrandAsset `yaml:"assets"`
}

// PersonasDocument is the top-level structure of personas.yaml.
type PersonasDocument struct {
	Version  string           `yaml:"version"`
	Personas []models.Persona `yaml:"personas"`
}

// CampaignsDocument is the top-level structure of campaigns.yaml.
type CampaignsDocument struct {
	Version   string            `yaml:"version"`
	Campaigns []models.Campaign `yaml:"campaigns"`
}

// WorkspaceLoader loads a snapshot of every entity in a workspace directory.
type WorkspaceLoader interface {
	Load(ctx context.Context) (*models.Workspace, error)
	Dir() string
}

type fileWorkspaceLoader struct {
	dir    string
	logger *zap.Logger
}

// NewWorkspaceLoader creates a WorkspaceLoader reading YAML files from dir.
func NewWorkspaceLoader(dir string, logger *zap.Logger) WorkspaceLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileWorkspaceLoader{dir: dir, logger: logger}
}

func (l *fileWorkspaceLoader) Dir() string { return l.dir }

// Load reads the three entity files concurrently. A missing file yields an
// empty collection; a malformed file or duplicate entity ID is an error.
func (l *fileWorkspaceLoader) Load(ctx context.Context) (*models.Workspace, error) {
	var (
		assets    AssetsDocument
		personas  PersonasDocument
		campaigns CampaignsDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.readFile(gctx, AssetsFile, &assets) })
	g.Go(func() error { return l.readFile(gctx, PersonasFile, &personas) })
	g.Go(func() error { return l.readFile(gctx, CampaignsFile, &campaigns) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ws := &models.Workspace{
		Assets:    assets.Assets,
		Personas:  personas.Personas,
		Campaigns: campaigns.Campaigns,
	}
	if err := validateWorkspace(ws); err != nil {
		return nil, fmt.Errorf("validating workspace %s: %w", l.dir, err)
	}

	l.logger.Debug("workspace loaded",
		zap.String("dir", l.dir),
		zap.Int("assets", len(ws.Assets)),
		zap.Int("personas", len(ws.Personas)),
		zap.Int("campaigns", len(ws.Campaigns)),
	)
	return ws, nil
}

func (l *fileWorkspaceLoader) readFile(ctx context.Context, name string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("workspace file missing, treating as empty", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// validateWorkspace rejects empty or duplicate IDs across all entity kinds,
// since entities are looked up by ID alone.
func validateWorkspace(ws *models.Workspace) error {
	seen := make(map[string]models.EntityKind)
	for _, s := range ws.Subjects() {
		ref := s.Ref()
		if ref.ID == "" {
			return fmt.Errorf("%s %q has no id", ref.Kind, ref.Label)
		}
		if kind, dup := seen[ref.ID]; dup {
			return fmt.Errorf("duplicate id %q (%s and %s)", ref.ID, kind, ref.Kind)
		}
		seen[ref.ID] = ref.Kind
	}

	campaigns := make(map[string]bool, len(ws.Campaigns))
	for _, c := range ws.Campaigns {
		if c.ID == "" {
			return fmt.Errorf("campaign %q has no id", c.Name)
		}
		if campaigns[c.ID] {
			return fmt.Errorf("duplicate campaign id %q", c.ID)
		}
		campaigns[c.ID] = true
	}
	return nil
}
