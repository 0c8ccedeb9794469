package models

// EntityKind tags the kind of strategic entity a verdict belongs to.
type EntityKind string

const (
	KindBrandAsset    EntityKind = "brand-asset"
	KindPersona       EntityKind = "persona"
	KindCampaignInput EntityKind = "campaign-input"
)

// EntityRef identifies an entity independently of its concrete type.
type EntityRef struct {
	ID    string     `json:"id" yaml:"id"`
	Label string     `json:"label" yaml:"label"`
	Kind  EntityKind `json:"kind" yaml:"kind"`
}

// Subject is a research item that can identify itself. Every entity kind
// that takes part in aggregation implements it.
type Subject interface {
	ResearchItem
	Ref() EntityRef
}

// BrandAsset is a brand-strategy asset such as a mission statement or
// positioning canvas.
type BrandAsset struct {
	ID       string           `yaml:"id"`
	Name     string           `yaml:"name"`
	Category string           `yaml:"category,omitempty"`
	Methods  []ResearchMethod `yaml:"research_methods"`
}

// ResearchMethods implements ResearchItem.
func (a BrandAsset) ResearchMethods() []ResearchMethod { return a.Methods }

// Ref implements Subject.
func (a BrandAsset) Ref() EntityRef {
	return EntityRef{ID: a.ID, Label: labelOr(a.Name, a.ID), Kind: KindBrandAsset}
}

// Persona is a target-audience persona.
type Persona struct {
	ID      string           `yaml:"id"`
	Name    string           `yaml:"name"`
	Role    string           `yaml:"role,omitempty"`
	Methods []ResearchMethod `yaml:"research_methods"`
}

// ResearchMethods implements ResearchItem.
func (p Persona) ResearchMethods() []ResearchMethod { return p.Methods }

// Ref implements Subject.
func (p Persona) Ref() EntityRef {
	return EntityRef{ID: p.ID, Label: labelOr(p.Name, p.ID), Kind: KindPersona}
}

// CampaignInput is an input owned by a single campaign (briefs, market
// data) that needs its own research before the campaign is generated.
type CampaignInput struct {
	ID      string           `yaml:"id"`
	Name    string           `yaml:"name"`
	Methods []ResearchMethod `yaml:"research_methods"`
}

// ResearchMethods implements ResearchItem.
func (c CampaignInput) ResearchMethods() []ResearchMethod { return c.Methods }

// Ref implements Subject.
func (c CampaignInput) Ref() EntityRef {
	return EntityRef{ID: c.ID, Label: labelOr(c.Name, c.ID), Kind: KindCampaignInput}
}

// Campaign selects the assets and personas a campaign is built from.
type Campaign struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	AssetIDs   []string        `yaml:"assets"`
	PersonaIDs []string        `yaml:"personas"`
	Inputs     []CampaignInput `yaml:"inputs,omitempty"`
}

// Workspace is an in-memory snapshot of every entity supplied by the
// external stores. It is read-only for the engine.
type Workspace struct {
	Assets    []BrandAsset
	Personas  []Persona
	Campaigns []Campaign
}

// Subjects returns every asset, persona and campaign input as subjects,
// assets first.
func (w *Workspace) Subjects() []Subject {
	if w == nil {
		return nil
	}
	out := make([]Subject, 0, len(w.Assets)+len(w.Personas))
	for _, a := range w.Assets {
		out = append(out, a)
	}
	for _, p := range w.Personas {
		out = append(out, p)
	}
	for _, c := range w.Campaigns {
		for _, in := range c.Inputs {
			out = append(out, in)
		}
	}
	return out
}

// FindSubject looks up an asset, persona or campaign input by ID.
func (w *Workspace) FindSubject(id string) (Subject, bool) {
	for _, s := range w.Subjects() {
		if s.Ref().ID == id {
			return s, true
		}
	}
	return nil, false
}

// FindCampaign looks up a campaign by ID.
func (w *Workspace) FindCampaign(id string) (*Campaign, bool) {
	if w == nil {
		return nil, false
	}
	for i := range w.Campaigns {
		if w.Campaigns[i].ID == id {
			return &w.Campaigns[i], true
		}
	}
	return nil, false
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
