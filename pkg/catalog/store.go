package catalog

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mechforge/mechforge/pkg/stores"
)

// EntryStore is the part of stores.Store the catalog mirror needs.
type EntryStore interface {
	ListCatalogEntries(ctx context.Context, kind *stores.EntryKind) ([]*stores.CatalogEntry, error)
	ReplaceCatalog(ctx context.Context, entries []*stores.CatalogEntry) error
}

const defaultsID = "defaults"

// Entries converts the catalog definitions to store entries, one per item,
// upgrade and chassis plus one for the defaults.
func (c *Catalog) Entries() ([]*stores.CatalogEntry, error) {
	c.mu.RLock()
	doc, source := c.doc, c.source
	c.mu.RUnlock()

	entries := make([]*stores.CatalogEntry, 0, len(doc.Items)+len(doc.Upgrades)+len(doc.Chassis)+1)
	add := func(kind stores.EntryKind, id, name string, def any) error {
		data, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", kind, id, err)
		}
		entries = append(entries, &stores.CatalogEntry{
			Kind:   kind,
			ID:     id,
			Name:   name,
			Data:   string(data),
			Source: source,
		})
		return nil
	}

	if err := add(stores.EntryKindDefaults, defaultsID, "", doc.Defaults); err != nil {
		return nil, err
	}
	for _, d := range doc.Items {
		if err := add(stores.EntryKindItem, d.ID, d.Name, d); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Upgrades {
		if err := add(stores.EntryKindUpgrade, d.ID, d.Name, d); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Chassis {
		if err := add(stores.EntryKindChassis, d.ID, d.Name, d); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// SaveToStore replaces the mirrored catalog in store with this catalog.
func (c *Catalog) SaveToStore(ctx context.Context, store EntryStore) error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}
	if err := store.ReplaceCatalog(ctx, entries); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// LoadFromStore rebuilds a catalog from the entries mirrored in store.
func LoadFromStore(ctx context.Context, store EntryStore) (*Catalog, error) {
	entries, err := store.ListCatalogEntries(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("store holds no catalog")
	}

	var (
		doc         Document
		source      string
		hasDefaults bool
	)
	for _, e := range entries {
		source = e.Source
		var err error
		switch e.Kind {
		case stores.EntryKindDefaults:
			hasDefaults = true
			err = yaml.Unmarshal([]byte(e.Data), &doc.Defaults)
		case stores.EntryKindItem:
			var d ItemDef
			err = yaml.Unmarshal([]byte(e.Data), &d)
			doc.Items = append(doc.Items, d)
		case stores.EntryKindUpgrade:
			var d UpgradeDef
			err = yaml.Unmarshal([]byte(e.Data), &d)
			doc.Upgrades = append(doc.Upgrades, d)
		case stores.EntryKindChassis:
			var d ChassisDef
			err = yaml.Unmarshal([]byte(e.Data), &d)
			doc.Chassis = append(doc.Chassis, d)
		default:
			err = fmt.Errorf("unknown entry kind %q", e.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s/%s: %w", e.Kind, e.ID, err)
		}
	}
	if !hasDefaults {
		return nil, fmt.Errorf("store catalog has no defaults entry")
	}
	return Build(&doc, source)
}
