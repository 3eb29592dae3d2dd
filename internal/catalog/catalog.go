// Package catalog holds the table of scrapeable sites, their categories and
// the currently known working base URLs. The conversation engine only reads
// the catalog; the domain resolver periodically swaps in a refreshed copy.
package catalog

import (
	"sync/atomic"
)

// Category is one selectable entry of a site, keyed for lookups and carrying
// the human-readable label shown in menus.
type Category struct {
	Key   string
	Label string
}

// Site describes one tracked source site.
type Site struct {
	Name       string
	BaseURL    string
	Categories []Category
	// WorkingDomains maps a category key to the currently verified base URL.
	// Keys are always a subset of Categories. An empty value means "fall back
	// to the category label".
	WorkingDomains map[string]string
	// DirectCategories marks a site whose non-search categories map straight
	// to browsable URLs, skipping the query step.
	DirectCategories bool
	// SearchCategory names the one category of a DirectCategories site that
	// still takes a free-text query.
	SearchCategory string
	// ResolvedAliases maps a category key to the key used in resolver output
	// when the two differ (e.g. kdrama is published as "drama").
	ResolvedAliases map[string]string
}

// Label returns the human-readable label for a category key.
func (s *Site) Label(key string) string {
	for _, c := range s.Categories {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

// WorkingDomain returns the resolved base URL for a category, or "" when none
// is known.
func (s *Site) WorkingDomain(key string) string {
	return s.WorkingDomains[key]
}

// Catalog is an ordered collection of sites. Instances are immutable once
// published; updates go through Holder.Replace.
type Catalog struct {
	Sites []Site
}

// SiteByIndex returns the site at 1-based position i, or nil when out of range.
func (c *Catalog) SiteByIndex(i int) *Site {
	if i < 1 || i > len(c.Sites) {
		return nil
	}
	return &c.Sites[i-1]
}

// SiteByName returns the site with the given name, or nil.
func (c *Catalog) SiteByName(name string) *Site {
	for i := range c.Sites {
		if c.Sites[i].Name == name {
			return &c.Sites[i]
		}
	}
	return nil
}

// ApplyResolved merges resolver output into a copy of the catalog and returns
// it. Only categories the catalog already knows are touched, blank values are
// skipped so previous working domains survive a failed resolution.
func (c *Catalog) ApplyResolved(resolved map[string]map[string]string) *Catalog {
	next := &Catalog{Sites: make([]Site, len(c.Sites))}
	for i, site := range c.Sites {
		copied := site
		copied.WorkingDomains = make(map[string]string, len(site.WorkingDomains))
		for k, v := range site.WorkingDomains {
			copied.WorkingDomains[k] = v
		}
		if record, ok := resolved[site.Name]; ok {
			for _, cat := range site.Categories {
				key := cat.Key
				if alias, ok := site.ResolvedAliases[key]; ok {
					key = alias
				}
				if url := record[key]; url != "" {
					copied.WorkingDomains[cat.Key] = url
				}
			}
		}
		next.Sites[i] = copied
	}
	return next
}

// Holder publishes the current catalog to readers. Replace swaps the whole
// catalog atomically so the engine never observes a partial update.
type Holder struct {
	current atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the published catalog.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Replace publishes a new catalog.
func (h *Holder) Replace(c *Catalog) {
	h.current.Store(c)
}

// ApplyResolved merges resolver output into the published catalog and swaps
// in the result.
func (h *Holder) ApplyResolved(resolved map[string]map[string]string) {
	h.Replace(h.Current().ApplyResolved(resolved))
}
