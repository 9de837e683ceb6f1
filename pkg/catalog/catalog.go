// Package catalog discovers vendor configuration templates and exposes
// their author-declared metadata. Each immediate subdirectory of the
// template root is a vendor namespace; every ".j2" file inside it is a
// template. Discovery results are memoized for the lifetime of a Catalog
// instance; a fresh instance forces re-discovery.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TemplateExt is the file extension that marks a template candidate.
const TemplateExt = ".j2"

// DefaultTemplateName is the fallback template resolved when neither a
// CLI override nor an inventory pin names one.
const DefaultTemplateName = "default"

// TemplateInfo describes one discovered template. Values are immutable
// after discovery.
type TemplateInfo struct {
	// Name is the template name without the extension.
	Name string `json:"name"`

	// Vendor is the namespace directory the template was found in.
	Vendor string `json:"vendor"`

	// Path is the absolute or root-relative file path.
	Path string `json:"path"`

	// Description is the author-declared summary, "" when absent.
	Description string `json:"description"`

	// Safe is the author's declaration that the template is safe to
	// auto-apply. Absent or malformed declarations default to false.
	Safe bool `json:"safe"`

	// ChangesHostname is the author's declaration that applying the
	// template renames the device. Defaults to false when absent.
	ChangesHostname bool `json:"changes_hostname"`
}

// NotFoundError reports a failed template lookup.
type NotFoundError struct {
	Vendor string
	Name   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found for vendor %q", e.Name, e.Vendor)
}

// Catalog discovers and indexes templates under a root directory.
// After the initial build the index is read-only, so concurrent readers
// are safe.
type Catalog struct {
	root string

	once     sync.Once
	buildErr error

	vendors  []string
	byVendor map[string][]TemplateInfo
}

// New creates a Catalog rooted at dir. No filesystem access happens
// until the first Discover/Find call.
func New(dir string) *Catalog {
	return &Catalog{root: dir}
}

// Discover walks the template root and returns templates grouped by
// vendor. Vendors appear in directory-listing order and templates in
// filename order, so repeated discovery of an unchanged tree yields an
// identical result. An unreadable root is the only fatal condition; a
// single unreadable or metadata-less template never blocks the rest.
func (c *Catalog) Discover() (map[string][]TemplateInfo, error) {
	if err := c.build(); err != nil {
		return nil, err
	}
	return c.byVendor, nil
}

// Find returns the template with the given vendor and name, or a
// *NotFoundError.
func (c *Catalog) Find(vendor, name string) (TemplateInfo, error) {
	if err := c.build(); err != nil {
		return TemplateInfo{}, err
	}
	for _, tpl := range c.byVendor[vendor] {
		if tpl.Name == name {
			return tpl, nil
		}
	}
	return TemplateInfo{}, &NotFoundError{Vendor: vendor, Name: name}
}

// Vendors returns the vendor namespaces in discovery order.
func (c *Catalog) Vendors() ([]string, error) {
	if err := c.build(); err != nil {
		return nil, err
	}
	return c.vendors, nil
}

// VendorStats aggregates per-vendor template counts for listings.
type VendorStats struct {
	Total           int `json:"total"`
	Safe            int `json:"safe"`
	Unsafe          int `json:"unsafe"`
	ChangesHostname int `json:"changes_hostname"`
}

// Summary returns per-vendor statistics over the discovered templates.
func (c *Catalog) Summary() (map[string]VendorStats, error) {
	if err := c.build(); err != nil {
		return nil, err
	}

	summary := make(map[string]VendorStats, len(c.byVendor))
	for vendor, templates := range c.byVendor {
		var s VendorStats
		for _, tpl := range templates {
			s.Total++
			if tpl.Safe {
				s.Safe++
			} else {
				s.Unsafe++
			}
			if tpl.ChangesHostname {
				s.ChangesHostname++
			}
		}
		summary[vendor] = s
	}
	return summary, nil
}

func (c *Catalog) build() error {
	c.once.Do(func() {
		c.byVendor = make(map[string][]TemplateInfo)

		entries, err := os.ReadDir(c.root)
		if err != nil {
			c.buildErr = fmt.Errorf("failed to read template root %s: %w", c.root, err)
			return
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			vendor := entry.Name()
			templates := c.discoverVendor(vendor)
			if len(templates) == 0 {
				continue
			}
			c.vendors = append(c.vendors, vendor)
			c.byVendor[vendor] = templates
		}
	})
	return c.buildErr
}

// discoverVendor lists one vendor directory. os.ReadDir sorts by
// filename, which gives the deterministic template ordering.
func (c *Catalog) discoverVendor(vendor string) []TemplateInfo {
	dir := filepath.Join(c.root, vendor)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var templates []TemplateInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), TemplateExt) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), TemplateExt)

		meta := metadata{}
		if content, err := os.ReadFile(path); err == nil {
			meta = parseMetadata(string(content))
		}
		// An unreadable file still yields an entry with conservative
		// defaults; discovery of the other templates must not fail.

		templates = append(templates, TemplateInfo{
			Name:            name,
			Vendor:          vendor,
			Path:            path,
			Description:     meta.description,
			Safe:            meta.safe,
			ChangesHostname: meta.changesHostname,
		})
	}
	return templates
}
