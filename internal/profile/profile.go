package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names one logical piece of data extracted from a page.
type Field string

const (
	FieldLink  Field = "link"
	FieldName  Field = "name"
	FieldPrice Field = "price"
	FieldImage Field = "image"
)

// Locator kinds understood by the browsing session.
const (
	ByID    = "id"
	ByCSS   = "css"
	ByXPath = "xpath"
)

// Locator is a (kind, value) pair telling the browsing session how to find
// one page element. It is opaque beyond being handed to the session.
type Locator struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (l Locator) String() string {
	return l.Kind + "=" + l.Value
}

// SelectorSet is an ordered fallback list of locators for one field.
// Order is priority: the first locator that matches wins.
type SelectorSet []Locator

// SiteProfile bundles everything needed to scrape one site: URL templates,
// anti-bot signatures, and the per-field selector tables. Profiles are built
// at startup and immutable afterwards.
type SiteProfile struct {
	Site              string                `json:"site"`
	BaseURL           string                `json:"base_url"`
	SearchURLFormat   string                `json:"search_url_format"` // %s is the encoded query
	QueryJoiner       string                `json:"query_joiner"`      // whitespace replacement in queries
	CaptchaSignatures []string              `json:"captcha_signatures"`
	ProductURLPattern string                `json:"product_url_pattern"` // matched against sitemap <loc> values
	ProductIDPattern  string                `json:"product_id_pattern"`  // one capture group extracting the product id
	DefaultCategory   string                `json:"default_category"`    // category for sitemap-discovered items
	Selectors         map[Field]SelectorSet `json:"selectors"`

	productURLRe *regexp.Regexp
	productIDRe  *regexp.Regexp
}

// SearchURL builds the search page URL for a free-text query. Runs of
// whitespace collapse into the site's query joiner.
func (p *SiteProfile) SearchURL(query string) string {
	q := strings.Join(strings.Fields(query), p.QueryJoiner)
	return fmt.Sprintf(p.SearchURLFormat, q)
}

// SelectorsFor returns the fallback list for a field. A missing or empty
// list is a configuration error, never a silent not-found.
func (p *SiteProfile) SelectorsFor(f Field) (SelectorSet, error) {
	set, ok := p.Selectors[f]
	if !ok || len(set) == 0 {
		return nil, fmt.Errorf("no selectors configured for field %q", f)
	}
	return set, nil
}

// MatchProductURL reports whether a discovered URL points at a product page.
func (p *SiteProfile) MatchProductURL(u string) bool {
	return p.productURLRe != nil && p.productURLRe.MatchString(u)
}

// ProductID extracts the site's native product id from a product URL.
func (p *SiteProfile) ProductID(u string) (string, bool) {
	if p.productIDRe == nil {
		return "", false
	}
	m := p.productIDRe.FindStringSubmatch(u)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

func (p *SiteProfile) compile() error {
	if p.Site == "" {
		return fmt.Errorf("profile has no site identifier")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("site %s: base URL is required", p.Site)
	}
	if !strings.Contains(p.SearchURLFormat, "%s") {
		return fmt.Errorf("site %s: search URL format must contain %%s", p.Site)
	}
	if p.QueryJoiner == "" {
		p.QueryJoiner = "+"
	}
	for _, f := range []Field{FieldLink, FieldName, FieldPrice, FieldImage} {
		if len(p.Selectors[f]) == 0 {
			return fmt.Errorf("site %s: empty selector set for field %q", p.Site, f)
		}
	}
	if p.ProductURLPattern != "" {
		re, err := regexp.Compile(p.ProductURLPattern)
		if err != nil {
			return fmt.Errorf("site %s: bad product URL pattern: %w", p.Site, err)
		}
		p.productURLRe = re
	}
	if p.ProductIDPattern != "" {
		re, err := regexp.Compile(p.ProductIDPattern)
		if err != nil {
			return fmt.Errorf("site %s: bad product id pattern: %w", p.Site, err)
		}
		p.productIDRe = re
	}
	return nil
}

// Registry maps site identifiers to their profiles. Lookups are
// case-insensitive; the registry never changes after construction.
type Registry struct {
	profiles map[string]*SiteProfile
}

// NewRegistry builds a registry from the compiled-in defaults, optionally
// overlaid with profiles from a JSON file (path may be empty).
func NewRegistry(path string) (*Registry, error) {
	profiles := map[string]*SiteProfile{}
	for _, p := range defaultProfiles() {
		profiles[strings.ToLower(p.Site)] = p
	}

	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for site, p := range loaded {
			profiles[site] = p
		}
	}

	for _, p := range profiles {
		if err := p.compile(); err != nil {
			return nil, err
		}
	}

	return &Registry{profiles: profiles}, nil
}

// Lookup returns the profile for a site identifier.
func (r *Registry) Lookup(site string) (*SiteProfile, bool) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(site))]
	return p, ok
}

// Sites lists the configured site identifiers, sorted.
func (r *Registry) Sites() []string {
	sites := make([]string, 0, len(r.profiles))
	for site := range r.profiles {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

func loadFile(path string) (map[string]*SiteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var list []*SiteProfile
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	profiles := make(map[string]*SiteProfile, len(list))
	for _, p := range list {
		profiles[strings.ToLower(p.Site)] = p
	}
	return profiles, nil
}

var titleCaser = cases.Title(language.English)

// TitleCase turns a site identifier into its display name ("amazon" ->
// "Amazon"), used as the prices-map key and in tags.
func TitleCase(site string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(site)))
}
