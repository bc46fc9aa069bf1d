package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)

	assert.Equal(t, []string{"amazon", "flipkart"}, reg.Sites())

	prof, ok := reg.Lookup("amazon")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.in", prof.BaseURL)

	// Lookups are case-insensitive.
	_, ok = reg.Lookup("  Amazon ")
	assert.True(t, ok)

	_, ok = reg.Lookup("ebay")
	assert.False(t, ok)
}

func TestSearchURLCollapsesWhitespace(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)
	prof, _ := reg.Lookup("amazon")

	assert.Equal(t, "https://www.amazon.in/s?k=wireless+mouse", prof.SearchURL("wireless mouse"))
	assert.Equal(t, "https://www.amazon.in/s?k=wireless+mouse", prof.SearchURL("  wireless \t mouse "))
}

func TestSelectorsForMissingFieldIsError(t *testing.T) {
	prof := &SiteProfile{Site: "test", Selectors: map[Field]SelectorSet{}}

	_, err := prof.SelectorsFor(FieldPrice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestProductURLMatching(t *testing.T) {
	reg, err := NewRegistry("")
	require.NoError(t, err)
	prof, _ := reg.Lookup("amazon")

	assert.True(t, prof.MatchProductURL("https://www.amazon.in/dp/B01MOUSE42X"))
	assert.False(t, prof.MatchProductURL("https://www.amazon.in/gp/help/customer"))

	id, ok := prof.ProductID("https://www.amazon.in/dp/B01MOUSE42X?ref=sr_1_1")
	require.True(t, ok)
	assert.Equal(t, "B01MOUSE42X", id)

	_, ok = prof.ProductID("https://www.amazon.in/gp/help/customer")
	assert.False(t, ok)
}

func TestRegistryFileOverride(t *testing.T) {
	override := `[
	  {
	    "site": "amazon",
	    "base_url": "https://www.amazon.com",
	    "search_url_format": "https://www.amazon.com/s?k=%s",
	    "selectors": {
	      "link":  [{"kind": "css", "value": "a.r"}],
	      "name":  [{"kind": "id", "value": "t"}],
	      "price": [{"kind": "css", "value": ".p"}],
	      "image": [{"kind": "id", "value": "i"}]
	    }
	  }
	]`
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)

	prof, ok := reg.Lookup("amazon")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.com", prof.BaseURL)
	// Unspecified joiner falls back to "+".
	assert.Equal(t, "https://www.amazon.com/s?k=a+b", prof.SearchURL("a b"))

	// Sites not overridden keep their defaults.
	_, ok = reg.Lookup("flipkart")
	assert.True(t, ok)
}

func TestRegistryRejectsEmptySelectorSet(t *testing.T) {
	broken := `[
	  {
	    "site": "broken",
	    "base_url": "https://example.com",
	    "search_url_format": "https://example.com/s?q=%s",
	    "selectors": {
	      "link": [{"kind": "css", "value": "a.r"}],
	      "name": [{"kind": "id", "value": "t"}],
	      "image": [{"kind": "id", "value": "i"}]
	    }
	  }
	]`
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	_, err := NewRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Amazon", TitleCase("amazon"))
	assert.Equal(t, "Amazon", TitleCase(" AMAZON "))
	assert.Equal(t, "Flipkart", TitleCase("flipkart"))
}
