package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductItem(t *testing.T) {
	rec := &ScrapedRecord{
		Name:     "Prestige Iris Mixer Grinder",
		Price:    3499,
		ImageURL: "https://m.media.example/iris.jpg",
	}

	item := NewProductItem(rec, "Home & Kitchen", "HK005", "Amazon", "Prestige Iris Mixer Grinder")

	assert.Equal(t, "Home & Kitchen", item.Category)
	assert.Equal(t, "HK005", item.ProductID)
	assert.Equal(t, rec.Name, item.Name)
	assert.Equal(t, "Scraped data for 'Prestige Iris Mixer Grinder'.", item.Description)
	assert.Equal(t, rec.ImageURL, item.Image)

	// Exactly one price entry, keyed by the site's display name.
	require.Len(t, item.Prices, 1)
	assert.Equal(t, float64(3499), item.Prices["Amazon"])

	assert.ElementsMatch(t, []string{"Home & Kitchen", "Scraped", "Amazon"}, item.Tags)
	assert.False(t, item.ScrapedAt.IsZero())
	assert.Empty(t, item.Validate())
}

func TestProductItemValidate(t *testing.T) {
	item := &ProductItem{
		Prices: map[string]float64{"Amazon": -1},
	}

	errs := item.Validate()
	assert.Len(t, errs, 4)
}
