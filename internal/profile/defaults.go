package profile

// Selector fallbacks are ordered newest-markup-first; the trailing entries
// cover older page layouts that still show up in some regions.
func defaultProfiles() []*SiteProfile {
	return []*SiteProfile{
		{
			Site:            "amazon",
			BaseURL:         "https://www.amazon.in",
			SearchURLFormat: "https://www.amazon.in/s?k=%s",
			QueryJoiner:     "+",
			CaptchaSignatures: []string{
				"Enter the characters you see below",
				"To discuss automated access to Amazon data",
				"api-services-support@amazon.com",
			},
			ProductURLPattern: `/dp/[A-Z0-9]{10}`,
			ProductIDPattern:  `/dp/([A-Z0-9]{10})`,
			DefaultCategory:   "Uncategorized",
			Selectors: map[Field]SelectorSet{
				FieldLink: {
					{Kind: ByCSS, Value: `div[data-component-type='s-search-result'] h2 a`},
					{Kind: ByCSS, Value: `div[data-component-type='s-search-result'] a.a-link-normal.s-link-style`},
					{Kind: ByCSS, Value: `div.s-result-item a.a-link-normal`},
				},
				FieldName: {
					{Kind: ByID, Value: "productTitle"},
					{Kind: ByCSS, Value: `span.a-size-medium.a-color-base.a-text-normal`},
					{Kind: ByCSS, Value: `h1.a-size-large span`},
				},
				FieldPrice: {
					{Kind: ByCSS, Value: `span.a-price-whole`},
					{Kind: ByCSS, Value: `span.a-price > span.a-offscreen`},
					{Kind: ByID, Value: "priceblock_ourprice"},
					{Kind: ByID, Value: "priceblock_dealprice"},
				},
				FieldImage: {
					{Kind: ByID, Value: "landingImage"},
					{Kind: ByCSS, Value: `img#imgBlkFront`},
					{Kind: ByCSS, Value: `img.s-image`},
				},
			},
		},
		{
			Site:            "flipkart",
			BaseURL:         "https://www.flipkart.com",
			SearchURLFormat: "https://www.flipkart.com/search?q=%s",
			QueryJoiner:     "+",
			CaptchaSignatures: []string{
				"Are you a human",
				"Please verify you are a human",
			},
			ProductURLPattern: `/p/itm[a-z0-9]+`,
			ProductIDPattern:  `/p/(itm[a-z0-9]+)`,
			DefaultCategory:   "Uncategorized",
			Selectors: map[Field]SelectorSet{
				FieldLink: {
					{Kind: ByCSS, Value: `a.CGtC98`},
					{Kind: ByCSS, Value: `a._1fQZEK`},
					{Kind: ByCSS, Value: `a.s1Q9rs`},
				},
				FieldName: {
					{Kind: ByCSS, Value: `span.VU-ZEz`},
					{Kind: ByCSS, Value: `span.B_NuCI`},
				},
				FieldPrice: {
					{Kind: ByCSS, Value: `div.Nx9bqj`},
					{Kind: ByCSS, Value: `div._30jeq3`},
				},
				FieldImage: {
					{Kind: ByCSS, Value: `img.DByuf4`},
					{Kind: ByCSS, Value: `img._396cs4`},
				},
			},
		},
	}
}
