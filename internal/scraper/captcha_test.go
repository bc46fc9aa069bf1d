package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

func TestIsCaptchaPage(t *testing.T) {
	prof := &profile.SiteProfile{
		Site:              "amazon",
		CaptchaSignatures: []string{"Enter the characters you see below"},
	}

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "profile signature",
			content: `<html><body><p>Enter the characters you see below</p></body></html>`,
			want:    true,
		},
		{
			name:    "captcha form without signature text",
			content: `<html><body><form method="get" action="/errors/validateCaptcha"><input name="field-keywords"/></form></body></html>`,
			want:    true,
		},
		{
			name:    "robot check title",
			content: `<html><head><title>Robot Check</title></head><body></body></html>`,
			want:    true,
		},
		{
			name:    "ordinary results page",
			content: `<html><head><title>Amazon.in : wireless mouse</title></head><body><div data-component-type="s-search-result"></div></body></html>`,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCaptchaPage(tt.content, prof))
		})
	}
}
