package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/moolyamitra/product-scraper/internal/profile"
)

// IsCaptchaPage reports whether the page source looks like an anti-bot
// interstitial for the given site. Signatures come from the site profile;
// the structural checks cover Amazon's captcha form, which keeps its shape
// across locales even when the wording changes.
func IsCaptchaPage(content string, prof *profile.SiteProfile) bool {
	for _, sig := range prof.CaptchaSignatures {
		if strings.Contains(content, sig) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	if doc.Find(`form[action*="validateCaptcha"]`).Length() > 0 {
		return true
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.EqualFold(title, "Robot Check")
}
