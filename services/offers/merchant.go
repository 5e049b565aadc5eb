package offers

import (
	"net/url"
	"regexp"
	"strings"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/lib/textutil"
)

// logoSrcHints mark an <img> as served by the logo CDN endpoint rather
// than being offer art.
var logoSrcHints = []string{"/api/v1/logos", "logos?"}

// ownHostRegex matches the offer site's own hostnames, which can never be
// a merchant.
var ownHostRegex = regexp.MustCompile(`(?i)capitalone`)

// merchant-hint query parameters on logo URLs, in priority order
var logoNameParams = []string{
	"domain", "merchant", "brand", "name", "merchant_domain",
	"merchantUrl", "merchant_url", "store", "merchantName",
}

var (
	wordSepRegex      = regexp.MustCompile(`[-_]+`)
	absoluteUrlRegex  = regexp.MustCompile(`(?i)^https?://`)
	logoAltRegex      = regexp.MustCompile(`(?i)logo`)
	offerWordsRegex   = regexp.MustCompile(`(?i)miles|online|in-?store|back`)
	leadingGuessRegex = regexp.MustCompile(`(?i)Online|In-Store|\bUp to\b|\bGet\b`)
	srClassRegex      = regexp.MustCompile(`sr|visually`)
)

// ResolveMerchantName derives the merchant's display name for a tile from
// a prioritized cascade of signals: logo image URL, image alt text, ARIA
// label, screen-reader text, heading-like text, link URL, then the text
// leading the offer phrase. The result is cleaned and title-cased; callers
// must discard the tile when the result is still a bad name.
func ResolveMerchantName(tile domtree.Node, text string) string {
	name := bestLogoName(tile)
	if name == "" {
		name = fallbackName(tile, text)
	}
	return textutil.TitleCase(textutil.CleanNoise(name))
}

func srcIsLogo(src string) bool {
	for _, hint := range logoSrcHints {
		if strings.Contains(src, hint) {
			return true
		}
	}
	return false
}

func bestLogoName(tile domtree.Node) string {
	img := domtree.First(tile, func(n domtree.Node) bool {
		return n.Tag() == "img" && (srcIsLogo(n.Attr("src")) || srcIsLogo(n.Attr("srcset")))
	})
	if img == nil {
		return ""
	}

	urlish := img.Attr("src")
	if !srcIsLogo(urlish) {
		for _, s := range strings.Fields(img.Attr("srcset")) {
			if srcIsLogo(s) {
				urlish = s
				break
			}
		}
	}

	if name := brandFromUrlish(urlish); name != "" {
		return name
	}
	// last resort: the logo endpoint's domain parameter taken verbatim
	u, err := url.Parse(strings.TrimSpace(urlish))
	if err != nil {
		return ""
	}
	if dom := u.Query().Get("domain"); dom != "" {
		host := strings.TrimPrefix(dom, "www.")
		return textutil.TitleCase(wordSepRegex.ReplaceAllString(firstHostLabel(host), " "))
	}
	return ""
}

// brandFromUrlish extracts a merchant hint from a URL: one of the known
// query parameters first, the hostname itself second (never the offer
// site's own).
func brandFromUrlish(urlish string) string {
	u, err := url.Parse(strings.TrimSpace(urlish))
	if err != nil {
		return ""
	}
	query := u.Query()

	var cand string
	for _, p := range logoNameParams {
		if v := query.Get(p); v != "" {
			cand = v
			break
		}
	}
	if cand != "" {
		cand = strings.TrimSpace(cand)
		if absoluteUrlRegex.MatchString(cand) {
			cu, err := url.Parse(cand)
			if err != nil {
				return ""
			}
			cand = cu.Hostname()
		}
		host := strings.TrimPrefix(cand, "www.")
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
		return textutil.TitleCase(wordSepRegex.ReplaceAllString(firstHostLabel(host), " "))
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host != "" && !ownHostRegex.MatchString(host) {
		return textutil.TitleCase(wordSepRegex.ReplaceAllString(firstHostLabel(host), " "))
	}
	return ""
}

func firstHostLabel(host string) string {
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

func fallbackName(tile domtree.Node, text string) string {
	img := domtree.First(tile, func(n domtree.Node) bool {
		return n.Tag() == "img" && n.Attr("alt") != ""
	})
	if img != nil && !logoAltRegex.MatchString(img.Attr("alt")) {
		if a := textutil.CleanNoise(img.Attr("alt")); !textutil.IsBadName(a) {
			return a
		}
	}

	labeled := tile
	if labeled.Attr("aria-label") == "" {
		labeled = domtree.First(tile, func(n domtree.Node) bool {
			return n.Attr("aria-label") != ""
		})
	}
	if labeled != nil {
		if a := textutil.CleanNoise(labeled.Attr("aria-label")); !textutil.IsBadName(a) {
			return a
		}
	}

	if sr := screenReaderNode(tile); sr != nil {
		a := textutil.CleanNoise(textutil.NormalizeWhitespace(sr.Text()))
		if !textutil.IsBadName(a) {
			return a
		}
	}

	var heading string
	domtree.Walk(tile, func(n domtree.Node) bool {
		if heading != "" {
			return false
		}
		if n == tile {
			return true
		}
		switch n.Tag() {
		case "h1", "h2", "h3", "strong", "b", "span", "div":
			s := textutil.NormalizeWhitespace(n.Text())
			if s != "" && len(s) <= 50 && !offerWordsRegex.MatchString(s) && !textutil.IsBadName(s) {
				heading = s
				return false
			}
		}
		return true
	})
	if heading != "" {
		return heading
	}

	if href := tileLink(tile); href != "" {
		if u, err := url.Parse(href); err == nil {
			query := u.Query()
			q := query.Get("merchant")
			if q == "" {
				q = query.Get("brand")
			}
			if q == "" {
				q = query.Get("name")
			}
			if q != "" && !textutil.IsBadName(q) {
				return textutil.TitleCase(textutil.CleanNoise(q))
			}
			host := strings.TrimPrefix(u.Hostname(), "www.")
			if host != "" && !ownHostRegex.MatchString(host) {
				return textutil.TitleCase(firstHostLabel(host))
			}
		}
	}

	// the first word before the offer phrase is usually the merchant
	guess := textutil.CleanNoise(leadingGuessRegex.Split(text, 2)[0])
	if fields := strings.Fields(guess); len(fields) > 0 {
		guess = fields[0]
	} else {
		guess = "Unknown"
	}
	if !textutil.IsBadName(guess) {
		return guess
	}
	return "Unknown"
}

func screenReaderNode(tile domtree.Node) domtree.Node {
	return domtree.First(tile, func(n domtree.Node) bool {
		return srClassRegex.MatchString(strings.ToLower(n.Attr("class")))
	})
}

func tileLink(tile domtree.Node) string {
	if tile.Tag() == "a" {
		return tile.Attr("href")
	}
	if a := domtree.First(tile, func(n domtree.Node) bool { return n.Tag() == "a" }); a != nil {
		return a.Attr("href")
	}
	return ""
}
