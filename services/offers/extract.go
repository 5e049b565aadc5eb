package offers

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("offerscope.services.offers")

// ErrNoOffers is returned when a document yields nothing at all, which
// usually means the page was not fully loaded before capture.
var ErrNoOffers = errors.New("no offers found on the page")

// offerSignalRegex is the coarse pre-filter for offer-bearing text, not
// the final parse.
var offerSignalRegex = regexp.MustCompile(`(?i)(miles|%|back)`)

var (
	inStoreRegex = regexp.MustCompile(`(?i)in-?store`)
	onlineRegex  = regexp.MustCompile(`(?i)online`)

	newBadgeClassRegex = regexp.MustCompile(`new|badge|pill`)
)

// card geometry bounds in layout pixels
const (
	cardMinWidth  = 110
	cardMaxWidth  = 560
	cardMinHeight = 90
	cardMaxHeight = 420
)

const maxTileAscent = 6

// Extract scans the document for offer fragments, attributes each to a
// merchant and an enclosing tile, and returns the deduplicated offer set.
// The document is only ever read.
func Extract(ctx context.Context, root domtree.Node) ([]Offer, error) {
	_, span := tracer.Start(ctx, "Extract")
	defer span.End()

	var candidates []domtree.Node
	for _, el := range domtree.Elements(root) {
		if offerSignalRegex.MatchString(textutil.NormalizeWhitespace(el.Text())) {
			candidates = append(candidates, el)
		}
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	picked := map[domtree.Node]struct{}{}
	seen := map[string]struct{}{}
	var result []Offer

	for _, el := range candidates {
		text := textutil.NormalizeWhitespace(el.Text())
		mag := ParseMagnitude(text, el)
		if mag == nil {
			continue
		}

		tile := findTile(el)
		if tile == nil {
			continue
		}
		// one physical tile contributes at most one logical offer
		if _, taken := picked[tile]; taken {
			continue
		}
		picked[tile] = struct{}{}

		name := ResolveMerchantName(tile, text)
		if textutil.IsBadName(name) {
			// expected and frequent: navigation chrome, section headers
			slog.DebugContext(ctx, "discarding tile with generic name", "name", name)
			continue
		}

		offer := Offer{
			Type:     mag.Type,
			Merchant: name,
			Amount:   mag.Value,
			Label:    mag.Label,
			Channel:  channelOf(text),
			Link:     tileLink(tile),
			IsNew:    hasNewBadge(tile),
			Tile:     tile,
		}

		key := offer.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, offer)
	}

	span.SetAttributes(attribute.Int("offers", len(result)))
	if len(result) == 0 {
		return nil, ErrNoOffers
	}
	return result, nil
}

// findTile ascends from the candidate looking for the smallest enclosing
// element that has card-like geometry and still carries the offer signal.
func findTile(el domtree.Node) domtree.Node {
	tile := el
	for i := 0; i <= maxTileAscent && tile != nil; i++ {
		box := tile.BoundingBox()
		looksCard := box.Width >= cardMinWidth && box.Width <= cardMaxWidth &&
			box.Height >= cardMinHeight && box.Height <= cardMaxHeight
		if looksCard && offerSignalRegex.MatchString(textutil.NormalizeWhitespace(tile.Text())) {
			return tile
		}
		tile = tile.Parent()
	}
	return nil
}

func channelOf(text string) string {
	inStore := inStoreRegex.MatchString(text)
	online := onlineRegex.MatchString(text)
	switch {
	case inStore && online:
		return "In-Store & Online"
	case inStore:
		return "In-Store"
	case online:
		return "Online"
	}
	return ""
}

func hasNewBadge(tile domtree.Node) bool {
	lowered := func(n domtree.Node) string {
		return strings.ToLower(textutil.NormalizeWhitespace(n.Text()))
	}

	if strings.Contains(lowered(tile), "new offer") {
		return true
	}
	badge := domtree.First(tile, func(n domtree.Node) bool {
		return strings.Contains(strings.ToLower(n.Attr("aria-label")), "new") ||
			strings.Contains(strings.ToLower(n.Attr("data-badge")), "new") ||
			newBadgeClassRegex.MatchString(strings.ToLower(n.Attr("class")))
	})
	if badge != nil && strings.Contains(lowered(badge), "new") {
		return true
	}
	if sr := screenReaderNode(tile); sr != nil && strings.Contains(lowered(sr), "new offer") {
		return true
	}
	return false
}
