package offers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/lib/textutil"
)

// Magnitude is the numeric value and unit classification of an offer.
type Magnitude struct {
	Type  OfferType
	Value float64
	Label string
}

const (
	percentCutoff    = 100
	multiplierCutoff = 20
)

var (
	numberRegex = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	// boundary spacing corrects concatenated renderings ("5Xmiles")
	letterDigitRegex = regexp.MustCompile(`([A-Za-z])(\d)`)
	digitLetterRegex = regexp.MustCompile(`(\d)([A-Za-z])`)

	percentTokenRegex    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)|(%|percent|cashback|cash|back)`)
	multiplierTokenRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?|[x×]|miles)`)

	percentDirectRegex    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(?:cash\s*)?back`)
	multiplierDirectRegex = regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(\d+(?:\.\d+)?)\s*[x×]\s*miles\b`)
	flatRegex             = regexp.MustCompile(`(?i)([\d,]+)\s*miles|\$([\d,]+)\s*back`)
)

// ParseMagnitude classifies a text fragment as a percent, multiplier or
// flat offer, in that strict priority order; the first category with a
// usable value wins. Returns nil when the fragment encodes no offer.
//
// scope, when non-nil, enables token-level scanning of the fragment's
// individual text nodes, which survives offers split across markup
// ("5" "<b>%</b>" "cash back"). The flattened text is always available as
// a fallback.
func ParseMagnitude(text string, scope domtree.Node) *Magnitude {
	spaced := digitLetterRegex.ReplaceAllString(
		letterDigitRegex.ReplaceAllString(text, "$1 $2"), "$1 $2")

	if m := parsePercent(spaced, scope); m != nil {
		return m
	}
	if m := parseMultiplier(spaced, scope); m != nil {
		return m
	}
	return parseFlat(spaced)
}

func parsePercent(spaced string, scope domtree.Node) *Magnitude {
	var vals []float64
	if scope != nil {
		vals = scanScopeForPercent(scope)
	}
	if len(vals) == 0 {
		for _, m := range percentDirectRegex.FindAllStringSubmatch(spaced, -1) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				vals = append(vals, v)
			}
		}
	}

	best := 0.0
	for _, v := range vals {
		if v > 0 && v <= percentCutoff && v > best {
			best = v
		}
	}
	if best == 0 {
		return nil
	}
	return &Magnitude{
		Type:  TypePercent,
		Value: best,
		Label: fmt.Sprintf("%s%% back", formatAmount(best)),
	}
}

// scanScopeForPercent walks the scope's text nodes looking for a number
// immediately followed by a percent token that has a "back"/"cashback"
// token within the next five tokens.
func scanScopeForPercent(scope domtree.Node) []float64 {
	var toks []string
	for _, s := range domtree.TextNodes(scope) {
		toks = append(toks, splitKeep(percentTokenRegex, textutil.NormalizeWhitespace(s))...)
	}

	nearBack := func(i int) bool {
		for j := i; j < i+5 && j < len(toks); j++ {
			if strings.EqualFold(toks[j], "back") || strings.EqualFold(toks[j], "cashback") {
				return true
			}
		}
		return false
	}

	var vals []float64
	for i, cur := range toks {
		if !numberRegex.MatchString(cur) {
			continue
		}
		if i+1 >= len(toks) {
			continue
		}
		nxt := toks[i+1]
		if (nxt == "%" || strings.EqualFold(nxt, "percent")) && nearBack(i+1) {
			if v, err := strconv.ParseFloat(cur, 64); err == nil {
				vals = append(vals, v)
			}
		}
	}
	return vals
}

func parseMultiplier(spaced string, scope domtree.Node) *Magnitude {
	var vals []float64
	if scope != nil {
		vals = scanScopeForMultiplier(scope)
	}
	for _, m := range multiplierDirectRegex.FindAllStringSubmatch(spaced, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil
	}

	best := 0.0
	for _, v := range vals {
		if v > 0 && v <= multiplierCutoff && v > best {
			best = v
		}
	}
	if best == 0 {
		// nothing in the typical range, but a plausible answer beats no
		// answer: take the raw maximum
		for _, v := range vals {
			if v > best {
				best = v
			}
		}
	}
	if best == 0 {
		return nil
	}
	return &Magnitude{
		Type:  TypeMultiplier,
		Value: best,
		Label: fmt.Sprintf("%sX miles", formatAmount(best)),
	}
}

// scanScopeForMultiplier walks the scope's text nodes looking for a
// number directly before an "x" token, or a "miles" token with an "x"
// within three tokens behind it preceded by a number.
func scanScopeForMultiplier(scope domtree.Node) []float64 {
	var toks []string
	for _, s := range domtree.TextNodes(scope) {
		toks = append(toks, splitKeep(multiplierTokenRegex, strings.TrimSpace(s))...)
	}

	isX := func(s string) bool { return strings.EqualFold(s, "x") || s == "×" }

	var vals []float64
	for i, cur := range toks {
		if numberRegex.MatchString(cur) && i+1 < len(toks) && isX(toks[i+1]) {
			if v, err := strconv.ParseFloat(cur, 64); err == nil {
				vals = append(vals, v)
			}
		}
		if strings.EqualFold(cur, "miles") {
			for j := i - 1; j >= 0 && j >= i-3; j-- {
				if !isX(toks[j]) {
					continue
				}
				if k := j - 1; k >= 0 && numberRegex.MatchString(toks[k]) {
					if v, err := strconv.ParseFloat(toks[k], 64); err == nil {
						vals = append(vals, v)
					}
				}
				break
			}
		}
	}
	return vals
}

func parseFlat(spaced string) *Magnitude {
	type flat struct {
		val     int64
		dollars bool
	}
	var flats []flat
	for _, m := range flatRegex.FindAllStringSubmatch(spaced, -1) {
		switch {
		case m[1] != "":
			if v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64); err == nil {
				flats = append(flats, flat{val: v})
			}
		case m[2] != "":
			if v, err := strconv.ParseInt(strings.ReplaceAll(m[2], ",", ""), 10, 64); err == nil {
				flats = append(flats, flat{val: v, dollars: true})
			}
		}
	}
	if len(flats) == 0 {
		return nil
	}

	// the globally largest raw value wins, dollars and miles compared
	// as-is: it reflects headline offer size, not true equivalence
	best := flats[0]
	for _, f := range flats[1:] {
		if f.val > best.val {
			best = f
		}
	}

	label := fmt.Sprintf("%s miles", groupThousands(best.val))
	if best.dollars {
		label = fmt.Sprintf("$%s back", groupThousands(best.val))
	}
	return &Magnitude{
		Type:  TypeFlat,
		Value: float64(best.val),
		Label: label,
	}
}

// splitKeep splits s on re, keeping both the captured tokens and the
// trimmed in-between segments, in order.
func splitKeep(re *regexp.Regexp, s string) []string {
	var toks []string
	push := func(seg string) {
		if seg = strings.TrimSpace(seg); seg != "" {
			toks = append(toks, seg)
		}
	}

	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		push(s[last:m[0]])
		for g := 1; 2*g+1 < len(m); g++ {
			start, end := m[2*g], m[2*g+1]
			if start >= 0 {
				push(s[start:end])
			}
		}
		last = m[1]
	}
	push(s[last:])
	return toks
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
