package catalog

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonDigits     = regexp.MustCompile(`\D`)
	numericID     = regexp.MustCompile(`(\d{4,})`)
)

// Normalizer canonicalizes links and images against the allowed origin and
// applies the per-record cleanup rules.
type Normalizer struct {
	origin           string
	host             string
	placeholderImage string
}

// NewNormalizer builds a Normalizer for the given origin (scheme+host, no
// trailing slash). placeholderImage is substituted when a record has no
// usable image at all.
func NewNormalizer(origin, placeholderImage string) (*Normalizer, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return &Normalizer{
		origin:           trimmed,
		host:             strings.ToLower(u.Hostname()),
		placeholderImage: placeholderImage,
	}, nil
}

// Origin returns the configured scheme+host.
func (n *Normalizer) Origin() string {
	return n.origin
}

// AbsoluteURL resolves protocol-relative and root-relative paths against the
// origin and rewrites the legacy /p/ product path under /shop. Already
// canonical absolute URLs pass through untouched.
func (n *Normalizer) AbsoluteURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(value, "//"):
		return "https:" + value
	case strings.HasPrefix(value, "/p/"):
		return n.origin + "/shop" + value
	case strings.HasPrefix(value, "/"):
		return n.origin + value
	case strings.HasPrefix(value, "p/"):
		return n.origin + "/shop/" + value
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		if strings.HasPrefix(value, n.origin+"/p/") {
			return strings.Replace(value, n.origin+"/p/", n.origin+"/shop/p/", 1)
		}
		return value
	default:
		return n.origin + "/" + strings.TrimLeft(value, "/")
	}
}

// CanonicalLink makes a product link absolute and rewrites legacy /p/ paths
// on the allowed host to the current /shop/p/ scheme.
func (n *Normalizer) CanonicalLink(link string) string {
	if link == "" {
		return ""
	}
	normalized := n.AbsoluteURL(link)
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	host := strings.ToLower(u.Hostname())
	if (host == n.host || strings.HasSuffix(host, "."+n.host)) && strings.HasPrefix(u.Path, "/p/") {
		u.Path = "/shop" + u.Path
	}
	return u.String()
}

// ImageSet deduplicates image candidates by identity (origin+path), keeping
// the higher quality variant for each identity, drops anything that does not
// parse as an absolute URL, caps the result at MaxImages, and guarantees at
// least one entry via the placeholder asset.
func (n *Normalizer) ImageSet(candidates []string) []string {
	order := make([]string, 0, len(candidates))
	byIdentity := make(map[string]string, len(candidates))

	for _, candidate := range candidates {
		normalized := normalizeImageURL(candidate)
		if normalized == "" {
			continue
		}
		key := imageIdentityKey(normalized)
		existing, ok := byIdentity[key]
		if !ok {
			order = append(order, key)
			byIdentity[key] = normalized
			continue
		}
		if imageQualityScore(normalized) > imageQualityScore(existing) {
			byIdentity[key] = normalized
		}
	}

	images := make([]string, 0, len(order))
	for _, key := range order {
		images = append(images, byIdentity[key])
	}
	if len(images) == 0 {
		images = append(images, n.placeholderImage)
	}
	if len(images) > MaxImages {
		images = images[:MaxImages]
	}
	return images
}

// Sanitize applies the uniform cleanup pass to a record regardless of which
// extraction strategy produced it.
func (n *Normalizer) Sanitize(p Product) Product {
	p.Images = n.ImageSet(p.Images)
	p.Image = p.Images[0]
	p.Link = n.CanonicalLink(p.Link)
	p.Price = clampPrice(p.Price)
	p.Rating = ClampRating(p.Rating)
	return p
}

// NormalizeText collapses whitespace runs and trims the result.
func NormalizeText(value string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

// ParsePrice strips every non-digit character and parses the remainder as an
// integer. Returns 0 when nothing parses; the upstream renders a single
// currency so no locale handling is attempted.
func ParsePrice(text string) int {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}

// ClampRating rounds to one decimal place and clamps into [1.0, 5.0].
// Non-finite input collapses to DefaultRating.
func ClampRating(rating float64) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return DefaultRating
	}
	rounded := math.Round(rating*10) / 10
	if rounded < 1 {
		return 1
	}
	if rounded > 5 {
		return 5
	}
	return rounded
}

// ExtractNumericID pulls the first run of four or more digits out of value.
// Returns 0 when there is none.
func ExtractNumericID(value string) int {
	match := numericID.FindStringSubmatch(value)
	if match == nil {
		return 0
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return id
}

// ResolveID applies the id precedence: explicit site identifier, digits in
// the canonical link, digits in the raw href, then the 1-based position in
// the batch.
func ResolveID(explicit, link, href string, index int) int {
	if id, err := strconv.Atoi(strings.TrimSpace(explicit)); err == nil && id > 0 {
		return id
	}
	if id := ExtractNumericID(link); id > 0 {
		return id
	}
	if id := ExtractNumericID(href); id > 0 {
		return id
	}
	return index + 1
}

func clampPrice(price int) int {
	if price < 0 {
		return 0
	}
	return price
}

func normalizeImageURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	return u.String()
}

func imageIdentityKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + strings.ToLower(u.Host) + u.Path
}

func imageQualityScore(rawURL string) int {
	switch {
	case strings.Contains(rawURL, "preview-large"):
		return 3
	case strings.Contains(rawURL, "preview-medium"):
		return 2
	case strings.Contains(rawURL, "preview-small"):
		return 1
	default:
		return 0
	}
}
