package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

const cardSelector = ".item-card.ddl_product, .item-card"

var (
	ratingClassPattern = regexp.MustCompile(`_(\d{2})\b`)
	ratingTextPattern  = regexp.MustCompile(`(\d(?:[.,]\d)?)`)
)

func (e *Engine) fromMarkup(html string, count int) []catalog.Product {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("markup parse failed", zap.Error(err))
		return nil
	}

	cards := doc.Find(cardSelector)
	// Truncate before any per-card work so cost stays bounded by count.
	if cards.Length() > count {
		cards = cards.Slice(0, count)
	}

	products := make([]catalog.Product, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		linkEl := card.Find("a.item-card__name-link").First()
		href := strings.TrimSpace(linkEl.AttrOr("href", ""))
		link := e.norm.AbsoluteURL(href)

		name := catalog.NormalizeText(linkEl.Text())
		if name == "" {
			name = catalog.NormalizeText(card.Find(".item-card__name").First().Text())
		}
		if name == "" {
			name = fmt.Sprintf("%s module %d", e.category, i+1)
		}

		priceText := firstNonEmpty(
			catalog.NormalizeText(card.Find(".item-card__prices-price").First().Text()),
			catalog.NormalizeText(card.Find(`[data-test-id="text-price"]`).First().Text()),
			catalog.NormalizeText(card.Find(".price").First().Text()),
		)

		products = append(products, e.norm.Sanitize(catalog.Product{
			ID:     catalog.ResolveID(card.AttrOr("data-product-id", ""), link, href, i),
			Name:   name,
			Price:  catalog.ParsePrice(priceText),
			Rating: extractCardRating(card),
			Images: collectCardImages(e.norm, card),
			Link:   link,
		}))
	})
	return products
}

// extractCardRating reads the numeric suffix the site encodes in the rating
// element's class name (`..._NN` where NN/10 is the rating), falling back to
// a number in the element's visible text, then the neutral default.
func extractCardRating(card *goquery.Selection) float64 {
	ratingEl := card.Find(".rating").First()
	if m := ratingClassPattern.FindStringSubmatch(ratingEl.AttrOr("class", "")); m != nil {
		tenths, err := strconv.Atoi(m[1])
		if err == nil {
			return catalog.ClampRating(float64(tenths) / 10)
		}
	}
	text := catalog.NormalizeText(ratingEl.Text())
	if m := ratingTextPattern.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err == nil {
			return catalog.ClampRating(value)
		}
	}
	return catalog.DefaultRating
}

// collectCardImages gathers every URL referenced by an image element's
// source attributes: the direct source, the lazy-load attributes, and the
// first candidate of a responsive source set.
func collectCardImages(norm *catalog.Normalizer, card *goquery.Selection) []string {
	var images []string
	seen := make(map[string]struct{})

	card.Find("img").Each(func(_ int, img *goquery.Selection) {
		candidates := []string{
			img.AttrOr("src", ""),
			img.AttrOr("data-src", ""),
			img.AttrOr("data-original", ""),
			firstSrcsetCandidate(img.AttrOr("srcset", "")),
		}
		for _, candidate := range candidates {
			normalized := norm.AbsoluteURL(candidate)
			if normalized == "" {
				continue
			}
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			images = append(images, normalized)
		}
	})
	return images
}

func firstSrcsetCandidate(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	candidate, _, _ := strings.Cut(strings.TrimSpace(first), " ")
	return candidate
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
