package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

// embeddedMarker precedes the JSON product list the site inlines into its
// script payload when no server-rendered cards are present.
const embeddedMarker = "productListData:"

type embeddedImage struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// cardID accepts both representations the site has shipped for product ids,
// JSON strings and bare numbers, and reads anything else as absent so one odd
// card cannot fail the whole blob.
type cardID string

func (id *cardID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = cardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = cardID(n.String())
		return nil
	}
	*id = ""
	return nil
}

type embeddedCard struct {
	ID             cardID          `json:"id"`
	Title          string          `json:"title"`
	ShortNameText  string          `json:"shortNameText"`
	ShopLink       string          `json:"shopLink"`
	UnitPrice      *float64        `json:"unitPrice"`
	UnitSalePrice  *float64        `json:"unitSalePrice"`
	PriceFormatted string          `json:"priceFormatted"`
	Rating         *float64        `json:"rating"`
	PreviewImages  []embeddedImage `json:"previewImages"`
}

type embeddedProductList struct {
	Cards []embeddedCard `json:"cards"`
}

func (e *Engine) fromEmbedded(html string, count int) []catalog.Product {
	markerIndex := strings.Index(html, embeddedMarker)
	if markerIndex < 0 {
		return nil
	}
	jsonStart := strings.IndexByte(html[markerIndex:], '{')
	if jsonStart < 0 {
		return nil
	}
	jsonStart += markerIndex
	jsonEnd := matchingBraceEnd(html, jsonStart)
	if jsonEnd < 0 {
		e.logger.Warn("embedded product list blob is unterminated")
		return nil
	}

	var parsed embeddedProductList
	if err := json.Unmarshal([]byte(html[jsonStart:jsonEnd+1]), &parsed); err != nil {
		e.logger.Warn("embedded product list is malformed", zap.Error(err))
		return nil
	}

	cards := parsed.Cards
	if len(cards) > count {
		cards = cards[:count]
	}

	products := make([]catalog.Product, 0, len(cards))
	for i, card := range cards {
		name := catalog.NormalizeText(card.Title)
		if name == "" {
			name = catalog.NormalizeText(card.ShortNameText)
		}
		if name == "" {
			name = fmt.Sprintf("%s module %d", e.category, i+1)
		}

		link := e.norm.AbsoluteURL(card.ShopLink)
		rating := catalog.DefaultRating
		if card.Rating != nil {
			rating = catalog.ClampRating(*card.Rating)
		}

		products = append(products, e.norm.Sanitize(catalog.Product{
			ID:     catalog.ResolveID(string(card.ID), link, card.ShopLink, i),
			Name:   name,
			Price:  resolveEmbeddedPrice(card),
			Rating: rating,
			Images: collectEmbeddedImages(e.norm, card),
			Link:   link,
		}))
	}
	return products
}

// resolveEmbeddedPrice prefers a sale price over the list price over the
// formatted price string.
func resolveEmbeddedPrice(card embeddedCard) int {
	if card.UnitSalePrice != nil {
		return int(*card.UnitSalePrice)
	}
	if card.UnitPrice != nil {
		return int(*card.UnitPrice)
	}
	return catalog.ParsePrice(card.PriceFormatted)
}

// collectEmbeddedImages flattens each preview group in quality order
// (large, medium, small); identity dedup downstream keeps one per group.
func collectEmbeddedImages(norm *catalog.Normalizer, card embeddedCard) []string {
	var images []string
	for _, preview := range card.PreviewImages {
		for _, candidate := range []string{preview.Large, preview.Medium, preview.Small} {
			if normalized := norm.AbsoluteURL(candidate); normalized != "" {
				images = append(images, normalized)
			}
		}
	}
	return images
}

// matchingBraceEnd scans forward from the opening brace at start and returns
// the index of its syntactically matching closing brace, ignoring braces
// inside string literals and honoring backslash escapes. The blob sits
// inside a larger script payload with an unknown end offset, so a plain JSON
// decoder cannot be pointed at it.
func matchingBraceEnd(source string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(source); i++ {
		c := source[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}
