// Package extract turns a fetched category page into product records. Two
// strategies are tried in strict order: rendered card markup first, then the
// JSON blob the site embeds in its script payload. The first strategy to
// yield any records wins; zero records from both is a legitimate result, not
// an error.
package extract

import (
	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
	"github.com/shishl0/kaspi-catalog/internal/metrics"
)

// Strategy labels reported alongside extraction results.
const (
	StrategyMarkup   = "markup"
	StrategyEmbedded = "embedded"
	StrategyNone     = "none"
)

// Engine runs the ordered extraction strategies over fetched HTML.
type Engine struct {
	norm     *catalog.Normalizer
	category string
	logger   *zap.Logger
}

// NewEngine builds an Engine. category labels synthesized placeholder names
// for cards without a usable title.
func NewEngine(norm *catalog.Normalizer, category string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if category == "" {
		category = "RAM"
	}
	return &Engine{norm: norm, category: category, logger: logger}
}

// Extract returns at most count sanitized records and the name of the
// strategy that produced them.
func (e *Engine) Extract(html string, count int) ([]catalog.Product, string) {
	if products := e.fromMarkup(html, count); len(products) > 0 {
		metrics.ObserveProductsExtracted(StrategyMarkup, len(products))
		return products, StrategyMarkup
	}
	if products := e.fromEmbedded(html, count); len(products) > 0 {
		metrics.ObserveProductsExtracted(StrategyEmbedded, len(products))
		return products, StrategyEmbedded
	}
	return nil, StrategyNone
}
