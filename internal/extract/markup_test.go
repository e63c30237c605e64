package extract

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/shishl0/kaspi-catalog/internal/catalog"
)

const placeholderImage = "https://resources.cdn-kaspi.kz/shop/medias/sys_master/images/images/h13/h52/0/0.jpg"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	norm, err := catalog.NewNormalizer("https://kaspi.kz", placeholderImage)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return NewEngine(norm, "RAM", zap.NewNop())
}

const markupPage = `<!doctype html>
<html><body>
<div class="item-card ddl_product" data-product-id="102690437">
  <a class="item-card__name-link" href="/p/corsair-vengeance-16gb-102690437/">
    Corsair Vengeance 16 ГБ DDR4 3200 МГц
  </a>
  <div class="item-card__prices-price">26 990 ₸</div>
  <div class="rating _47"></div>
  <img src="//resources.cdn-kaspi.kz/img/corsair.jpg?format=preview-small"
       data-src="//resources.cdn-kaspi.kz/img/corsair.jpg?format=preview-large">
</div>
<div class="item-card">
  <a class="item-card__name-link" href="https://kaspi.kz/shop/p/kingston-fury-8gb-205113366/">
    Kingston Fury 8 ГБ DDR4
  </a>
  <div class="price">14 490 ₸</div>
  <div class="rating">4,5 из 5</div>
</div>
</body></html>`

func TestExtractMarkup(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	products, strategy := e.Extract(markupPage, 10)
	if strategy != StrategyMarkup {
		t.Fatalf("strategy = %q, want %q", strategy, StrategyMarkup)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	first := products[0]
	if first.ID != 102690437 {
		t.Errorf("ID = %d, want 102690437", first.ID)
	}
	if first.Name != "Corsair Vengeance 16 ГБ DDR4 3200 МГц" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.Price != 26990 {
		t.Errorf("Price = %d, want 26990", first.Price)
	}
	if first.Rating != 4.7 {
		t.Errorf("Rating = %v, want 4.7", first.Rating)
	}
	if first.Link != "https://kaspi.kz/shop/p/corsair-vengeance-16gb-102690437/" {
		t.Errorf("Link = %q", first.Link)
	}
	// Two attrs, one identity: the higher quality variant survives.
	if len(first.Images) != 1 {
		t.Fatalf("Images = %v, want one identity", first.Images)
	}
	if !strings.Contains(first.Images[0], "preview-large") {
		t.Errorf("Images[0] = %q, want the preview-large variant", first.Images[0])
	}
	if first.Image != first.Images[0] {
		t.Errorf("Image %q != Images[0] %q", first.Image, first.Images[0])
	}

	second := products[1]
	if second.ID != 205113366 {
		t.Errorf("ID = %d, want 205113366 (from link)", second.ID)
	}
	if second.Price != 14490 {
		t.Errorf("Price = %d, want 14490", second.Price)
	}
	if second.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5 (from text)", second.Rating)
	}
	// No img elements at all: placeholder steps in.
	if len(second.Images) != 1 || second.Images[0] != placeholderImage {
		t.Errorf("Images = %v, want single placeholder", second.Images)
	}
}

func TestExtractMarkupCountTruncation(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, `<div class="item-card"><a class="item-card__name-link" href="/p/item-%d0000/">Item %d</a></div>`, i+1, i+1)
	}
	b.WriteString("</body></html>")

	products, _ := e.Extract(b.String(), 3)
	if len(products) != 3 {
		t.Fatalf("got %d products, want 3", len(products))
	}
	if products[0].Name != "Item 1" {
		t.Errorf("products[0].Name = %q, want first card kept", products[0].Name)
	}
}

func TestExtractMarkupSynthesizedNames(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	html := `<div class="item-card"><div class="item-card__prices-price">9 990 ₸</div></div>`
	products, _ := e.Extract(html, 10)
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].Name != "RAM module 1" {
		t.Errorf("Name = %q, want synthesized placeholder", products[0].Name)
	}
	if products[0].ID != 1 {
		t.Errorf("ID = %d, want positional fallback", products[0].ID)
	}
}

func TestExtractMarkupPreferredOverEmbedded(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	html := `<div class="item-card"><a class="item-card__name-link" href="/p/x-10001/">Card</a></div>
<script>var s = {productListData: {"cards":[{"id":"20002","title":"Blob"}]}};</script>`

	products, strategy := e.Extract(html, 10)
	if strategy != StrategyMarkup {
		t.Fatalf("strategy = %q, want %q", strategy, StrategyMarkup)
	}
	if products[0].Name != "Card" {
		t.Errorf("Name = %q, want the rendered card", products[0].Name)
	}
}

func TestExtractNothing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)

	products, strategy := e.Extract("<html><body><p>captcha</p></body></html>", 10)
	if strategy != StrategyNone {
		t.Errorf("strategy = %q, want %q", strategy, StrategyNone)
	}
	if products != nil {
		t.Errorf("products = %v, want nil", products)
	}
}
