package catalog

import (
	"fmt"
	"math"
	"testing"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer("https://kaspi.kz", "https://resources.cdn-kaspi.kz/shop/medias/sys_master/images/images/h13/h52/0/0.jpg")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalizerAbsoluteURL(t *testing.T) {
	t.Parallel()
	n := newTestNormalizer(t)

	tests := []struct {
		in   string
		want string
	}{
		{"//resources.cdn-kaspi.kz/img/1.jpg", "https://resources.cdn-kaspi.kz/img/1.jpg"},
		{"/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"/shop/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://kaspi.kz/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://kaspi.kz/shop/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://example.com/x", "https://example.com/x"},
		{"shop/c/ram/", "https://kaspi.kz/shop/c/ram/"},
		{"  ", ""},
	}

	for _, tt := range tests {
		tt := tt
		if got := n.AbsoluteURL(tt.in); got != tt.want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizerCanonicalLink(t *testing.T) {
	t.Parallel()
	n := newTestNormalizer(t)

	tests := []struct {
		in   string
		want string
	}{
		{"https://kaspi.kz/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://www.kaspi.kz/p/ram-16gb-12345/", "https://www.kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://kaspi.kz/shop/p/ram-16gb-12345/", "https://kaspi.kz/shop/p/ram-16gb-12345/"},
		{"https://example.com/p/other/", "https://example.com/p/other/"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		if got := n.CanonicalLink(tt.in); got != tt.want {
			t.Errorf("CanonicalLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizerImageSet(t *testing.T) {
	t.Parallel()
	n := newTestNormalizer(t)

	t.Run("dedupes by identity keeping higher quality", func(t *testing.T) {
		t.Parallel()
		images := n.ImageSet([]string{
			"https://resources.cdn-kaspi.kz/img/a.jpg?format=preview-small",
			"https://resources.cdn-kaspi.kz/img/a.jpg?format=preview-large",
			"https://resources.cdn-kaspi.kz/img/b.jpg?format=preview-medium",
		})
		want := []string{
			"https://resources.cdn-kaspi.kz/img/a.jpg?format=preview-large",
			"https://resources.cdn-kaspi.kz/img/b.jpg?format=preview-medium",
		}
		if len(images) != len(want) {
			t.Fatalf("got %d images, want %d: %v", len(images), len(want), images)
		}
		for i := range want {
			if images[i] != want[i] {
				t.Errorf("images[%d] = %q, want %q", i, images[i], want[i])
			}
		}
	})

	t.Run("keeps first-seen order", func(t *testing.T) {
		t.Parallel()
		images := n.ImageSet([]string{
			"https://resources.cdn-kaspi.kz/img/z.jpg",
			"https://resources.cdn-kaspi.kz/img/a.jpg",
		})
		if images[0] != "https://resources.cdn-kaspi.kz/img/z.jpg" {
			t.Errorf("order not preserved: %v", images)
		}
	})

	t.Run("caps at the maximum", func(t *testing.T) {
		t.Parallel()
		var candidates []string
		for i := 0; i < MaxImages+5; i++ {
			candidates = append(candidates, fmt.Sprintf("https://resources.cdn-kaspi.kz/img/%d.jpg", i))
		}
		images := n.ImageSet(candidates)
		if len(images) != MaxImages {
			t.Errorf("got %d images, want %d", len(images), MaxImages)
		}
	})

	t.Run("empty input falls back to placeholder", func(t *testing.T) {
		t.Parallel()
		images := n.ImageSet(nil)
		if len(images) != 1 || images[0] != n.placeholderImage {
			t.Errorf("got %v, want single placeholder", images)
		}
	})

	t.Run("unparseable candidates are dropped", func(t *testing.T) {
		t.Parallel()
		images := n.ImageSet([]string{"not a url", "://bad", ""})
		if len(images) != 1 || images[0] != n.placeholderImage {
			t.Errorf("got %v, want single placeholder", images)
		}
	})
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"269 990 ₸", 269990},
		{"1 234 567 тг", 1234567},
		{"12345", 12345},
		{"по запросу", 0},
		{"", 0},
	}

	for _, tt := range tests {
		tt := tt
		if got := ParsePrice(tt.in); got != tt.want {
			t.Errorf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{4.7, 4.7},
		{4.25, 4.3},
		{4.24, 4.2},
		{0.3, 1},
		{-2, 1},
		{5.6, 5},
		{math.NaN(), DefaultRating},
		{math.Inf(1), DefaultRating},
	}

	for _, tt := range tests {
		tt := tt
		if got := ClampRating(tt.in); got != tt.want {
			t.Errorf("ClampRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		explicit string
		link     string
		href     string
		index    int
		want     int
	}{
		{name: "explicit wins", explicit: "4242", link: "https://kaspi.kz/shop/p/x-9999/", index: 0, want: 4242},
		{name: "link digits", link: "https://kaspi.kz/shop/p/ram-16gb-102690437/", index: 0, want: 102690437},
		{name: "href digits", href: "/p/ram-16gb-555123/", index: 0, want: 555123},
		{name: "short runs ignored", link: "https://kaspi.kz/shop/p/ddr4-x/", href: "/p/123/", index: 2, want: 3},
		{name: "index fallback", index: 4, want: 5},
		{name: "explicit non-numeric falls through", explicit: "sku-1", link: "https://kaspi.kz/shop/p/x-7777/", want: 7777},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveID(tt.explicit, tt.link, tt.href, tt.index); got != tt.want {
				t.Errorf("ResolveID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()
	n := newTestNormalizer(t)

	p := n.Sanitize(Product{
		Name:   "Corsair 16 ГБ DDR4",
		Price:  -100,
		Rating: 9.9,
		Link:   "https://kaspi.kz/p/corsair-16gb-102690437/",
		Images: []string{"https://resources.cdn-kaspi.kz/img/a.jpg"},
	})

	if p.Price != 0 {
		t.Errorf("Price = %d, want 0", p.Price)
	}
	if p.Rating != 5 {
		t.Errorf("Rating = %v, want 5", p.Rating)
	}
	if p.Link != "https://kaspi.kz/shop/p/corsair-16gb-102690437/" {
		t.Errorf("Link = %q", p.Link)
	}
	if p.Image != p.Images[0] {
		t.Errorf("Image %q does not match Images[0] %q", p.Image, p.Images[0])
	}
}
