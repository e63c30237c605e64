package client

// Category identifies one kaspi.kz listing to crawl. Key doubles as the
// freshness cache key, Label is the display name.
type Category struct {
	Key   string
	Label string
	URL   string
}

// DefaultCategories returns the built-in component categories.
func DefaultCategories() []Category {
	return []Category{
		{
			Key:   "ram",
			Label: "RAM",
			URL:   "https://kaspi.kz/shop/c/ram/?q=%3Acategory%3ARAM%3Aprice%3A%D0%B1%D0%BE%D0%BB%D0%B5%D0%B5%20500%20000%20%D1%82%3AavailableInZones%3AMagnum_ZONE1&sort=relevance&sc=",
		},
		{
			Key:   "videocards",
			Label: "Видеокарты",
			URL:   "https://kaspi.kz/shop/c/videocards/?q=%3AavailableInZones%3AMagnum_ZONE1%3Acategory%3AVideocards&sort=relevance&sc=",
		},
		{
			Key:   "cpus",
			Label: "Процессоры",
			URL:   "https://kaspi.kz/shop/c/cpus/?q=%3AavailableInZones%3AMagnum_ZONE1%3Acategory%3ACPUs&sort=relevance&sc=",
		},
	}
}
