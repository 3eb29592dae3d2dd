package catalog

// Seed returns the built-in catalog. Working domains are the last known good
// values and get overwritten by the resolver as sites rotate mirrors.
func Seed() *Catalog {
	return &Catalog{Sites: []Site{
		{
			Name:    "katworld",
			BaseURL: "https://katworld.net/",
			Categories: []Category{
				{Key: "hollywood", Label: "Hollywood Movies & Web Series"},
				{Key: "kdrama", Label: "Korean & Chinese Dramas"},
			},
			WorkingDomains: map[string]string{
				"hollywood": "https://katmoviehd.blue/",
				"kdrama":    "https://katdrama.com/",
			},
			ResolvedAliases: map[string]string{
				"kdrama": "drama",
			},
		},
		{
			Name:    "hdhub4u",
			BaseURL: "https://hdhub4u.tv/",
			Categories: []Category{
				{Key: "main", Label: "Hollywood, Bollywood, South & Gujarati"},
			},
			WorkingDomains: map[string]string{
				"main": "https://hdhub4u.frl/",
			},
		},
		{
			Name:    "moviesflix",
			BaseURL: "https://themoviesflix.ag/",
			Categories: []Category{
				{Key: "search", Label: "movies/webseries"},
				{Key: "bollywood", Label: "Bollywood/Hindi Movies"},
				{Key: "hindi_dubbed", Label: "Hindi Dubbed Movies"},
				{Key: "hollywood", Label: "Hollywood/English Movies"},
				{Key: "dual_audio", Label: "Dual Audio Movies"},
				{Key: "web_series", Label: "Web Series"},
				{Key: "adult", Label: "18+ Adult Content"},
				{Key: "south", Label: "South Indian Movies (Tamil/Telugu)"},
				{Key: "regional", Label: "Regional Movies (Bengali/Gujarati/Marathi/Punjabi)"},
				{Key: "tv_shows", Label: "TV Shows"},
			},
			WorkingDomains: map[string]string{
				"search":       "https://themoviesflix.ag/",
				"bollywood":    "https://themoviesflix.ag/category/hindi-movies/",
				"hindi_dubbed": "https://themoviesflix.ag/category/hindi-dubbed/",
				"hollywood":    "https://themoviesflix.ag/category/english-movies/",
				"dual_audio":   "https://themoviesflix.ag/category/dual-audio/",
				"web_series":   "https://themoviesflix.ag/category/web-series/",
				"adult":        "https://themoviesflix.ag/category/18-adult/",
				"south":        "https://themoviesflix.ag/",
				"regional":     "https://themoviesflix.ag/",
				"tv_shows":     "https://themoviesflix.ag/category/tv-shows/",
			},
			DirectCategories: true,
			SearchCategory:   "search",
		},
	}}
}
