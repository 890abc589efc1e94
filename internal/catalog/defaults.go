package catalog

// defaultTemplates returns the built-in template set used when no persisted
// catalog exists: five archetypes spanning business, ecommerce, creative,
// restaurant and blog industries.
func defaultTemplates() map[string]Template {
	return map[string]Template{
		"template_1": {
			ID:             "template_1",
			Name:           "Modern Business",
			Description:    "A sleek, professional template for modern businesses featuring a clean design and impressive hero section.",
			Industries:     []string{"technology", "consulting", "professional_services"},
			Style:          "modern",
			Features:       []string{"responsive design", "contact form", "testimonials section", "services showcase"},
			TargetAudience: []string{"professionals", "corporate clients"},
			PreviewURL:     "/previews/template_1.png",
		},
		"template_2": {
			ID:             "template_2",
			Name:           "E-commerce Essential",
			Description:    "A conversion-focused template for online stores with product galleries and checkout integration.",
			Industries:     []string{"ecommerce", "retail", "fashion"},
			Style:          "minimal",
			Features:       []string{"product showcase", "shopping cart", "category navigation", "search functionality"},
			TargetAudience: []string{"shoppers", "online consumers"},
			PreviewURL:     "/previews/template_2.png",
		},
		"template_3": {
			ID:             "template_3",
			Name:           "Creative Portfolio",
			Description:    "An artistic template for showcasing creative work with stunning visuals and project galleries.",
			Industries:     []string{"creative", "portfolio", "photography", "design"},
			Style:          "artistic",
			Features:       []string{"gallery views", "project showcase", "animation effects", "minimal text focus"},
			TargetAudience: []string{"creatives", "artists", "designers"},
			PreviewURL:     "/previews/template_3.png",
		},
		"template_4": {
			ID:             "template_4",
			Name:           "Restaurant & Cafe",
			Description:    "A mouth-watering template for restaurants, cafes, and food businesses, featuring menu displays and reservation systems.",
			Industries:     []string{"restaurant", "cafe", "food_service", "hospitality"},
			Style:          "warm",
			Features:       []string{"menu display", "reservation system", "location map", "food gallery"},
			TargetAudience: []string{"diners", "food enthusiasts"},
			PreviewURL:     "/previews/template_4.png",
		},
		"template_5": {
			ID:             "template_5",
			Name:           "Professional Blog",
			Description:    "A content-focused template for bloggers and content creators with excellent readability and sharing features.",
			Industries:     []string{"blog", "media", "publishing", "content_creation"},
			Style:          "clean",
			Features:       []string{"article layout", "categories", "author profiles", "social sharing"},
			TargetAudience: []string{"readers", "content consumers"},
			PreviewURL:     "/previews/template_5.png",
		},
	}
}

// defaultIndustryMappings returns the built-in industry index matching the
// default template set.
func defaultIndustryMappings() map[string][]string {
	return map[string][]string{
		"technology":            {"template_1"},
		"software":              {"template_1"},
		"consulting":            {"template_1"},
		"professional_services": {"template_1"},

		"ecommerce": {"template_2"},
		"retail":    {"template_2"},
		"fashion":   {"template_2"},

		"creative":    {"template_3"},
		"portfolio":   {"template_3"},
		"photography": {"template_3"},
		"design":      {"template_3"},

		"restaurant":   {"template_4"},
		"cafe":         {"template_4"},
		"food_service": {"template_4"},
		"hospitality":  {"template_4"},

		"blog":             {"template_5"},
		"media":            {"template_5"},
		"publishing":       {"template_5"},
		"content_creation": {"template_5"},
	}
}
