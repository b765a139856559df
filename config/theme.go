package config

// RGB is a color scheme entry.
type RGB struct {
	R, G, B uint8
}

// Scheme is a named set of chrome colors for the tab bar, status bar,
// pane borders, selection, and selector overlays. Pane content colors
// come from the children, not the scheme.
type Scheme struct {
	Name string

	TabBarBg      RGB
	TabBarFg      RGB
	TabActiveBg   RGB
	TabActiveFg   RGB
	TabInactiveBg RGB
	TabInactiveFg RGB

	StatusBarBg    RGB
	StatusBarFg    RGB
	StatusPrefixBg RGB
	StatusPrefixFg RGB

	PaneBorder       RGB
	PaneBorderActive RGB

	SelectionBg RGB
	SelectionFg RGB

	SelectorBg         RGB
	SelectorFg         RGB
	SelectorSelectedBg RGB
	SelectorSelectedFg RGB
	SelectorBorder     RGB
}

func defaultScheme() Scheme {
	return Scheme{
		Name:          "default",
		TabBarBg:      RGB{40, 40, 40},
		TabBarFg:      RGB{180, 180, 180},
		TabActiveBg:   RGB{60, 60, 180},
		TabActiveFg:   RGB{255, 255, 255},
		TabInactiveBg: RGB{60, 60, 60},
		TabInactiveFg: RGB{150, 150, 150},

		StatusBarBg:    RGB{0, 100, 0},
		StatusBarFg:    RGB{255, 255, 255},
		StatusPrefixBg: RGB{200, 200, 0},
		StatusPrefixFg: RGB{0, 0, 0},

		PaneBorder:       RGB{80, 80, 80},
		PaneBorderActive: RGB{100, 150, 255},

		SelectionBg: RGB{255, 255, 255},
		SelectionFg: RGB{0, 0, 0},

		SelectorBg:         RGB{0, 0, 139},
		SelectorFg:         RGB{255, 255, 255},
		SelectorSelectedBg: RGB{255, 255, 255},
		SelectorSelectedFg: RGB{0, 0, 0},
		SelectorBorder:     RGB{100, 100, 255},
	}
}

func solarizedDark() Scheme {
	return Scheme{
		Name:          "solarized-dark",
		TabBarBg:      RGB{0, 43, 54},
		TabBarFg:      RGB{147, 161, 161},
		TabActiveBg:   RGB{38, 139, 210},
		TabActiveFg:   RGB{253, 246, 227},
		TabInactiveBg: RGB{7, 54, 66},
		TabInactiveFg: RGB{101, 123, 131},

		StatusBarBg:    RGB{7, 54, 66},
		StatusBarFg:    RGB{147, 161, 161},
		StatusPrefixBg: RGB{181, 137, 0},
		StatusPrefixFg: RGB{0, 43, 54},

		PaneBorder:       RGB{7, 54, 66},
		PaneBorderActive: RGB{38, 139, 210},

		SelectionBg: RGB{38, 139, 210},
		SelectionFg: RGB{253, 246, 227},

		SelectorBg:         RGB{0, 43, 54},
		SelectorFg:         RGB{147, 161, 161},
		SelectorSelectedBg: RGB{38, 139, 210},
		SelectorSelectedFg: RGB{253, 246, 227},
		SelectorBorder:     RGB{38, 139, 210},
	}
}

func solarizedLight() Scheme {
	return Scheme{
		Name:          "solarized-light",
		TabBarBg:      RGB{253, 246, 227},
		TabBarFg:      RGB{101, 123, 131},
		TabActiveBg:   RGB{38, 139, 210},
		TabActiveFg:   RGB{253, 246, 227},
		TabInactiveBg: RGB{238, 232, 213},
		TabInactiveFg: RGB{88, 110, 117},

		StatusBarBg:    RGB{238, 232, 213},
		StatusBarFg:    RGB{101, 123, 131},
		StatusPrefixBg: RGB{181, 137, 0},
		StatusPrefixFg: RGB{253, 246, 227},

		PaneBorder:       RGB{238, 232, 213},
		PaneBorderActive: RGB{38, 139, 210},

		SelectionBg: RGB{38, 139, 210},
		SelectionFg: RGB{253, 246, 227},

		SelectorBg:         RGB{253, 246, 227},
		SelectorFg:         RGB{101, 123, 131},
		SelectorSelectedBg: RGB{38, 139, 210},
		SelectorSelectedFg: RGB{253, 246, 227},
		SelectorBorder:     RGB{38, 139, 210},
	}
}

func monokai() Scheme {
	return Scheme{
		Name:          "monokai",
		TabBarBg:      RGB{39, 40, 34},
		TabBarFg:      RGB{248, 248, 242},
		TabActiveBg:   RGB{166, 226, 46},
		TabActiveFg:   RGB{39, 40, 34},
		TabInactiveBg: RGB{60, 60, 54},
		TabInactiveFg: RGB{150, 150, 140},

		StatusBarBg:    RGB{60, 60, 54},
		StatusBarFg:    RGB{248, 248, 242},
		StatusPrefixBg: RGB{249, 38, 114},
		StatusPrefixFg: RGB{248, 248, 242},

		PaneBorder:       RGB{60, 60, 54},
		PaneBorderActive: RGB{166, 226, 46},

		SelectionBg: RGB{73, 72, 62},
		SelectionFg: RGB{248, 248, 242},

		SelectorBg:         RGB{39, 40, 34},
		SelectorFg:         RGB{248, 248, 242},
		SelectorSelectedBg: RGB{166, 226, 46},
		SelectorSelectedFg: RGB{39, 40, 34},
		SelectorBorder:     RGB{166, 226, 46},
	}
}

func nord() Scheme {
	return Scheme{
		Name:          "nord",
		TabBarBg:      RGB{46, 52, 64},
		TabBarFg:      RGB{216, 222, 233},
		TabActiveBg:   RGB{136, 192, 208},
		TabActiveFg:   RGB{46, 52, 64},
		TabInactiveBg: RGB{59, 66, 82},
		TabInactiveFg: RGB{147, 161, 181},

		StatusBarBg:    RGB{59, 66, 82},
		StatusBarFg:    RGB{216, 222, 233},
		StatusPrefixBg: RGB{163, 190, 140},
		StatusPrefixFg: RGB{46, 52, 64},

		PaneBorder:       RGB{59, 66, 82},
		PaneBorderActive: RGB{136, 192, 208},

		SelectionBg: RGB{76, 86, 106},
		SelectionFg: RGB{236, 239, 244},

		SelectorBg:         RGB{46, 52, 64},
		SelectorFg:         RGB{216, 222, 233},
		SelectorSelectedBg: RGB{136, 192, 208},
		SelectorSelectedFg: RGB{46, 52, 64},
		SelectorBorder:     RGB{136, 192, 208},
	}
}

func dracula() Scheme {
	return Scheme{
		Name:          "dracula",
		TabBarBg:      RGB{40, 42, 54},
		TabBarFg:      RGB{248, 248, 242},
		TabActiveBg:   RGB{189, 147, 249},
		TabActiveFg:   RGB{40, 42, 54},
		TabInactiveBg: RGB{68, 71, 90},
		TabInactiveFg: RGB{98, 114, 164},

		StatusBarBg:    RGB{68, 71, 90},
		StatusBarFg:    RGB{248, 248, 242},
		StatusPrefixBg: RGB{80, 250, 123},
		StatusPrefixFg: RGB{40, 42, 54},

		PaneBorder:       RGB{68, 71, 90},
		PaneBorderActive: RGB{189, 147, 249},

		SelectionBg: RGB{68, 71, 90},
		SelectionFg: RGB{248, 248, 242},

		SelectorBg:         RGB{40, 42, 54},
		SelectorFg:         RGB{248, 248, 242},
		SelectorSelectedBg: RGB{189, 147, 249},
		SelectorSelectedFg: RGB{40, 42, 54},
		SelectorBorder:     RGB{189, 147, 249},
	}
}

func gruvboxDark() Scheme {
	return Scheme{
		Name:          "gruvbox-dark",
		TabBarBg:      RGB{40, 40, 40},
		TabBarFg:      RGB{235, 219, 178},
		TabActiveBg:   RGB{215, 153, 33},
		TabActiveFg:   RGB{40, 40, 40},
		TabInactiveBg: RGB{60, 56, 54},
		TabInactiveFg: RGB{168, 153, 132},

		StatusBarBg:    RGB{60, 56, 54},
		StatusBarFg:    RGB{235, 219, 178},
		StatusPrefixBg: RGB{152, 151, 26},
		StatusPrefixFg: RGB{40, 40, 40},

		PaneBorder:       RGB{60, 56, 54},
		PaneBorderActive: RGB{215, 153, 33},

		SelectionBg: RGB{102, 92, 84},
		SelectionFg: RGB{235, 219, 178},

		SelectorBg:         RGB{40, 40, 40},
		SelectorFg:         RGB{235, 219, 178},
		SelectorSelectedBg: RGB{215, 153, 33},
		SelectorSelectedFg: RGB{40, 40, 40},
		SelectorBorder:     RGB{215, 153, 33},
	}
}

func tokyoNight() Scheme {
	return Scheme{
		Name:          "tokyo-night",
		TabBarBg:      RGB{26, 27, 38},
		TabBarFg:      RGB{169, 177, 214},
		TabActiveBg:   RGB{122, 162, 247},
		TabActiveFg:   RGB{26, 27, 38},
		TabInactiveBg: RGB{36, 40, 59},
		TabInactiveFg: RGB{86, 95, 137},

		StatusBarBg:    RGB{36, 40, 59},
		StatusBarFg:    RGB{169, 177, 214},
		StatusPrefixBg: RGB{158, 206, 106},
		StatusPrefixFg: RGB{26, 27, 38},

		PaneBorder:       RGB{41, 46, 66},
		PaneBorderActive: RGB{122, 162, 247},

		SelectionBg: RGB{51, 59, 91},
		SelectionFg: RGB{192, 202, 245},

		SelectorBg:         RGB{26, 27, 38},
		SelectorFg:         RGB{169, 177, 214},
		SelectorSelectedBg: RGB{122, 162, 247},
		SelectorSelectedFg: RGB{26, 27, 38},
		SelectorBorder:     RGB{122, 162, 247},
	}
}

// SchemeByName resolves a scheme name, falling back to the default.
func SchemeByName(name string) Scheme {
	switch normalizeSchemeName(name) {
	case "solarized-dark":
		return solarizedDark()
	case "solarized-light":
		return solarizedLight()
	case "monokai":
		return monokai()
	case "nord":
		return nord()
	case "dracula":
		return dracula()
	case "gruvbox-dark", "gruvbox":
		return gruvboxDark()
	case "tokyo-night", "tokyonight":
		return tokyoNight()
	default:
		return defaultScheme()
	}
}

func normalizeSchemeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == '_' {
			c = '-'
		}
		out = append(out, c)
	}
	return string(out)
}

// SchemeNames lists the built-in schemes for the theme picker.
func SchemeNames() []string {
	return []string{
		"default",
		"solarized-dark",
		"solarized-light",
		"monokai",
		"nord",
		"dracula",
		"gruvbox-dark",
		"tokyo-night",
	}
}
