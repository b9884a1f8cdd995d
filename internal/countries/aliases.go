package countries

// aliases maps the country naming used by individual upstream sources to the
// canonical English title carried by the registry sheet. Every feed has its
// own naming standard; this table is the single place where they converge.
var aliases = map[string]string{
	"Iran (Islamic Republic of)":          "Iran",
	"US":                                  "United States of America",
	"USA":                                 "United States of America",
	"UK":                                  "United Kingdom",
	"Republic of Moldova":                 "Moldova",
	"Mainland China":                      "China",
	"Viet Nam":                            "Vietnam",
	"Macao SAR":                           "Macau S.A.R",
	"Macao":                               "Macau S.A.R",
	"China, Macao SAR":                    "Macau S.A.R",
	"Russian Federation":                  "Russia",
	"China, Hong Kong SAR":                "Hong Kong S.A.R.",
	"Hong Kong SAR":                       "Hong Kong S.A.R.",
	"Hong Kong":                           "Hong Kong S.A.R.",
	"Holy See":                            "Vatican (Holy See)",
	"Vatican (Holy Sea)":                  "Vatican (Holy See)",
	"Vatican City":                        "Vatican (Holy See)",
	"occupied Palestinian territory":      "The Palestinian Territories",
	"Palestine":                           "The Palestinian Territories",
	"West Bank and Gaza":                  "The Palestinian Territories",
	"State of Palestine":                  "The Palestinian Territories",
	"Republic of Korea":                   "Korea, South",
	"S. Korea":                            "Korea, South",
	"Czechia":                             "Czech Republic",
	"Taiwan*":                             "Taiwan",
	"China, Taiwan Province of China":     "Taiwan",
	"Cote d'Ivoire":                       "Ivory Coast (Côte d'Ivoire)",
	"Côte d'Ivoire":                       "Ivory Coast (Côte d'Ivoire)",
	"Ivory Coast":                         "Ivory Coast (Côte d'Ivoire)",
	"UAE":                                 "United Arab Emirates",
	"Faeroe Islands":                      "Faroe Islands",
	"St. Vincent Grenadines":              "Saint Vincent and the Grenadines",
	"CAR":                                 "Central African Republic",
	"St. Barth":                           "St. Barths",
	"Saint Barthélemy":                    "St. Barths",
	"DRC":                                 "Democratic Republic of the Congo",
	"Congo (Kinshasa)":                    "Democratic Republic of the Congo",
	"Kyrgyzstan":                          "Kyrgyz Republic",
	"Diamond Princess":                    "Diamond Princess (Cruise Ship)",
	"MS Zaandam":                          "MS Zaandam (Cruise Ship)",
	"Cruise Ship":                         "Diamond Princess (Cruise Ship)",
	"Cabo Verde":                          "Cape Verde",
	"East Timor":                          "Timor-Leste",
	"Congo (Brazzaville)":                 "Congo",
	"Curacao":                             "Curaçao",
	"Burma":                               "Myanmar",
	"United Republic of Tanzania":         "Tanzania",
	"Venezuela (Bolivarian Republic of)":  "Venezuela",
	"Dem. People's Republic of Korea":     "North Korea",
	"Bolivia (Plurinational State of)":    "Bolivia",
	"United States Virgin Islands":        "U.S. Virgin Islands",
	"Lao People's Democratic Republic":    "Laos",
	"Brunei Darussalam":                   "Brunei",
	"Saint Martin (French part)":          "Saint Martin",
	"Syrian Arab Republic":                "Syria",
}

// Canonical returns the registry title for a source-specific country name.
// Names without an alias entry are returned unchanged.
func Canonical(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}
