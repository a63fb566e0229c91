package users

// DefaultCurrencySymbol is used when the country is absent or not in the table.
const DefaultCurrencySymbol = "$"

var currencySymbols = map[string]string{
	"Pakistan":         "₨",
	"India":            "₹",
	"United States":    "$",
	"Canada":           "C$",
	"United Kingdom":   "£",
	"Australia":        "A$",
	"Germany":          "€",
	"France":           "€",
	"Japan":            "¥",
	"China":            "¥",
	"Brazil":           "R$",
	"South Africa":     "R",
	"UAE":              "AED",
	"Saudi Arabia":     "SAR",
	"Turkey":           "₺",
	"Russia":           "₽",
	"Mexico":           "$",
	"Bangladesh":       "৳",
	"Sri Lanka":        "Rs",
	"Nepal":            "Rs",
	"Malaysia":         "RM",
	"Singapore":        "S$",
	"Thailand":         "฿",
	"Indonesia":        "Rp",
	"Philippines":      "₱",
	"Vietnam":          "₫",
	"South Korea":      "₩",
	"Egypt":            "E£",
	"Nigeria":          "₦",
	"Kenya":            "KSh",
	"Ghana":            "₵",
	"Morocco":          "MAD",
	"Algeria":          "DA",
	"Ethiopia":         "Br",
	"Tanzania":         "TSh",
	"Uganda":           "USh",
	"Zimbabwe":         "$",
	"Botswana":         "P",
	"Namibia":          "N$",
	"Zambia":           "ZK",
	"Malawi":           "MK",
	"Rwanda":           "RF",
	"Burundi":          "FBu",
	"Madagascar":       "Ar",
	"Mauritius":        "₨",
	"Seychelles":       "₨",
	"Maldives":         "Rf",
	"Afghanistan":      "؋",
	"Iran":             "﷼",
	"Iraq":             "IQD",
	"Jordan":           "JD",
	"Kuwait":           "KD",
	"Lebanon":          "LL",
	"Oman":             "OMR",
	"Qatar":            "QR",
	"Syria":            "SP",
	"Yemen":            "﷼",
	"Bahrain":          "BD",
	"Israel":           "₪",
	"Palestine":        "ILS",
	"Cyprus":           "€",
	"Georgia":          "₾",
	"Armenia":          "֏",
	"Azerbaijan":       "₼",
	"Kazakhstan":       "₸",
	"Kyrgyzstan":       "som",
	"Tajikistan":       "TJS",
	"Turkmenistan":     "m",
	"Uzbekistan":       "soʻm",
	"Mongolia":         "₮",
	"Bhutan":           "Nu",
	"Myanmar":          "K",
	"Laos":             "₭",
	"Cambodia":         "៛",
	"Brunei":           "B$",
	"East Timor":       "$",
	"Fiji":             "FJ$",
	"Papua New Guinea": "K",
	"Solomon Islands":  "SI$",
	"Vanuatu":          "VT",
	"Samoa":            "WS$",
	"Tonga":            "T$",
	"Cook Islands":     "$",
	"Kiribati":         "$",
	"Marshall Islands": "$",
	"Micronesia":       "$",
	"Nauru":            "$",
	"Niue":             "$",
	"Palau":            "$",
	"Tuvalu":           "$",
}

// CurrencySymbol maps a country name to its currency symbol.
func CurrencySymbol(country string) string {
	if symbol, ok := currencySymbols[country]; ok {
		return symbol
	}
	return DefaultCurrencySymbol
}
