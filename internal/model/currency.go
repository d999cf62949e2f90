package model

import (
	"strings"

	"github.com/spendtrack-dev/spendtrack/internal/errs"
)

// Currency is an ISO 4217 currency code.
type Currency string

// currencyDescriptions doubles as the set of supported currencies.
var currencyDescriptions = map[Currency]string{
	"TND": "Tunisian Dinar",
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"SEK": "Swedish Krona",
	"NZD": "New Zealand Dollar",
	"MAD": "Moroccan Dirham",
	"DZD": "Algerian Dinar",
	"LYD": "Libyan Dinar",
	"AED": "UAE Dirham",
	"QAR": "Qatari Riyal",
	"SAR": "Saudi Riyal",
	"EGP": "Egyptian Pound",
	"INR": "Indian Rupee",
	"TRY": "Turkish Lira",
	"BRL": "Brazilian Real",
	"ZAR": "South African Rand",
	"KRW": "South Korean Won",
	"SGD": "Singapore Dollar",
	"HKD": "Hong Kong Dollar",
	"NOK": "Norwegian Krone",
	"DKK": "Danish Krone",
	"PLN": "Polish Zloty",
	"THB": "Thai Baht",
	"MYR": "Malaysian Ringgit",
	"IDR": "Indonesian Rupiah",
	"HUF": "Hungarian Forint",
	"CZK": "Czech Koruna",
	"PHP": "Philippine Peso",
	"CLP": "Chilean Peso",
	"PKR": "Pakistani Rupee",
	"BDT": "Bangladeshi Taka",
	"COP": "Colombian Peso",
	"VND": "Vietnamese Dong",
	"NGN": "Nigerian Naira",
	"ARS": "Argentine Peso",
	"PEN": "Peruvian Sol",
	"KWD": "Kuwaiti Dinar",
	"OMR": "Omani Rial",
	"JOD": "Jordanian Dinar",
	"BHD": "Bahraini Dinar",
	"XOF": "West African CFA Franc",
	"XAF": "Central African CFA Franc",
	"RON": "Romanian Leu",
	"BGN": "Bulgarian Lev",
	"UAH": "Ukrainian Hryvnia",
	"RSD": "Serbian Dinar",
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := currencyDescriptions[c]; !ok {
		return "", errs.RuleViolation("currency not supported: " + string(code))
	}
	return c, nil
}

// Valid reports whether the currency is in the supported set.
func (c Currency) Valid() bool {
	_, ok := currencyDescriptions[c]
	return ok
}

// Description returns the human-readable currency name, or "" if unknown.
func (c Currency) Description() string {
	return currencyDescriptions[c]
}
