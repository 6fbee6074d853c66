package entity

import "strings"

// Normalization helpers shared by the BeforeSave hooks. They mirror how
// counterparty records are cleaned up before persisting: emails lower-cased,
// phone numbers stripped of spaces, country codes upper-cased.

func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func NormalizePhone(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, " ", ""))
}

func NormalizeCountry(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func NormalizeLanguage(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func NormalizeName(v string) string {
	return strings.TrimSpace(v)
}
