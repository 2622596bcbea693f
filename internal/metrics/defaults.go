package metrics

import (
	"strings"
	"unicode"
)

// Default category keys.
const (
	KeyDigitalTechnology      = "digitalTechnology"
	KeyDigital                = "digital"
	KeyEnterpriseApplications = "enterpriseApplications"
	KeyTechnologyOperations   = "technologyOperations"
)

// DefaultCategories returns the four categories a fresh form starts with.
func DefaultCategories() CategorySet {
	return CategorySet{
		{
			Key:    KeyDigitalTechnology,
			Name:   "DIGITAL TECHNOLOGY",
			Items:  []string{"DIGITAL", "ENTERPRISE APPLICATIONS", "TECHNOLOGY OPERATIONS"},
			Record: Record{Delivered: 5, Total: 153, Health: 3.38},
		},
		{
			Key:    KeyDigital,
			Name:   "DIGITAL",
			Items:  []string{"AVATARS", "DESTINO", "SDI WEBSITE", "XENO"},
			Record: Record{Delivered: 3, Total: 39, Health: 3.63},
		},
		{
			Key:    KeyEnterpriseApplications,
			Name:   "ENTERPRISE APPLICATIONS",
			Items:  []string{"AX GUARDIANS", "DELTA 365", "ENTERPRISE AUTOMATION", "WARETEC"},
			Record: Record{Delivered: 0, Total: 43, Health: 3.58},
		},
		{
			Key:  KeyTechnologyOperations,
			Name: "TECHNOLOGY OPERATIONS",
			Items: []string{
				"CSI", "CYBER DEFENCE", "CYBER OPERATIONS", "ENTERPRISE ARCHITECTURE",
				"GRC", "JSOC", "MATRIX",
			},
			Record: Record{Delivered: 2, Total: 71, Health: 3.21},
		},
	}
}

// KeyFor returns the category key for a display name. Default category names
// map to their fixed keys; any other name is camel-cased ("CLOUD OPS" -> "cloudOps").
func KeyFor(name string) string {
	for _, c := range DefaultCategories() {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c.Key
		}
	}

	var b strings.Builder
	for i, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		word = strings.ToLower(word)
		if i > 0 {
			r := []rune(word)
			r[0] = unicode.ToUpper(r[0])
			word = string(r)
		}
		b.WriteString(word)
	}
	return b.String()
}
