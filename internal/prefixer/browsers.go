package prefixer

import (
	"fmt"
	"strings"
)

// Vendor is a CSS vendor prefix
type Vendor string

const (
	Webkit Vendor = "-webkit-"
	Moz    Vendor = "-moz-"
	Ms     Vendor = "-ms-"
	O      Vendor = "-o-"
)

// vendorOrder is the order prefixed declarations are emitted in
var vendorOrder = []Vendor{Webkit, Moz, Ms, O}

// families maps browser names used in queries to the prefixes they need
var families = map[string][]Vendor{
	"chrome":        {Webkit},
	"and_chr":       {Webkit},
	"chromeandroid": {Webkit},
	"safari":        {Webkit},
	"ios":           {Webkit},
	"ios_saf":       {Webkit},
	"android":       {Webkit},
	"samsung":       {Webkit},
	"opera":         {Webkit, O},
	"op_mob":        {Webkit, O},
	"firefox":       {Moz},
	"ff":            {Moz},
	"and_ff":        {Moz},
	"ie":            {Ms},
	"explorer":      {Ms},
	"ie_mob":        {Ms},
	"edge":          {Ms},
}

// generic query keywords that say nothing about a particular browser
var genericKeywords = map[string]bool{
	"defaults":     true,
	"last":         true,
	"cover":        true,
	"since":        true,
	"unreleased":   true,
	"dead":         true,
	"extends":      true,
	"fully":        true,
	"supports":     true,
	"maintained":   true,
	"current":      true,
	"browserslist": true,
}

// majorVendors are targeted by queries that do not name a browser
var majorVendors = []Vendor{Webkit, Moz, Ms}

// VendorSet is the set of prefixes a build targets
type VendorSet map[Vendor]bool

// Has reports whether v is targeted
func (s VendorSet) Has(v Vendor) bool {
	return s[v]
}

// List returns the targeted vendors in emission order
func (s VendorSet) List() []Vendor {
	var out []Vendor
	for _, v := range vendorOrder {
		if s[v] {
			out = append(out, v)
		}
	}

	return out
}

func (s VendorSet) add(vs ...Vendor) {
	for _, v := range vs {
		s[v] = true
	}
}

// ParseBrowsers resolves browser queries to the vendor prefixes they need.
// An empty list behaves like "defaults". Negated queries only narrow the
// browser list and never add or remove a vendor.
func ParseBrowsers(queries []string) (VendorSet, error) {
	set := VendorSet{}
	seen := false

	for _, entry := range queries {
		for _, q := range strings.Split(entry, ",") {
			q = strings.ToLower(strings.TrimSpace(q))
			if q == "" {
				continue
			}

			seen = true

			vendors, err := resolveQuery(q)
			if err != nil {
				return nil, err
			}

			set.add(vendors...)
		}
	}

	if !seen {
		set.add(majorVendors...)
	}

	return set, nil
}

func resolveQuery(q string) ([]Vendor, error) {
	fields := strings.Fields(q)
	if fields[0] == "not" {
		return nil, nil
	}

	for _, f := range fields {
		if vendors, ok := families[f]; ok {
			return vendors, nil
		}
	}

	first := fields[0]
	if genericKeywords[first] || strings.HasPrefix(first, ">") || strings.HasPrefix(first, "<") {
		return majorVendors, nil
	}

	return nil, fmt.Errorf("unknown browser query %q", q)
}
