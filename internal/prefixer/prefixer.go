// Package prefixer adds vendor-prefixed declarations for the browsers a
// project targets and drops outdated ones.
package prefixer

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Options controls which prefixes are written
type Options struct {
	// Browser queries, e.g. "last 2 versions" or "ie 10"
	Browsers []string

	// Remove prefixed declarations no targeted browser needs
	Remove bool
}

type Prefixer struct {
	vendors VendorSet
	remove  bool
}

var transformInValue = regexp.MustCompile(`(^|[^-\w])transform\b`)

func New(opts Options) (*Prefixer, error) {
	vendors, err := ParseBrowsers(opts.Browsers)
	if err != nil {
		return nil, err
	}

	return &Prefixer{vendors: vendors, remove: opts.Remove}, nil
}

// Vendors returns the targeted vendor prefixes
func (p *Prefixer) Vendors() []Vendor {
	return p.vendors.List()
}

// Process rewrites a stylesheet with vendor prefixes applied
func (p *Prefixer) Process(src []byte) ([]byte, error) {
	nodes, err := parseTree(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse css: %w", err)
	}

	nodes = p.walk(nodes, p.vendors)

	var buf bytes.Buffer
	renderTree(&buf, nodes, "")

	return buf.Bytes(), nil
}

func (p *Prefixer) walk(nodes []*node, vendors VendorSet) []*node {
	headers := make(map[string]bool)
	for _, n := range nodes {
		if n.kind == nodeAtRule {
			headers[atHeader(n)] = true
		}
	}

	out := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		switch n.kind {
		case nodeRule:
			n.children = p.declarations(n.children, vendors)
			out = append(out, n)
		case nodeAtRule:
			if p.remove && p.outdatedAtRule(n.name) {
				continue
			}

			for _, twin := range p.atRuleTwins(n, vendors) {
				if !headers[atHeader(twin)] {
					out = append(out, twin)
				}
			}

			n.children = p.walk(n.children, vendors)
			out = append(out, n)
		default:
			out = append(out, n)
		}
	}

	return out
}

// atRuleTwins builds prefixed copies of an at-rule, e.g. @-webkit-keyframes
func (p *Prefixer) atRuleTwins(n *node, vendors VendorSet) []*node {
	twinVendors, ok := prefixedAtRules[n.name]
	if !ok {
		return nil
	}

	var twins []*node
	for _, v := range twinVendors {
		if !vendors.Has(v) {
			continue
		}

		twin := n.clone()
		twin.name = "@" + string(v) + strings.TrimPrefix(n.name, "@")
		twin.children = p.walk(twin.children, VendorSet{v: true})
		twins = append(twins, twin)
	}

	return twins
}

// outdatedAtRule reports a prefixed at-rule for a vendor that is not targeted
func (p *Prefixer) outdatedAtRule(name string) bool {
	for base, vendors := range prefixedAtRules {
		for _, v := range vendors {
			if name == "@"+string(v)+strings.TrimPrefix(base, "@") {
				return !p.vendors.Has(v)
			}
		}
	}

	return false
}

func (p *Prefixer) declarations(nodes []*node, vendors VendorSet) []*node {
	// Property prefixes count as present by name whatever their value.
	// Value prefixes share the unprefixed name, so they match on the value too.
	names := make(map[string]bool)
	decls := make(map[string]bool)
	for _, n := range nodes {
		if n.kind == nodeDecl {
			names[strings.ToLower(n.name)] = true
			decls[declKey(n)] = true
		}
	}

	out := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if n.kind != nodeDecl {
			out = append(out, n)
			continue
		}

		if p.remove && p.outdated(n, vendors) {
			continue
		}

		for _, extra := range p.prefixed(n, vendors) {
			if strings.EqualFold(extra.name, n.name) {
				key := declKey(extra)
				if decls[key] {
					continue
				}

				decls[key] = true
			} else {
				name := strings.ToLower(extra.name)
				if names[name] {
					continue
				}

				names[name] = true
			}

			out = append(out, extra)
		}

		out = append(out, n)
	}

	return out
}

func declKey(n *node) string {
	return strings.ToLower(n.name) + ":" + n.value
}

// prefixed returns the vendor copies a declaration needs, in vendor order
func (p *Prefixer) prefixed(n *node, vendors VendorSet) []*node {
	name := strings.ToLower(n.name)
	var out []*node

	if name == "display" {
		forms := displayValues[strings.ToLower(n.value)]
		for _, v := range vendors.List() {
			if form, ok := forms[v]; ok {
				out = append(out, &node{kind: nodeDecl, name: n.name, value: form})
			}
		}

		return out
	}

	targets, ok := vendorsFor(name)
	if !ok || isLegacyIEValue(n.value) {
		return nil
	}

	for _, v := range vendors.List() {
		if !containsVendor(targets, v) {
			continue
		}

		value := n.value
		if v == Webkit && strings.HasPrefix(name, "transition") {
			value = transformInValue.ReplaceAllString(value, "${1}-webkit-transform")
		}

		out = append(out, &node{kind: nodeDecl, name: string(v) + n.name, value: value})
	}

	return out
}

// isLegacyIEValue matches old IE filter syntax, which no other engine reads
func isLegacyIEValue(value string) bool {
	return strings.Contains(strings.ToLower(value), "progid:")
}

// outdated reports a prefixed declaration for an untargeted vendor
func (p *Prefixer) outdated(n *node, vendors VendorSet) bool {
	name := strings.ToLower(n.name)

	if name == "display" {
		if v, ok := knownPrefixedDisplay(strings.ToLower(n.value)); ok {
			return !vendors.Has(v)
		}

		return false
	}

	v, base := splitVendor(name)
	if v == "" {
		return false
	}

	targets, ok := vendorsFor(base)
	if !ok || !containsVendor(targets, v) {
		return false
	}

	return !vendors.Has(v)
}

func splitVendor(name string) (Vendor, string) {
	for _, v := range vendorOrder {
		if strings.HasPrefix(name, string(v)) {
			return v, strings.TrimPrefix(name, string(v))
		}
	}

	return "", name
}

func containsVendor(list []Vendor, v Vendor) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
