package prefixer

import (
	"bytes"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type nodeKind int

const (
	nodeDecl nodeKind = iota
	nodeRule
	nodeAtRule
	nodeAtStatement
	nodeComment
	nodeRaw
)

// node is one element of a parsed stylesheet
type node struct {
	kind nodeKind

	// Property, selector, at-keyword or raw text depending on kind
	name string

	// Declaration value or at-rule prelude
	value string

	children []*node
}

func (n *node) clone() *node {
	c := *n
	c.children = make([]*node, len(n.children))
	for i, child := range n.children {
		c.children[i] = child.clone()
	}

	return &c
}

// parseTree parses css into a list of top-level nodes
func parseTree(src []byte) ([]*node, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)

	root := &node{kind: nodeRule}
	stack := []*node{root}
	var selectors []string

	push := func(n *node) {
		top := stack[len(stack)-1]
		top.children = append(top.children, n)
	}

	for {
		gt, _, data := p.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != io.EOF {
				return nil, err
			}

			return root.children, nil
		case css.CommentGrammar:
			push(&node{kind: nodeComment, name: string(data)})
		case css.AtRuleGrammar:
			push(&node{kind: nodeAtStatement, name: string(data), value: joinTokens(p.Values())})
		case css.BeginAtRuleGrammar:
			n := &node{kind: nodeAtRule, name: string(data), value: joinTokens(p.Values())}
			push(n)
			stack = append(stack, n)
		case css.QualifiedRuleGrammar:
			selectors = append(selectors, joinTokens(p.Values()))
		case css.BeginRulesetGrammar:
			selectors = append(selectors, joinTokens(p.Values()))
			n := &node{kind: nodeRule, name: strings.Join(selectors, ", ")}
			selectors = nil
			push(n)
			stack = append(stack, n)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			push(&node{kind: nodeDecl, name: string(data), value: joinTokens(p.Values())})
		case css.TokenGrammar:
			if text := strings.TrimSpace(string(data)); text != "" {
				push(&node{kind: nodeRaw, name: text})
			}
		}
	}
}

// joinTokens renders tokens back to text, collapsing whitespace runs
func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	space := false

	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = b.Len() > 0
			continue
		}

		if space {
			b.WriteByte(' ')
			space = false
		}

		b.Write(t.Data)
	}

	return b.String()
}

// renderTree prints nodes in expanded form
func renderTree(w *bytes.Buffer, nodes []*node, indent string) {
	for _, n := range nodes {
		switch n.kind {
		case nodeDecl:
			w.WriteString(indent + n.name + ": " + n.value + ";\n")
		case nodeRule:
			w.WriteString(indent + n.name + " {\n")
			renderTree(w, n.children, indent+"  ")
			w.WriteString(indent + "}\n")
		case nodeAtRule:
			w.WriteString(indent + atHeader(n) + " {\n")
			renderTree(w, n.children, indent+"  ")
			w.WriteString(indent + "}\n")
		case nodeAtStatement:
			w.WriteString(indent + atHeader(n) + ";\n")
		case nodeComment, nodeRaw:
			w.WriteString(indent + n.name + "\n")
		}
	}
}

func atHeader(n *node) string {
	if n.value == "" {
		return n.name
	}

	return n.name + " " + n.value
}
