// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rdf loads RDF/XML documents into an element tree and extracts
// bicycle-counter records from it. The record namespace is not configured:
// it is taken from the first element whose local name matches the record tag.
package rdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/bikecount/pkg/types"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

var (
	// ErrParse reports a malformed XML document.
	ErrParse = errors.New("malformed XML document")

	// ErrTagNotFound reports that no namespaced element carries the requested
	// local name.
	ErrTagNotFound = errors.New("tag not found in document")
)

// Name is an element's expanded name: namespace URI plus local part.
type Name struct {
	Space string
	Local string
}

// String formats the name in Clark notation, {uri}local.
func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// NameOf returns the expanded name of e.
func NameOf(e *etree.Element) Name {
	uri, _ := namespaceURI(e)
	return Name{Space: uri, Local: e.Tag}
}

// Load parses the whole document from r and returns its root element.
// Encodings other than UTF-8 declared in the XML prolog are decoded, and
// general entities declared in an internal DTD subset are expanded.
func Load(r io.Reader) (*etree.Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading XML document: %w", err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.Entity = declaredEntities(data)

	if err := doc.ReadFromBytes(data); err != nil {
		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			return nil, fmt.Errorf("%w: line %d: %s", ErrParse, syn.Line, syn.Msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	root, err := documentElement(doc)
	if err != nil {
		return nil, err
	}
	if err := checkPrefixes(root); err != nil {
		return nil, err
	}
	return root, nil
}

// documentElement returns the single root element of doc. Any other element
// or non-blank text at the top level makes the document malformed.
func documentElement(doc *etree.Document) (*etree.Element, error) {
	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, fmt.Errorf("%w: junk after document element <%s>", ErrParse, root.FullTag())
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, fmt.Errorf("%w: text outside the document element", ErrParse)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	return root, nil
}

// checkPrefixes rejects any element or attribute whose prefix is not
// declared in scope.
func checkPrefixes(root *etree.Element) error {
	var bad error
	walk(root, func(e *etree.Element) bool {
		if _, ok := namespaceURI(e); !ok {
			bad = fmt.Errorf("%w: unbound prefix in <%s>", ErrParse, e.FullTag())
			return false
		}
		for _, a := range e.Attr {
			if a.Space == "" || a.Space == "xmlns" {
				continue
			}
			if _, ok := resolvePrefix(e, a.Space); !ok {
				bad = fmt.Errorf("%w: unbound prefix in attribute %s of <%s>", ErrParse, a.FullKey(), e.FullTag())
				return false
			}
		}
		return true
	})
	return bad
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"'>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// declaredEntities collects the internal general entities declared in the
// DOCTYPE of data. Parameter and external entities are ignored. Errors are
// left for the full parse to report.
func declaredEntities(data []byte) map[string]string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var entities map[string]string
	for {
		tok, err := dec.Token()
		if err != nil {
			return entities
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return entities
		case xml.Directive:
			for _, m := range entityDecl.FindAllStringSubmatch(string(t), -1) {
				if entities == nil {
					entities = make(map[string]string)
				}
				entities[m[1]] = m[2] + m[3]
			}
		}
	}
}

// DetectNamespace scans the tree rooted at root in document order and returns
// the namespace URI of the first element whose local name is local.
// Elements outside any namespace never match.
func DetectNamespace(root *etree.Element, local string) (string, error) {
	var uri string
	walk(root, func(e *etree.Element) bool {
		if e.Tag != local {
			return true
		}
		if ns, _ := namespaceURI(e); ns != "" {
			uri = ns
			return false
		}
		return true
	})
	if uri == "" {
		return "", fmt.Errorf("record tag %q: %w", local, ErrTagNotFound)
	}
	return uri, nil
}

// FindRecords returns every descendant of root (root excluded) named
// {ns}local, in document order.
func FindRecords(root *etree.Element, ns, local string) []*etree.Element {
	want := Name{Space: ns, Local: local}
	var records []*etree.Element
	for _, child := range root.ChildElements() {
		walk(child, func(e *etree.Element) bool {
			if e.Tag == local && NameOf(e) == want {
				records = append(records, e)
			}
			return true
		})
	}
	return records
}

// BuildRow extracts one value per field from the immediate children of
// record. A field is the trimmed leading text of the first child named
// {ns}field; a missing child or blank text yields "".
func BuildRow(record *etree.Element, ns string, fields []string) types.Row {
	row := make(types.Row, len(fields))
	for i, field := range fields {
		if child := findChild(record, Name{Space: ns, Local: field}); child != nil {
			row[i] = strings.TrimSpace(child.Text())
		}
	}
	return row
}

func findChild(e *etree.Element, name Name) *etree.Element {
	for _, child := range e.ChildElements() {
		if child.Tag == name.Local && NameOf(child) == name {
			return child
		}
	}
	return nil
}

// walk visits e and its descendants in document order until fn returns false.
// It reports whether the walk ran to completion.
func walk(e *etree.Element, fn func(*etree.Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.ChildElements() {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// namespaceURI resolves the namespace of e from the xmlns declarations on e
// and its ancestors. ok is false when e carries a prefix that is never
// declared.
func namespaceURI(e *etree.Element) (uri string, ok bool) {
	return resolvePrefix(e, e.Space)
}

// resolvePrefix looks prefix up in the scope of e. The empty prefix resolves
// to the default namespace.
func resolvePrefix(e *etree.Element, prefix string) (uri string, ok bool) {
	switch prefix {
	case "xml":
		return xmlNamespace, true
	case "xmlns":
		return "", false
	}
	for el := e; el != nil; el = el.Parent() {
		for _, a := range el.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value, true
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value, true
			}
		}
	}
	return "", prefix == ""
}
