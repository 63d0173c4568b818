package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxDepth bounds recursion into nested or self-referencing documents.
const maxDepth = 512

var (
	yamlDocKeys  = map[string]bool{"file": true, "script": true, "hook": true, "command": true, "skill": true, "replaces": true}
	yamlListKeys = map[string]bool{"signal_files": true, "scripts": true, "tools": true, "absorbs": true, "tags": true}
	jsonPathExts = []string{".js", ".sh", ".py", ".md"}
)

// scanYAML parses every document of a YAML stream before walking any of
// them, so a parse error anywhere yields no structured references at all.
func scanYAML(content []byte, emit func(raw, ref string)) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	var docs []*yaml.Node
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		docs = append(docs, &n)
	}
	for _, d := range docs {
		walkYAML(d, emit, 0)
	}
	return nil
}

func walkYAML(n *yaml.Node, emit func(raw, ref string), depth int) {
	if n == nil || depth > maxDepth {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			walkYAML(c, emit, depth+1)
		}
	case yaml.AliasNode:
		walkYAML(n.Alias, emit, depth+1)
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], deref(n.Content[i+1])
			if isString(key) {
				switch {
				case yamlDocKeys[key.Value]:
					if isString(val) && strings.ContainsAny(val.Value, "./") {
						emit(key.Value+": "+val.Value, val.Value)
					}
				case yamlListKeys[key.Value]:
					if val != nil && val.Kind == yaml.SequenceNode {
						for _, item := range val.Content {
							item = deref(item)
							if isString(item) && strings.Contains(item.Value, ".") {
								emit(key.Value+": "+item.Value, item.Value)
							}
						}
					}
				}
			}
			walkYAML(val, emit, depth+1)
		}
	}
}

func deref(n *yaml.Node) *yaml.Node {
	for i := 0; n != nil && n.Kind == yaml.AliasNode && i < maxDepth; i++ {
		n = n.Alias
	}
	return n
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// jsonNode is a JSON value that keeps object members in document order.
type jsonNode struct {
	kind  jsonKind
	str   string
	keys  []string
	elems []*jsonNode
}

type jsonKind int

const (
	jsonOther jsonKind = iota
	jsonString
	jsonObject
	jsonArray
)

// member returns the value of key in an object, or nil.
func (n *jsonNode) member(key string) *jsonNode {
	if n == nil || n.kind != jsonObject {
		return nil
	}
	for i, k := range n.keys {
		if k == key {
			return n.elems[i]
		}
	}
	return nil
}

// decodeJSON parses a single JSON document; trailing data is an error.
func decodeJSON(content []byte) (*jsonNode, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	n, err := readJSON(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("json: trailing data after document")
	}
	return n, nil
}

func readJSON(dec *json.Decoder, depth int) (*jsonNode, error) {
	if depth > maxDepth {
		return nil, errors.New("document nested too deeply")
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case string:
		return &jsonNode{kind: jsonString, str: t}, nil
	case json.Delim:
		switch t {
		case '{':
			n := &jsonNode{kind: jsonObject}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				v, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.keys = append(n.keys, key)
				n.elems = append(n.elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &jsonNode{kind: jsonArray}
			for dec.More() {
				v, err := readJSON(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.elems = append(n.elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return &jsonNode{kind: jsonOther}, nil
	}
}

// walkJSON emits object members whose string value contains the namespace
// prefix or ends in a code/doc extension. Bare strings inside arrays are not
// references; only objects nested in arrays are visited.
func walkJSON(n *jsonNode, namespace string, emit func(raw, ref string)) {
	switch n.kind {
	case jsonObject:
		for i, key := range n.keys {
			v := n.elems[i]
			if v.kind == jsonString && looksLikeJSONPath(v.str, namespace) {
				emit(key+": "+v.str, v.str)
			}
			walkJSON(v, namespace, emit)
		}
	case jsonArray:
		for _, v := range n.elems {
			walkJSON(v, namespace, emit)
		}
	}
}

func looksLikeJSONPath(s, namespace string) bool {
	if strings.Contains(s, namespace) {
		return true
	}
	for _, ext := range jsonPathExts {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// scanHooks extracts script paths from hook commands in a settings file.
// Both the flat form hooks.<event>[].command and the nested matcher form
// hooks.<event>[].hooks[].command are understood.
func (e *Extractor) scanHooks(doc *jsonNode, emit func(raw, ref string)) {
	hooks := doc.member("hooks")
	if hooks == nil || hooks.kind != jsonObject {
		return
	}
	for _, list := range hooks.elems {
		if list.kind != jsonArray {
			continue
		}
		for _, h := range list.elems {
			e.scanHookCommand(h, emit)
			if nested := h.member("hooks"); nested != nil && nested.kind == jsonArray {
				for _, inner := range nested.elems {
					e.scanHookCommand(inner, emit)
				}
			}
		}
	}
}

func (e *Extractor) scanHookCommand(h *jsonNode, emit func(raw, ref string)) {
	cmd := h.member("command")
	if cmd == nil || cmd.kind != jsonString {
		return
	}
	raw := truncate(cmd.str)
	e.hookPath.each([]rune(cmd.str), func(_, ref string) bool {
		emit(raw, ref)
		return true
	})
}
