package manifest

import (
	"github.com/arthur-debert/dotlink/pkg/errors"
	"gopkg.in/yaml.v3"
)

// parseYAML walks the node tree instead of decoding into a map so that
// document order survives and scalar types can be checked.
func parseYAML(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "Failed to parse manifest")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, missingRootKey()
	}

	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, missingRootKey()
	}

	var section *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == RootKey {
			section = deref(root.Content[i+1])
			break
		}
	}
	if section == nil {
		return nil, missingRootKey()
	}

	// "dotfiles:" with nothing under it is an empty manifest.
	if section.Kind == yaml.ScalarNode && section.ShortTag() == "!!null" {
		return nil, nil
	}
	if section.Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrManifestInvalid,
			"Invalid manifest format - '%s' must be a mapping (line %d)", RootKey, section.Line)
	}

	pairs, err := flatten(section)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		key, value := p.key, p.value

		if !isString(key) {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"Invalid manifest format - source name at line %d must be a string", key.Line)
		}
		if !isString(value) {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"Invalid manifest format - destination of %q at line %d must be a string", key.Value, value.Line)
		}

		entries = append(entries, Entry{Name: key.Value, Destination: value.Value})
	}

	return entries, nil
}

type pair struct {
	key, value *yaml.Node
}

// flatten lists the pairs of a mapping with merge keys (<<) spliced in.
// Merged pairs come first; explicit keys replace merged ones in place and
// earlier merge sources win over later ones.
func flatten(m *yaml.Node) ([]pair, error) {
	var merged, explicit []pair
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := deref(m.Content[i])
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			sources, err := mergeSources(m.Content[i+1])
			if err != nil {
				return nil, err
			}
			merged = overlay(merged, sources)
			continue
		}
		explicit = append(explicit, pair{key: key, value: deref(m.Content[i+1])})
	}
	return overlay(merged, explicit), nil
}

func mergeSources(n *yaml.Node) ([]pair, error) {
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		return flatten(n)
	case yaml.SequenceNode:
		var pairs []pair
		for i := len(n.Content) - 1; i >= 0; i-- {
			item := deref(n.Content[i])
			if item.Kind != yaml.MappingNode {
				return nil, mergeError(item)
			}
			source, err := flatten(item)
			if err != nil {
				return nil, err
			}
			pairs = overlay(pairs, source)
		}
		return pairs, nil
	default:
		return nil, mergeError(n)
	}
}

// overlay applies top over base. A key of base is replaced once; repeated
// keys within top are kept so duplicate detection still sees them.
func overlay(base, top []pair) []pair {
	out := append([]pair(nil), base...)
	index := make(map[string]int, len(base))
	for i, p := range base {
		index[p.key.Value] = i
	}
	for _, p := range top {
		if i, ok := index[p.key.Value]; ok {
			out[i] = p
			delete(index, p.key.Value)
			continue
		}
		out = append(out, p)
	}
	return out
}

func mergeError(n *yaml.Node) error {
	return errors.Newf(errors.ErrManifestInvalid,
		"Invalid manifest format - merge value at line %d must be a mapping", n.Line)
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func missingRootKey() error {
	return errors.Newf(errors.ErrManifestInvalid, "Invalid manifest format - missing '%s' key", RootKey)
}
