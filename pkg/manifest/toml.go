package manifest

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// parseTOML reads a [dotfiles] table. TOML tables carry no order once
// decoded, so entries come back sorted by name.
func parseTOML(data []byte) ([]Entry, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "Failed to parse manifest")
	}

	raw, ok := doc[RootKey]
	if !ok {
		return nil, missingRootKey()
	}

	section, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrManifestInvalid,
			"Invalid manifest format - '%s' must be a table, got %T", RootKey, raw)
	}

	names := make([]string, 0, len(section))
	for name := range section {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		destination, ok := section[name].(string)
		if !ok {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"Invalid manifest format - destination of %q must be a string, got %s", name, describe(section[name]))
		}
		entries = append(entries, Entry{Name: name, Destination: destination})
	}

	return entries, nil
}

func describe(v interface{}) string {
	if _, ok := v.(map[string]interface{}); ok {
		return "a table (quote names containing dots)"
	}
	return fmt.Sprintf("%T", v)
}
