package catalog

import (
	"regexp"
	"strings"
)

// metadata holds the parsed template header. Zero values are the
// conservative defaults mandated for absent or malformed declarations.
type metadata struct {
	description     string
	safe            bool
	changesHostname bool
}

// metadataBlock matches a leading template comment of the form
// {# ... #}, possibly spanning multiple lines.
var metadataBlock = regexp.MustCompile(`(?s)^\s*\{#(.*?)#\}`)

// parseMetadata extracts the key:value declarations from the leading
// comment block. Absence of the block, of individual keys, or malformed
// boolean literals all fall back to the conservative defaults; none of
// them is an error.
func parseMetadata(content string) metadata {
	meta := metadata{}

	m := metadataBlock.FindStringSubmatch(content)
	if m == nil {
		return meta
	}

	for _, line := range strings.Split(m[1], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "description":
			meta.description = value
		case "safe":
			meta.safe = parseBool(value)
		case "changes_hostname":
			meta.changesHostname = parseBool(value)
		}
	}
	return meta
}

// parseBool accepts the truthy literals template authors actually write.
// Anything unrecognized, including malformed values, reads as false.
func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
