package lkml

import "strings"

// Override parameters recognized inside an explore or join body.
// FromParam takes precedence over ViewNameParam when both are present.
const (
	FromParam     = "from"
	ViewNameParam = "view_name"
)

// ResolveViewRef returns the effective view name for an explore or join
// block: the `from:` override if present, otherwise `view_name:`,
// otherwise the block's own identifier. Only the block's own body is
// consulted, never nested sub-blocks.
func ResolveViewRef(body, defaultName string) string {
	if v := ParamValue(body, FromParam); v != "" {
		return v
	}
	if v := ParamValue(body, ViewNameParam); v != "" {
		return v
	}
	return defaultName
}

// ParamValue returns the value of a `name: value` parameter at the top
// level of body, or "" when absent. Parameters inside nested blocks are
// not consulted. The value may be a bare identifier or a quoted string.
func ParamValue(body, name string) string {
	i := findParam(body, name)
	if i < 0 {
		return ""
	}
	i = skipSpace(body, i)
	if i >= len(body) {
		return ""
	}

	if q := body[i]; q == '"' || q == '\'' {
		end := strings.IndexByte(body[i+1:], q)
		if end < 0 {
			return strings.TrimSpace(body[i+1:])
		}
		return body[i+1 : i+1+end]
	}

	start := i
	for i < len(body) && isIdentByte(body[i]) {
		i++
	}
	return body[start:i]
}

// ParamList returns the bracketed list value of a `name: [a, b]` parameter
// at the top level of body. Entries are trimmed and unquoted; empty
// entries are dropped. Returns nil when the parameter is absent or not a
// list.
func ParamList(body, name string) []string {
	i := findParam(body, name)
	if i < 0 {
		return nil
	}
	i = skipSpace(body, i)
	if i >= len(body) || body[i] != '[' {
		return nil
	}
	end := strings.IndexByte(body[i:], ']')
	if end < 0 {
		return nil
	}

	var items []string
	for _, item := range strings.Split(body[i+1:i+end], ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"'`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// findParam locates `name:` at depth zero of body, skipping quoted
// strings and nested blocks, and returns the offset just past the colon.
// Returns -1 when the parameter is not present at the top level.
func findParam(body, name string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(body) && body[i+1] != '\n' {
				i++
				continue
			}
			if c == quote || c == '\n' {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
		default:
			if depth != 0 || !strings.HasPrefix(body[i:], name) {
				continue
			}
			if i > 0 && isIdentByte(body[i-1]) {
				continue
			}
			if i+len(name) < len(body) && isIdentByte(body[i+len(name)]) {
				i += len(name) - 1
				continue
			}
			after := skipSpace(body, i+len(name))
			if after < len(body) && body[after] == ':' {
				return after + 1
			}
			i += len(name) - 1
		}
	}
	return -1
}
