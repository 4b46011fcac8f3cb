// Package lkml implements a quote-aware lexical scanner for the LookML
// text format: comment stripping, brace matching, named block extraction,
// and parameter lookup. LookML has no published grammar, so the scanner
// works directly on text with an explicit cursor and depth counter rather
// than a parse tree.
package lkml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnmatchedBrace reports an opening brace with no matching closing
	// brace before the end of the text.
	ErrUnmatchedBrace = errors.New("unmatched opening brace")

	// ErrMalformedBlock reports a brace scan started on something other
	// than an opening brace, which would drive the depth counter negative.
	ErrMalformedBlock = errors.New("malformed block")
)

// Block is one keyword-tagged brace-delimited span of the form
// `keyword: name { body }`. Start and End are the byte offsets of the
// opening and closing braces in the text the block was extracted from;
// Body is the substring strictly between them.
type Block struct {
	Keyword string
	Name    string
	Body    string
	Start   int
	End     int
}

// StripComments removes `#` line comments from text. A marker inside a
// single- or double-quoted string is literal content and is kept. Quotes
// do not span lines; an unterminated quote stops mattering at the next
// newline. Idempotent: stripping twice equals stripping once.
func StripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var quote byte // active quote character, 0 outside strings
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			// A backslash escapes the next character, except a newline:
			// that still ends the string so quotes cannot span lines.
			if c == '\\' && i+1 < len(text) && text[i+1] != '\n' {
				b.WriteByte(c)
				i++
				b.WriteByte(text[i])
				continue
			}
			if c == quote || c == '\n' {
				quote = 0
			}
			b.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				b.WriteByte('\n')
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MatchBrace returns the index of the closing brace matching the opening
// brace at start. Braces inside quoted strings are ignored. Returns
// ErrMalformedBlock when start does not point at an opening brace, and
// ErrUnmatchedBrace when the text ends before depth returns to zero.
func MatchBrace(text string, start int) (int, error) {
	if start < 0 || start >= len(text) || text[start] != '{' {
		return -1, fmt.Errorf("offset %d: %w", start, ErrMalformedBlock)
	}

	depth := 0
	var quote byte
	for i := start; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(text) && text[i+1] != '\n' {
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
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("offset %d: %w", start, ErrUnmatchedBrace)
}

// ExtractBlocks returns the blocks of the given keyword in text, in
// document order. Only blocks at the scan level are returned: after a
// block is matched the cursor resumes past its closing brace, so
// same-keyword blocks nested inside a returned block are reachable only
// by calling ExtractBlocks again on that block's Body. Blocks whose
// opening brace has no match are skipped and reported as errors; scanning
// resumes after the failed opening brace.
func ExtractBlocks(text, keyword string) ([]Block, []error) {
	var blocks []Block
	var errs []error

	i := 0
	for i < len(text) {
		start := indexKeyword(text, keyword, i)
		if start < 0 {
			break
		}

		name, open := parseBlockHeader(text, start+len(keyword))
		if open < 0 {
			// Keyword occurrence without a `: name {` header. Not a block.
			i = start + len(keyword)
			continue
		}

		closing, err := MatchBrace(text, open)
		if err != nil {
			errs = append(errs, fmt.Errorf("block %s %q: %w", keyword, name, err))
			i = open + 1
			continue
		}

		blocks = append(blocks, Block{
			Keyword: keyword,
			Name:    name,
			Body:    text[open+1 : closing],
			Start:   open,
			End:     closing,
		})
		i = closing + 1
	}

	return blocks, errs
}

// indexKeyword finds the next occurrence of keyword at or after from that
// is not part of a longer identifier.
func indexKeyword(text, keyword string, from int) int {
	for {
		rel := strings.Index(text[from:], keyword)
		if rel < 0 {
			return -1
		}
		at := from + rel
		if (at == 0 || !isIdentByte(text[at-1])) &&
			(at+len(keyword) >= len(text) || !isIdentByte(text[at+len(keyword)])) {
			return at
		}
		from = at + len(keyword)
	}
}

// parseBlockHeader parses `: name {` starting right after a keyword.
// It returns the block name and the offset of the opening brace, or
// ("", -1) when the text does not form a block header.
func parseBlockHeader(text string, i int) (string, int) {
	i = skipSpace(text, i)
	if i >= len(text) || text[i] != ':' {
		return "", -1
	}
	i = skipSpace(text, i+1)

	nameStart := i
	for i < len(text) && isIdentByte(text[i]) {
		i++
	}
	if i == nameStart {
		return "", -1
	}
	name := text[nameStart:i]

	i = skipSpace(text, i)
	if i >= len(text) || text[i] != '{' {
		return "", -1
	}
	return name, i
}

func skipSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
