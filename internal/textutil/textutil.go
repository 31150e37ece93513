package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize splits text into lowercase tokens, filtering tokens shorter than
// three characters so connective noise ("a", "of", "07") does not survive.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// bracketTagPattern matches one [tag] group inside a comment string.
var bracketTagPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// BracketTags returns the contents of every [tag] group in s, in order.
func BracketTags(s string) []string {
	matches := bracketTagPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// HasBracketTag reports whether s contains the exact bracketed tag,
// case-insensitively. Substring hits inside a longer tag do not count:
// "[technoid]" does not contain the tag "techno".
func HasBracketTag(s, tag string) bool {
	for _, found := range BracketTags(s) {
		if strings.EqualFold(found, tag) {
			return true
		}
	}
	return false
}

// SanitizeName trims a node name and collapses interior whitespace runs.
// Slashes are replaced with dashes because a slash would break path addressing.
func SanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return strings.ReplaceAll(name, "/", "-")
}
