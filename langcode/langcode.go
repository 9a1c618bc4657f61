// Package langcode implements the two language-code grammars found in
// localization file conventions:
//
//   - Standard: BCP-47-like codes with "-" or "_" separators, matched
//     case-insensitively (en, zh-Hans-CN, pt_br). Used by JSON-family
//     translation files.
//   - ARB: Flutter Application Resource Bundle locale codes, "_"-joined
//     and case-strict (en, en_US, zh_Hans_CN). ARB codes are generated
//     programmatically and compared literally, so loose casing is not
//     accepted.
//
// A code consists of a mandatory language subtag (2-3 letters), an
// optional script subtag (4 letters), and an optional region subtag
// (2-3 letters or 3 digits). A code is well-formed only when the whole
// string matches; partial matches are never accepted.
package langcode

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Grammar selects which language-code syntax applies to a file.
type Grammar int

const (
	// Standard is the hyphen-based grammar used by JSON-family formats.
	Standard Grammar = iota
	// ARB is the underscore-based grammar used by Flutter ARB files.
	ARB
)

// ARBExtension is the Flutter Application Resource Bundle file extension.
const ARBExtension = ".arb"

var (
	standardRe = regexp.MustCompile(`(?i)^[a-z]{2,3}(?:[-_][a-z]{4})?(?:[-_](?:[a-z]{2,3}|[0-9]{3}))?$`)
	arbRe      = regexp.MustCompile(`^[a-z]{2,3}(?:_[A-Z][a-z]{3})?(?:_(?:[A-Z]{2,3}|[0-9]{3}))?$`)
)

// ForPath returns the grammar governing the given file path, chosen by
// extension. The comparison is case-insensitive (APP_EN.ARB is an ARB file).
func ForPath(path string) Grammar {
	if strings.EqualFold(filepath.Ext(path), ARBExtension) {
		return ARB
	}
	return Standard
}

func (g Grammar) String() string {
	if g == ARB {
		return "arb"
	}
	return "standard"
}

// Validate reports whether code fully matches the grammar.
func (g Grammar) Validate(code string) bool {
	if g == ARB {
		return arbRe.MatchString(code)
	}
	return standardRe.MatchString(code)
}

// ExtractFromBaseName extracts a language code from a file base name
// (extension already stripped).
//
// For the Standard grammar the entire base name must be the code.
//
// For the ARB grammar the base name is split on "_" and every right-aligned
// suffix of the segments is tried, longest first; the first match wins. This
// recovers the code behind an application-name prefix: "app_en_US" yields
// "en_US", "my_app_fr" yields "fr". An app name that itself looks like a
// language code ("fi_fi") is inherently ambiguous; the longest matching
// suffix is taken and odd naming schemes are the user's problem.
func (g Grammar) ExtractFromBaseName(base string) (string, bool) {
	if g != ARB {
		if standardRe.MatchString(base) {
			return base, true
		}
		return "", false
	}

	parts := strings.Split(base, "_")
	for i := range parts {
		candidate := strings.Join(parts[i:], "_")
		if arbRe.MatchString(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Token renders a target language string as the folder/file name token for
// this grammar: ARB output replaces every hyphen with an underscore, the
// Standard grammar keeps the string as supplied.
func (g Grammar) Token(lang string) string {
	if g == ARB {
		return strings.ReplaceAll(lang, "-", "_")
	}
	return lang
}

// Normalize renders a Standard-grammar code in canonical casing: language
// subtag lowercase, script subtag title-case, region subtag uppercase,
// subtags joined with "-". Input that does not match the grammar is returned
// unchanged; callers must not assume normalization always alters the string.
func Normalize(code string) string {
	if !standardRe.MatchString(code) {
		return code
	}
	parts := strings.Split(strings.ReplaceAll(code, "_", "-"), "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 4 {
			// 4 letters is always a script subtag.
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		} else {
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}
