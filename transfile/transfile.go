// Package transfile reads and writes the localization file formats lingokit
// recognizes: JSON-family translation files and Flutter ARB bundles.
//
// Both formats are flat JSON objects at the top level. What counts as
// translatable differs:
//
//   - JSON: every top-level string value. Non-string values (nested objects,
//     numbers, arrays) are carried through verbatim.
//   - ARB: every key not starting with "@". "@"-keys are metadata and are
//     preserved byte-for-byte; "@@locale" holds the bundle's language code
//     and is rewritten when a translation is saved for another language.
//
// Key order from the source file is preserved through a read-modify-write
// cycle so diffs against the original stay reviewable.
package transfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingokit/lingokit/langcode"
)

// Format identifies the on-disk localization format.
type Format int

const (
	// FormatJSON is a flat JSON translation file (i18next and friends).
	FormatJSON Format = iota
	// FormatARB is a Flutter Application Resource Bundle.
	FormatARB
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) Format {
	if langcode.ForPath(path) == langcode.ARB {
		return FormatARB
	}
	return FormatJSON
}

// entry is a single top-level key in document order.
type entry struct {
	key string
	// value holds the decoded string for translatable entries.
	value string
	// passthrough marks entries carried through verbatim: ARB metadata and
	// non-string JSON values.
	passthrough bool
	raw         json.RawMessage
}

// File is a parsed localization file.
type File struct {
	format Format
	locale string // ARB @@locale, empty for JSON files
	entries []entry
	index   map[string]int
}

// ParseFile reads and parses a localization file, picking the format from
// the extension.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses localization file content. Key order is preserved via token
// streaming; encoding/json's map decoding would lose it.
func Parse(data []byte, format Format) (*File, error) {
	f := &File{format: format, index: make(map[string]int)}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing: expected top-level object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing: expected string key, got %T", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing value for %q: %w", key, err)
		}

		e := entry{key: key, raw: raw}
		switch {
		case format == FormatARB && strings.HasPrefix(key, "@"):
			e.passthrough = true
			if key == "@@locale" {
				var s string
				_ = json.Unmarshal(raw, &s)
				f.locale = s
			}
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				// Nested object, number, bool, array: keep verbatim.
				e.passthrough = true
			} else {
				e.value = s
			}
		}

		f.index[key] = len(f.entries)
		f.entries = append(f.entries, e)
	}

	return f, nil
}

// Fmt returns the file's on-disk format.
func (f *File) Fmt() Format { return f.format }

// Locale returns the ARB @@locale value, or "" for JSON files.
func (f *File) Locale() string { return f.locale }

// SetLocale updates the ARB @@locale value. No-op for JSON files.
func (f *File) SetLocale(code string) {
	if f.format != FormatARB {
		return
	}
	f.locale = code
	if idx, ok := f.index["@@locale"]; ok {
		raw, _ := json.Marshal(code)
		f.entries[idx].raw = raw
	}
}

// Keys returns the translatable keys in document order.
func (f *File) Keys() []string {
	var keys []string
	for _, e := range f.entries {
		if !e.passthrough {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Get returns the value of a translatable key.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok && !f.entries[idx].passthrough {
		return f.entries[idx].value, true
	}
	return "", false
}

// Set updates the value of an existing translatable key. Reports false for
// unknown keys and passthrough entries.
func (f *File) Set(key, value string) bool {
	idx, ok := f.index[key]
	if !ok || f.entries[idx].passthrough {
		return false
	}
	f.entries[idx].value = value
	raw, _ := json.Marshal(value)
	f.entries[idx].raw = raw
	return true
}

// Strings returns key → value for all translatable entries, the shape the
// translation client consumes.
func (f *File) Strings() map[string]string {
	m := make(map[string]string, len(f.entries))
	for _, e := range f.entries {
		if !e.passthrough {
			m[e.key] = e.value
		}
	}
	return m
}

// Apply sets translated values by key, ignoring keys the file does not have.
func (f *File) Apply(translations map[string]string) {
	for key, value := range translations {
		f.Set(key, value)
	}
}

// Marshal serializes with 2-space indentation, key order preserved,
// passthrough values re-indented but otherwise untouched.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	for i, e := range f.entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		keyBytes, _ := json.Marshal(e.key)
		buf.Write(keyBytes)
		buf.WriteString(": ")
		if e.passthrough {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, e.raw, "  ", "  "); err != nil {
				buf.Write(e.raw)
			} else {
				buf.Write(pretty.Bytes())
			}
		} else {
			raw, _ := json.Marshal(e.value)
			buf.Write(raw)
		}
	}

	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// WriteFile serializes and writes to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
