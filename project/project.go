// Package project implements auto-detection of localization project layout
// around a single source file.
//
// Two conventions are recognized:
//
//   - folder-per-language: locales/en/common.json, locales/fr/common.json
//   - file-per-language:   i18n/en.json, i18n/fr.json, lib/l10n/app_en.arb
//
// Detection runs fresh against the filesystem on every call. Nothing is
// cached: the user may add or remove language folders between runs and the
// next call has to see that.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lingokit/lingokit/langcode"
)

// Kind indicates how translation files are organized.
type Kind string

const (
	// KindFolder: language directories under a common base, file names carry
	// no language information.
	KindFolder Kind = "folder"
	// KindFile: language-coded file names in a single directory.
	KindFile Kind = "file"
	// KindUnknown: no recognizable convention.
	KindUnknown Kind = "unknown"
)

// Structure describes the detected layout around a source file.
type Structure struct {
	// Kind is the detected convention.
	Kind Kind
	// BasePath is the directory language folders or language files live
	// under. For KindUnknown it is the source file's own directory.
	BasePath string
	// SourceLang is the language code of the source file, original casing
	// preserved. Empty when Kind is KindUnknown.
	SourceLang string
}

// Detect classifies the project layout around sourceFile.
//
// A language-named parent directory wins over the file name: folder layouts
// routinely hold files like common.json inside en/, so the file name is only
// consulted when the parent is not a language code.
func Detect(sourceFile string) Structure {
	grammar := langcode.ForPath(sourceFile)
	dir := filepath.Dir(sourceFile)

	if parent := filepath.Base(dir); grammar.Validate(parent) {
		return Structure{
			Kind:       KindFolder,
			BasePath:   filepath.Dir(dir),
			SourceLang: parent,
		}
	}

	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	if code, ok := grammar.ExtractFromBaseName(base); ok {
		return Structure{
			Kind:       KindFile,
			BasePath:   dir,
			SourceLang: code,
		}
	}

	return Structure{Kind: KindUnknown, BasePath: dir}
}

// DetectLanguages returns the language codes already present in the project
// around sourceFile, excluding the source language itself. The result is
// de-duplicated and ordered case-insensitively with locale-aware collation;
// the original casing of each entry is preserved.
//
// When the structure is unknown there is no convention to scan against and
// the result is empty — guessing would produce false positives on arbitrary
// folder names. Unreadable directories degrade to an empty scan.
func DetectLanguages(sourceFile string) []string {
	st := Detect(sourceFile)
	grammar := langcode.ForPath(sourceFile)

	var langs []string
	switch st.Kind {
	case KindFolder:
		for _, entry := range readDir(st.BasePath) {
			if entry.IsDir() && grammar.Validate(entry.Name()) {
				langs = append(langs, entry.Name())
			}
		}
	case KindFile:
		ext := filepath.Ext(sourceFile)
		for _, entry := range readDir(st.BasePath) {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				continue
			}
			base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if code, ok := grammar.ExtractFromBaseName(base); ok {
				langs = append(langs, code)
			}
		}
	default:
		return nil
	}

	// The source language is dropped only when detection identified one;
	// with no source language the exclusion is a no-op by construction.
	seen := make(map[string]bool, len(langs))
	unique := langs[:0]
	for _, l := range langs {
		if l == st.SourceLang || seen[l] {
			continue
		}
		seen[l] = true
		unique = append(unique, l)
	}

	collate.New(language.Und, collate.IgnoreCase).SortStrings(unique)
	return unique
}

// readDir lists a directory, degrading to an empty listing on error. A
// half-readable project (permissions, concurrent deletion) must not abort
// language detection.
func readDir(dir string) []os.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory during language scan")
		return nil
	}
	return entries
}
