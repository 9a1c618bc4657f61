// Package outpath derives output paths for new translation files from the
// detected project layout.
package outpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingokit/lingokit/langcode"
	"github.com/lingokit/lingokit/project"
)

// Generate computes the path a translation of sourceFile into targetLang
// should be written to, following the project's detected convention:
//
//   - folder-based: base/<lang>/<source file name> — the language directory
//     is created if missing, the file name does not change.
//   - file-based ARB: the app-name prefix of the source file is kept and the
//     language code swapped (app_en_US.arb + "es" -> app_es.arb).
//   - file-based otherwise: the file name is the language token itself.
//   - unknown: the language code is inserted as a middle extension segment
//     next to the source (messages.json -> messages.fr.json).
//
// The returned path is a fresh candidate; it is not checked for collisions.
// Callers that must not overwrite pass it through Unique.
func Generate(sourceFile, targetLang string) (string, error) {
	grammar := langcode.ForPath(sourceFile)
	token := grammar.Token(targetLang)
	ext := filepath.Ext(sourceFile)
	st := project.Detect(sourceFile)

	switch st.Kind {
	case project.KindFolder:
		dir := filepath.Join(st.BasePath, token)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating language directory %s: %w", dir, err)
		}
		return filepath.Join(dir, filepath.Base(sourceFile)), nil

	case project.KindFile:
		if grammar == langcode.ARB {
			base := strings.TrimSuffix(filepath.Base(sourceFile), ext)
			prefix := ""
			if st.SourceLang != "" {
				if i := strings.Index(base, st.SourceLang); i >= 0 {
					prefix = base[:i]
				}
			}
			return filepath.Join(st.BasePath, prefix+token+ext), nil
		}
		return filepath.Join(st.BasePath, token+ext), nil

	default:
		base := strings.TrimSuffix(filepath.Base(sourceFile), ext)
		return filepath.Join(st.BasePath, base+"."+token+ext), nil
	}
}

// Unique returns path unchanged when nothing exists there, otherwise the
// first "name (n).ext" variant (n starting at 1) that does not exist.
//
// Existence is re-checked for every candidate, so repeated calls against a
// stable filesystem return the same path. The check is advisory only: a
// concurrent writer can still claim the returned path first, and callers
// racing each other must serialize on their own.
func Unique(path string) string {
	if !exists(path) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
