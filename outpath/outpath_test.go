package outpath

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	t.Run("folder-based creates language directory", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "locales", "en", "common.json")
		touch(t, source)

		got, err := Generate(source, "fr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "locales", "fr", "common.json")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
		info, err := os.Stat(filepath.Join(root, "locales", "fr"))
		if err != nil || !info.IsDir() {
			t.Errorf("language directory not created: %v", err)
		}
	})

	t.Run("folder-based directory creation is idempotent", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "locales", "en", "common.json")
		touch(t, source)
		if err := os.MkdirAll(filepath.Join(root, "locales", "fr"), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}

		if _, err := Generate(source, "fr"); err != nil {
			t.Errorf("Generate with existing directory: %v", err)
		}
	})

	t.Run("file-based json replaces file name", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "i18n", "en.json")
		touch(t, source)

		got, err := Generate(source, "fr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "i18n", "fr.json")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
	})

	t.Run("file-based json keeps hyphens in target", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "i18n", "en.json")
		touch(t, source)

		got, err := Generate(source, "zh-Hans-CN")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "i18n", "zh-Hans-CN.json")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
	})

	t.Run("arb keeps app prefix and underscores the target", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "lib", "l10n", "app_en_US.arb")
		touch(t, source)

		got, err := Generate(source, "es")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "lib", "l10n", "app_es.arb")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}

		got, err = Generate(source, "zh-Hans-CN")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want = filepath.Join(root, "lib", "l10n", "app_zh_Hans_CN.arb")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
	})

	t.Run("arb without prefix", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "lib", "l10n", "en.arb")
		touch(t, source)

		got, err := Generate(source, "fr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "lib", "l10n", "fr.arb")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
	})

	t.Run("unknown structure inserts middle extension", func(t *testing.T) {
		root := t.TempDir()
		source := filepath.Join(root, "translations", "messages.json")
		touch(t, source)

		got, err := Generate(source, "fr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		want := filepath.Join(root, "translations", "messages.fr.json")
		if got != want {
			t.Errorf("Generate = %q, want %q", got, want)
		}
	})
}

func TestUnique(t *testing.T) {
	t.Run("free path returned unchanged", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "fr.json")
		if got := Unique(path); got != path {
			t.Errorf("Unique = %q, want %q", got, path)
		}
	})

	t.Run("counter skips existing variants", func(t *testing.T) {
		root := t.TempDir()
		touch(t, filepath.Join(root, "fr.json"))
		touch(t, filepath.Join(root, "fr (1).json"))

		got := Unique(filepath.Join(root, "fr.json"))
		want := filepath.Join(root, "fr (2).json")
		if got != want {
			t.Errorf("Unique = %q, want %q", got, want)
		}
	})

	t.Run("idempotent on a stable filesystem", func(t *testing.T) {
		root := t.TempDir()
		touch(t, filepath.Join(root, "fr.json"))

		first := Unique(filepath.Join(root, "fr.json"))
		second := Unique(filepath.Join(root, "fr.json"))
		if first != second {
			t.Errorf("Unique not idempotent: %q vs %q", first, second)
		}
		want := filepath.Join(root, "fr (1).json")
		if first != want {
			t.Errorf("Unique = %q, want %q", first, want)
		}
	})
}
