package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFile(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		f, path, err := LoadFile(t.TempDir())
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if f != nil || path != "" {
			t.Errorf("LoadFile = %+v, %q; want nil", f, path)
		}
	})

	t.Run("full file", func(t *testing.T) {
		dir := t.TempDir()
		content := `source: locales/en/common.json
languages: [de, fr, zh-Hans-CN]
provider: google
model: gemini-2.0-flash
overwrite: true
`
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		f, path, err := LoadFile(dir)
		if err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
		if path != filepath.Join(dir, FileName) {
			t.Errorf("path = %q", path)
		}
		if f.Source != "locales/en/common.json" || f.Provider != "google" || !f.Overwrite {
			t.Errorf("File = %+v", f)
		}
		if want := []string{"de", "fr", "zh-Hans-CN"}; !reflect.DeepEqual(f.Languages, want) {
			t.Errorf("Languages = %v, want %v", f.Languages, want)
		}
	})

	t.Run("invalid language rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := "languages: [de, not-a-language-code]\n"
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(dir); err == nil {
			t.Error("expected error for invalid language code")
		}
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := "provider: carrier-pigeon\n"
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(dir); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{{{"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadFile(dir); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LINGOKIT_PROVIDER", "ollama")
	t.Setenv("LINGOKIT_MODEL", "llama3.1")

	env := LoadEnv()
	if env.Provider != "ollama" || env.Model != "llama3.1" {
		t.Errorf("LoadEnv = %+v", env)
	}
}
