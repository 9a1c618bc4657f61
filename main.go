// lingokit — localization file translator that infers the surrounding
// project convention to decide where a new translation belongs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lingokit/lingokit/config"
	"github.com/lingokit/lingokit/i18n"
	"github.com/lingokit/lingokit/langcode"
	"github.com/lingokit/lingokit/langmeta"
	"github.com/lingokit/lingokit/outpath"
	"github.com/lingokit/lingokit/project"
	"github.com/lingokit/lingokit/settings"
	"github.com/lingokit/lingokit/transfile"
	"github.com/lingokit/lingokit/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lingokit",
		Short: "Translate localization files where they belong",
		Long: `lingokit — localization file translator.

Given one source localization file (JSON-family or Flutter ARB), lingokit
infers whether the project keeps a folder per language (locales/en/common.json)
or a file per language (i18n/en.json, lib/l10n/app_en.arb), lists the
languages already present, and writes new translations to the path the
convention dictates.

Commands:
  status      Show detected structure and languages for a source file
  languages   List language codes present in the project
  path        Print the target path for a translation
  translate   Translate a source file using an AI provider
  auth        Manage provider API keys`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newStatusCmd(),
		newLanguagesCmd(),
		newPathCmd(),
		newTranslateCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// status (read-only: structure + languages report)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <source-file>",
		Short: "Show detected structure and languages for a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			st := project.Detect(source)
			fmt.Printf("%s:        %s\n", i18n.T("Structure"), st.Kind)
			fmt.Printf("%s:        %s\n", i18n.T("Base path"), st.BasePath)
			if st.SourceLang != "" {
				fmt.Printf("%s:  %s\n", i18n.T("Source language"), langmeta.Label(st.SourceLang))
			}

			langs := project.DetectLanguages(source)
			if len(langs) == 0 {
				fmt.Println(i18n.T("No other languages found"))
				return nil
			}
			fmt.Printf("%s:\n", i18n.T("Detected languages"))
			for _, l := range langs {
				fmt.Printf("  %s\n", langmeta.Label(l))
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// languages (machine-readable enumeration)
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "languages [source-file]",
		Short: "List language codes present in the project",
		Long: `List the language codes already present around a source file,
one per line, excluding the source language. With --all, list every
language lingokit has display metadata for instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				for _, c := range langmeta.Codes() {
					fmt.Println(c)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("source file required (or use --all)")
			}
			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			for _, l := range project.DetectLanguages(source) {
				fmt.Println(l)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List all known language codes")
	return cmd
}

// ---------------------------------------------------------------------------
// path (compute the target path without writing anything but directories)
// ---------------------------------------------------------------------------

func newPathCmd() *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "path <source-file> <target-language>",
		Short: "Print the target path for a translation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			target, err := outpath.Generate(source, args[1])
			if err != nil {
				return err
			}
			if unique {
				target = outpath.Unique(target)
			}
			fmt.Println(target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unique, "unique", false, "Rename instead of pointing at an existing file")
	return cmd
}

// ---------------------------------------------------------------------------
// translate (detect -> resolve -> translate -> write)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		langs      []string
		providerID string
		model      string
		apiKey     string
		prompt     string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "translate [source-file]",
		Short: "Translate a source file using an AI provider",
		Long: `Translate a localization file into one or more target languages.

The source file and target languages may come from flags or from a
.lingokit.yaml in the current directory. Each translation is written to the
path the detected project convention dictates; without --overwrite an
existing file is kept and the new one gets a " (n)" suffix.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, cfgPath, err := config.LoadFile(".")
			if err != nil {
				return err
			}
			if cfg != nil {
				log.Debug().Str("path", cfgPath).Msg("Loaded project configuration")
			}
			env := config.LoadEnv()

			source := ""
			if len(args) == 1 {
				source = args[0]
			} else if cfg != nil && cfg.Source != "" {
				source = filepath.Join(filepath.Dir(cfgPath), cfg.Source)
			}
			if source == "" {
				return fmt.Errorf("no source file: pass one or set 'source' in %s", config.FileName)
			}
			source, err = filepath.Abs(source)
			if err != nil {
				return err
			}

			if len(langs) == 0 && cfg != nil {
				langs = cfg.Languages
			}
			if len(langs) == 0 {
				return fmt.Errorf("no target languages: pass --lang or set 'languages' in %s", config.FileName)
			}
			if cfg != nil && !cmd.Flags().Changed("overwrite") {
				overwrite = cfg.Overwrite
			}
			if prompt == "" && cfg != nil {
				prompt = cfg.Prompt
			}

			prov, err := resolveProvider(cfg, env, providerID, model, apiKey)
			if err != nil {
				return err
			}

			for _, lang := range langs {
				lang = strings.TrimSpace(lang)
				// Target languages come from a UI or config and are expected,
				// not required, to be BCP-47-like.
				if !langcode.Standard.Validate(lang) {
					log.Warn().Str("lang", lang).Msg("Target language does not look like a language code")
				}
				if err := translateOne(ctx, source, lang, prov, prompt, overwrite); err != nil {
					return fmt.Errorf("translating to %s: %w", lang, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Target language code (repeatable)")
	cmd.Flags().StringVar(&providerID, "provider", "", "Translation provider: google, openai, ollama")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides env and stored keys)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "System prompt override")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing target files instead of renaming")
	return cmd
}

// resolveProvider merges flag, environment, and config file settings into a
// concrete provider definition. Precedence: flags > environment > file.
func resolveProvider(cfg *config.File, env config.Env, flagID, flagModel, flagKey string) (translate.Provider, error) {
	id := flagID
	if id == "" {
		id = env.Provider
	}
	if id == "" && cfg != nil {
		id = cfg.Provider
	}
	if id == "" {
		id = translate.ProviderGoogle
	}

	prov, ok := translate.DefaultProviders()[id]
	if !ok {
		return translate.Provider{}, fmt.Errorf("unknown provider %q", id)
	}

	switch {
	case flagModel != "":
		prov.Model = flagModel
	case env.Model != "":
		prov.Model = env.Model
	case cfg != nil && cfg.Model != "":
		prov.Model = cfg.Model
	}

	prov.APIKey = settings.APIKey(id, flagKey)
	if prov.APIKey == "" && id != translate.ProviderOllama {
		return translate.Provider{}, fmt.Errorf("no API key for %s: run 'lingokit auth set %s' or set LINGOKIT_API_KEY", id, id)
	}
	return prov, nil
}

func translateOne(ctx context.Context, source, lang string, prov translate.Provider, prompt string, overwrite bool) error {
	target, err := outpath.Generate(source, lang)
	if err != nil {
		return err
	}
	if !overwrite {
		target = outpath.Unique(target)
	}

	f, err := transfile.ParseFile(source)
	if err != nil {
		return err
	}

	translated, err := translate.Translate(ctx, f.Strings(), translate.Options{
		Provider:     prov,
		Language:     lang,
		SystemPrompt: prompt,
	})
	if err != nil {
		return err
	}

	f.Apply(translated)
	if f.Fmt() == transfile.FormatARB {
		f.SetLocale(langcode.ARB.Token(lang))
	}
	if err := f.WriteFile(target); err != nil {
		return err
	}

	log.Info().
		Str("lang", lang).
		Str("path", target).
		Msg(i18n.T("Translation written"))
	fmt.Printf("%s %s: %s\n", langmeta.Label(lang), i18n.T("Target path"), target)
	return nil
}

// ---------------------------------------------------------------------------
// auth (provider API keys)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
	}

	set := &cobra.Command{
		Use:   "set <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := translate.DefaultProviders()[args[0]]; !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			if err := settings.SetAPIKey(args[0], args[1]); err != nil {
				return err
			}
			log.Info().Str("provider", args[0]).Msg("API key stored")
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <provider>",
		Short: "Delete the stored API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return settings.Remove(args[0])
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show which providers have stored keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settings.Load()
			if err != nil {
				return err
			}
			for id, prov := range translate.DefaultProviders() {
				state := "not configured"
				if _, ok := store[id]; ok {
					state = "key stored"
				} else if id == translate.ProviderOllama {
					state = "no key needed"
				}
				fmt.Printf("%-8s %-28s %s\n", id, prov.Name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(set, remove, status)
	return cmd
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lingokit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
