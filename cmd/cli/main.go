package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"formexport/adapters/archive"
	"formexport/domain/form"
	"formexport/internal/config"
	"formexport/internal/container"
	"formexport/internal/errors"
	"formexport/internal/fieldconfig"
	"formexport/internal/normalize"
	"formexport/internal/report"
	"formexport/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input from failures of the tool itself
func exitCode(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeConfigInvalid, errors.CodeInvalidInput, errors.CodeNotFound:
		return 2
	case errors.CodeSheetNotFound, errors.CodeParseError, errors.CodeSchemaError, errors.CodeEmptyInput:
		return 3
	}
	return 1
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "formexport-cli",
		Short:         "Turn iQSMS form/field exports into one Word document per form",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.DefineFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newNormalizeCmd(),
		newPreviewCmd(),
		newGenerateCmd(),
		newServeCmd(),
		newMCPCmd(),
		newSampleCmd(),
	)
	return rootCmd
}

// build loads configuration from the command's flags and wires the service
func build(cmd *cobra.Command, opts ...container.Option) (*container.Container, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return container.New(cfg, opts...)
}

func readWorkbook(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return raw, nil
}

func newNormalizeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize <export.xlsx>",
		Short: "Fill blanks, default subsections and cut the species list, writing a cleaned workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd)
			if err != nil {
				return err
			}
			raw, err := readWorkbook(args[0])
			if err != nil {
				return err
			}

			opts := c.Service.Options()
			result, err := normalize.Normalize(cmd.Context(), raw, opts.Sheet, opts.StartRow)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_cleaned.xlsx"
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", output)
			}

			out := cmd.OutOrStdout()
			for _, fact := range result.Report.Facts() {
				fmt.Fprintln(out, fact)
			}
			fmt.Fprintf(out, "Cleaned workbook written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Cleaned workbook path (default <input>_cleaned.xlsx)")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var writeConfig string
	var forms bool
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "preview <export.xlsx>",
		Short: "Report what cleaning changed and which dropdowns have too many options to list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd)
			if err != nil {
				return err
			}
			raw, err := readWorkbook(args[0])
			if err != nil {
				return err
			}

			preview, err := c.Service.Preview(cmd.Context(), raw)
			if err != nil {
				return err
			}
			opts := c.Service.Options()
			rep := report.Preview{
				Source:    filepath.Base(args[0]),
				Normalize: preview.Report,
				Scan:      preview.Scan,
				Cutoff:    opts.Cutoff,
			}

			out := cmd.OutOrStdout()
			if asHTML {
				fmt.Fprint(out, rep.HTML())
			} else {
				fmt.Fprint(out, rep.Markdown())
			}

			if forms {
				docs, err := c.Service.Documents(cmd.Context(), preview.Cleaned, form.FieldConfig{})
				if err != nil {
					return err
				}
				for _, doc := range docs {
					fmt.Fprintf(out, "\n---\n\n%s", report.DocumentMarkdown(doc))
				}
			}

			if writeConfig != "" {
				file := fieldconfig.New(filepath.Base(args[0]), opts.Cutoff, preview.Scan.LargeDropdowns, nil)
				if err := fieldconfig.Save(writeConfig, file); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Field configuration written to %s\n", writeConfig)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&writeConfig, "write-config", "", "Write the large dropdowns to a YAML field configuration file")
	cmd.Flags().BoolVar(&forms, "forms", false, "Also print every form as markdown")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the report as HTML")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var outDir string
	var fieldConfigPath string
	var showAll []string
	var all bool
	var interactive bool
	var format string
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "generate <export.xlsx>",
		Short: "Generate one document per form and a zip of all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := container.RendererFor(format)
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			c, err := build(cmd, container.WithRenderer(renderer))
			if err != nil {
				return err
			}
			raw, err := readWorkbook(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			preview, err := c.Service.Preview(ctx, raw)
			if err != nil {
				return err
			}
			large := preview.Scan.LargeDropdowns

			cfg := form.ToggleAll(large, all)
			if fieldConfigPath != "" {
				file, err := fieldconfig.Load(fieldConfigPath)
				if err != nil {
					return err
				}
				for id, on := range file.FieldConfig() {
					cfg[id] = on
				}
			}
			for _, id := range showAll {
				cfg[strings.TrimSpace(id)] = true
			}
			if interactive && len(large) > 0 {
				cfg, err = chooseFields(large, cfg, c.Service.Options().Cutoff)
				if err != nil {
					return err
				}
			}

			docs, err := c.Service.Generate(ctx, preview.Cleaned, cfg.Restrict(large))
			if err != nil {
				return err
			}

			files := docs[:len(docs):len(docs)]
			if !noArchive {
				name, data, err := c.Service.Bundle(docs, "")
				if err != nil {
					return err
				}
				files = append(files, form.GeneratedDocument{Filename: name, Content: data})
			}
			if err := archive.WriteDir(outDir, files); err != nil {
				return errors.ProcessingError("writing output", err)
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, filepath.Join(outDir, f.Filename))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringVar(&fieldConfigPath, "field-config", "", "YAML field configuration written by preview --write-config")
	cmd.Flags().StringSliceVar(&showAll, "show-all", nil, "Field ids whose options are all listed")
	cmd.Flags().BoolVar(&all, "all", false, "List the options of every large dropdown")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose the large dropdowns to list in a prompt")
	cmd.Flags().StringVar(&format, "format", "docx", "Output format: docx or md")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not write the zip archive")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload and download pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd)
			if err != nil {
				return err
			}
			server, err := c.HTTPServer()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), c.Config.Address())
		},
	}
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the export tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := build(cmd)
			if err != nil {
				return err
			}
			server, err := c.MCPServer()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}
}

func newSampleCmd() *cobra.Command {
	var output string
	genConfig := testkit.DefaultExportConfig()

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic form/field export for trying the tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := testkit.NewExportGenerator(genConfig).Workbook()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample export with %d forms written to %s\n", genConfig.Forms, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "sample_export.xlsx", "Output workbook")
	cmd.Flags().IntVar(&genConfig.Forms, "forms", genConfig.Forms, "Number of forms")
	cmd.Flags().IntVar(&genConfig.SectionsPerForm, "sections", genConfig.SectionsPerForm, "Sections per form")
	cmd.Flags().IntVar(&genConfig.FieldsPerSection, "fields", genConfig.FieldsPerSection, "Fields per section")
	cmd.Flags().BoolVar(&genConfig.WithMarker, "marker", genConfig.WithMarker, "Append the species list after the forms")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed")
	return cmd
}
