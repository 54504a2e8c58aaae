package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"solar-proposal-backend/internal/layout"
	"solar-proposal-backend/proposals/requests"
	"solar-proposal-backend/proposals/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "proposal-render",
		Short:         "Render solar commercial proposals to PDF without the API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newVariantsCommand())
	return rootCmd
}

type renderOptions struct {
	input        string
	output       string
	variant      string
	variantsFile string
	logo         string
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render --input proposal.json --output proposal.pdf",
		Short: "Render one proposal JSON file (API request shape) to a PDF file",
		Example: `  proposal-render render --input joao.json --output joao.pdf
  proposal-render render --input joao.json --output joao.pdf --variant corporate --logo logo.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "proposal JSON file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF file to write")
	cmd.Flags().StringVar(&opts.variant, "variant", layout.DefaultVariant, "layout variant")
	cmd.Flags().StringVar(&opts.variantsFile, "variants-file", "", "YAML file with extra variants")
	cmd.Flags().StringVar(&opts.logo, "logo", "", "logo image drawn on the cover")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newVariantsCommand() *cobra.Command {
	var variantsFile string

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the available layout variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := loadVariants(variantsFile)
			if err != nil {
				return err
			}
			for _, name := range layout.VariantNames(variants) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variantsFile, "variants-file", "", "YAML file with extra variants")
	return cmd
}

func loadVariants(path string) (map[string]layout.Variant, error) {
	if path == "" {
		return layout.BuiltinVariants(), nil
	}
	return layout.LoadVariantsFile(path)
}

func runRender(opts renderOptions, stdout io.Writer) error {
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var req requests.CreateProposalRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode %s: %w", opts.input, err)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		var verrs requests.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid proposal: %s", verrs.Error())
		}
		return err
	}

	proposal, err := req.ToModel("cli")
	if err != nil {
		return err
	}
	proposal.ID = uuid.New()

	variants, err := loadVariants(opts.variantsFile)
	if err != nil {
		return err
	}
	docs, err := services.NewDocumentService(services.DocumentOptions{
		Variants:       variants,
		DefaultVariant: layout.DefaultVariant,
		LogoPath:       opts.logo,
	})
	if err != nil {
		return err
	}

	pdf, err := docs.RenderBytes(context.Background(), proposal, opts.variant)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, pdf, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", opts.output, len(pdf))
	return nil
}
