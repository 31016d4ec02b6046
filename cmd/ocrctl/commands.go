package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/auth"
	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/engine"
	"github.com/xiltepin/InsuranceAIPOCs/internal/extract"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
	"github.com/xiltepin/InsuranceAIPOCs/internal/recovery"
	"github.com/xiltepin/InsuranceAIPOCs/internal/service"
)

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	fields bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ocrctl",
		Short:         "Insurance policy OCR toolkit",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			// Logs go to stderr so stdout stays machine-readable.
			cfg.Log.Format = "console"
			if !cmd.Flags().Changed("verbose") {
				cfg.Log.Level = "warn"
			}
			a.cfg = cfg
			a.log = logger.NewTo(cfg.Log, os.Stderr)
			return nil
		},
	}
	root.PersistentFlags().Bool("verbose", false, "log pipeline progress to stderr")
	root.PersistentFlags().BoolVar(&a.fields, "fields-only", false, "print only the extracted field set")

	root.AddCommand(a.imageCmd(), a.textCmd(), a.tokenCmd())
	return root
}

func (a *app) ocrService() service.OCRService {
	eng := engine.NewProcessEngine(a.cfg.Engine, a.log)
	return service.NewOCRService(eng, recovery.DefaultChain(a.log), extract.NewEngine(a.log), a.log)
}

func (a *app) imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <path>",
		Short: "Run the recognition engine on an image and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.ocrService().Recognize(cmd.Context(), domain.RecognitionRequest{
				SourceKind: domain.SourceImage,
				ImagePath:  args[0],
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) textCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text [file|-]",
		Short: "Extract fields from already-transcribed text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening text file: %w", err)
				}
				defer f.Close()
				r = f
			}
			text, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("reading text: %w", err)
			}

			res, err := a.ocrService().Recognize(cmd.Context(), domain.RecognitionRequest{
				SourceKind: domain.SourceRawText,
				RawText:    string(text),
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a service token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, err := auth.NewIssuer(&a.cfg.Auth).Issue(subject, ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tok)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. the calling service")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from POLICYOCR_AUTH_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (a *app) print(w io.Writer, res *domain.RecognitionResult) error {
	if a.fields {
		return writeJSON(w, res.Fields)
	}
	return writeJSON(w, res)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
