package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/service"
	"github.com/smallbiznis/paws/internal/providers/pdf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Provision and inspect invitation codes",
}

var generateOpts struct {
	count  int
	length int
	output string
	dryRun bool
}

var codesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of unused invitation codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), cmd.OutOrStdout(), openStore)
	},
}

// runGenerate only opens the store for real batches; a dry run draws codes
// without a database.
func runGenerate(ctx context.Context, stdout io.Writer, open func() (*gorm.DB, func(), error)) error {
	var conn *gorm.DB
	if !generateOpts.dryRun {
		c, closeFn, err := open()
		if err != nil {
			return err
		}
		defer closeFn()
		conn = c
	}

	provisioner, err := newProvisioner(conn)
	if err != nil {
		return err
	}

	result, err := provisioner.Generate(ctx, domain.GenerateRequest{
		Count:  generateOpts.count,
		Length: generateOpts.length,
		DryRun: generateOpts.dryRun,
		Source: service.SourceCLI,
	})
	if err != nil {
		return err
	}

	if err := writeLines(stdout, generateOpts.output, result.Codes); err != nil {
		return err
	}
	log.Info("codes generated",
		zap.String("batch_id", result.BatchID),
		zap.Int("count", len(result.Codes)),
		zap.Bool("dry_run", result.DryRun),
	)
	return nil
}

var resetForce bool

var codesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Mark every invitation code unused again",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		provisioner, err := newProvisioner(conn)
		if err != nil {
			return err
		}

		n, err := provisioner.ResetAll(cmd.Context(), domain.ResetRequest{Force: resetForce})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d codes reset\n", n)
		return nil
	},
}

var listOpts struct {
	batchID string
	used    string
	limit   int
}

var codesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invitation codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := domain.ListCodesRequest{BatchID: listOpts.batchID, Limit: listOpts.limit}
		switch strings.ToLower(strings.TrimSpace(listOpts.used)) {
		case "":
		case "true", "yes":
			used := true
			req.Used = &used
		case "false", "no":
			used := false
			req.Used = &used
		default:
			return fmt.Errorf("--used must be true or false, got %q", listOpts.used)
		}

		conn, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		provisioner, err := newProvisioner(conn)
		if err != nil {
			return err
		}

		items, err := provisioner.List(cmd.Context(), req)
		if err != nil {
			return err
		}
		out := bufio.NewWriter(cmd.OutOrStdout())
		for _, item := range items {
			fmt.Fprintf(out, "%s\t%t\t%s\t%s\n", item.Code, item.Used, item.UsedBy, item.BatchID)
		}
		return out.Flush()
	},
}

var sheetOpts struct {
	batchID string
	output  string
}

var codesSheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Render unused invitation codes as a printable PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(sheetOpts.output) == "" {
			return errors.New("--output is required")
		}

		conn, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		provisioner, err := newProvisioner(conn)
		if err != nil {
			return err
		}

		return writeCodeSheet(cmd.Context(), provisioner, pdf.New(), sheetOpts.batchID, sheetOpts.output)
	},
}

func init() {
	codesGenerateCmd.Flags().IntVarP(&generateOpts.count, "count", "c", 0, "number of codes to generate")
	codesGenerateCmd.Flags().IntVarP(&generateOpts.length, "length", "l", 0, "code length (defaults to the enrollment policy)")
	codesGenerateCmd.Flags().StringVarP(&generateOpts.output, "output", "o", "", "write codes to this file instead of stdout")
	codesGenerateCmd.Flags().BoolVar(&generateOpts.dryRun, "dry", false, "generate without storing")
	_ = codesGenerateCmd.MarkFlagRequired("count")

	codesResetCmd.Flags().BoolVar(&resetForce, "force", false, "allow resetting in production")

	codesListCmd.Flags().StringVar(&listOpts.batchID, "batch", "", "only codes from this batch")
	codesListCmd.Flags().StringVar(&listOpts.used, "used", "", "filter by used state (true or false)")
	codesListCmd.Flags().IntVar(&listOpts.limit, "limit", 0, "maximum number of codes")

	codesSheetCmd.Flags().StringVar(&sheetOpts.batchID, "batch", "", "only codes from this batch")
	codesSheetCmd.Flags().StringVarP(&sheetOpts.output, "output", "o", "", "PDF file to write")

	codesCmd.AddCommand(codesGenerateCmd, codesResetCmd, codesListCmd, codesSheetCmd)
}

func writeCodeSheet(ctx context.Context, provisioner domain.Provisioner, renderer pdf.Provider, batchID, path string) error {
	unused := false
	items, err := provisioner.List(ctx, domain.ListCodesRequest{BatchID: batchID, Used: &unused})
	if err != nil {
		return err
	}
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code)
	}
	if len(codes) == 0 {
		return errors.New("no unused codes to export")
	}

	reader, err := renderer.GenerateCodeSheet(ctx, pdf.CodeSheet{
		StudyName:   cfg.AppName,
		BatchID:     batchID,
		GeneratedAt: time.Now().UTC(),
		Codes:       codes,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("code sheet written", zap.String("path", path), zap.Int("codes", len(codes)))
	return nil
}

// writeLines prints one code per line to path, or to stdout when path is empty.
func writeLines(stdout io.Writer, path string, lines []string) (err error) {
	w := stdout
	if strings.TrimSpace(path) != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		w = f
	}

	buf := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := fmt.Fprintln(buf, line); err != nil {
			return err
		}
	}
	return buf.Flush()
}
