// Command otdoc renders a work-order record and its photo evidence into the
// corporate PDF document.
//
// # Installation
//
//	go install github.com/sasamuel24/otdoc/cmd/otdoc@latest
//
// # Usage
//
//	otdoc render --record ot-1950.json \
//	    --request-image solicitud.jpg \
//	    --attachment antes.jpg --attachment despues.jpg \
//	    --tech-signature firma-tecnico.png \
//	    --out OT-1950.pdf
//
// The record file is a JSON object with the work-order fields (folio, title,
// state, ...). PDF conversion requires LibreOffice (soffice) on PATH, or
// desktop Excel on Windows.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	otdoc "github.com/sasamuel24/otdoc"
	"github.com/sasamuel24/otdoc/compose"
	"github.com/sasamuel24/otdoc/doctpl"
	"github.com/sasamuel24/otdoc/export"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "otdoc",
		Short:         "Work-order document generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd())
	return root
}

type renderFlags struct {
	recordPath      string
	requestImage    string
	attachments     []string
	techSignature   string
	clientSignature string
	techName        string
	clientName      string
	out             string
	timeout         time.Duration
	maxImages       int
	keepXLSX        bool
	verbose         bool
}

func newRenderCmd() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compose a work order and export it to PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.recordPath, "record", "", "path to the work-order record JSON (required)")
	cmd.Flags().StringVar(&flags.requestImage, "request-image", "", "path to the original request photo")
	cmd.Flags().StringArrayVar(&flags.attachments, "attachment", nil, "path to an evidence photo (repeatable)")
	cmd.Flags().StringVar(&flags.techSignature, "tech-signature", "", "path to the technician signature image")
	cmd.Flags().StringVar(&flags.clientSignature, "client-signature", "", "path to the client signature image")
	cmd.Flags().StringVar(&flags.techName, "tech-name", "", "technician signature name (defaults to the record's technician)")
	cmd.Flags().StringVar(&flags.clientName, "client-name", "", "client signature name (defaults to the record's requester)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output PDF path (defaults to OT-<folio>.pdf)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 60*time.Second, "converter timeout")
	cmd.Flags().IntVar(&flags.maxImages, "max-images", 3, "attachments laid out visually; the rest are listed as text")
	cmd.Flags().BoolVar(&flags.keepXLSX, "keep-xlsx", false, "also write the intermediate workbook next to the PDF")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	cobra.CheckErr(cmd.MarkFlagRequired("record"))
	return cmd
}

func runRender(ctx context.Context, flags renderFlags) error {
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	record, err := loadRecord(flags.recordPath)
	if err != nil {
		return err
	}

	input, err := loadInput(record, flags)
	if err != nil {
		return err
	}

	schema, err := doctpl.Load()
	if err != nil {
		return err
	}
	opts := []otdoc.Option{
		otdoc.WithLogger(log),
		otdoc.WithExportTimeout(flags.timeout),
		otdoc.WithMaxAttachmentImages(flags.maxImages),
	}
	composer, err := compose.New(schema, opts...)
	if err != nil {
		return err
	}

	doc, err := composer.Compose(ctx, input)
	if err != nil {
		return err
	}
	defer doc.Close()

	workbook, err := doc.Bytes()
	if err != nil {
		return err
	}

	out := flags.out
	if out == "" {
		out = fmt.Sprintf("OT-%s.pdf", record.Folio)
	}
	if flags.keepXLSX {
		xlsxPath := out[:len(out)-len(filepath.Ext(out))] + ".xlsx"
		if err := os.WriteFile(xlsxPath, workbook, 0o644); err != nil {
			return err
		}
		log.Info("workbook written", zap.String("path", xlsxPath))
	}

	pdf, err := export.New(opts...).Export(ctx, workbook)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return err
	}
	log.Info("work order rendered",
		zap.String("folio", record.Folio),
		zap.String("path", out),
		zap.Int("bytes", len(pdf)))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func loadRecord(path string) (otdoc.WorkOrderRecord, error) {
	var record otdoc.WorkOrderRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("reading record: %w", err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return record, nil
}

func loadInput(record otdoc.WorkOrderRecord, flags renderFlags) (compose.Input, error) {
	input := compose.Input{Record: record}

	if flags.requestImage != "" {
		att, err := loadAttachment(flags.requestImage)
		if err != nil {
			return input, err
		}
		input.RequestImage = &att
	}
	for _, path := range flags.attachments {
		att, err := loadAttachment(path)
		if err != nil {
			return input, err
		}
		input.Attachments = append(input.Attachments, att)
	}

	input.Signatures = otdoc.SignatureData{
		TechnicianName: flags.techName,
		ClientName:     flags.clientName,
	}
	if input.Signatures.TechnicianName == "" {
		input.Signatures.TechnicianName = record.Technician
	}
	if input.Signatures.ClientName == "" {
		input.Signatures.ClientName = record.Requester
	}
	if flags.techSignature != "" {
		data, err := os.ReadFile(flags.techSignature)
		if err != nil {
			return input, fmt.Errorf("reading technician signature: %w", err)
		}
		input.Signatures.TechnicianImage = data
	}
	if flags.clientSignature != "" {
		data, err := os.ReadFile(flags.clientSignature)
		if err != nil {
			return input, fmt.Errorf("reading client signature: %w", err)
		}
		input.Signatures.ClientImage = data
	}
	return input, nil
}

func loadAttachment(path string) (otdoc.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return otdoc.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}
	return otdoc.Attachment{Filename: filepath.Base(path), Data: data}, nil
}
