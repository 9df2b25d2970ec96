package main

import (
	"fmt"
	"os"

	"github.com/joshua-takyi/eventsadmin/internal/export"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportFormat   string
	exportStatuses []string
	exportOut      string
	s3Bucket       string
	s3Key          string
	s3Region       string
	s3Endpoint     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as JSONL or iCalendar to stdout, a file or S3",
	Example: `  eventsctl export --status imported --out events.jsonl
  eventsctl export --format ics --status imported --out imported.ics
  eventsctl export --s3-bucket backups --s3-key events/latest.jsonl --s3-region ap-southeast-2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		statuses, err := parseStatuses(exportStatuses)
		if err != nil {
			return err
		}

		var dest export.Destination
		switch {
		case s3Bucket != "":
			d, err := export.NewS3Destination(cmd.Context(), s3Bucket, s3Key, s3Region, s3Endpoint)
			if err != nil {
				return err
			}
			d.ContentType = format.ContentType()
			dest = d
		case exportOut != "":
			dest = export.FileDestination{Path: exportOut}
		default:
			dest = export.WriterDestination{W: cmd.OutOrStdout()}
		}

		n, err := export.Run(cmd.Context(), repo, dest, format, statuses)
		if err != nil {
			return err
		}
		if s3Bucket != "" || exportOut != "" {
			fmt.Fprintf(os.Stderr, "exported %d bytes\n", n)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatJSONL), "output format: jsonl or ics")
	exportCmd.Flags().StringSliceVar(&exportStatuses, "status", nil, "only export events with these statuses (repeatable)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
	exportCmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "upload to this S3 bucket")
	exportCmd.Flags().StringVar(&s3Key, "s3-key", "", "object key for the S3 upload")
	exportCmd.Flags().StringVar(&s3Region, "s3-region", os.Getenv("AWS_REGION"), "S3 region")
	exportCmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom S3 endpoint (MinIO and similar)")
}

func parseStatuses(raw []string) ([]models.EventStatus, error) {
	out := make([]models.EventStatus, 0, len(raw))
	for _, r := range raw {
		s, err := models.ParseEventStatus(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
