package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lysyi3m/wiki-api-connector/app/commons"
	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

type OutputFormat string

const (
	FormatCSV         OutputFormat = "csv"
	FormatURL2Commons OutputFormat = "url2commons"
)

type GenerateOptions struct {
	Format OutputFormat
	// AutoRun adds run=1 to url2commons links.
	AutoRun bool
}

// GenerateTask maps identifiers to upload records and writes them as CSV or
// url2commons links. Identifiers that fail are logged and skipped.
type GenerateTask struct {
	Task
	unit        *unit.Unit
	identifiers []string
	mapper      RecordMapper
	out         io.Writer
	opts        GenerateOptions

	Records int
	NoData  int
	Failed  int
}

func NewGenerateTask(u *unit.Unit, identifiers []string, mapper RecordMapper, out io.Writer, opts GenerateOptions) *GenerateTask {
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	return &GenerateTask{
		Task:        NewTask(TaskTypeGenerate, u.Name),
		unit:        u,
		identifiers: identifiers,
		mapper:      mapper,
		out:         out,
		opts:        opts,
	}
}

func (t *GenerateTask) Execute(ctx context.Context) error {
	emit, flush, err := t.emitter()
	if err != nil {
		return err
	}

	for _, id := range t.identifiers {
		if err := ctx.Err(); err != nil {
			slog.Warn("Generate interrupted", "unit", t.UnitName, "identifier", id)
			break
		}

		recs, err := t.mapper.Map(ctx, t.unit, id)
		if err != nil {
			slog.Error("Failed to map identifier", "unit", t.UnitName, "identifier", id, "error", err)
			t.Failed++
			continue
		}
		if len(recs) == 0 {
			t.NoData++
			continue
		}

		for _, rec := range recs {
			if err := emit(rec); err != nil {
				return err
			}
			t.Records++
		}
	}

	if err := flush(); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"unit", t.UnitName,
		"format", string(t.opts.Format),
		"duration", t.GetDuration(),
		"identifiers", len(t.identifiers),
		"records", t.Records,
		"no_data", t.NoData,
		"failed", t.Failed)

	return ctx.Err()
}

func (t *GenerateTask) emitter() (emit func(records.Record) error, flush func() error, err error) {
	switch t.opts.Format {
	case FormatCSV:
		w := records.NewWriter(t.out)
		return w.Write, w.Flush, nil
	case FormatURL2Commons:
		w := bufio.NewWriter(t.out)
		emit = func(rec records.Record) error {
			link := commons.URL2CommonsCommand(rec.SourceImageURL, rec.Description, rec.CommonsFilename, t.opts.AutoRun)
			if link == "" {
				slog.Debug("No url2commons link for record", "identifier", rec.RecordID)
				return nil
			}
			_, err := fmt.Fprintln(w, link)
			return err
		}
		return emit, w.Flush, nil
	default:
		return nil, nil, fmt.Errorf("unknown output format %q", t.opts.Format)
	}
}
