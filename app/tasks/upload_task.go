package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/upload"
)

// UploadTask runs every CSV record through the uploader, one at a time.
type UploadTask struct {
	Task
	reader   *records.Reader
	uploader RecordUploader

	Stats upload.Stats
}

func NewUploadTask(in io.Reader, uploader RecordUploader) *UploadTask {
	return &UploadTask{
		Task:     NewTask(TaskTypeUpload, ""),
		reader:   records.NewReader(in),
		uploader: uploader,
		Stats:    upload.Stats{},
	}
}

func (t *UploadTask) Execute(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			slog.Warn("Upload interrupted", "processed", t.Stats.Total())
			break
		}

		rec, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		result := t.uploader.Process(ctx, rec)
		t.Stats.Add(result)
		logResult(rec, result)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration(),
		"total", t.Stats.Total(),
		"uploaded", t.Stats[upload.OutcomeUploaded],
		"duplicates", t.Stats[upload.OutcomeSkippedDuplicate],
		"invalid", t.Stats[upload.OutcomeSkippedInvalid],
		"download_failed", t.Stats[upload.OutcomeDownloadFailed],
		"upload_failed", t.Stats[upload.OutcomeUploadFailed])

	return ctx.Err()
}

func logResult(rec records.Record, r upload.Result) {
	attrs := []any{
		"identifier", rec.RecordID,
		"filename", rec.CommonsFilename,
		"outcome", string(r.Outcome),
	}
	if r.SHA1 != "" {
		attrs = append(attrs, "sha1", r.SHA1)
	}

	switch r.Outcome {
	case upload.OutcomeUploaded:
		slog.Info("File uploaded", attrs...)
	case upload.OutcomeSkippedDuplicate:
		slog.Info("File already exists", append(attrs, "existing", r.Existing)...)
	case upload.OutcomeSkippedInvalid, upload.OutcomeDownloadFailed:
		slog.Warn("Record skipped", append(attrs, "url", rec.SourceImageURL, "error", r.Err)...)
	default:
		slog.Error("Upload failed", append(attrs, "error", r.Err)...)
	}
}
