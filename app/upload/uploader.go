// Package upload moves records to the destination repository, skipping files
// whose content is already there.
package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/lysyi3m/wiki-api-connector/app/commons"
	"github.com/lysyi3m/wiki-api-connector/app/records"
)

type Outcome string

const (
	OutcomeUploaded         Outcome = "uploaded"
	OutcomeSkippedDuplicate Outcome = "skipped-duplicate"
	OutcomeSkippedInvalid   Outcome = "skipped-invalid"
	OutcomeDownloadFailed   Outcome = "download-failed"
	OutcomeUploadFailed     Outcome = "upload-failed"
)

var ErrInvalidRecord = errors.New("invalid record")

// Repository is the destination: a content-hash index plus uploads.
type Repository interface {
	FindBySHA1(ctx context.Context, sha1 string) ([]string, error)
	Upload(ctx context.Context, req commons.UploadRequest) error
}

type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (string, error)
}

type Result struct {
	Outcome  Outcome
	SHA1     string
	FinalURL string
	Existing []string // destination files with the same content
	Err      error
}

type Uploader struct {
	repo       Repository
	downloader Downloader
	workDir    string
}

// New returns an Uploader staging downloads in workDir, or the system temp
// directory when workDir is empty.
func New(repo Repository, downloader Downloader, workDir string) *Uploader {
	return &Uploader{
		repo:       repo,
		downloader: downloader,
		workDir:    workDir,
	}
}

// Process handles one record end to end. Failures are reported in the
// result; the staged file is removed on every path.
func (u *Uploader) Process(ctx context.Context, rec records.Record) Result {
	if err := validate(rec); err != nil {
		return Result{Outcome: OutcomeSkippedInvalid, Err: err}
	}

	staged, err := os.CreateTemp(u.workDir, "wikiapi-*.download")
	if err != nil {
		return Result{Outcome: OutcomeDownloadFailed, Err: fmt.Errorf("failed to create staging file: %w", err)}
	}
	defer func() {
		staged.Close()
		if err := os.Remove(staged.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove staged file", "path", staged.Name(), "error", err)
		}
	}()

	hash := sha1.New()
	finalURL, err := u.downloader.Download(ctx, rec.SourceImageURL, io.MultiWriter(staged, hash))
	if err != nil {
		return Result{Outcome: OutcomeDownloadFailed, FinalURL: finalURL, Err: err}
	}
	sum := hex.EncodeToString(hash.Sum(nil))

	existing, err := u.repo.FindBySHA1(ctx, sum)
	if err != nil {
		return Result{Outcome: OutcomeUploadFailed, SHA1: sum, FinalURL: finalURL, Err: err}
	}
	if len(existing) > 0 {
		return Result{Outcome: OutcomeSkippedDuplicate, SHA1: sum, FinalURL: finalURL, Existing: existing}
	}

	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		return Result{Outcome: OutcomeUploadFailed, SHA1: sum, FinalURL: finalURL, Err: fmt.Errorf("failed to rewind staged file: %w", err)}
	}

	err = u.repo.Upload(ctx, commons.UploadRequest{
		Filename: rec.CommonsFilename,
		Text:     rec.Description,
		Comment:  rec.EditSummary,
		File:     staged,
	})
	if err != nil {
		return Result{Outcome: OutcomeUploadFailed, SHA1: sum, FinalURL: finalURL, Err: err}
	}

	return Result{Outcome: OutcomeUploaded, SHA1: sum, FinalURL: finalURL}
}

func validate(rec records.Record) error {
	if strings.TrimSpace(rec.SourceImageURL) == "" {
		return fmt.Errorf("%w: %s: no source image URL", ErrInvalidRecord, rec.RecordID)
	}
	parsed, err := url.Parse(rec.SourceImageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %s: malformed source image URL %q", ErrInvalidRecord, rec.RecordID, rec.SourceImageURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidRecord, rec.RecordID, parsed.Scheme)
	}
	if strings.TrimSpace(rec.CommonsFilename) == "" {
		return fmt.Errorf("%w: %s: no destination filename", ErrInvalidRecord, rec.RecordID)
	}
	return nil
}

// Stats counts results by outcome.
type Stats map[Outcome]int

func (s Stats) Add(r Result) {
	s[r.Outcome]++
}

func (s Stats) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}
