// Package records reads and writes the CSV interchange file between the
// generate and upload stages.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Record is one row of the upload CSV.
type Record struct {
	RecordID        string `json:"record_id"`
	SourceImageURL  string `json:"source_image_url"`
	CommonsFilename string `json:"commons_filename"`
	EditSummary     string `json:"edit_summary"`
	Description     string `json:"description"`
}

var Header = []string{"record_id", "source_image_url", "commons_filename", "edit_summary", "description"}

var ErrInvalidHeader = errors.New("invalid CSV header")

func (r Record) row() []string {
	return []string{r.RecordID, r.SourceImageURL, r.CommonsFilename, r.EditSummary, r.Description}
}

type Writer struct {
	w             *csv.Writer
	headerWritten bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends one record, writing the header first if needed. Records are
// written in call order and never deduplicated.
func (w *Writer) Write(r Record) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	if err := w.w.Write(r.row()); err != nil {
		return fmt.Errorf("failed to write record %s: %w", r.RecordID, err)
	}
	return nil
}

// Flush writes the header if no record was written and flushes buffered
// rows.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func (w *Writer) writeHeader() error {
	if w.headerWritten {
		return nil
	}
	if err := w.w.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	w.headerWritten = true
	return nil
}

// WriteAll writes the header and every record, then flushes.
func WriteAll(w io.Writer, recs []Record) error {
	cw := NewWriter(w)
	for _, r := range recs {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

type Reader struct {
	r          *csv.Reader
	headerRead bool
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	return &Reader{r: cr}
}

// Read returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Read() (Record, error) {
	if !r.headerRead {
		header, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: empty input", ErrInvalidHeader)
		}
		if err != nil {
			return Record{}, fmt.Errorf("failed to read CSV header: %w", err)
		}
		if !slices.Equal(header, Header) {
			return Record{}, fmt.Errorf("%w: got %v", ErrInvalidHeader, header)
		}
		r.headerRead = true
	}

	row, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to read CSV row: %w", err)
	}

	return Record{
		RecordID:        row[0],
		SourceImageURL:  row[1],
		CommonsFilename: row[2],
		EditSummary:     row[3],
		Description:     row[4],
	}, nil
}

// ReadAll reads every remaining record.
func ReadAll(r io.Reader) ([]Record, error) {
	cr := NewReader(r)
	var recs []Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
