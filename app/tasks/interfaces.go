package tasks

import (
	"context"
	"iter"
	"net/url"

	"github.com/lysyi3m/wiki-api-connector/app/mapper"
	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
	"github.com/lysyi3m/wiki-api-connector/app/upload"
)

// Walker yields identifiers from a search listing.
// Implemented by *search.Walker.
type Walker interface {
	Walk(ctx context.Context, seed string) iter.Seq2[string, error]
}

// RecordMapper maps identifiers to upload records and claims.
// Implemented by *mapper.Mapper.
type RecordMapper interface {
	Map(ctx context.Context, u *unit.Unit, identifier string) ([]records.Record, error)
	Claims(ctx context.Context, u *unit.Unit, identifier string) ([]mapper.Claim, error)
}

// RecordUploader handles one upload record.
// Implemented by *upload.Uploader.
type RecordUploader interface {
	Process(ctx context.Context, rec records.Record) upload.Result
}

// ClaimSubmitter posts claim forms to the destination.
// Implemented by *commons.Client.
type ClaimSubmitter interface {
	CSRFToken(ctx context.Context) (string, error)
	ExistingProperties(ctx context.Context, mediaID string) (map[string]bool, error)
	PostForm(ctx context.Context, form url.Values) error
}
