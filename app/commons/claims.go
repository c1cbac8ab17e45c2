package commons

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lysyi3m/wiki-api-connector/app/mapper"
)

const (
	MissingMediaID = "MISSING_MID"
	MissingToken   = "MISSING_TOKEN"
)

// ClaimPostData builds one wbcreateclaim form per claim for the media file
// mediaID ("M" followed by the page id).
func ClaimPostData(claims []mapper.Claim, mediaID, token string) ([]url.Values, error) {
	if mediaID == "" {
		mediaID = MissingMediaID
	}
	if token == "" {
		token = MissingToken
	}

	forms := make([]url.Values, 0, len(claims))
	for _, claim := range claims {
		value, err := claimValue(claim)
		if err != nil {
			return nil, err
		}
		forms = append(forms, url.Values{
			"action":   {"wbcreateclaim"},
			"format":   {"json"},
			"entity":   {mediaID},
			"property": {claim.Property},
			"snaktype": {"value"},
			"value":    {value},
			"token":    {token},
			"bot":      {"1"},
			"summary":  {fmt.Sprintf("added %s via Wiki API connector", claim.Property)},
		})
	}
	return forms, nil
}

// claimValue encodes the snak value as JSON: a string, or an item reference
// for entity_type item.
func claimValue(claim mapper.Claim) (string, error) {
	var v any = claim.Value
	if claim.EntityType == "item" {
		id, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(claim.Value), "Q"))
		if err != nil {
			return "", fmt.Errorf("claim %s: %q is not an item id", claim.Property, claim.Value)
		}
		v = map[string]any{"entity-type": "item", "numeric-id": id}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("claim %s: %w", claim.Property, err)
	}
	return string(b), nil
}
