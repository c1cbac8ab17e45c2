package unit

import (
	"fmt"
	"strings"
)

// Token is one component of a generated Commons filename.
type Token string

const (
	TokenTitle        Token = "title"
	TokenIdentifier   Token = "identifier"
	TokenBaseFilename Token = "basefilename"
)

var DefaultFilenameOrder = []Token{TokenTitle, TokenIdentifier, TokenBaseFilename}

// ParseFilenameOrder parses a comma separated token list such as
// "title, identifier, basefilename". An empty string yields the default order.
func ParseFilenameOrder(s string) ([]Token, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Token(nil), DefaultFilenameOrder...), nil
	}

	var order []Token
	seen := make(map[Token]bool)
	for _, part := range strings.Split(s, ",") {
		token := Token(strings.TrimSpace(part))
		switch token {
		case TokenTitle, TokenIdentifier, TokenBaseFilename:
		default:
			return nil, fmt.Errorf("%w: unknown token %q", ErrInvalidFilenameOrder, token)
		}
		if seen[token] {
			return nil, fmt.Errorf("%w: token %q repeated", ErrInvalidFilenameOrder, token)
		}
		seen[token] = true
		order = append(order, token)
	}
	return order, nil
}
