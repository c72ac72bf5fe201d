package invites

import (
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
)

// TokenValidity is how long an invite link can be used.
const TokenValidity = 7 * 24 * time.Hour

// Invite is the payload carried by an invite token.
type Invite struct {
	SupplierID   int    `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	EmailAddress string `json:"email_address"`
}

// Tokens signs invite payloads with the key shared with the supplier
// frontend. The salt namespaces tokens so they cannot be replayed as other
// signed values.
type Tokens struct {
	codec *securecookie.SecureCookie
	salt  string
}

func NewTokens(sharedKey, salt string) *Tokens {
	codec := securecookie.New([]byte(sharedKey), nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(TokenValidity.Seconds()))

	return &Tokens{codec: codec, salt: salt}
}

func (t *Tokens) Generate(invite Invite) (string, error) {
	token, err := t.codec.Encode(t.salt, invite)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite token: %w", err)
	}
	return token, nil
}

func (t *Tokens) Decode(token string) (*Invite, error) {
	invite := new(Invite)
	if err := t.codec.Decode(t.salt, token, invite); err != nil {
		return nil, fmt.Errorf("failed to decode invite token: %w", err)
	}
	return invite, nil
}
