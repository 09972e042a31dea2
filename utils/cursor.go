package utils

import (
	"encoding/base64"
	"encoding/json"

	"github.com/regport/api-go/models"
)

// Opaque list cursor: the sort-key value of the last row plus its id as a
// tiebreaker, base64 over JSON. Clients treat it as a token.
type listCursor struct {
	Value string `json:"v"`
	ID    string `json:"id"`
}

func EncodeCursor(value, id string) string {
	b, _ := json.Marshal(listCursor{Value: value, ID: id})
	return base64.URLEncoding.EncodeToString(b)
}

func DecodeCursor(token string) (value, id string, err error) {
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", "", models.ErrValidation("malformed cursor")
	}
	var c listCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return "", "", models.ErrValidation("malformed cursor")
	}
	return c.Value, c.ID, nil
}
