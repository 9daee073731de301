// Package globalid converts between stored UUIDs and the opaque ids exposed to
// clients. A global id is base64("Kind:uuid"); a bare UUID is also accepted.
package globalid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	KindCustomer = "Customer"
	KindProduct  = "Product"
	KindOrder    = "Order"
)

var ErrMalformed = errors.New("malformed id")

func Encode(kind string, id uuid.UUID) string {
	return base64.StdEncoding.EncodeToString([]byte(kind + ":" + id.String()))
}

// Decode resolves raw to a UUID of the given kind. An id encoded for a
// different kind is rejected.
func Decode(kind, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
		}
	}
	gotKind, rest, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	if kind != "" && gotKind != kind {
		return uuid.Nil, fmt.Errorf("%w: expected %s id, got %s", ErrMalformed, kind, gotKind)
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	return id, nil
}

func DecodeAll(kind string, raws []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raws))
	for _, raw := range raws {
		id, err := Decode(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
