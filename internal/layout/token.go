package layout

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/util"
)

// checksumLen is the number of sha256 bytes appended to a token.
const checksumLen = 6

// EncodeToken packs l into a short string of the form payload.checksum,
// both base64url without padding.
func EncodeToken(l grid.Layout) (string, error) {
	packed, err := msgpack.Marshal(&l)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(packed)
	return base64.RawURLEncoding.EncodeToString(packed) + "." +
		base64.RawURLEncoding.EncodeToString(sum[:checksumLen]), nil
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (grid.Layout, error) {
	var l grid.Layout

	parts := strings.SplitN(strings.TrimSpace(token), ".", 2)
	if len(parts) != 2 {
		return l, fmt.Errorf("%w: missing checksum", util.ErrBadToken)
	}
	packed, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return l, fmt.Errorf("%w: %v", util.ErrBadToken, err)
	}
	got, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return l, fmt.Errorf("%w: %v", util.ErrBadToken, err)
	}
	sum := sha256.Sum256(packed)
	if !bytes.Equal(got, sum[:checksumLen]) {
		return l, fmt.Errorf("%w: checksum mismatch", util.ErrBadToken)
	}
	if err := msgpack.Unmarshal(packed, &l); err != nil {
		return l, fmt.Errorf("%w: %v", util.ErrBadToken, err)
	}
	return l, nil
}
