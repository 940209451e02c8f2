package api

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the page.
// Line endings are normalised so CRLF and LF copies hash alike.
func (p PageText) Hash() string {
	h := blake3.New()

	h.Write([]byte(p.Project))
	h.Write([]byte{0})

	h.Write([]byte(p.Title))
	h.Write([]byte{0})

	h.Write([]byte(strings.ReplaceAll(p.Text, "\r\n", "\n")))

	return hex.EncodeToString(h.Sum(nil))
}
