package server

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Padded encodings come first, they are what clients are expected to send.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// decodeParam decodes a base64-encoded document of at most limit bytes.
func decodeParam(param string, limit int) (string, error) {
	if len(param) > base64.StdEncoding.EncodedLen(limit) {
		return "", errInputTooLarge
	}
	// Query decoding turns an unescaped '+' into a space, and spaces are
	// not part of any base64 alphabet.
	param = strings.Replace(param, " ", "+", -1)
	var (
		b   []byte
		err error
	)
	for _, enc := range encodings {
		if b, err = enc.DecodeString(param); err == nil {
			break
		}
	}
	if err != nil {
		return "", errors.Wrap(errInvalidEncoding, err.Error())
	}
	if len(b) > limit {
		return "", errInputTooLarge
	}
	if !utf8.Valid(b) {
		return "", errors.Wrap(errInvalidEncoding, "not UTF-8")
	}
	return string(b), nil
}
