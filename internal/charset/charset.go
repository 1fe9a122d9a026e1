// Package charset resolves source encoding names and decodes byte content
// into UTF-8 strictly: input that is not valid in the declared encoding is
// rejected instead of being silently replaced.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sentinel errors for name resolution and decoding.
var (
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrMalformed       = errors.New("malformed input")
)

// Common names that neither the IANA nor the WHATWG index know, mapped to a
// label one of them does.
var aliases = map[string]string{
	"cp949":  "windows-949",
	"ms949":  "windows-949",
	"uhc":    "windows-949",
	"cp932":  "windows-31j",
	"ms932":  "windows-31j",
	"sjis":   "shift_jis",
	"cp936":  "gbk",
	"ms936":  "gbk",
	"cp950":  "big5",
	"ms950":  "big5",
	"utf8":   "utf-8",
	"eucjp":  "euc-jp",
	"euckr":  "euc-kr",
	"latin1": "iso-8859-1",
}

var replacement = []byte(string(utf8.RuneError))

// Decoder converts content from one source encoding to UTF-8. A Decoder is
// immutable and safe for concurrent use; every call builds its own
// transformer.
type Decoder struct {
	name string
	enc  encoding.Encoding
	utf8 bool
}

// Lookup resolves name (case-insensitive) through the alias table, the IANA
// registry, and the WHATWG encoding index, in that order.
func Lookup(name string) (*Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownEncoding)
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(key)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
	}

	canonical := canonicalName(enc)
	if canonical == "" {
		canonical = strings.ToUpper(key)
	}
	return &Decoder{
		name: canonical,
		enc:  enc,
		utf8: strings.EqualFold(canonical, "UTF-8"),
	}, nil
}

// canonicalName returns the preferred MIME name of enc, falling back to its
// IANA registry name and then its WHATWG name.
func canonicalName(enc encoding.Encoding) string {
	if n, err := ianaindex.MIME.Name(enc); err == nil && n != "" {
		return n
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil && n != "" {
		return n
	}
	if n, err := htmlindex.Name(enc); err == nil {
		return n
	}
	return ""
}

// Name returns the canonical name of the source encoding.
func (d *Decoder) Name() string { return d.name }

// IsUTF8 reports whether the source encoding already is UTF-8, in which case
// decoding only validates.
func (d *Decoder) IsUTF8() bool { return d.utf8 }

// Decode returns src re-encoded as UTF-8. It fails with [ErrMalformed] when
// src is not valid in the source encoding.
//
// The x/text decoders substitute U+FFFD for invalid sequences. When the
// output contains U+FFFD, the result is accepted only if encoding it back
// reproduces src exactly, which tells a genuine U+FFFD apart from a
// substituted one.
func (d *Decoder) Decode(src []byte) ([]byte, error) {
	if d.utf8 {
		if !utf8.Valid(src) {
			return nil, fmt.Errorf("%w: not valid %s", ErrMalformed, d.name)
		}
		return src, nil
	}

	out, _, err := transform.Bytes(d.enc.NewDecoder(), src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, d.name, err)
	}
	if bytes.Contains(out, replacement) && !d.roundTrips(src, out) {
		return nil, fmt.Errorf("%w: not valid %s", ErrMalformed, d.name)
	}
	return out, nil
}

func (d *Decoder) roundTrips(src, decoded []byte) bool {
	back, _, err := transform.Bytes(d.enc.NewEncoder(), decoded)
	if err != nil {
		return false
	}
	return bytes.Equal(back, src)
}

// supported lists every encoding x/text ships, grouped by package.
func supported() []encoding.Encoding {
	var encs []encoding.Encoding
	for _, group := range [][]encoding.Encoding{
		unicode.All,
		charmap.All,
		japanese.All,
		korean.All,
		simplifiedchinese.All,
		traditionalchinese.All,
	} {
		encs = append(encs, group...)
	}
	return encs
}

// Names returns the sorted canonical names of every supported source
// encoding, as accepted by [Lookup].
func Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, enc := range supported() {
		n := canonicalName(enc)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
