package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffWindow is how far into the stream the charset heuristics look.
// Supplier exports put their accented characters in the first rows, so a
// small window is enough.
const sniffWindow = 4096

// charmaps maps chardet charset names to their decoders. Anything not listed
// falls through to the Windows-1252 default, which is what desktop
// spreadsheet tools on this side of the world usually emit.
var charmaps = map[string]*charmap.Charmap{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
}

// UTF8Reader returns a reader that yields the input decoded to UTF-8,
// whatever the source charset was. Detection order: byte-order mark, valid
// UTF-8 passthrough, chardet heuristics, Windows-1252 fallback.
func UTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(sniffWindow)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sniffing input: %w", err)
	}

	if r, ok := bomReader(br, head); ok {
		return r, nil
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if best, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if best.Charset == "UTF-8" {
			return br, nil
		}

		if cm, ok := charmaps[best.Charset]; ok {
			return transform.NewReader(br, cm.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// bomReader handles inputs that announce their encoding with a byte-order
// mark. A UTF-8 BOM is stripped; UTF-16 is decoded in the marked byte order.
func bomReader(br *bufio.Reader, head []byte) (io.Reader, bool) {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		_, _ = br.Discard(3)
		return br, true
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), true
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), true
	}

	return nil, false
}
