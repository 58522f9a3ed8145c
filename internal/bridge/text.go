package bridge

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts a fetched body to a string. A charset parameter on
// contentType wins; otherwise valid UTF-8 is used as is and anything else is
// transcoded from the detected encoding. Undecodable bytes become U+FFFD.
func DecodeText(body []byte, contentType string) string {
	body = bytes.TrimPrefix(body, utf8BOM)

	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if text, ok := transcode(body, label); ok {
				return text
			}
		}
	}

	if utf8.Valid(body) {
		return string(body)
	}

	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(body); err == nil && result != nil {
		if text, ok := transcode(body, strings.ToLower(result.Charset)); ok {
			return text
		}
	}
	return strings.ToValidUTF8(string(body), "�")
}

func transcode(body []byte, label string) (string, bool) {
	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return strings.ToValidUTF8(string(data), "�"), true
}
