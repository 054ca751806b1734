package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
)

// HeadSize is the number of leading bytes DetectHead needs.
const HeadSize = 512

var ErrUnsupportedType = errors.New("unsupported media type")

type Result struct {
	Type MediaType
	MIME string
}

// DetectHead identifies listing images from their magic bytes. Only JPEG and
// PNG are accepted.
func DetectHead(head []byte) (Result, error) {
	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	return Result{}, ErrUnsupportedType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

// MimeTypeFromHTTP returns the declared media type of a multipart part,
// normalising the common image/jpg misspelling.
func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "image/jpg" || contentType == "image/pjpeg" {
		return "image/jpeg"
	}
	return contentType
}

// Generic reports whether a declared type carries no information, as browsers
// send for unknown files.
func Generic(mime string) bool {
	return mime == "" || mime == "application/octet-stream"
}
