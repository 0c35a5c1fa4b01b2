package sniffer

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

type MediaType string

const (
	TypeMP4  MediaType = "mp4"
	TypeMOV  MediaType = "mov"
	TypeWEBM MediaType = "webm"
	TypeMKV  MediaType = "mkv"
	TypeAVI  MediaType = "avi"

	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeSVG  MediaType = "svg"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	Kind Kind
	MIME string
}

// Extensions lists the file extensions a detected type may legitimately
// carry.
func (r Result) Extensions() []string {
	switch r.Type {
	case TypeJPEG:
		return []string{"jpg", "jpeg"}
	case TypeMP4:
		return []string{"mp4", "m4v"}
	case TypeMKV:
		return []string{"mkv", "webm"}
	}
	return []string{string(r.Type)}
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isISOBMFF(head):
		if bytes.Equal(head[8:12], []byte("qt  ")) {
			return Result{Type: TypeMOV, Kind: KindVideo, MIME: "video/quicktime"}, nil
		}
		return Result{Type: TypeMP4, Kind: KindVideo, MIME: "video/mp4"}, nil
	case isEBML(head):
		if bytes.Contains(head, []byte("webm")) {
			return Result{Type: TypeWEBM, Kind: KindVideo, MIME: "video/webm"}, nil
		}
		return Result{Type: TypeMKV, Kind: KindVideo, MIME: "video/x-matroska"}, nil
	case isRIFF(head, "AVI "):
		return Result{Type: TypeAVI, Kind: KindVideo, MIME: "video/x-msvideo"}, nil
	case isJPEG(head):
		return Result{Type: TypeJPEG, Kind: KindImage, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, Kind: KindImage, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, Kind: KindImage, MIME: "image/gif"}, nil
	case isRIFF(head, "WEBP"):
		return Result{Type: TypeWEBP, Kind: KindImage, MIME: "image/webp"}, nil
	case isSVG(head):
		return Result{Type: TypeSVG, Kind: KindImage, MIME: "image/svg+xml"}, nil
	}

	return Result{}, ErrUnknownType
}

func isISOBMFF(head []byte) bool {
	if len(head) < 12 || !bytes.Equal(head[4:8], []byte("ftyp")) {
		return false
	}
	// avif/heic share the container but are still images
	brand := string(head[8:12])
	return brand != "avif" && brand != "heic"
}

func isEBML(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte{0x1a, 0x45, 0xdf, 0xa3})
}

func isRIFF(head []byte, format string) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte(format))
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

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") || strings.HasPrefix(trimmed, "<?xml")
}
