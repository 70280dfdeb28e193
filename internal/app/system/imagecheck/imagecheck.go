// Package imagecheck validates uploaded member artifacts before they
// reach storage. Checks run on raw bytes only; nothing here touches the
// network or disk.
package imagecheck

import (
	"bytes"
	"errors"

	"github.com/disintegration/imaging"
)

// MaxUploadBytes is the per-file upload cap (5 MiB).
const MaxUploadBytes = 5 << 20

// pngSignature is the fixed 8-byte header every PNG file starts with.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var (
	ErrTooLarge       = errors.New("file exceeds the 5 MB size limit")
	ErrNotPNG         = errors.New("file is not a PNG image")
	ErrNotTransparent = errors.New("signature image must have a transparent background")
	ErrInvalidImage   = errors.New("image could not be decoded")
)

// CheckPicture validates a profile picture upload. Pictures only need
// to fit the size cap; any format the browser produces is accepted.
func CheckPicture(data []byte) error {
	if len(data) > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}

// CheckSignature validates a signature upload: size cap, PNG header,
// then transparency. Checks run in that order and the first failure
// wins. An undecodable PNG fails closed with ErrInvalidImage.
func CheckSignature(data []byte) error {
	if len(data) > MaxUploadBytes {
		return ErrTooLarge
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return ErrNotPNG
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return ErrInvalidImage
	}

	// Clone always yields NRGBA, so every pixel carries an explicit
	// alpha byte regardless of the source PNG's color model.
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()

	// A signature passes when it uses more than one distinct alpha
	// value, or a single alpha value that is not fully opaque. A single
	// alpha of 255 means no transparency anywhere.
	seen := make(map[uint8]struct{}, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := nrgba.Pix[(y-bounds.Min.Y)*nrgba.Stride:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			alpha := row[(x-bounds.Min.X)*4+3]
			if _, ok := seen[alpha]; !ok {
				seen[alpha] = struct{}{}
				if len(seen) > 1 {
					return nil
				}
			}
		}
	}

	if len(seen) == 1 {
		for alpha := range seen {
			if alpha != 255 {
				return nil
			}
		}
	}
	return ErrNotTransparent
}
