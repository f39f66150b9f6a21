package vault

import (
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Thumbnail box used by the vault grid.
const (
	ThumbWidth  = 320
	ThumbHeight = 160
)

// Thumbnail decodes an image from r and writes a center-cropped JPEG of
// ThumbWidth x ThumbHeight to w.
func Thumbnail(r io.Reader, w io.Writer) error {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	thumb := imaging.Fill(img, ThumbWidth, ThumbHeight, imaging.Center, imaging.Lanczos)
	return imaging.Encode(w, thumb, imaging.JPEG, imaging.JPEGQuality(80))
}
