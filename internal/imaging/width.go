package imaging

import (
	"fmt"
	"image"
	"os"

	// Screenshot decoders. The reference asset host serves webp; png and
	// jpeg cover alternate deployments.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// PixelWidth reads the pixel width from the image header at path without
// decoding the pixel data.
func PixelWidth(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("cannot decode image header %s: %w", path, err)
	}
	return cfg.Width, nil
}
