// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagefield

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageValidator checks that the asset is a readable image within limits.
// Zero limits are not enforced.
type ImageValidator struct {
	MaxBytes int64
	MaxSide  int
}

func (v ImageValidator) Validate(a Asset) error {
	if v.MaxBytes > 0 && int64(len(a.Data)) > v.MaxBytes {
		return fmt.Errorf("image is %d bytes, limit is %d", len(a.Data), v.MaxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return fmt.Errorf("corrupt %s image: %w", a.Format, err)
	}
	if format != a.Format {
		return fmt.Errorf("image content is %s but signature says %s", format, a.Format)
	}

	if cfg.Width < 1 || cfg.Height < 1 {
		return fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if v.MaxSide > 0 && (cfg.Width > v.MaxSide || cfg.Height > v.MaxSide) {
		return fmt.Errorf("image is %dx%d, largest side allowed is %d", cfg.Width, cfg.Height, v.MaxSide)
	}
	return nil
}
