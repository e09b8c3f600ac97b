package gui

import (
	"image"

	"screen-highlighter/src/compositor"
)

// Present writes what the user sees into dst: the desktop backdrop wherever
// the frame carries its key colour, and the frame blended over the backdrop
// at the frame's opacity everywhere else. All three images must share
// bounds.
func Present(dst *image.RGBA, f compositor.Frame, backdrop *image.RGBA) {
	b := dst.Bounds().Intersect(f.Image.Bounds()).Intersect(backdrop.Bounds())
	op := uint32(f.Opacity)
	k := f.Key

	for y := b.Min.Y; y < b.Max.Y; y++ {
		di := dst.PixOffset(b.Min.X, y)
		fi := f.Image.PixOffset(b.Min.X, y)
		bi := backdrop.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			fp := f.Image.Pix[fi : fi+4 : fi+4]
			bp := backdrop.Pix[bi : bi+4 : bi+4]
			dp := dst.Pix[di : di+4 : di+4]
			if fp[0] == k.R && fp[1] == k.G && fp[2] == k.B {
				copy(dp, bp)
			} else {
				dp[0] = blend(fp[0], bp[0], op)
				dp[1] = blend(fp[1], bp[1], op)
				dp[2] = blend(fp[2], bp[2], op)
				dp[3] = 0xff
			}
			di += 4
			fi += 4
			bi += 4
		}
	}
}

func blend(over, under uint8, op uint32) uint8 {
	return uint8((uint32(over)*op + uint32(under)*(255-op) + 127) / 255)
}

// rebase returns img with its bounds moved to the origin, copying only when
// the virtual screen does not already start there.
func rebase(img *image.RGBA) *image.RGBA {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	for y := 0; y < out.Bounds().Dy(); y++ {
		so := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+4*out.Bounds().Dx()], img.Pix[so:])
	}
	return out
}
