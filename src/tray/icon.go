package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"runtime"

	"github.com/fogleman/gg"
)

const iconSize = 32

// renderIconPNG draws the tray glyph: a dashed selection frame with a
// highlighter stroke across it.
func renderIconPNG() ([]byte, error) {
	dc := gg.NewContext(iconSize, iconSize)

	dc.DrawRoundedRectangle(1, 1, iconSize-2, iconSize-2, 6)
	dc.SetRGB255(32, 32, 32)
	dc.Fill()

	dc.SetRGB255(0, 255, 0)
	dc.SetLineWidth(2)
	dc.SetDash(4, 2)
	dc.DrawRectangle(6, 6, 20, 16)
	dc.Stroke()
	dc.SetDash()

	dc.SetRGBA255(255, 255, 25, 230)
	dc.DrawRectangle(9, 20, 16, 6)
	dc.Fill()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("tray: encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapICO packs a PNG into a single-image ICO container, which the Windows
// notification area requires.
func wrapICO(png []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, le, [2]uint16{1, 32})
	_ = binary.Write(&buf, le, [2]uint32{uint32(len(png)), 22})
	buf.Write(png)
	return buf.Bytes()
}

// iconBytes returns the icon in the format systray expects on this platform.
func iconBytes() ([]byte, error) {
	png, err := renderIconPNG()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "windows" {
		return wrapICO(png, iconSize), nil
	}
	return png, nil
}
