package services

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	return writeFile(t, dir, name, encodeJPEG(t, gradient(64, 48)))
}

// writeExifJPEG writes a JPEG whose APP1 segment carries the given camera
// model plus ExposureTime 1/250, FNumber 2.8, ISO 100 and FocalLength 50.
func writeExifJPEG(t *testing.T, dir, name, model string) string {
	t.Helper()
	return writeFile(t, dir, name, wrapExif(t, buildTIFF(model)))
}

// writeModelOnlyJPEG writes a JPEG whose EXIF block carries only a camera
// model.
func writeModelOnlyJPEG(t *testing.T, dir, name, model string) string {
	t.Helper()
	return writeFile(t, dir, name, wrapExif(t, buildModelTIFF(model)))
}

func wrapExif(t *testing.T, tiff []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint16(2+6+len(tiff))))
	buf.WriteString("Exif\x00\x00")
	buf.Write(tiff)
	buf.Write(encodeJPEG(t, gradient(64, 48))[2:])
	return buf.Bytes()
}

func buildModelTIFF(model string) []byte {
	le := binary.LittleEndian
	modelBytes := append([]byte(model), 0)

	const ifd0 = 8
	modelOff := ifd0 + 2 + 12 + 4
	out := make([]byte, modelOff+len(modelBytes))
	copy(out, "II")
	le.PutUint16(out[2:], 42)
	le.PutUint32(out[4:], ifd0)

	le.PutUint16(out[ifd0:], 1)
	le.PutUint16(out[ifd0+2:], 0x0110)
	le.PutUint16(out[ifd0+4:], 2)
	le.PutUint32(out[ifd0+6:], uint32(len(modelBytes)))
	le.PutUint32(out[ifd0+10:], uint32(modelOff))
	copy(out[modelOff:], modelBytes)
	return out
}

func buildTIFF(model string) []byte {
	le := binary.LittleEndian
	modelBytes := append([]byte(model), 0)

	const ifd0 = 8
	modelOff := ifd0 + 2 + 2*12 + 4
	exifOff := modelOff + len(modelBytes)
	if exifOff%2 == 1 {
		exifOff++
	}
	ratOff := exifOff + 2 + 4*12 + 4

	out := make([]byte, ratOff+3*8)
	copy(out, "II")
	le.PutUint16(out[2:], 42)
	le.PutUint32(out[4:], ifd0)

	entry := func(at int, tag, typ uint16, count, value uint32) {
		le.PutUint16(out[at:], tag)
		le.PutUint16(out[at+2:], typ)
		le.PutUint32(out[at+4:], count)
		le.PutUint32(out[at+8:], value)
	}

	le.PutUint16(out[ifd0:], 2)
	entry(ifd0+2, 0x0110, 2, uint32(len(modelBytes)), uint32(modelOff))
	entry(ifd0+14, 0x8769, 4, 1, uint32(exifOff))
	copy(out[modelOff:], modelBytes)

	le.PutUint16(out[exifOff:], 4)
	entry(exifOff+2, 0x829A, 5, 1, uint32(ratOff))
	entry(exifOff+14, 0x829D, 5, 1, uint32(ratOff+8))
	entry(exifOff+26, 0x8827, 3, 1, 100)
	entry(exifOff+38, 0x920A, 5, 1, uint32(ratOff+16))

	for i, r := range [][2]uint32{{1, 250}, {28, 10}, {50, 1}} {
		le.PutUint32(out[ratOff+i*8:], r[0])
		le.PutUint32(out[ratOff+i*8+4:], r[1])
	}
	return out
}

func writeAlphaPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: uint8(x * 6)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return writeFile(t, dir, name, buf.Bytes())
}

func writePalettePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 32, 32), palette.Plan9)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%len(palette.Plan9)))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return writeFile(t, dir, name, buf.Bytes())
}

func writeCorrupt(t *testing.T, dir, name string) string {
	t.Helper()
	return writeFile(t, dir, name, []byte("definitely not an image"))
}
