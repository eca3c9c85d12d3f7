package codegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Barcode layout in pixels.
const (
	ModuleWidth   = 2
	BarHeight     = 100
	QuietModules  = 10
	TopPadding    = 10
	CaptionGap    = 4
	BottomPadding = 8

	// QRSize is the edge length of the rendered QR image.
	QRSize = 256
)

// RenderBarcode draws a Code-128 symbol for productID with the identifier
// printed beneath it and returns the PNG bytes.
func RenderBarcode(productID string) ([]byte, error) {
	if productID == "" {
		return nil, ErrInvalidProductID
	}

	bc, err := code128.Encode(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProductID, err)
	}

	modules := bc.Bounds().Dx()
	scaled, err := barcode.Scale(bc, modules*ModuleWidth, BarHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	face := basicfont.Face7x13
	quiet := QuietModules * ModuleWidth
	barsWidth := scaled.Bounds().Dx()
	captionWidth := font.MeasureString(face, productID).Ceil()

	width := barsWidth + 2*quiet
	if captionWidth+2*quiet > width {
		width = captionWidth + 2*quiet
	}
	height := TopPadding + BarHeight + CaptionGap + face.Height + BottomPadding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	barsX := (width - barsWidth) / 2
	draw.Draw(img,
		image.Rect(barsX, TopPadding, barsX+barsWidth, TopPadding+BarHeight),
		scaled, scaled.Bounds().Min, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P((width-captionWidth)/2, TopPadding+BarHeight+CaptionGap+face.Ascent),
	}
	d.DrawString(productID)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode barcode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderQR encodes productID as a medium error-correction QR code.
func RenderQR(productID string) ([]byte, error) {
	if productID == "" {
		return nil, ErrInvalidProductID
	}

	data, err := qrcode.Encode(productID, qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return data, nil
}
