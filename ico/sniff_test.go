package ico

import (
	"errors"
	"image"
	"testing"

	"WinIcoCodec/bmp"
	"WinIcoCodec/png"
)

func TestGetIconType(t *testing.T) {
	pngData, _ := png.Encode(newTestImage(4, 4))
	bmpData, _ := bmp.Encode(newTestImage(4, 4))
	tests := []struct {
		name string
		d    []byte
		want ICONTYPE
	}{
		{"png", pngData, TypePNG},
		{"bmp", bmpData, TypeBMP},
		{"dib", bmpData[bmp.FileHeaderSize:], TypeUKN},
		{"short bm", []byte("BM"), TypeUKN},
		{"empty", nil, TypeUKN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetIconType(tt.d); got != tt.want {
				t.Errorf("GetIconType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeImage(t *testing.T) {
	pngData, err := png.Encode(newTestImage(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	img, err := decodeImage(pngData)
	if err != nil {
		t.Fatalf("decodeImage(png) = %v", err)
	}
	if _, ok := img.(*PNGImage); !ok || img.Width() != 8 || img.Height() != 8 {
		t.Errorf("decodeImage(png) = %T %dx%d", img, img.Width(), img.Height())
	}

	gray := image.NewGray(image.Rect(0, 0, 8, 16))
	dib, err := bmp.EncodeDIB(gray)
	if err != nil {
		t.Fatal(err)
	}
	img, err = decodeImage(dib)
	if err != nil {
		t.Fatalf("decodeImage(dib) = %v", err)
	}
	bi, ok := img.(*BMPImage)
	if !ok {
		t.Fatalf("decodeImage(dib) = %T, want *BMPImage", img)
	}
	if bi.GenerateTransparencyMask() {
		t.Errorf("decoded bitmap must not generate a second mask")
	}
	if bi.Width() != 8 || bi.Height() != 8 || bi.BitsPerPixel() != 8 {
		t.Errorf("decodeImage(dib) = %dx%d@%d, want 8x8@8", bi.Width(), bi.Height(), bi.BitsPerPixel())
	}

	tests := []struct {
		name    string
		d       []byte
		wantErr error
	}{
		{"empty", nil, ErrShortPayload},
		{"seven bytes", pngData[:7], ErrShortPayload},
		{"truncated png", pngData[:20], ErrFormat},
		{"png without IEND", pngData[:len(pngData)-12], ErrFormat},
		{"garbage", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeImage(tt.d); !errors.Is(err, tt.wantErr) {
				t.Errorf("decodeImage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
