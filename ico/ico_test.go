package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"reflect"
	"sort"
	"testing"

	"WinIcoCodec/bmp"
)

func mustPNG(t *testing.T, img image.Image) *PNGImage {
	t.Helper()
	p, err := NewPNGImage(img)
	if err != nil {
		t.Fatalf("NewPNGImage() = %v", err)
	}
	return p
}

func mustBMP(t *testing.T, img image.Image, generateMask bool) *BMPImage {
	t.Helper()
	b, err := NewBMPImage(img, generateMask)
	if err != nil {
		t.Fatalf("NewBMPImage() = %v", err)
	}
	return b
}

func saveBytes(t *testing.T, ic *Icon) []byte {
	t.Helper()
	m := &memFile{}
	if err := ic.Save(m); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	return m.buf
}

func TestIcon_Save(t *testing.T) {
	img := newTestImage(16, 16)
	ic := New()
	ic.Add(mustPNG(t, img), mustBMP(t, img, true))

	b := saveBytes(t, ic)
	if got := binary.LittleEndian.Uint16(b[0:2]); got != 0 {
		t.Errorf("reserved = %d, want 0", got)
	}
	if got := binary.LittleEndian.Uint16(b[2:4]); got != 1 {
		t.Errorf("type = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint16(b[4:6]); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if b[6] != 16 || b[7] != 16 {
		t.Errorf("first entry width/height = %d/%d, want 16/16", b[6], b[7])
	}

	entries, err := ReadDirectory(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("ReadDirectory() = %v", err)
	}
	if entries[0].ImageOffset != 38 {
		t.Errorf("first offset = %d, want 38", entries[0].ImageOffset)
	}
	for i, e := range entries {
		if e.ColorPlanes != 1 || e.Palette != 0 || e.ReservedB != 0 {
			t.Errorf("entry %d = %+v", i, e)
		}
		want, err := ic.Images[i].Data()
		if err != nil {
			t.Fatal(err)
		}
		got := b[e.ImageOffset : e.ImageOffset+e.ImageDataSize]
		if !bytes.Equal(got, want) {
			t.Errorf("entry %d payload does not match its declared offset/size", i)
		}
	}
	if entries[1].BitsPerPixel != 32 {
		t.Errorf("bmp entry bpp = %d, want 32", entries[1].BitsPerPixel)
	}
}

func TestIcon_Encode(t *testing.T) {
	ic := New()
	ic.Add(
		mustPNG(t, newTestImage(16, 16)),
		mustBMP(t, newTestImage(32, 32), true),
		mustPNG(t, newTestImage(256, 256)),
		mustBMP(t, newTestImage(48, 96), false),
	)
	saved := saveBytes(t, ic)

	buf := new(bytes.Buffer)
	if err := ic.Encode(onlyWriter{buf}); err != nil {
		t.Fatalf("Encode() = %v", err)
	}
	if !bytes.Equal(buf.Bytes(), saved) {
		t.Errorf("Encode() output differs from Save()")
	}
}

func TestIcon_OffsetIntegrity(t *testing.T) {
	ic := New()
	for _, s := range []int{16, 24, 32, 48, 64, 256} {
		ic.Add(mustPNG(t, newTestImage(s, s)), mustBMP(t, newTestImage(s, s), true))
	}
	b := saveBytes(t, ic)
	entries, err := ReadDirectory(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("ReadDirectory() = %v", err)
	}
	if len(entries) != ic.Len() {
		t.Fatalf("len(entries) = %d, want %d", len(entries), ic.Len())
	}

	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ImageOffset < sorted[j].ImageOffset })
	next := uint32(fileHeaderSize + headerSize*len(entries))
	for _, e := range sorted {
		if e.ImageOffset != next {
			t.Fatalf("offset = %d, want %d (gap or overlap)", e.ImageOffset, next)
		}
		next += e.ImageDataSize
	}
	if int(next) != len(b) {
		t.Errorf("payloads end at %d, file is %d bytes", next, len(b))
	}
}

func TestIcon_SizeWrap(t *testing.T) {
	ic := New()
	ic.Add(mustPNG(t, newTestImage(256, 256)), mustBMP(t, newTestImage(256, 256), true))
	b := saveBytes(t, ic)

	entries, err := ReadDirectory(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("ReadDirectory() = %v", err)
	}
	for i, e := range entries {
		if e.Width != 0 || e.Height != 0 {
			t.Errorf("entry %d bytes = %d/%d, want 0/0", i, e.Width, e.Height)
		}
		if e.GetWidth() != 256 || e.GetHeight() != 256 {
			t.Errorf("entry %d size = %dx%d, want 256x256", i, e.GetWidth(), e.GetHeight())
		}
	}

	loaded, err := Load(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	for i, img := range loaded.Images {
		if img.Width() != 256 || img.Height() != 256 {
			t.Errorf("image %d = %dx%d, want 256x256", i, img.Width(), img.Height())
		}
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	src := newTestImage(24, 20)
	ic := New()
	ic.Add(mustPNG(t, src), mustBMP(t, src, true))

	loaded, err := Load(bytes.NewReader(saveBytes(t, ic)))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", loaded.Len())
	}

	p, ok := loaded.Images[0].(*PNGImage)
	if !ok {
		t.Fatalf("image 0 is %T, want *PNGImage", loaded.Images[0])
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 24; x++ {
			if got, want := nrgbaAt(p.Image(), x, y), src.NRGBAAt(x, y); got != want {
				t.Fatalf("png pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	b, ok := loaded.Images[1].(*BMPImage)
	if !ok {
		t.Fatalf("image 1 is %T, want *BMPImage", loaded.Images[1])
	}
	if b.GenerateTransparencyMask() {
		t.Errorf("loaded bitmap should not generate a mask")
	}
	if b.Width() != 24 || b.Height() != 20 {
		t.Errorf("bmp size = %dx%d, want 24x20", b.Width(), b.Height())
	}
	if got := b.Image().Bounds().Dy(); got != 40 {
		t.Fatalf("bmp buffer height = %d, want 40", got)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 24; x++ {
			if m := nrgbaAt(b.Image(), x, y); m != (color.NRGBA{}) {
				t.Fatalf("mask pixel (%d,%d) = %v, want zero", x, y, m)
			}
			if got, want := nrgbaAt(b.Image(), x, y+20), src.NRGBAAt(x, y); got != want {
				t.Fatalf("bmp pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestLoad_ResaveKeepsMask(t *testing.T) {
	ic := New()
	ic.Add(mustBMP(t, newTestImage(16, 16), true))

	loaded, err := Load(bytes.NewReader(saveBytes(t, ic)))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	again, err := Load(bytes.NewReader(saveBytes(t, loaded)))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	d, err := again.Images[0].Data()
	if err != nil {
		t.Fatal(err)
	}
	h, err := bmp.ReadInfoHeader(d)
	if err != nil {
		t.Fatal(err)
	}
	if h.Height != 32 {
		t.Errorf("DIB height after two saves = %d, want 32", h.Height)
	}
	if again.Images[0].Height() != 16 {
		t.Errorf("Height() = %d, want 16", again.Images[0].Height())
	}
}

func TestLoad_BitmapAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{128, 128, 128, 128})
		}
	}
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})
	src.SetNRGBA(3, 2, color.NRGBA{200, 100, 50, 0xff})
	ic := New()
	ic.Add(mustBMP(t, src, true))

	first := saveBytes(t, ic)
	loaded, err := Load(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	b := loaded.Images[0].(*BMPImage)
	if b.BitsPerPixel() != 32 {
		t.Errorf("loaded BitsPerPixel() = %d, want 32", b.BitsPerPixel())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if m := nrgbaAt(b.Image(), x, y); m != (color.NRGBA{}) {
				t.Fatalf("mask pixel (%d,%d) = %v, want zero", x, y, m)
			}
			if got, want := nrgbaAt(b.Image(), x, y+4), src.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	second := saveBytes(t, loaded)
	if !bytes.Equal(first, second) {
		t.Errorf("resaving a loaded icon changed its bytes")
	}
	entries, err := ReadDirectory(bytes.NewReader(second))
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].BitsPerPixel != 32 {
		t.Errorf("resaved entry bpp = %d, want 32", entries[0].BitsPerPixel)
	}
}

func TestLoad_IgnoresDirectoryGeometry(t *testing.T) {
	ic := New()
	ic.Add(mustPNG(t, newTestImage(16, 16)))
	b := saveBytes(t, ic)
	b[6], b[7] = 99, 0
	binary.LittleEndian.PutUint16(b[12:14], 7)

	loaded, err := Load(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	img := loaded.Images[0]
	if img.Width() != 16 || img.Height() != 16 || img.BitsPerPixel() != 24 {
		t.Errorf("image = %dx%d@%d, want 16x16@24", img.Width(), img.Height(), img.BitsPerPixel())
	}
}

func TestLoad_Errors(t *testing.T) {
	valid := saveBytes(t, &Icon{Images: []Image{mustPNG(t, newTestImage(4, 4))}})
	short := append([]byte{0, 0, 1, 0, 1, 0,
		4, 4, 0, 0, 1, 0, 32, 0,
		4, 0, 0, 0, 22, 0, 0, 0},
		0x28, 0, 0, 0)
	garbage := append([]byte{0, 0, 1, 0, 1, 0,
		4, 4, 0, 0, 1, 0, 32, 0,
		40, 0, 0, 0, 22, 0, 0, 0},
		append([]byte{0x28, 0, 0, 0}, make([]byte, 36)...)...)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"reserved not zero", []byte{1, 0, 1, 0, 0, 0}, ErrIcoInvalid},
		{"cursor type", []byte{0, 0, 2, 0, 0, 0}, ErrIcoInvalid},
		{"short payload", short, ErrShortPayload},
		{"codec rejects bitmap", garbage, ErrFormat},
		{"truncated header", []byte{0, 0, 1}, io.ErrUnexpectedEOF},
		{"truncated payload", valid[:len(valid)-1], io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() = %v, want %v", err, tt.want)
			}
		})
	}
	if !errors.Is(ErrIcoInvalid, ErrFormat) || !errors.Is(ErrShortPayload, ErrFormat) {
		t.Errorf("format errors must wrap ErrFormat")
	}
}

func TestLoad_Empty(t *testing.T) {
	b := saveBytes(t, New())
	if !reflect.DeepEqual(b, []byte{0, 0, 1, 0, 0, 0}) {
		t.Fatalf("empty icon = %v", b)
	}
	ic, err := Load(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if ic.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ic.Len())
	}
}

func TestLoad_BaseOffset(t *testing.T) {
	ic := New()
	ic.Add(mustPNG(t, newTestImage(8, 8)), mustBMP(t, newTestImage(8, 8), true))
	m := &memFile{}
	prefix := []byte("PREFIX")
	m.Write(prefix)
	if err := ic.Save(m); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	r := bytes.NewReader(m.buf)
	r.Seek(int64(len(prefix)), io.SeekStart)
	loaded, err := Load(r)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Len() = %d, want 2", loaded.Len())
	}
}

func TestDecode(t *testing.T) {
	ic := New()
	ic.Add(mustBMP(t, newTestImage(8, 8), true))
	b := saveBytes(t, ic)

	loaded, err := Decode(onlyReader{bytes.NewReader(b)})
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if loaded.Len() != 1 || loaded.Images[0].Height() != 8 {
		t.Errorf("Decode() = %d images", loaded.Len())
	}
}

func TestIcon_NilStreams(t *testing.T) {
	ic := New()
	if err := ic.Save(nil); !errors.Is(err, ErrArgument) {
		t.Errorf("Save(nil) = %v", err)
	}
	if err := ic.Encode(nil); !errors.Is(err, ErrArgument) {
		t.Errorf("Encode(nil) = %v", err)
	}
	if _, err := Load(nil); !errors.Is(err, ErrNilStream) {
		t.Errorf("Load(nil) = %v", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrNilStream) {
		t.Errorf("Decode(nil) = %v", err)
	}
}

func TestIcon_Remove(t *testing.T) {
	a := mustPNG(t, newTestImage(16, 16))
	b := mustPNG(t, newTestImage(32, 32))
	ic := New()
	ic.Add(a, b)
	if err := ic.Remove(2); !errors.Is(err, ErrIconsIndex) {
		t.Errorf("Remove(2) = %v", err)
	}
	if err := ic.Remove(0); err != nil {
		t.Fatalf("Remove(0) = %v", err)
	}
	if !reflect.DeepEqual(ic.Images, []Image{b}) {
		t.Errorf("Images = %v", ic.Images)
	}
}

func TestIcon_SortBySize(t *testing.T) {
	small := mustPNG(t, newTestImage(16, 16))
	big := mustPNG(t, newTestImage(64, 64))
	bigBMP := mustBMP(t, newTestImage(64, 64), true)
	ic := New()
	ic.Add(small, big, bigBMP)
	ic.SortBySize()
	want := []Image{big, bigBMP, small}
	if !reflect.DeepEqual(ic.Images, want) {
		t.Errorf("SortBySize() order wrong")
	}
}
