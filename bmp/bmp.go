/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/12 - 21:06:17
 ProgramFile: bmp.go
 Description: 位图文件头与DIB数据工具
			  BITMAPFILEHEADER / DIB helpers
*/

package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"

	xbmp "golang.org/x/image/bmp"
)

// 定义常量
// Constant definition
const (
	FileHeaderSize = 14 // BITMAPFILEHEADER
	InfoHeaderSize = 40 // BITMAPINFOHEADER

	biRGB       = 0  // 不压缩
	biBitfields = 3  // 以位掩码描述颜色通道
	masksSize   = 12 // BITMAPINFOHEADER 之后的 R/G/B 位掩码
)

var (
	ErrShortData = errors.New("bmp: data too short")
	ErrInvalidID = errors.New("bmp: invalid file header id")
	HeaderID     = []byte{0x42, 0x4d} // "BM"
)

// FileHeader 位图文件头结构(14bytes)
// 参考维基百科：
// https://en.wikipedia.org/wiki/BMP_file_format
type FileHeader struct {
	ID         uint16 // 0x42 0x4d "BM"
	FileSize   uint32 // BMP头与DIB的大小
	ReservedA  uint16
	ReservedB  uint16
	DataOffset uint32 // Bitmap Data 偏移量
}

// InfoHeader DIB头中所有版本(40, 108, 124 bytes)共有的字段
// Fields shared by every DIB header version.
type InfoHeader struct {
	Size            uint32 // DIB头的大小
	Width           int32  // left to right
	Height          int32  // bottom to top, negative means top-down
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerM     uint32
	YPixelsPerM     uint32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// NewFileHeader 根据无文件头的DIB数据创建位图文件头
// DataOffset 为 14 + DIB头大小，DIB头大小取自DIB数据的前4个字节。
// 8位及以下的位图还要加上调色板的大小，24位和32位位图没有调色板，不受影响。
// For indexed bitmaps DataOffset also counts the color table; 24 and 32 bpp are plain 14 + header size.
// Create a bitmap file header for a headerless DIB stream.
func NewFileHeader(dib []byte) (*FileHeader, error) {
	if len(dib) < 4 {
		return nil, ErrShortData
	}
	return &FileHeader{
		ID:         binary.LittleEndian.Uint16(HeaderID),
		FileSize:   uint32(len(dib) + FileHeaderSize),
		DataOffset: FileHeaderSize + binary.LittleEndian.Uint32(dib[0:4]) + paletteSize(dib),
	}, nil
}

// paletteSize 调色板的字节数，ColorsUsed 为0时取 1<<bpp
func paletteSize(dib []byte) uint32 {
	h, err := ReadInfoHeader(dib)
	if err != nil || h.BitsPerPixel == 0 || h.BitsPerPixel > 8 {
		return 0
	}
	n := h.ColorsUsed
	if n == 0 {
		n = 1 << h.BitsPerPixel
	}
	return 4 * n
}

// ParseFileHeader 解析位图文件头
// Parse the first 14 bytes of a bitmap file.
func ParseFileHeader(b []byte) (*FileHeader, error) {
	if len(b) < FileHeaderSize {
		return nil, ErrShortData
	}
	if !bytes.Equal(b[0:2], HeaderID) {
		return nil, ErrInvalidID
	}
	return &FileHeader{
		ID:         binary.LittleEndian.Uint16(b[0:2]),
		FileSize:   binary.LittleEndian.Uint32(b[2:6]),
		ReservedA:  binary.LittleEndian.Uint16(b[6:8]),
		ReservedB:  binary.LittleEndian.Uint16(b[8:10]),
		DataOffset: binary.LittleEndian.Uint32(b[10:14]),
	}, nil
}

// Bytes 将位图文件头结构转换为字节切片
// Convert BITMAPFILEHEADER to byte slice
func (h *FileHeader) Bytes() []byte {
	d := make([]byte, FileHeaderSize)
	binary.LittleEndian.PutUint16(d[0:2], h.ID)
	binary.LittleEndian.PutUint32(d[2:6], h.FileSize)
	binary.LittleEndian.PutUint16(d[6:8], h.ReservedA)
	binary.LittleEndian.PutUint16(d[8:10], h.ReservedB)
	binary.LittleEndian.PutUint32(d[10:14], h.DataOffset)
	return d
}

// Join 将文件头链接到DIB数据前
// Link BITMAPFILEHEADER to the front of the DIB data.
func (h *FileHeader) Join(dib []byte) []byte {
	return bytes.Join([][]byte{h.Bytes(), dib}, nil)
}

// Join 为内存位图(无文件头的DIB)重建文件头，返回完整的位图文件数据
// Rebuild a standalone bitmap stream from a memory bitmap.
func Join(dib []byte) ([]byte, error) {
	h, err := NewFileHeader(dib)
	if err != nil {
		return nil, err
	}
	return h.Join(dib), nil
}

// Strip 去掉位图文件的14字节文件头，得到内存位图
// Strip the 14-byte file header, leaving the DIB.
func Strip(file []byte) ([]byte, error) {
	if _, err := ParseFileHeader(file); err != nil {
		return nil, err
	}
	return file[FileHeaderSize:], nil
}

// ReadInfoHeader 读取DIB头
// Read the DIB header at the start of a memory bitmap.
func ReadInfoHeader(dib []byte) (*InfoHeader, error) {
	if len(dib) < InfoHeaderSize {
		return nil, ErrShortData
	}
	le := binary.LittleEndian
	return &InfoHeader{
		Size:            le.Uint32(dib[0:4]),
		Width:           int32(le.Uint32(dib[4:8])),
		Height:          int32(le.Uint32(dib[8:12])),
		Planes:          le.Uint16(dib[12:14]),
		BitsPerPixel:    le.Uint16(dib[14:16]),
		Compression:     le.Uint32(dib[16:20]),
		ImageSize:       le.Uint32(dib[20:24]),
		XPixelsPerM:     le.Uint32(dib[24:28]),
		YPixelsPerM:     le.Uint32(dib[28:32]),
		ColorsUsed:      le.Uint32(dib[32:36]),
		ColorsImportant: le.Uint32(dib[36:40]),
	}, nil
}

// Encode 将图像编码为完整的位图文件(含文件头)
// Encode an image as a bitmap file, file header included.
func Encode(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := xbmp.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode 解码完整的位图文件
func Decode(b []byte) (image.Image, error) {
	return xbmp.Decode(bytes.NewReader(b))
}

// EncodeDIB 将图像编码为内存位图
// Encode an image and strip its file header.
func EncodeDIB(img image.Image) ([]byte, error) {
	b, err := Encode(img)
	if err != nil {
		return nil, err
	}
	return Strip(b)
}

// EncodeDIB32 将图像编码为32位 BI_RGB 内存位图，第四个字节为alpha通道
// x/image/bmp 对不透明的图像总是写24位，需要固定32位时使用该函数。
// Encode a bottom-up BGRA memory bitmap, alpha kept in the fourth byte.
func EncodeDIB32(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := 4 * w
	d := make([]byte, InfoHeaderSize+stride*h)
	le := binary.LittleEndian
	le.PutUint32(d[0:4], InfoHeaderSize)
	le.PutUint32(d[4:8], uint32(w))
	le.PutUint32(d[8:12], uint32(h))
	le.PutUint16(d[12:14], 1)
	le.PutUint16(d[14:16], 32)
	le.PutUint32(d[16:20], biRGB)
	le.PutUint32(d[20:24], uint32(stride*h))

	pix := d[InfoHeaderSize:]
	for y := 0; y < h; y++ {
		row := pix[(h-1-y)*stride:]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c.B, c.G, c.R, c.A
		}
	}
	return d
}

// DecodeDIB 解码内存位图
// x/image/bmp 会丢弃 BI_RGB 32位位图的第四个字节，这里从原始数据中恢复alpha通道。
// Decode a memory bitmap. 32 bpp bitmaps come back as *image.NRGBA with
// the fourth byte of every pixel as alpha.
func DecodeDIB(dib []byte) (image.Image, error) {
	b, err := Join(dib)
	if err != nil {
		return nil, err
	}
	img, err := Decode(b)
	if err != nil {
		return nil, err
	}
	h, err := ReadInfoHeader(dib)
	if err != nil || h.BitsPerPixel != 32 {
		return img, nil
	}
	return decodeAlpha(dib, h, img), nil
}

// decodeAlpha 按 BGRA 读取32位像素，Height 为正时数据自下而上
func decodeAlpha(dib []byte, h *InfoHeader, img image.Image) image.Image {
	o := int(h.Size)
	if h.Compression == biBitfields && h.Size == InfoHeaderSize {
		o += masksSize
	}
	w, ht := img.Bounds().Dx(), img.Bounds().Dy()
	stride := 4 * w
	if o+stride*ht > len(dib) {
		return img
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		src := y
		if h.Height > 0 {
			src = ht - 1 - y
		}
		row := dib[o+src*stride : o+(src+1)*stride]
		p := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			p[4*x], p[4*x+1], p[4*x+2], p[4*x+3] = row[4*x+2], row[4*x+1], row[4*x], row[4*x+3]
		}
	}
	return out
}

// BitsPerPixel 返回 Encode 对该图像将使用的颜色位数
// The bit depth Encode picks for img.
func BitsPerPixel(img image.Image) int {
	switch m := img.(type) {
	case *image.Gray, *image.Paletted:
		return 8
	case *image.RGBA:
		if m.Opaque() {
			return 24
		}
		return 32
	case *image.NRGBA:
		if m.Opaque() {
			return 24
		}
		return 32
	}
	return 24
}
