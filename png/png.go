/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/04 - 18:32:33
 ProgramFile: png.go
 Description: PNG图片解析工具

*/

package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"
)

const (
	// 数据长度的定义 Data length or size
	PNGHEADSIZE = 8
	CTLENGTH    = 4
	CIHDRLEN    = 13
	// 关键块 Critical chunks
	CIHDR = "IHDR" // IHDR必须是第一块(顺序的总共13个数据字节)
	CIDAT = "IDAT" // IDAT块包含实际图像数据，可以在多个IDAT块之间进行分割
	CIEND = "IEND" // 标志着图像结束
	CPLTE = "PLTE" // PLTE 块是彩色类型3(基本索引颜色)
)

// PNG 颜色类型 color type of IHDR
const (
	ColorGray      = 0
	ColorRGB       = 2
	ColorPalette   = 3
	ColorGrayAlpha = 4
	ColorRGBA      = 6
)

var (
	PNGHEAD = []byte{
		0x89, 0x50, 0x4E, 0x47, // 0x89 PNG
		0x0D, 0x0A, 0x1A, 0x0A,
	} // PNG 文件的头(固定大小固定内容)

	ErrInvalidHeader = errors.New("png: invalid header data")
	ErrTruncated     = errors.New("png: chunk data truncated")
	ErrNoIHDR        = errors.New("png: " + CIHDR + " chunk not found")
	ErrChunkCRC      = errors.New("png: chunk crc error")
	ErrNoIDAT        = errors.New("png: " + CIDAT + " chunk not found")
	ErrNoPLTE        = errors.New("png: " + CPLTE + " chunk missing before " + CIDAT)
)

// 定义更清晰的类型 :)
// Well-defined type definition
type (
	Chunks    []Chunk
	ChunkData []byte // 块数据
	CRC32     []byte // 循环冗余检测数据
	PNGBODY   []byte // 整个PNG文件的数据
)

// PNG 图像的二进制数据实际上是以文件头 file header 以及 chunk 块组合而成。
// 块数据的以大端序在组成，分别为：Length,ChunkType，Data，CRC四个元素组成。
// The block data is composed of big endian, They are composed
// of four elements: Length, ChunkType, Data, and CRC.
type Chunk struct {
	Length    int       // 块数据长度 chunk data length
	ChunkType string    // 块数据类型 chunk type
	Data      ChunkData // 块数据 chunk data
	Crc       CRC32     // 块数据的CRC32验证数据 CRC32 of chunk data
}

// IHDR 图像头块的内容
// Content of the IHDR chunk
type IHDR struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   uint8
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

// IsPNG 检测数据是否以PNG文件头开始
// Check whether b starts with the 8-byte PNG signature
func IsPNG(b []byte) bool {
	if len(b) < PNGHEADSIZE {
		return false
	}
	return bytes.Equal(b[:PNGHEADSIZE], PNGHEAD)
}

// check CRC32 循环冗余检测
// 将chunk中的crc32数据与我们自己生成的crc32数据进行比对
// Compare the crc32 data in the chunk
// with our own generated crc32 data.
func (c CRC32) check(ck *Chunk) bool {
	if len(c) != CTLENGTH {
		return false
	}
	a := binary.BigEndian.Uint32(c)
	b := crc32.ChecksumIEEE(bytes.Join([][]byte{
		[]byte(ck.ChunkType),
		ck.Data},
		nil,
	))
	return a == b
}

// readChunk 读取偏移量 o 处的块，返回块以及下一个块的偏移量
// Read the chunk at offset o, return it with the offset of the next one.
func (pb PNGBODY) readChunk(o int) (*Chunk, int, error) {
	if o+2*CTLENGTH > len(pb) {
		return nil, 0, ErrTruncated
	}
	l := int(binary.BigEndian.Uint32(pb[o : o+CTLENGTH]))
	t := string(pb[o+CTLENGTH : o+2*CTLENGTH])
	i := o + 2*CTLENGTH
	e := i + l
	if l < 0 || e+CTLENGTH > len(pb) {
		return nil, 0, ErrTruncated
	}
	ch := &Chunk{
		Length:    l,
		ChunkType: t,
		Data:      ChunkData(pb[i:e]),
		Crc:       CRC32(pb[e : e+CTLENGTH]),
	}
	if !ch.Crc.check(ch) {
		return nil, 0, fmt.Errorf("%w: %s", ErrChunkCRC, t)
	}
	return ch, e + CTLENGTH, nil
}

// ReadChunks 按顺序解析所有块，直到 IEND
// IHDR 必须是第一块，至少有一个 IDAT，索引色图像的 PLTE 必须在第一个 IDAT 之前
// Parse every chunk in order up to and including IEND.
func ReadChunks(b []byte) (Chunks, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	pb := PNGBODY(b)
	var cs Chunks
	var plte, idat bool
	for o := PNGHEADSIZE; ; {
		ch, next, err := pb.readChunk(o)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *ch)
		switch ch.ChunkType {
		case CPLTE:
			plte = true
		case CIDAT:
			if !idat && h.ColorType == ColorPalette && !plte {
				return nil, ErrNoPLTE
			}
			idat = true
		case CIEND:
			if !idat {
				return nil, ErrNoIDAT
			}
			return cs, nil
		}
		o = next
	}
}

// ReadHeader 读取并校验IHDR块，IHDR必须紧跟在文件头之后
// Read and verify the IHDR chunk that must follow the signature.
func ReadHeader(b []byte) (*IHDR, error) {
	if !IsPNG(b) {
		return nil, ErrInvalidHeader
	}
	ch, _, err := PNGBODY(b).readChunk(PNGHEADSIZE)
	if err != nil {
		return nil, err
	}
	if ch.ChunkType != CIHDR || ch.Length != CIHDRLEN {
		return nil, ErrNoIHDR
	}
	d := ch.Data
	return &IHDR{
		Width:       binary.BigEndian.Uint32(d[0:4]),
		Height:      binary.BigEndian.Uint32(d[4:8]),
		BitDepth:    d[8],
		ColorType:   d[9],
		Compression: d[10],
		Filter:      d[11],
		Interlace:   d[12],
	}, nil
}

// BitsPerPixel 每像素的位数 = 位深 x 通道数
// bit depth times channel count
func (h *IHDR) BitsPerPixel() int {
	channels := 1
	switch h.ColorType {
	case ColorRGB:
		channels = 3
	case ColorGrayAlpha:
		channels = 2
	case ColorRGBA:
		channels = 4
	}
	return int(h.BitDepth) * channels
}

// ColorTypeName 颜色类型的名称
func (h *IHDR) ColorTypeName() string {
	switch h.ColorType {
	case ColorGray:
		return "Gray"
	case ColorRGB:
		return "RGB"
	case ColorPalette:
		return "Palette"
	case ColorGrayAlpha:
		return "GrayAlpha"
	case ColorRGBA:
		return "RGBA"
	}
	return fmt.Sprintf("ColorType(%d)", h.ColorType)
}

// Encode 将图像编码为PNG数据
func Encode(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := &stdpng.Encoder{CompressionLevel: stdpng.DefaultCompression}
	if err := enc.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode 解码PNG数据
func Decode(b []byte) (image.Image, error) {
	return stdpng.Decode(bytes.NewReader(b))
}

// BitsPerPixel 返回 Encode 对该图像将写入IHDR的颜色位数
// The bit depth Encode writes into IHDR for img.
func BitsPerPixel(img image.Image) int {
	// 与 image/png 一致，只有 PalettedImage 才以索引色编码
	var pal color.Palette
	if _, ok := img.(image.PalettedImage); ok {
		pal, _ = img.ColorModel().(color.Palette)
	}
	if pal != nil {
		switch {
		case len(pal) <= 2:
			return 1
		case len(pal) <= 4:
			return 2
		case len(pal) <= 16:
			return 4
		}
		return 8
	}
	switch img.ColorModel() {
	case color.GrayModel:
		return 8
	case color.Gray16Model:
		return 16
	case color.RGBAModel, color.NRGBAModel, color.AlphaModel:
		if opaque(img) {
			return 24
		}
		return 32
	}
	if opaque(img) {
		return 48
	}
	return 64
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
