/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/15 - 10:12:48
 ProgramFile: directory.go
 Description: ico文件头与目录项
*/

package ico

import (
	"encoding/binary"
	"io"
	"math"
)

// ico文件头结构
// 参考维基百科：
// https://en.wikipedia.org/wiki/ICO_(file_format)
type fileHeader struct {
	ReservedA  uint16 // 保留字段，始终为 '0x0000'
	FileType   uint16 // 图像类型：1 为 ico，2 为 cur
	ImageCount uint16 // 图像数量
}

// Entry icon图标的目录项
// 参考维基百科：
// https://en.wikipedia.org/wiki/ICO_(file_format)
type Entry struct {
	Width         uint8  // 图像宽度，0 表示 256
	Height        uint8  // 图像高度，0 表示 256
	Palette       uint8  // 调色板颜色数，不使用调色版为 '0x00'
	ReservedB     uint8  // 保留字段，始终为 '0x00'
	ColorPlanes   uint16 // 颜色平面，始终为 1
	BitsPerPixel  uint16 // 每像素的位数
	ImageDataSize uint32 // 图像数据的大小，单位字节
	ImageOffset   uint32 // 图像数据的偏移量(从文件开始处计算)
}

// headerToBytes 将文件头结构转换为字节切片
func (h fileHeader) headerToBytes() []byte {
	d := make([]byte, fileHeaderSize)
	binary.LittleEndian.PutUint16(d[0:2], h.ReservedA)
	binary.LittleEndian.PutUint16(d[2:4], h.FileType)
	binary.LittleEndian.PutUint16(d[4:6], h.ImageCount)
	return d
}

// getIconFileHeader 获取文件头结构
// 保留字段必须为 0，图像类型必须为 1
// Get structure header of ico file.
func getIconFileHeader(b []byte) (*fileHeader, error) {
	if len(b) != fileHeaderSize {
		return nil, ErrIcoInvalid
	}
	h := &fileHeader{
		ReservedA:  binary.LittleEndian.Uint16(b[0:2]),
		FileType:   binary.LittleEndian.Uint16(b[2:4]),
		ImageCount: binary.LittleEndian.Uint16(b[4:6]),
	}
	if h.ReservedA != 0 || h.FileType != 1 {
		return nil, ErrIcoInvalid
	}
	return h, nil
}

// newEntry 根据图像生成目录项，大小和偏移量暂时为 0
// Build the directory entry for img; size and offset are left at 0.
func newEntry(img Image) Entry {
	return Entry{
		Width:        sizeToByte(img.Width()),
		Height:       sizeToByte(img.Height()),
		ColorPlanes:  1,
		BitsPerPixel: uint16(img.BitsPerPixel()),
	}
}

// sizeToByte 一个字节无法表示 256，以 0 代替
func sizeToByte(v int) uint8 {
	if v >= maxDimension {
		return 0
	}
	return uint8(v)
}

// getIconStruct 解析目录项
// Parse a 16-byte directory entry
func getIconStruct(s []byte) Entry {
	return Entry{
		Width:         s[0],
		Height:        s[1],
		Palette:       s[2],
		ReservedB:     s[3],
		ColorPlanes:   binary.LittleEndian.Uint16(s[4:6]),
		BitsPerPixel:  binary.LittleEndian.Uint16(s[6:8]),
		ImageDataSize: binary.LittleEndian.Uint32(s[8:12]),
		ImageOffset:   binary.LittleEndian.Uint32(s[12:16]),
	}
}

// headerToBytes 将目录项转换为[]byte字节切片
// Convert the entry to a byte slice
func (e Entry) headerToBytes() []byte {
	d := make([]byte, headerSize)
	d[0] = e.Width
	d[1] = e.Height
	d[2] = e.Palette
	d[3] = e.ReservedB
	binary.LittleEndian.PutUint16(d[4:6], e.ColorPlanes)
	binary.LittleEndian.PutUint16(d[6:8], e.BitsPerPixel)
	binary.LittleEndian.PutUint32(d[8:12], e.ImageDataSize)
	binary.LittleEndian.PutUint32(d[12:16], e.ImageOffset)
	return d
}

// GetWidth 获取icon图像数据的宽度
// return width of icon image
func (e Entry) GetWidth() int {
	if e.Width == 0 {
		return maxDimension
	}
	return int(e.Width)
}

// GetHeight 获取icon图像数据的高度
// return height of icon image
func (e Entry) GetHeight() int {
	if e.Height == 0 {
		return maxDimension
	}
	return int(e.Height)
}

// directorySize 文件头加所有目录项的大小，即第一个图像数据的偏移量
func directorySize(count int) int64 {
	return fileHeaderSize + int64(count)*headerSize
}

// generateOffset 根据图像数据的大小产生对应的偏移量
// Fill in sizes and offsets from the payload lengths, payloads follow the
// directory back to back.
func generateOffset(entries []Entry, payloads [][]byte) error {
	c := directorySize(len(entries))
	for i := range entries {
		l := int64(len(payloads[i]))
		if c > math.MaxUint32 || l > math.MaxUint32 {
			return ErrTooLarge
		}
		entries[i].ImageDataSize = uint32(l)
		entries[i].ImageOffset = uint32(c)
		c += l
	}
	return nil
}

// ReadDirectory 只读取文件头和目录项，不解码图像
// Read the header and directory entries without decoding any image.
func ReadDirectory(r io.Reader) ([]Entry, error) {
	if r == nil {
		return nil, ErrNilStream
	}
	p := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, err
	}
	h, err := getIconFileHeader(p)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, int(h.ImageCount))
	s := make([]byte, headerSize)
	for i := range entries {
		if _, err := io.ReadFull(r, s); err != nil {
			return nil, err
		}
		entries[i] = getIconStruct(s)
	}
	return entries, nil
}
