/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/15 - 15:20:09
 ProgramFile: sniff.go
 Description: 识别ico中图像数据的格式
*/

package ico

import (
	"bytes"
	"fmt"

	"WinIcoCodec/bmp"
	"WinIcoCodec/png"
)

// GetIconType 获取图像数据的类型
// PNG文件头为PNG，"BM"为位图文件，其余未知
// Get the image type of a standalone image file
func GetIconType(d []byte) ICONTYPE {
	if png.IsPNG(d) {
		return TypePNG
	}
	if len(d) >= bmp.FileHeaderSize && bytes.Equal(d[0:2], bmp.HeaderID) {
		return TypeBMP
	}
	return TypeUKN
}

// decodeImage 识别目录项的图像数据并解码
// 以PNG文件头开始的是PNG，否则是没有文件头的位图(DIB)，
// 需要根据DIB头重建14字节的文件头才能解码。
// 位图已经包含掩码，所以 generateMask 为 false；32位位图保持32位。
// Classify an entry payload and decode it. Anything not starting with the
// PNG signature is a headerless DIB; its file header is rebuilt from the DIB
// header size before decoding. The decoded bitmap already holds the mask.
func decodeImage(d []byte) (Image, error) {
	if len(d) < png.PNGHEADSIZE {
		return nil, ErrShortPayload
	}
	if png.IsPNG(d) {
		// 完整检查所有块(CRC、IHDR在前、IEND结束)
		if _, err := png.ReadChunks(d); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		img, err := png.Decode(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return NewPNGImage(img)
	}
	img, err := bmp.DecodeDIB(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	bi, err := NewBMPImage(img, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if h, err := bmp.ReadInfoHeader(d); err == nil {
		bi.depth = int(h.BitsPerPixel)
	}
	return bi, nil
}
