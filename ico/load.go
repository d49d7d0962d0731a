/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/15 - 16:03:12
 ProgramFile: load.go
 Description: 载入ico文件
*/

package ico

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Load 从 rs 载入图标
// 目录项中的宽高和颜色位数只是参考，图像的实际大小来自解码后的图像数据。
// 任何一个图像出错，整个载入失败。
// Load reads an icon from rs. Geometry comes from the decoded image data,
// never from the directory bytes. A single bad entry fails the whole load.
func Load(rs io.ReadSeeker) (*Icon, error) {
	if rs == nil {
		return nil, ErrNilStream
	}
	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	entries, err := ReadDirectory(rs)
	if err != nil {
		return nil, err
	}
	ic := &Icon{Images: make([]Image, 0, len(entries))}
	for i, e := range entries {
		d, err := readImageData(rs, base+int64(e.ImageOffset), int64(e.ImageDataSize))
		if err != nil {
			return nil, err
		}
		img, err := decodeImage(d)
		if err != nil {
			return nil, fmt.Errorf("ico: image %d: %w", i, err)
		}
		ic.Images = append(ic.Images, img)
	}
	return ic, nil
}

// readImageData 读取偏移量 o 处 size 个字节，读取后回到原来的位置
// Read size bytes at offset o, then seek back.
func readImageData(rs io.ReadSeeker, o, size int64) ([]byte, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(o, io.SeekStart); err != nil {
		return nil, err
	}
	d, err := io.ReadAll(io.LimitReader(rs, size))
	if err != nil {
		return nil, err
	}
	if int64(len(d)) != size {
		return nil, io.ErrUnexpectedEOF
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return nil, err
	}
	return d, nil
}

// Decode 从任意 io.Reader 载入图标，不支持 Seek 时先读入内存
// Load from any reader, buffering it when it cannot seek.
func Decode(r io.Reader) (*Icon, error) {
	if r == nil {
		return nil, ErrNilStream
	}
	if rs, ok := r.(io.ReadSeeker); ok {
		return Load(rs)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(b))
}

// LoadFile 载入ico文件
func LoadFile(name string) (*Icon, error) {
	fs, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fs.Close()
	return Load(fs)
}
