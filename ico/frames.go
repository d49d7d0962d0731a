/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/18 - 09:41:26
 ProgramFile: frames.go
 Description: 多帧图像与GIF动画打包为图标
*/

package ico

import (
	"fmt"
	"image"
	"image/gif"
	"io"

	"WinIcoCodec/bmp"
)

// FromFrames 将多帧图像打包为图标，每帧成为一个生成掩码的 *BMPImage。
// 编码后的位图数据完全相同的帧只保留第一个。
// Build an icon from frames, one masked *BMPImage each. Frames whose
// encoded bitmap bytes equal an earlier frame's are skipped.
func FromFrames(frames []image.Image) (*Icon, error) {
	ic := New()
	seen := make(map[string]struct{})
	for i, f := range frames {
		if f == nil {
			return nil, fmt.Errorf("ico: frame %d: %w", i, ErrNilImage)
		}
		d, err := bmp.Encode(f)
		if err != nil {
			return nil, fmt.Errorf("ico: frame %d: %w", i, err)
		}
		key := string(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		bi, err := NewBMPImage(f, true)
		if err != nil {
			return nil, fmt.Errorf("ico: frame %d: %w", i, err)
		}
		ic.Add(bi)
	}
	return ic, nil
}

// DecodeGIF 读取GIF的所有帧并打包为图标
func DecodeGIF(r io.Reader) (*Icon, error) {
	if r == nil {
		return nil, ErrNilStream
	}
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	frames := make([]image.Image, len(g.Image))
	for i, p := range g.Image {
		frames[i] = p
	}
	return FromFrames(frames)
}
