/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/14 - 23:15:52
 ProgramFile: mask.go
 Description: 位图的透明掩码
*/

package ico

import (
	"image"

	"golang.org/x/image/draw"
)

// stackMask 生成两倍高度的32位图像：前 h 行是AND掩码，后 h 行是原始图像。
// 掩码全部为0，即所有像素都可见，不会根据alpha通道生成。
// Returns a 32-bit buffer twice as tall as src: rows [0, h) hold the AND
// mask, rows [h, 2h) the image. The mask is all zero, so every pixel is
// visible regardless of its alpha.
func stackMask(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewNRGBA(image.Rect(0, 0, w, 2*h))
	if m, ok := src.(*image.NRGBA); ok {
		// 按行复制，保留 alpha 为0的像素的颜色
		for y := 0; y < h; y++ {
			i := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[(h+y)*out.Stride:(h+y+1)*out.Stride], m.Pix[i:i+4*w])
		}
		return out
	}
	draw.Draw(out, image.Rect(0, h, w, 2*h), src, b.Min, draw.Src)
	return out
}
