/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/14 - 22:40:05
 ProgramFile: image.go
 Description: ico中的PNG与BMP图像
*/

package ico

import (
	"fmt"
	"image"

	"WinIcoCodec/bmp"
	"WinIcoCodec/png"
)

// PNGImage 以PNG格式保存在图标中的图像
// An image stored as PNG inside the icon.
type PNGImage struct {
	img image.Image
}

// NewPNGImage 创建PNG图像
func NewPNGImage(img image.Image) (*PNGImage, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	return &PNGImage{img: img}, nil
}

// Image 原始图像
func (p *PNGImage) Image() image.Image {
	return p.img
}

// SetImage 替换原始图像
func (p *PNGImage) SetImage(img image.Image) error {
	if img == nil {
		return ErrNilImage
	}
	p.img = img
	return nil
}

func (p *PNGImage) Width() int {
	return p.img.Bounds().Dx()
}

func (p *PNGImage) Height() int {
	return p.img.Bounds().Dy()
}

// BitsPerPixel 与编码后IHDR中的颜色位数一致
func (p *PNGImage) BitsPerPixel() int {
	return png.BitsPerPixel(p.img)
}

// Data PNG数据原样写入ico，不需要任何处理
// PNG streams are embedded unchanged.
func (p *PNGImage) Data() ([]byte, error) {
	return png.Encode(p.img)
}

func (p *PNGImage) iconImage() {}

// BMPImage 以位图(无文件头的DIB)格式保存在图标中的图像
// ico中的位图在图像数据之上叠加了一个1位的AND掩码，所以高度是图像的两倍。
// generateMask 为 false 时，表示原始图像已经包含了掩码(例如从ico文件载入)。
// An image stored as a memory bitmap inside the icon. The bitmap carries an
// AND mask stacked above the pixels, doubling its height. When generateMask
// is false the buffer is assumed to hold that stacked layout already.
type BMPImage struct {
	img          image.Image
	generateMask bool
	depth        int // 载入时DIB头中的颜色位数，32 表示保持32位
}

// NewBMPImage 创建BMP图像
// 宽度不能超过256；generateMask 为 true 时高度不能超过256，否则不能超过512
func NewBMPImage(img image.Image, generateMask bool) (*BMPImage, error) {
	if err := checkBMPSize(img, generateMask); err != nil {
		return nil, err
	}
	return &BMPImage{img: img, generateMask: generateMask}, nil
}

// checkBMPSize 检查位图的宽高限制
func checkBMPSize(img image.Image, generateMask bool) error {
	if img == nil {
		return ErrNilImage
	}
	b := img.Bounds()
	if b.Dx() > maxDimension {
		return fmt.Errorf("%w (%d)", ErrImageWidth, b.Dx())
	}
	limit := maxMaskedHeight
	if generateMask {
		limit = maxDimension
	}
	if b.Dy() > limit {
		return fmt.Errorf("%w (%d > %d)", ErrImageHeight, b.Dy(), limit)
	}
	return nil
}

// Image 原始图像
func (b *BMPImage) Image() image.Image {
	return b.img
}

// SetImage 替换原始图像，按当前的掩码设置重新检查宽高
func (b *BMPImage) SetImage(img image.Image) error {
	if err := checkBMPSize(img, b.generateMask); err != nil {
		return err
	}
	b.img = img
	return nil
}

// GenerateTransparencyMask 是否在编码时生成掩码
func (b *BMPImage) GenerateTransparencyMask() bool {
	return b.generateMask
}

// SetGenerateTransparencyMask 修改掩码设置，按当前图像的实际高度重新检查
// Re-validates the live buffer against the new setting.
func (b *BMPImage) SetGenerateTransparencyMask(generate bool) error {
	if err := checkBMPSize(b.img, generate); err != nil {
		return err
	}
	b.generateMask = generate
	return nil
}

func (b *BMPImage) Width() int {
	return b.img.Bounds().Dx()
}

// Height 图像本身的高度，已含掩码时为缓冲区高度的一半
func (b *BMPImage) Height() int {
	h := b.img.Bounds().Dy()
	if !b.generateMask {
		h /= 2
	}
	return h
}

// BitsPerPixel 生成掩码或从32位位图载入时为32位，否则取决于原始图像
func (b *BMPImage) BitsPerPixel() int {
	if b.generateMask || b.depth == 32 {
		return 32
	}
	return bmp.BitsPerPixel(b.img)
}

// Data 编码为位图并去掉14字节的文件头
// 32位位图保留alpha通道。
// Encode as a bitmap and strip the file header. 32 bpp output keeps alpha.
func (b *BMPImage) Data() ([]byte, error) {
	switch {
	case b.generateMask:
		return bmp.EncodeDIB32(stackMask(b.img)), nil
	case b.depth == 32:
		return bmp.EncodeDIB32(b.img), nil
	}
	return bmp.EncodeDIB(b.img)
}

func (b *BMPImage) iconImage() {}
