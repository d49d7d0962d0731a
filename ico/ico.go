/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/05/25 - 07:51:34
 ProgramFile: ico.go
 Description:
			  Windows系统的ico文件工具包
*/

// Package ico reads and writes Windows ICO containers holding PNG and
// masked BMP images.
package ico

import (
	"errors"
	"fmt"
	"sort"
)

// 定义常量
// Constant definition
const (
	fileHeaderSize  = 6   // 文件头的大小
	headerSize      = 16  // icon图标的目录项大小
	maxDimension    = 256 // 目录项中一个字节能表示的最大宽高(0 表示 256)
	maxMaskedHeight = 512 // 含有掩码的位图高度上限
)

// GetIconType 的返回值
const (
	TypeUKN ICONTYPE = iota // unknow type
	TypeBMP                 // bmp file
	TypePNG                 // png file
)

// 定义变量
// Variable definitions
var (
	// 错误类型 error kinds
	ErrFormat   = errors.New("ico: format error")   // 数据格式错误
	ErrArgument = errors.New("ico: argument error") // 参数错误

	// 错误信息
	ErrIcoInvalid   = fmt.Errorf("%w: invalid file header", ErrFormat)          // 无效的ico文件头
	ErrShortPayload = fmt.Errorf("%w: image data too short", ErrFormat)         // 图像数据不足8个字节，无法识别
	ErrUnknownImage = fmt.Errorf("%w: unknown image type", ErrFormat)           // 既不是PNG也不是BMP
	ErrIconsIndex   = fmt.Errorf("%w: index out of range", ErrArgument)         // 切片越界
	ErrNilStream    = fmt.Errorf("%w: nil reader or writer", ErrArgument)       // 空的 io.Reader/io.Writer
	ErrNilImage     = fmt.Errorf("%w: nil image", ErrArgument)                  // 空的图像
	ErrImageWidth   = fmt.Errorf("%w: image width exceeds 256", ErrArgument)    // 位图宽度超过256
	ErrImageHeight  = fmt.Errorf("%w: image height exceeds limit", ErrArgument) // 位图高度超过256或512
	ErrTooLarge     = fmt.Errorf("%w: icon too large", ErrArgument)             // 图像数量或数据大小超出格式范围
)

// 类型定义 type definition
// ICONTYPE 独立图像文件的类型
type ICONTYPE int

// Image 图标中的一个图像，只有 *PNGImage 与 *BMPImage 两种实现
// One image inside an icon. Implemented by *PNGImage and *BMPImage only.
type Image interface {
	Width() int            // 图像宽度
	Height() int           // 图像高度
	BitsPerPixel() int     // 每像素的位数
	Data() ([]byte, error) // 写入ico文件的图像数据

	iconImage()
}

// Icon Windows 系统的 ico 文件
// Images 的顺序即目录项在文件中的顺序
// An icon file. The order of Images is the on-disk directory order.
type Icon struct {
	Images []Image
}

// New 创建一个空的图标
func New() *Icon {
	return &Icon{}
}

// Add 按顺序追加图像
// Append images in order
func (ic *Icon) Add(imgs ...Image) {
	ic.Images = append(ic.Images, imgs...)
}

// Remove 删除下标为 index 的图像
// Remove the image at index
func (ic *Icon) Remove(index int) error {
	if index < 0 || index >= len(ic.Images) {
		return ErrIconsIndex
	}
	ic.Images = append(ic.Images[:index], ic.Images[index+1:]...)
	return nil
}

// Len 图像数量
func (ic *Icon) Len() int {
	return len(ic.Images)
}

// SortBySize 根据图像的宽度排序(降序)，宽度相同的保持原有顺序
// Sort images by width, largest first, keeping the order of equal widths.
func (ic *Icon) SortBySize() {
	sort.Stable(byWidth(ic.Images))
}

type byWidth []Image

// Len 实现go语言的排序算法接口中Len方法
func (w byWidth) Len() int {
	return len(w)
}

// Less 实现go语言的排序算法接口中Less方法
func (w byWidth) Less(i, j int) bool {
	return w[j].Width() < w[i].Width()
}

// Swap 实现go语言的排序算法接口中的Swap方法
func (w byWidth) Swap(i, j int) {
	w[i], w[j] = w[j], w[i]
}
