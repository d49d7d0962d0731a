/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/05/27 - 20:18:44
 ProgramFile: files.go
 Description: 图像文件与ico文件之间的转换
*/

package ico

import (
	"fmt"
	"os"
	"path/filepath"

	"WinIcoCodec/bmp"
	"WinIcoCodec/png"
)

const filePerm = 0666

// FromFiles 可以将N个BMP和PNG图像打包为一个图标
// PNG文件成为 *PNGImage，BMP文件成为 *BMPImage
// filePath []string: 文件的路径
// Package BMP and PNG image files into an icon, in the given order.
func FromFiles(filePath []string, generateMask bool) (*Icon, error) {
	ic := New()
	for _, p := range filePath {
		d, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		img, err := loadImageData(d, generateMask)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		ic.Add(img)
	}
	return ic, nil
}

// loadImageData 根据文件头识别并解码一个图像文件
func loadImageData(d []byte, generateMask bool) (Image, error) {
	switch GetIconType(d) {
	case TypePNG:
		img, err := png.Decode(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return NewPNGImage(img)
	case TypeBMP:
		img, err := bmp.Decode(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return NewBMPImage(img, generateMask)
	}
	return nil, ErrUnknownImage
}

// Extract 提取所有图像到文件
// filePrefix string: 为前缀
// filePath string: 写入的路径，该函数不检测路径的有效性
// BMP图像会重新加上14字节的文件头，成为独立的位图文件
// Write every image to its own file. Bitmaps get their file header back.
func (ic *Icon) Extract(filePath, filePrefix string) error {
	for i := range ic.Images {
		if err := ic.ImageToFile(filePath, filePrefix, i); err != nil {
			return err
		}
	}
	return nil
}

// ImageToFile 将下标为 index 的图像写入文件，返回错误信息
// write one image to a file named by generateFileNameFormat
func (ic *Icon) ImageToFile(filePath, filePrefix string, index int) error {
	if index < 0 || index >= len(ic.Images) {
		return ErrIconsIndex
	}
	img := ic.Images[index]
	d, err := img.Data()
	if err != nil {
		return err
	}
	ext := "png"
	if _, ok := img.(*BMPImage); ok {
		ext = "bmp"
		if d, err = bmp.Join(d); err != nil {
			return err
		}
	}
	fn := generateFileNameFormat(filePrefix, ext, img.Width(), img.Height(), img.BitsPerPixel())
	return os.WriteFile(filepath.Join(filePath, fn), d, filePerm)
}

// ExtractIcon 将指定的图像单独写入一个ico文件
// Write the image at index to a single-image ico file.
func (ic *Icon) ExtractIcon(path string, index int) error {
	if index < 0 || index >= len(ic.Images) {
		return ErrIconsIndex
	}
	single := &Icon{Images: []Image{ic.Images[index]}}
	return single.SaveFile(path)
}

// generateFileNameFormat 产生文件名
// Generate a formatted file name (customPrefix_icon64x64@24bit.extname)
func generateFileNameFormat(prefix, ext string, width, height, bit int) string {
	return fmt.Sprintf("%s_icon%dx%d@%dbit.%s", prefix, width, height, bit, ext)
}
