/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/15 - 14:27:31
 ProgramFile: save.go
 Description: 将图标写入ico文件
*/

package ico

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/remeh/sizedwaitgroup"
)

// newFileHeader 根据图像数量创建文件头
func (ic *Icon) newFileHeader() (fileHeader, error) {
	if len(ic.Images) > math.MaxUint16 {
		return fileHeader{}, ErrTooLarge
	}
	return fileHeader{FileType: 1, ImageCount: uint16(len(ic.Images))}, nil
}

// Save 将图标写入 ws
// 先写入文件头和目录项(大小与偏移量先占位)，然后逐个编码图像，
// 回到目录项填写大小与偏移量，再把图像数据追加到末尾。
// 偏移量从调用时 ws 的当前位置开始计算。
// Save writes the header and placeholder entries, then for each image
// encodes it, seeks back to patch its size and offset, and appends the data.
// Offsets are relative to the position of ws when Save is called.
func (ic *Icon) Save(ws io.WriteSeeker) error {
	if ws == nil {
		return ErrNilStream
	}
	h, err := ic.newFileHeader()
	if err != nil {
		return err
	}
	base, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := ws.Write(h.headerToBytes()); err != nil {
		return err
	}

	// 每个目录项中图像数据大小字段的位置
	pending := make([]int64, len(ic.Images))
	for i, img := range ic.Images {
		pending[i] = base + directorySize(i) + 8
		e := newEntry(img)
		if _, err := ws.Write(e.headerToBytes()); err != nil {
			return err
		}
	}

	patch := make([]byte, 8)
	for i, img := range ic.Images {
		d, err := img.Data()
		if err != nil {
			return fmt.Errorf("ico: image %d: %w", i, err)
		}
		end, err := ws.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		offset := end - base
		if offset > math.MaxUint32 || int64(len(d)) > math.MaxUint32 {
			return ErrTooLarge
		}
		binary.LittleEndian.PutUint32(patch[0:4], uint32(len(d)))
		binary.LittleEndian.PutUint32(patch[4:8], uint32(offset))
		if _, err := ws.Seek(pending[i], io.SeekStart); err != nil {
			return err
		}
		if _, err := ws.Write(patch); err != nil {
			return err
		}
		if _, err := ws.Seek(end, io.SeekStart); err != nil {
			return err
		}
		if _, err := ws.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// Encode 将图标写入不支持 Seek 的 w
// 所有图像并行编码，全部完成后按顺序计算偏移量，一次顺序写出。
// 输出与 Save 完全相同。
// Encode is Save for writers that cannot seek: payloads are encoded in
// parallel, offsets are computed in one sequential pass, and the file is
// written front to back. The output is identical to Save.
func (ic *Icon) Encode(w io.Writer) error {
	if w == nil {
		return ErrNilStream
	}
	h, err := ic.newFileHeader()
	if err != nil {
		return err
	}
	payloads, err := encodePayloads(ic.Images)
	if err != nil {
		return err
	}
	entries := make([]Entry, len(ic.Images))
	for i, img := range ic.Images {
		entries[i] = newEntry(img)
	}
	if err := generateOffset(entries, payloads); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(h.headerToBytes()); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := bw.Write(e.headerToBytes()); err != nil {
			return err
		}
	}
	for _, d := range payloads {
		if _, err := bw.Write(d); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// encodePayloads 并行编码所有图像，同时运行的数量不超过CPU核数
// Encode every image concurrently, at most NumCPU at a time.
func encodePayloads(images []Image) ([][]byte, error) {
	payloads := make([][]byte, len(images))
	errs := make([]error, len(images))
	swg := sizedwaitgroup.New(runtime.NumCPU())
	for i, img := range images {
		swg.Add()
		go func(i int, img Image) {
			defer swg.Done()
			payloads[i], errs[i] = img.Data()
		}(i, img)
	}
	swg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("ico: image %d: %w", i, err)
		}
	}
	return payloads, nil
}

// SaveFile 将图标写入文件
// write icon to file (no check legality of path)
func (ic *Icon) SaveFile(name string) error {
	fs, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := ic.Save(fs); err != nil {
		fs.Close()
		return err
	}
	return fs.Close()
}
