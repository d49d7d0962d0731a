/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/20 - 20:33:47
 ProgramFile: main.go
 Description: icotool 命令行工具
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"WinIcoCodec/bmp"
	"WinIcoCodec/ico"
	"WinIcoCodec/png"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
)

// Build-time variables injected via ldflags.
var (
	Version    = "v0.0.0"
	CommitHash = "dev"
)

func versionString() string {
	return fmt.Sprintf("icotool %s-%s", Version, CommitHash)
}

var errUsage = errors.New("usage: icotool [options] pack <dir|files...> | list <file.ico> | extract <file.ico> <dir>")

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[icotool] ")

	showVersion := flag.Bool("version", false, "show version and exit")
	out := flag.String("out", "", "output icon file for pack (env: ICOTOOL_OUT, default icon.ico)")
	sizes := flag.String("sizes", "", "comma separated edge lengths to rescale the largest source to, e.g. 16,32,48 (env: ICOTOOL_SIZES)")
	prefix := flag.String("prefix", "", "file name prefix for extract (default icon)")
	noPNG := flag.Bool("no-png", false, "pack without PNG entries")
	noBMP := flag.Bool("no-bmp", false, "pack without BMP entries")
	parallel := flag.Bool("parallel", false, "encode entries in parallel and write in a single pass")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, versionString())
		fmt.Fprintf(os.Stderr, "\n%v\n\nOptions:\n", errUsage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(versionString())
		return
	}

	cfg := defaultConfig()
	applyOverrides(&cfg, overrides{
		Out:      *out,
		Sizes:    *sizes,
		Prefix:   *prefix,
		NoPNG:    *noPNG,
		NoBMP:    *noBMP,
		Parallel: *parallel,
	})

	if err := run(cfg, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// run dispatches a subcommand.
func run(cfg config, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "pack":
		if len(args) < 2 {
			return errUsage
		}
		return pack(cfg, args[1:])
	case "list":
		if len(args) != 2 {
			return errUsage
		}
		return list(w, args[1])
	case "extract":
		if len(args) != 3 {
			return errUsage
		}
		return extract(cfg, args[1], args[2])
	}
	return errUsage
}

// collectFiles expands directories into the image files they contain.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".png", ".bmp", ".gif":
				files = append(files, filepath.Join(a, e.Name()))
			}
		}
	}
	return files, nil
}

// sourceImages loads every file as pixel buffers. GIF frames are
// de-duplicated before they are added. Size limits are left to the
// entries built from them.
func sourceImages(files []string) ([]image.Image, error) {
	var stills, frames []image.Image
	for _, f := range files {
		if strings.ToLower(filepath.Ext(f)) != ".gif" {
			img, err := decodeFile(f)
			if err != nil {
				return nil, err
			}
			stills = append(stills, img)
			continue
		}
		fs, err := os.Open(f)
		if err != nil {
			return nil, err
		}
		g, err := ico.DecodeGIF(fs)
		fs.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		log.Printf("%s: %d distinct frames", f, g.Len())
		frames = append(frames, pixels(g)...)
	}
	return append(stills, frames...), nil
}

// decodeFile decodes a standalone PNG or BMP file.
func decodeFile(name string) (image.Image, error) {
	d, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var img image.Image
	switch ico.GetIconType(d) {
	case ico.TypePNG:
		img, err = png.Decode(d)
	case ico.TypeBMP:
		img, err = bmp.Decode(d)
	default:
		err = ico.ErrUnknownImage
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return img, nil
}

func pixels(ic *ico.Icon) []image.Image {
	var imgs []image.Image
	for _, img := range ic.Images {
		switch v := img.(type) {
		case *ico.PNGImage:
			imgs = append(imgs, v.Image())
		case *ico.BMPImage:
			imgs = append(imgs, v.Image())
		}
	}
	return imgs
}

// rescale resizes the largest source to every requested size.
func rescale(srcs []image.Image, sizes []int) []image.Image {
	var largest image.Image
	for _, s := range srcs {
		if largest == nil || s.Bounds().Dx()*s.Bounds().Dy() > largest.Bounds().Dx()*largest.Bounds().Dy() {
			largest = s
		}
	}
	if largest == nil {
		return nil
	}
	out := make([]image.Image, 0, len(sizes))
	for _, n := range sizes {
		dst := image.NewNRGBA(image.Rect(0, 0, n, n))
		draw.CatmullRom.Scale(dst, dst.Bounds(), largest, largest.Bounds(), draw.Src, nil)
		out = append(out, dst)
	}
	return out
}

func pack(cfg config, args []string) error {
	if cfg.NoPNG && cfg.NoBMP {
		return errors.New("-no-png and -no-bmp leave nothing to pack")
	}
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no image files found")
	}
	srcs, err := sourceImages(files)
	if err != nil {
		return err
	}
	if len(cfg.Sizes) > 0 {
		srcs = rescale(srcs, cfg.Sizes)
	}

	ic := ico.New()
	for _, src := range srcs {
		if !cfg.NoPNG {
			p, err := ico.NewPNGImage(src)
			if err != nil {
				return err
			}
			ic.Add(p)
		}
		if !cfg.NoBMP {
			b, err := ico.NewBMPImage(src, true)
			if err != nil {
				log.Printf("Skipping bitmap %dx%d: %v", src.Bounds().Dx(), src.Bounds().Dy(), err)
				continue
			}
			ic.Add(b)
		}
	}
	if ic.Len() == 0 {
		return errors.New("no images could be packed")
	}
	ic.SortBySize()

	fs, err := os.Create(cfg.Out)
	if err != nil {
		return err
	}
	if cfg.Parallel {
		err = ic.Encode(fs)
	} else {
		err = ic.Save(fs)
	}
	if err != nil {
		fs.Close()
		return err
	}
	if err := fs.Close(); err != nil {
		return err
	}

	fi, err := os.Stat(cfg.Out)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s: %d images, %s", cfg.Out, ic.Len(), humanize.Bytes(uint64(fi.Size())))
	return nil
}

func list(w io.Writer, name string) error {
	fs, err := os.Open(name)
	if err != nil {
		return err
	}
	defer fs.Close()
	entries, err := ico.ReadDirectory(fs)
	if err != nil {
		return err
	}
	if _, err := fs.Seek(0, io.SeekStart); err != nil {
		return err
	}
	ic, err := ico.Load(fs)
	if err != nil {
		return err
	}

	var total uint64
	for i, e := range entries {
		kind := "BMP"
		if _, ok := ic.Images[i].(*ico.PNGImage); ok {
			kind = "PNG"
		}
		fmt.Fprintf(w, "%2d  %s  %3dx%-3d  %2d bit  %8s  @%d",
			i, kind, e.GetWidth(), e.GetHeight(), e.BitsPerPixel,
			humanize.Bytes(uint64(e.ImageDataSize)), e.ImageOffset)
		if kind == "PNG" {
			d, err := io.ReadAll(io.NewSectionReader(fs, int64(e.ImageOffset), int64(e.ImageDataSize)))
			if err != nil {
				return err
			}
			if h, err := png.ReadHeader(d); err == nil {
				fmt.Fprintf(w, "  [%s %d bit]", h.ColorTypeName(), h.BitsPerPixel())
			}
		}
		fmt.Fprintln(w)
		total += uint64(e.ImageDataSize)
	}
	fmt.Fprintf(w, "%d images, %s of image data\n", len(entries), humanize.Bytes(total))
	return nil
}

func extract(cfg config, name, dir string) error {
	ic, err := ico.LoadFile(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	if err := ic.Extract(dir, cfg.Prefix); err != nil {
		return err
	}
	log.Printf("Extracted %d images to %s", ic.Len(), dir)
	return nil
}
