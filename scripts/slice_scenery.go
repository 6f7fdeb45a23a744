// slice_scenery cuts a sheet of equally sized backdrops into one PNG per
// scenery tag, for use as TASKVENTURE_SCENERY_DIR.
// Usage: go run scripts/slice_scenery.go <sheet.png> <outdir> <cols> <tag>...
// Tags are read left to right, top to bottom; "-" skips a cell.
package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var tagPattern = regexp.MustCompile(`^[a-z][a-z_]*$`)

func main() {
	if code := run(os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}

func run(args []string) int {
	if len(args) < 4 {
		fmt.Fprintf(os.Stderr, "usage: go run scripts/slice_scenery.go <sheet.png> <outdir> <cols> <tag>...\n")
		return 1
	}
	inPath, outDir := filepath.Clean(args[0]), filepath.Clean(args[1])
	cols, err := strconv.Atoi(args[2])
	if err != nil || cols < 1 {
		fmt.Fprintf(os.Stderr, "cols must be a positive number\n")
		return 1
	}
	tags := args[3:]
	for _, t := range tags {
		if t != "-" && !tagPattern.MatchString(t) {
			fmt.Fprintf(os.Stderr, "bad tag %q\n", t)
			return 1
		}
	}

	img, err := decode(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	rowCount := (len(tags) + cols - 1) / cols
	b := img.Bounds()
	cellW, cellH := b.Dx()/cols, b.Dy()/rowCount
	if cellW == 0 || cellH == 0 {
		fmt.Fprintf(os.Stderr, "sheet %dx%d is too small for %d cells\n", b.Dx(), b.Dy(), len(tags))
		return 1
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir %s: %v\n", outDir, err)
		return 1
	}
	for i, tag := range tags {
		if tag == "-" {
			continue
		}
		x0 := b.Min.X + (i%cols)*cellW
		y0 := b.Min.Y + (i/cols)*cellH
		out := filepath.Join(outDir, tag+".png")
		if err := writeCell(img, image.Rect(x0, y0, x0+cellW, y0+cellH), out); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
			return 1
		}
		fmt.Println(out)
	}
	return 0
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writeCell(img image.Image, r image.Rectangle, path string) (err error) {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			dst.Set(x, y, img.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	f, err := os.Create(path) // #nosec G304 -- under the operator's outdir
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	return png.Encode(f, dst)
}
