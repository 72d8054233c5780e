package imgcluster

import (
	"fmt"
	"image"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/setanarut/imgcluster/utils"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scales below this are treated as zero variance.
const minScale = 10 * 2.220446049250313e-16

type LoadOptions struct {
	// Directory searched for *.jpg files when Files is empty.
	Dir string
	// Explicit file list. Used as given, no sorting.
	Files []string
	// Persist the results collection right after loading.
	WriteResults bool
	// Destination for WriteResults. Defaults to DefaultResultsPath.
	ResultsPath string
	// When non-zero every image is resampled to this size before flattening.
	// Zero keeps the decoded size, and differing sizes are an error.
	Resize image.Point
}

// ListImages returns the *.jpg files of dir in lexicographic order.
func ListImages(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// LoadImages decodes the images, flattens each one to a row of values in
// [0,1] and stacks the rows into a column-standardized matrix.
func LoadImages(opts LoadOptions) (*Results, error) {
	files := opts.Files
	if len(files) == 0 {
		var err error
		files, err = ListImages(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("list images in %s: %w", opts.Dir, err)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoImages, opts.Dir)
	}
	log.Info().Int("files", len(files)).Msg("reading and transforming images")

	images := make([]image.Image, 0, len(files))
	var (
		data  []float64
		shape [3]int
	)
	for i, path := range files {
		img, err := utils.ReadImage(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if opts.Resize != (image.Point{}) {
			img = resample(img, opts.Resize)
		}
		row, h, w, c := Flatten(PixelArray(img))
		if len(row) == 0 {
			return nil, fmt.Errorf("load %s: empty image", path)
		}
		if i == 0 {
			shape = [3]int{h, w, c}
			data = make([]float64, 0, len(files)*len(row))
		} else if [3]int{h, w, c} != shape {
			return nil, &ShapeMismatchError{Path: path, Expected: shape, Actual: [3]int{h, w, c}}
		}
		data = append(data, row...)
		images = append(images, img)
		log.Debug().Str("file", path).Int("h", h).Int("w", w).Msg("decoded")
	}

	raw := mat.NewDense(len(files), len(data)/len(files), data)
	r := &Results{
		ImagesFilenameList: files,
		Images:             images,
		Standardized:       Standardize(raw),
	}
	if opts.WriteResults {
		path := opts.ResultsPath
		if path == "" {
			path = DefaultResultsPath
		}
		if err := WriteResults(r, path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// PixelArray returns the image as an H×W×3 array of RGB values scaled to [0,1].
func PixelArray(img image.Image) [][][]float64 {
	b := img.Bounds()
	out := make([][][]float64, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([][]float64, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			row[x-b.Min.X] = []float64{
				float64(r>>8) / 255.0,
				float64(g>>8) / 255.0,
				float64(bl>>8) / 255.0,
			}
		}
		out[y-b.Min.Y] = row
	}
	return out
}

// Flatten reshapes an H×W×C array to a single row in row-major order and
// reports the original dimensions.
func Flatten(a [][][]float64) (row []float64, h, w, c int) {
	h = len(a)
	if h == 0 {
		return nil, 0, 0, 0
	}
	w = len(a[0])
	if w == 0 {
		return nil, h, 0, 0
	}
	c = len(a[0][0])
	row = make([]float64, 0, h*w*c)
	for y := range a {
		for x := range a[y] {
			row = append(row, a[y][x]...)
		}
	}
	return row, h, w, c
}

// Reshape is the inverse of Flatten.
func Reshape(row []float64, h, w, c int) ([][][]float64, error) {
	if h < 0 || w < 0 || c < 0 || len(row) != h*w*c {
		return nil, fmt.Errorf("%w: %d values do not fit %dx%dx%d", ErrShapeMismatch, len(row), h, w, c)
	}
	out := make([][][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([][]float64, w)
		for x := 0; x < w; x++ {
			base := (y*w + x) * c
			px := make([]float64, c)
			copy(px, row[base:base+c])
			out[y][x] = px
		}
	}
	return out, nil
}

// Standardize returns a copy of m with every column shifted to zero mean and
// scaled to unit population variance. Zero-variance columns keep a scale of
// one, so they come out as zeros.
func Standardize(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < minScale {
			std = 1
		}
		for i := range col {
			col[i] = (col[i] - mean) / std
		}
		out.SetCol(j, col)
	}
	return out
}

func resample(src image.Image, size image.Point) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)
	return dst
}
