package deck_test

import (
	"archive/zip"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandudorogan/youtube-ppt/deck"
)

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func partNames(t *testing.T, pptxPath string) map[string]bool {
	t.Helper()
	r, err := zip.OpenReader(pptxPath)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		names[f.Name] = true
	}
	return names
}

func TestWriteProducesOneSlidePerImage(t *testing.T) {
	dir := t.TempDir()
	img1 := filepath.Join(dir, "frame_000.png")
	img2 := filepath.Join(dir, "frame_001.png")
	writePNG(t, img1, color.RGBA{R: 255, A: 255})
	writePNG(t, img2, color.RGBA{B: 255, A: 255})

	out := filepath.Join(dir, "talk.pptx")
	require.NoError(t, deck.Write(out, []string{img1, img2}))

	names := partNames(t, out)
	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/slides/_rels/slide2.xml.rels",
		"ppt/media/image1.png",
		"ppt/media/image2.png",
	} {
		assert.True(t, names[want], "missing part %s", want)
	}
	assert.False(t, names["ppt/slides/slide3.xml"], "unexpected third slide")
}

func TestWriteEmbedsImageBytesUnchanged(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame_000.png")
	writePNG(t, imgPath, color.RGBA{G: 255, A: 255})

	out := filepath.Join(dir, "talk.pptx")
	require.NoError(t, deck.Write(out, []string{imgPath}))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	var embedded []byte
	for _, f := range r.File {
		if f.Name == "ppt/media/image1.png" {
			rc, err := f.Open()
			require.NoError(t, err)
			embedded, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close() // nolint: errcheck
		}
	}

	original, err := os.ReadFile(imgPath)
	require.NoError(t, err)
	assert.Equal(t, original, embedded)
}

func TestWriteEmptyDeck(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "empty.pptx")
	require.NoError(t, deck.Write(out, nil))

	names := partNames(t, out)
	assert.True(t, names["ppt/presentation.xml"])
	assert.False(t, names["ppt/slides/slide1.xml"])
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame_000.png")
	writePNG(t, imgPath, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	out1 := filepath.Join(dir, "a.pptx")
	out2 := filepath.Join(dir, "b.pptx")
	require.NoError(t, deck.Write(out1, []string{imgPath}))
	require.NoError(t, deck.Write(out2, []string{imgPath}))

	b1, err := os.ReadFile(out1)
	require.NoError(t, err)
	b2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestWriteMissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "frame_000.png")
	writePNG(t, imgPath, color.RGBA{A: 255})

	err := deck.Write(filepath.Join(dir, "nope", "talk.pptx"), []string{imgPath})
	assert.ErrorIs(t, err, deck.ErrWrite)
}

func TestWriteLeavesNoPartialFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "talk.pptx")

	// Point a slide at a missing image so the archive write fails midway.
	err := deck.Write(out, []string{filepath.Join(dir, "missing.png")})
	require.ErrorIs(t, err, deck.ErrWrite)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial deck or staging file should remain")
}
