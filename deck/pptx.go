// Package deck assembles a PowerPoint file from an ordered set of frame
// images, one full-bleed picture per slide and nothing else.
package deck

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrWrite marks an unusable output destination. The deck is staged in a
// temporary file and renamed over the target, so no partial file survives a
// failure.
var ErrWrite = errors.New("deck write failed")

// Slide dimensions in EMU: 16in x 9in at 914400 EMU per inch.
const (
	slideWidthEMU  = 14630400
	slideHeightEMU = 8229600
)

// Write produces a pptx at outputPath with one slide per image, in input
// order. The destination directory must already exist.
func Write(outputPath string, imagePaths []string) error {
	dir := filepath.Dir(outputPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: output directory %s does not exist", ErrWrite, dir)
	}

	staging := filepath.Join(dir, "."+filepath.Base(outputPath)+".tmp-"+uuid.NewString())
	f, err := os.Create(staging)
	if err != nil {
		return fmt.Errorf("%w: create staging file: %v", ErrWrite, err)
	}
	defer func() {
		f.Close()          // nolint: errcheck
		os.Remove(staging) // nolint: errcheck
	}()

	if err := writeArchive(f, imagePaths); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync staging file: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close staging file: %v", ErrWrite, err)
	}

	if err := os.Rename(staging, outputPath); err != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrWrite, outputPath, err)
	}

	log.Info().Str("path", outputPath).Int("slides", len(imagePaths)).Msg("deck written")
	return nil
}

func writeArchive(w io.Writer, imagePaths []string) error {
	zw := zip.NewWriter(w)

	type part struct {
		name    string
		content string
	}
	parts := []part{
		{"[Content_Types].xml", contentTypesXML(imagePaths)},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", presentationPart(len(imagePaths))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsPart(len(imagePaths))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for i := range imagePaths {
		n := i + 1
		parts = append(parts,
			part{
				fmt.Sprintf("ppt/slides/slide%d.xml", n),
				fmt.Sprintf(slideXML, fmt.Sprintf("Frame %d", n), "rId2", slideWidthEMU, slideHeightEMU),
			},
			part{
				fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n),
				fmt.Sprintf(slideRelsXML, "../media/"+mediaName(n, imagePaths[i])),
			},
		)
	}

	for _, part := range parts {
		if err := addStringPart(zw, part.name, part.content); err != nil {
			return err
		}
	}

	for i, imagePath := range imagePaths {
		if err := addFilePart(zw, "ppt/media/"+mediaName(i+1, imagePath), imagePath); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalize archive: %v", ErrWrite, err)
	}
	return nil
}

func contentTypesXML(imagePaths []string) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	sb.WriteString(`<Default Extension="jpg" ContentType="image/jpeg"/>`)
	sb.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range imagePaths {
		sb.WriteString(fmt.Sprintf(`<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1))
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func presentationPart(slideCount int) string {
	var ids strings.Builder
	for i := 0; i < slideCount; i++ {
		// rId1 is the slide master; slides start at rId2.
		ids.WriteString(fmt.Sprintf(`<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2))
	}
	return fmt.Sprintf(presentationXML, ids.String(), slideWidthEMU, slideHeightEMU)
}

func presentationRelsPart(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 0; i < slideCount; i++ {
		sb.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+2, i+1))
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func mediaName(n int, imagePath string) string {
	ext := strings.ToLower(filepath.Ext(imagePath))
	if ext != ".png" && ext != ".jpg" {
		ext = ".png"
	}
	return fmt.Sprintf("image%d%s", n, ext)
}

func addStringPart(zw *zip.Writer, name, content string) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%w: add part %s: %v", ErrWrite, name, err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("%w: write part %s: %v", ErrWrite, name, err)
	}
	return nil
}

func addFilePart(zw *zip.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("%w: open image %s: %v", ErrWrite, srcPath, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%w: add part %s: %v", ErrWrite, name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("%w: write part %s: %v", ErrWrite, name, err)
	}
	return nil
}
