package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Faces holds one font face per size class.
type Faces map[Size]font.Face

var allSizes = []Size{SizeSmall, SizeBody, SizeMedium, SizeLarge, SizeHuge}

// LoadFaces parses the font at path (or the first system font found when
// path is empty) and builds a face per size. On any failure it logs a
// warning and falls back to the built-in bitmap face.
func LoadFaces(path string) Faces {
	if path == "" {
		path = FindFont()
	}
	if path != "" {
		faces, err := loadOpenType(path)
		if err == nil {
			log.Printf("✅ Fonts loaded and cached from: %s", path)
			return faces
		}
		log.Printf("⚠️ %v", err)
	}

	log.Println("⚠️ No usable font found, using built-in bitmap font")
	faces := make(Faces, len(allSizes))
	for _, s := range allSizes {
		faces[s] = basicfont.Face7x13
	}
	return faces
}

func loadOpenType(path string) (Faces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}

	faces := make(Faces, len(allSizes))
	for _, s := range allSizes {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    s.Points(),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("font face %.0fpt: %w", s.Points(), err)
		}
		faces[s] = face
	}
	return faces, nil
}

// FindFont returns the first monospace-ish system font that exists, or "".
func FindFont() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/Library/Fonts/Courier New.ttf",
		"C:\\Windows\\Fonts\\cour.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	matches, _ := filepath.Glob("assets/fonts/*.ttf")
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}
