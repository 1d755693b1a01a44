package measure

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font families known to FaceMeasurer.
const (
	FamilySans = "sans-serif"
	FamilyMono = "monospace"
)

type faceKey struct {
	family string
	size   float64
}

// FaceMeasurer measures text with real glyph advances from the Go fonts.
// Unknown families use the sans-serif face. If a face cannot be loaded the
// measurer falls back to Heuristic.
type FaceMeasurer struct {
	logger   *slog.Logger
	fallback Heuristic

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFaceMeasurer parses the bundled fonts. A nil logger discards output.
func NewFaceMeasurer(logger *slog.Logger) *FaceMeasurer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &FaceMeasurer{
		logger: logger,
		fonts:  make(map[string]*opentype.Font),
		faces:  make(map[faceKey]font.Face),
	}
	for family, ttf := range map[string][]byte{
		FamilySans: goregular.TTF,
		FamilyMono: gomono.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			logger.Warn("parse font", "family", family, "error", err)
			continue
		}
		m.fonts[family] = f
	}
	return m
}

// MeasureText implements Measurer.
func (m *FaceMeasurer) MeasureText(text string, fontSize float64, family string) Size {
	face, err := m.face(family, fontSize)
	if err != nil {
		m.logger.Debug("measure with heuristic", "family", family, "error", err)
		return m.fallback.MeasureText(text, fontSize, family)
	}

	m.mu.Lock()
	advance := font.MeasureString(face, text)
	m.mu.Unlock()

	return Size{
		Width:  float64(advance) / 64,
		Height: LineHeight * fontSize,
	}
}

func (m *FaceMeasurer) face(family string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	if _, ok := m.fonts[family]; !ok {
		family = FamilySans
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := faceKey{family: family, size: size}
	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	f, ok := m.fonts[family]
	if !ok {
		return nil, fmt.Errorf("font family %q not loaded", family)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	m.faces[key] = face
	return face, nil
}

// Close releases the cached faces.
func (m *FaceMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, face := range m.faces {
		if err := face.Close(); err != nil {
			return err
		}
		delete(m.faces, key)
	}
	return nil
}
