package synth

import "fmt"

// PromptSynthesizer builds generation instructions for auto-mode jobs.
type PromptSynthesizer struct {
	rand    Rand
	catalog []Category
}

// NewPromptSynthesizer draws from r over the default catalog. A nil r uses a
// randomly seeded source.
func NewPromptSynthesizer(r Rand) *PromptSynthesizer {
	return NewPromptSynthesizerWithCatalog(r, DefaultCatalog)
}

// NewPromptSynthesizerWithCatalog draws from r over catalog.
func NewPromptSynthesizerWithCatalog(r Rand, catalog []Category) *PromptSynthesizer {
	return &PromptSynthesizer{rand: guard(r), catalog: catalog}
}

// Synthesize picks a category, a template within it, and one lighting, angle
// and sound modifier, then appends the closing clause.
func (s *PromptSynthesizer) Synthesize() string {
	category := s.catalog[s.rand.IntN(len(s.catalog))]
	base := pick(s.rand, category.Templates)
	lighting := pick(s.rand, lightingStyles)
	angle := pick(s.rand, cameraAngles)
	sound := pick(s.rand, soundDescriptions)

	return fmt.Sprintf("%s %s. %s. %s. %s", base, lighting, angle, sound, ClosingClause)
}
