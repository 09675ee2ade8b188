package synth

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws so output composition can be asserted exactly.
type scriptedRand struct {
	draws []int
	next  int
}

func (s *scriptedRand) IntN(n int) int {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v % n
}

func TestPromptSynthesize_ExactComposition(t *testing.T) {
	// category 1, template 2, lighting 4, angle 0, sound 3
	r := &scriptedRand{draws: []int{1, 2, 4, 0, 3}}
	p := NewPromptSynthesizer(r)

	got := p.Synthesize()

	want := DefaultCatalog[1].Templates[2] + " " +
		lightingStyles[4] + ". " +
		cameraAngles[0] + ". " +
		soundDescriptions[3] + ". " +
		ClosingClause
	assert.Equal(t, want, got)
}

func TestPromptSynthesize_AlwaysFromCatalog(t *testing.T) {
	p := NewPromptSynthesizer(NewSeeded(42))

	for i := 0; i < 200; i++ {
		got := p.Synthesize()
		require.NotEmpty(t, got)
		assert.True(t, strings.HasSuffix(got, ClosingClause))

		found := false
		for _, c := range DefaultCatalog {
			for _, tmpl := range c.Templates {
				if strings.HasPrefix(got, tmpl+" ") {
					found = true
				}
			}
		}
		assert.True(t, found, "prompt does not start with a catalog template: %s", got)
	}
}

func TestPromptSynthesize_SameSeedSameOutput(t *testing.T) {
	a := NewPromptSynthesizer(NewSeeded(7))
	b := NewPromptSynthesizer(NewSeeded(7))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Synthesize(), b.Synthesize())
	}
}

func TestCaptionSynthesize_ExactComposition(t *testing.T) {
	// count draw 2 -> 7 tags; swaps all zero -> first 7 pool tags; caption 5
	draws := []int{2, 0, 0, 0, 0, 0, 0, 0, 5}
	c := NewCaptionSynthesizer(&scriptedRand{draws: draws})

	got := c.Synthesize("ignored")

	want := captionTemplates[5] + "\n\n" + strings.Join(HashtagPool[:7], " ")
	assert.Equal(t, want, got)
}

func TestCaptionSynthesize_HashtagBounds(t *testing.T) {
	c := NewCaptionSynthesizer(NewSeeded(99))
	pool := map[string]bool{}
	for _, tag := range HashtagPool {
		pool[tag] = true
	}
	seenCounts := map[int]bool{}

	for i := 0; i < 500; i++ {
		out := c.Synthesize("prompt")
		parts := strings.SplitN(out, "\n\n", 2)
		require.Len(t, parts, 2)
		assert.Contains(t, captionTemplates, parts[0])

		tags := strings.Split(parts[1], " ")
		assert.GreaterOrEqual(t, len(tags), MinHashtags)
		assert.LessOrEqual(t, len(tags), MaxHashtags)
		seenCounts[len(tags)] = true

		unique := map[string]bool{}
		for _, tag := range tags {
			assert.True(t, pool[tag], "unknown hashtag %q", tag)
			assert.False(t, unique[tag], "duplicate hashtag %q", tag)
			unique[tag] = true
		}
	}
	assert.Len(t, seenCounts, MaxHashtags-MinHashtags+1)
}

func TestCaptionSynthesize_PromptDoesNotMatter(t *testing.T) {
	a := NewCaptionSynthesizer(NewSeeded(3))
	b := NewCaptionSynthesizer(NewSeeded(3))
	assert.Equal(t, a.Synthesize("one"), b.Synthesize("two"))
}

func TestSynthesizers_ConcurrentUse(t *testing.T) {
	r := Locked(NewSeeded(1))
	p := NewPromptSynthesizer(r)
	c := NewCaptionSynthesizer(r)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NotEmpty(t, p.Synthesize())
				assert.NotEmpty(t, c.Synthesize(""))
			}
		}()
	}
	wg.Wait()
}
