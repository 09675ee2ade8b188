package synth

import "strings"

// CaptionSynthesizer composes a caption line followed by a hashtag line.
type CaptionSynthesizer struct {
	rand     Rand
	captions []string
	hashtags []string
}

// NewCaptionSynthesizer draws from r over the default caption and hashtag pools.
func NewCaptionSynthesizer(r Rand) *CaptionSynthesizer {
	return &CaptionSynthesizer{rand: guard(r), captions: captionTemplates, hashtags: HashtagPool}
}

// Synthesize returns "<caption>\n\n<tag> <tag> ...". promptUsed does not
// influence the output yet.
func (s *CaptionSynthesizer) Synthesize(promptUsed string) string {
	_ = promptUsed

	count := MinHashtags + s.rand.IntN(MaxHashtags-MinHashtags+1)
	tags := s.sample(count)
	caption := pick(s.rand, s.captions)

	return caption + "\n\n" + strings.Join(tags, " ")
}

// sample draws n distinct hashtags with a partial Fisher-Yates shuffle.
func (s *CaptionSynthesizer) sample(n int) []string {
	pool := append([]string(nil), s.hashtags...)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + s.rand.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
