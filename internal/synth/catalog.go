package synth

// Category is a named group of base prompt templates.
type Category struct {
	Name      string
	Templates []string
}

// DefaultCatalog holds the ASMR base templates, one category per visual theme.
var DefaultCatalog = []Category{
	{
		Name: "glass_fruits",
		Templates: []string{
			"A hyper-realistic cinematic close-up of a whole, full-shaped glass strawberry with a soft red translucent hue. The glass fruit is perfectly centred on a wooden cutting board, glowing subtly under studio lighting. A human hand is clearly visible, holding a sharp stainless steel knife just above the fruit, ready to slice. In slow motion, the knife makes clean slices through the glass fruit, creating delicate glass-crack sounds. Transparent shards scatter lightly. ASMR slicing sounds only.",
			"Ultra-realistic 4K footage of a translucent glass mango with golden-yellow tint being precisely sliced with a steel knife on a wooden cutting board. The mango has a glossy, semi-transparent surface with a visible frosted glass seed inside. Soft cinematic lighting highlights the glass textures. The knife moves smoothly and deliberately, making three clean cuts with crisp glass-shattering sounds. Each slice reveals the crystal-like interior.",
			"Close-up of a crystal-clear glass banana with pale yellow hue resting on a dark wooden surface. A chef's knife rapidly dices the glass fruit into perfect uniform cubes that scatter with each cut. The inside reveals glass segments and texture. Studio lighting creates subtle reflections. ASMR-style audio with only slicing sounds, no background music.",
			"Hyper-detailed glass watermelon with dark green exterior and red glass interior being chopped with a large cleaver. One powerful chop down the middle reveals the translucent red inside with black glass seeds. The two halves fall apart cleanly on a wooden table. Cinematic lighting with shallow depth of field.",
			"A transparent glass apple with light green tint being sliced into thin, even pieces. Each cut creates satisfying glass crack sounds as the knife glides through. The apple core is visible as frosted glass. Macro lens close-up with professional food photography lighting.",
		},
	},
	{
		Name: "creative_materials",
		Templates: []string{
			"A glowing chunk of solid gold being sliced with a heated knife. Each cut creates sharp, crisp snapping sounds like breaking delicate shells. Golden shards scatter as the surface cracks cleanly, blending satisfying crunch with molten smoothness. Warm studio lighting enhances the golden glow.",
			"Crystal-clear ice blocks being precisely cut with a heated blade. Steam rises as the knife meets ice. Each slice produces crisp cracking sounds and the pieces slide apart with glassy precision. Water droplets catch the light as they scatter.",
			"A translucent soap bar made of rainbow colors being sliced into perfect cubes. The knife glides smoothly through the soft material, creating satisfying slicing sounds and revealing marbled patterns inside. Pieces fall away cleanly with slight bounce.",
			"A block of kinetic sand being cut with a thin wire. The sand parts smoothly creating perfect clean edges. Grains cascade gently as the wire passes through. Close-up macro shot showing individual sand particles falling.",
			"A honeycomb structure made of amber glass being carved with precision tools. Each hexagonal cell breaks with tiny crystalline sounds. Golden light passes through creating beautiful refractions.",
		},
	},
	{
		Name: "satisfying_textures",
		Templates: []string{
			"Ultra-satisfying scene of vibrant pastel rainbow butter being gently spread across warm crispy toast. The knife glides smoothly, creating perfect ridges and swirls. Soft spreading sounds and gentle sizzling from the warm bread.",
			"Slicing through a perfect cube of jelly that wobbles hypnotically. The knife creates clean cuts revealing the translucent interior. Each piece jiggles independently as it separates. Subtle squelching sounds.",
			"Cutting through layers of colorful modeling clay stacked in a rainbow pattern. Each slice reveals all the color layers in cross-section. The knife moves smoothly through the soft material with satisfying resistance.",
			"Precise cuts through a sphere of magnetic putty that slowly reforms after each slice. The metallic gray material moves and flows like liquid metal. Subtle magnetic clicking sounds as particles realign.",
			"Slicing through foam blocks that compress and spring back. Each cut creates a satisfying 'whoosh' sound as air escapes. The foam texture is perfectly uniform and bouncy.",
		},
	},
}

var lightingStyles = []string{
	"Ultra-sharp macro lens, shallow depth of field",
	"Cinematic lighting with soft shadows",
	"Professional studio lighting setup",
	"Natural daylight with warm tones",
	"Moody dramatic lighting",
}

var cameraAngles = []string{
	"Extreme close-up from directly above",
	"45-degree angle perspective",
	"Side view macro shot",
	"Slightly elevated bird's eye view",
}

var soundDescriptions = []string{
	"ASMR-quality audio with crisp, clear sounds",
	"High-fidelity slicing sounds only, no background noise",
	"Satisfying cutting sounds with natural acoustics",
	"Crystal-clear audio capturing every detail",
}

// ClosingClause pins the target format and length of every synthesized prompt.
const ClosingClause = "Optimized for TikTok vertical format 9:16, 8-15 seconds duration."

var captionTemplates = []string{
	"✨ Oddly satisfying ASMR moment ✨",
	"🔪 Glass cutting therapy 🔪",
	"💎 Crystal clear relaxation 💎",
	"🧘‍♀️ ASMR vibes only 🧘‍♀️",
	"⚡ Satisfying slice sounds ⚡",
	"🎯 Perfect cuts every time 🎯",
	"🌟 AI-generated satisfaction 🌟",
	"💫 Mesmerizing ASMR content 💫",
}

// HashtagPool is the fixed set captions draw their hashtags from.
var HashtagPool = []string{
	"#ASMR", "#satisfying", "#oddlysatisfying", "#glassfruit",
	"#asmrvideo", "#relaxing", "#calmingsounds", "#slicing",
	"#asmrcommunity", "#tingles", "#mindfulness", "#stressrelief",
	"#viral", "#fyp", "#foryou", "#trending",
}

// Hashtag count bounds, inclusive.
const (
	MinHashtags = 5
	MaxHashtags = 8
)
