package languages

import (
	"strings"

	"golang.org/x/text/language"
)

// Vocabulary identifies which engine a language code belongs to.
type Vocabulary int

const (
	Recognition Vocabulary = iota
	Translation
	Synthesis
)

func (v Vocabulary) String() string {
	switch v {
	case Recognition:
		return "recognition"
	case Translation:
		return "translation"
	case Synthesis:
		return "synthesis"
	}
	return "unknown"
}

// Auto is not a language code. It tells the pipeline to take the source
// language from transcription.
const Auto = "auto"

const (
	DefaultSource     = "eng_Latn"
	DefaultTarget     = "spa_Latn"
	DefaultRecognized = "en"
	DefaultSynthesis  = "en"
)

// Language is one supported language in all three vocabularies.
type Language struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Recognition string `json:"recognition"`
	Synthesis   string `json:"synthesis"`
}

var supported = []Language{
	{Name: "English", Code: "eng_Latn", Recognition: "en", Synthesis: "en"},
	{Name: "Spanish", Code: "spa_Latn", Recognition: "es", Synthesis: "es"},
	{Name: "French", Code: "fra_Latn", Recognition: "fr", Synthesis: "fr"},
	{Name: "Hindi", Code: "hin_Deva", Recognition: "hi", Synthesis: "hi"},
	{Name: "German", Code: "deu_Latn", Recognition: "de", Synthesis: "de"},
	{Name: "Italian", Code: "ita_Latn", Recognition: "it", Synthesis: "it"},
	{Name: "Portuguese", Code: "por_Latn", Recognition: "pt", Synthesis: "pt"},
	{Name: "Russian", Code: "rus_Cyrl", Recognition: "ru", Synthesis: "ru"},
	{Name: "Chinese", Code: "zho_Hans", Recognition: "zh", Synthesis: "zh-CN"},
	{Name: "Japanese", Code: "jpn_Jpan", Recognition: "ja", Synthesis: "ja"},
	{Name: "Korean", Code: "kor_Hang", Recognition: "ko", Synthesis: "ko"},
	{Name: "Arabic", Code: "arb_Arab", Recognition: "ar", Synthesis: "ar"},
}

var (
	byTranslation = map[string]Language{}
	byRecognition = map[string]Language{}
	bySynthesis   = map[string]Language{}
)

func init() {
	for _, l := range supported {
		byTranslation[strings.ToLower(l.Code)] = l
		byRecognition[l.Recognition] = l
		// whisper verbose_json reports the language name, not the ISO code
		byRecognition[strings.ToLower(l.Name)] = l
		bySynthesis[strings.ToLower(l.Synthesis)] = l
	}
}

// Supported returns a copy of the supported set in display order.
func Supported() []Language {
	return append([]Language(nil), supported...)
}

// Lookup finds the language a code belongs to in the given vocabulary.
func Lookup(code string, v Vocabulary) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(code))
	if key == "" {
		return Language{}, false
	}

	switch v {
	case Translation:
		l, ok := byTranslation[key]
		return l, ok
	case Recognition:
		if l, ok := byRecognition[key]; ok {
			return l, true
		}
		// "en-US" -> "en"
		if i := strings.IndexAny(key, "-_"); i > 0 {
			l, ok := byRecognition[key[:i]]
			return l, ok
		}
	case Synthesis:
		if l, ok := bySynthesis[key]; ok {
			return l, true
		}
		if base := BaseTag(key); base != key {
			l, ok := byRecognition[base]
			return l, ok
		}
	}
	return Language{}, false
}

// IsTranslationCode reports whether code is a supported translation code.
func IsTranslationCode(code string) bool {
	_, ok := Lookup(code, Translation)
	return ok
}

// ToTranslationCode maps a code from any vocabulary to its translation code.
// Unknown codes resolve to DefaultSource.
func ToTranslationCode(code string, v Vocabulary) string {
	if l, ok := Lookup(code, v); ok {
		return l.Code
	}
	return DefaultSource
}

// ToSynthesisCode maps a translation code to the speech engine's code.
// Unknown codes resolve to DefaultSynthesis.
func ToSynthesisCode(code string) string {
	if l, ok := Lookup(code, Translation); ok {
		return l.Synthesis
	}
	return DefaultSynthesis
}

// RecognitionToTranslation maps a transcription engine language (ISO code or
// English name) to its translation code, defaulting to DefaultSource.
func RecognitionToTranslation(code string) string {
	return ToTranslationCode(code, Recognition)
}

// TranslationToRecognition maps a translation code back to a transcription
// hint. ok is false when the code is not supported.
func TranslationToRecognition(code string) (string, bool) {
	l, ok := Lookup(code, Translation)
	if !ok {
		return "", false
	}
	return l.Recognition, true
}

// Normalize accepts a caller-supplied code in any vocabulary and returns the
// translation code. Translation codes win over the short vocabularies.
func Normalize(code string) (string, bool) {
	for _, v := range []Vocabulary{Translation, Recognition, Synthesis} {
		if l, ok := Lookup(code, v); ok {
			return l.Code, true
		}
	}
	return "", false
}

// BaseTag reduces a region-qualified tag ("zh-CN") to its base language ("zh").
func BaseTag(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}
