package domain

// FallbackLang is the language tag used when no voice could be chosen, and
// the tag speech recognition is bound to.
const FallbackLang = "ru-RU"

// VoiceCandidate is a synthesis voice exposed by the platform. It is a
// read-only snapshot; the platform owns the real voice.
type VoiceCandidate struct {
	ID     string // platform short name, e.g. "ru-RU-SvetlanaNeural"
	Name   string // display name
	Lang   string // BCP-47 tag, e.g. "ru-RU"
	Gender string // optional platform hint, may be empty
}

// ActiveUtterance is the one live spoken rendering of a text.
type ActiveUtterance struct {
	ID    uint64 // generation; newer utterances have larger IDs
	Text  string
	Voice *VoiceCandidate
	Lang  string
	Rate  float64
}
