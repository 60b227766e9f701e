package speech

import "github.com/hammamikhairi/smarthub/internal/domain"

// DefaultVoice is used when no voice candidate was chosen.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "ru-RU-SvetlanaNeural"

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// SynthesisRequest is one piece of text to turn into audio.
type SynthesisRequest struct {
	Text  string
	Voice string  // platform short name; empty means DefaultVoice
	Lang  string  // xml:lang of the SSML document
	Rate  float64 // prosody multiplier, 1.0 is normal speed
}

// requestFor builds the synthesis request for an utterance. No voice
// means the fallback language tag and the synthesizer's default voice.
func requestFor(text string, voice *domain.VoiceCandidate, rate float64) SynthesisRequest {
	if rate <= 0 {
		rate = domain.DefaultSpeechRate
	}
	req := SynthesisRequest{Text: text, Lang: domain.FallbackLang, Rate: rate}
	if voice != nil {
		req.Voice = voice.ID
		if voice.Lang != "" {
			req.Lang = voice.Lang
		}
	}
	return req
}
