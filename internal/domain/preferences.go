package domain

import (
	"strings"
	"time"
)

// Gender is the preferred voice gender for speech synthesis.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// ParseGender maps user input to a Gender. Anything unrecognised is
// female, the default.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man":
		return GenderMale
	default:
		return GenderFemale
	}
}

// Themes known to the display.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Default preference values.
const (
	DefaultTheme         = ThemeDark
	DefaultRevealSpeedMs = 18
	DefaultSpeechRate    = 1.0
)

// Preferences are the user's persisted settings. Field names match the
// keys of the stored JSON blob.
type Preferences struct {
	Theme         string  `json:"theme"`
	AutoSpeak     bool    `json:"autoSpeak"`
	VoiceGender   Gender  `json:"voiceGender"`
	RevealSpeedMs int     `json:"revealSpeedMs"`
	SpeechRate    float64 `json:"speechRate"`
}

// DefaultPreferences returns the fixed defaults used when nothing valid is
// stored.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         DefaultTheme,
		AutoSpeak:     false,
		VoiceGender:   GenderFemale,
		RevealSpeedMs: DefaultRevealSpeedMs,
		SpeechRate:    DefaultSpeechRate,
	}
}

// Normalize replaces missing or invalid fields with their defaults.
func (p Preferences) Normalize() Preferences {
	if p.Theme == "" {
		p.Theme = DefaultTheme
	}
	if p.VoiceGender != GenderMale {
		p.VoiceGender = GenderFemale
	}
	if p.RevealSpeedMs <= 0 {
		p.RevealSpeedMs = DefaultRevealSpeedMs
	}
	if p.SpeechRate <= 0 {
		p.SpeechRate = DefaultSpeechRate
	}
	return p
}

// RevealSpeed returns the per-character reveal delay.
func (p Preferences) RevealSpeed() time.Duration {
	return time.Duration(p.RevealSpeedMs) * time.Millisecond
}
