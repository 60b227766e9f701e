package voice

import (
	"testing"

	"github.com/hammamikhairi/smarthub/internal/domain"
)

var (
	enJenny    = domain.VoiceCandidate{ID: "en-US-JennyNeural", Name: "Jenny", Lang: "en-US"}
	ruSvetlana = domain.VoiceCandidate{ID: "ru-RU-SvetlanaNeural", Name: "Svetlana", Lang: "ru-RU"}
	ruDmitry   = domain.VoiceCandidate{ID: "ru-RU-DmitryNeural", Name: "Dmitry", Lang: "ru-RU"}
	ruPlain    = domain.VoiceCandidate{ID: "ru-voice-1", Name: "Voice One", Lang: "ru-RU"}
	ruHinted   = domain.VoiceCandidate{ID: "ru-RU-X", Name: "X", Lang: "ru-RU", Gender: "Male"}
)

func TestChoose(t *testing.T) {
	tests := []struct {
		name       string
		candidates []domain.VoiceCandidate
		gender     domain.Gender
		lang       string
		want       domain.VoiceCandidate
		wantOK     bool
	}{
		{"empty set", nil, domain.GenderFemale, "ru-RU", domain.VoiceCandidate{}, false},
		{"language and female name", []domain.VoiceCandidate{enJenny, ruDmitry, ruSvetlana}, domain.GenderFemale, "ru-RU", ruSvetlana, true},
		{"language and male name", []domain.VoiceCandidate{enJenny, ruSvetlana, ruDmitry}, domain.GenderMale, "ru-RU", ruDmitry, true},
		{"gender hint wins over name", []domain.VoiceCandidate{ruSvetlana, ruHinted}, domain.GenderMale, "ru", ruHinted, true},
		{"language only", []domain.VoiceCandidate{enJenny, ruPlain}, domain.GenderMale, "ru-RU", ruPlain, true},
		{"case-insensitive prefix", []domain.VoiceCandidate{enJenny, {Name: "Irina", Lang: "RU_ru"}}, domain.GenderFemale, "ru", domain.VoiceCandidate{Name: "Irina", Lang: "RU_ru"}, true},
		{"first candidate fallback", []domain.VoiceCandidate{enJenny, {Name: "Hans", Lang: "de-DE"}}, domain.GenderFemale, "ru-RU", enJenny, true},
		{"single ru voice without gender match", []domain.VoiceCandidate{ruPlain}, domain.GenderMale, "en-US", ruPlain, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Choose(tt.candidates, tt.gender, tt.lang)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFemaleDoesNotMatchMalePattern(t *testing.T) {
	c := domain.VoiceCandidate{Name: "Generic Female", Lang: "ru-RU"}
	if genderMatches(c, domain.GenderMale) {
		t.Fatal("\"female\" must not count as a male name")
	}
	if !genderMatches(c, domain.GenderFemale) {
		t.Fatal("\"female\" should count as a female name")
	}
}
