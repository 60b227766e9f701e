package conversation

import (
	"testing"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

func TestCommandParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewCommandParser(log)

	tests := []struct {
		input    string
		wantType domain.CommandType
		wantArg  string
	}{
		// Messages
		{"привет", domain.CommandMessage, "привет"},
		{"  what is 2+2?  ", domain.CommandMessage, "what is 2+2?"},
		{"/", domain.CommandMessage, "/"},
		{"", domain.CommandMessage, ""},

		// Settings
		{"/theme light", domain.CommandTheme, "light"},
		{"/THEME dark", domain.CommandTheme, "dark"},
		{"/autospeak", domain.CommandAutoSpeak, ""},
		{"/autospeak off", domain.CommandAutoSpeak, "off"},
		{"/voice male", domain.CommandVoice, "male"},
		{"/speed 30", domain.CommandRevealSpeed, "30"},
		{"/rate   1.5 ", domain.CommandSpeechRate, "1.5"},
		{"/settings", domain.CommandSettings, ""},

		// Speech
		{"/speak", domain.CommandSpeakLast, ""},
		{"/stop", domain.CommandStopSpeech, ""},
		{"/mic", domain.CommandMic, ""},

		// Misc
		{"/help", domain.CommandHelp, ""},
		{"/?", domain.CommandHelp, ""},
		{"/quit", domain.CommandQuit, ""},
		{"/q", domain.CommandQuit, ""},
		{"/flambé now", domain.CommandUnknown, "flambé"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := parser.Parse(tt.input)
			if cmd.Type != tt.wantType {
				t.Errorf("input=%q: got type %s, want %s", tt.input, cmd.Type, tt.wantType)
			}
			if cmd.Arg != tt.wantArg {
				t.Errorf("input=%q: got arg %q, want %q", tt.input, cmd.Arg, tt.wantArg)
			}
		})
	}
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		arg     string
		current bool
		want    bool
		ok      bool
	}{
		{"", false, true, true},
		{"", true, false, true},
		{"on", false, true, true},
		{"OFF", true, false, true},
		{"maybe", true, true, false},
	}
	for _, tt := range tests {
		got, ok := ParseToggle(tt.arg, tt.current)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseToggle(%q, %v) = %v, %v; want %v, %v", tt.arg, tt.current, got, ok, tt.want, tt.ok)
		}
	}
}
