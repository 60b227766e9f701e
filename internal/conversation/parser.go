// Package conversation turns raw input lines into commands.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// CommandParser recognises slash commands; anything that does not start
// with "/" is a chat message.
type CommandParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
}

// NewCommandParser creates a slash-command parser.
func NewCommandParser(log *logger.Logger) *CommandParser {
	p := &CommandParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(theme|t)$`), domain.CommandTheme},
		{regexp.MustCompile(`(?i)^(autospeak|auto|as)$`), domain.CommandAutoSpeak},
		{regexp.MustCompile(`(?i)^(voice|gender|v)$`), domain.CommandVoice},
		{regexp.MustCompile(`(?i)^(speed|typespeed)$`), domain.CommandRevealSpeed},
		{regexp.MustCompile(`(?i)^(rate|speechrate)$`), domain.CommandSpeechRate},
		{regexp.MustCompile(`(?i)^(speak|say|repeat|r)$`), domain.CommandSpeakLast},
		{regexp.MustCompile(`(?i)^(stop|shh|hush)$`), domain.CommandStopSpeech},
		{regexp.MustCompile(`(?i)^(mic|listen|m)$`), domain.CommandMic},
		{regexp.MustCompile(`(?i)^(settings|prefs|s)$`), domain.CommandSettings},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.CommandQuit},
	}
	return p
}

// Parse classifies one input line.
func (p *CommandParser) Parse(input string) domain.Command {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") || trimmed == "/" {
		return domain.Command{Type: domain.CommandMessage, Arg: trimmed}
	}

	name, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(name) {
			p.log.Debug("matched command: %s %q", rule.command, arg)
			return domain.Command{Type: rule.command, Arg: arg}
		}
	}

	p.log.Debug("unknown command %q", name)
	return domain.Command{Type: domain.CommandUnknown, Arg: name}
}

// ParseToggle reads an on/off argument. An empty argument flips current.
func ParseToggle(arg string, current bool) (bool, bool) {
	switch strings.ToLower(arg) {
	case "":
		return !current, true
	case "on", "yes", "true", "1", "вкл":
		return true, true
	case "off", "no", "false", "0", "выкл":
		return false, true
	default:
		return current, false
	}
}

// HelpText lists the available commands.
func HelpText() []string {
	return []string{
		"/theme dark|light     switch colour theme",
		"/autospeak [on|off]   speak replies automatically",
		"/voice female|male    preferred voice gender",
		"/speed <ms>           reveal delay per character",
		"/rate <x>             speech rate multiplier, 1.0 is normal",
		"/speak                speak the last reply",
		"/stop                 stop speaking",
		"/mic                  start or stop voice input",
		"/settings             show current settings",
		"/quit                 exit",
	}
}
