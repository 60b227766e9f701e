package domain

// CommandType classifies one line of user input.
type CommandType int

const (
	CommandMessage     CommandType = iota // plain text, sent as a turn
	CommandUnknown                        // unrecognised slash command
	CommandTheme                          // /theme dark|light
	CommandAutoSpeak                      // /autospeak [on|off]
	CommandVoice                          // /voice female|male
	CommandRevealSpeed                    // /speed <ms>
	CommandSpeechRate                     // /rate <multiplier>
	CommandSpeakLast                      // /speak
	CommandStopSpeech                     // /stop
	CommandMic                            // /mic
	CommandSettings                       // /settings
	CommandHelp                           // /help
	CommandQuit                           // /quit
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandMessage:
		return "message"
	case CommandTheme:
		return "theme"
	case CommandAutoSpeak:
		return "autospeak"
	case CommandVoice:
		return "voice"
	case CommandRevealSpeed:
		return "speed"
	case CommandSpeechRate:
		return "rate"
	case CommandSpeakLast:
		return "speak"
	case CommandStopSpeech:
		return "stop"
	case CommandMic:
		return "mic"
	case CommandSettings:
		return "settings"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a parsed input line. Arg holds the argument of a slash
// command, or the full text of a message.
type Command struct {
	Type CommandType
	Arg  string
}
