package chat

import "fmt"

// Fixed user-facing strings of the message lifecycle.

// ── Turn ─────────────────────────────────────────────────────────

// LineRequestFailed replaces the reply bubble when a turn fails.
func LineRequestFailed() string {
	return "Error: could not get a reply from the server."
}

// ── Speech ───────────────────────────────────────────────────────

func LineNothingToSpeak() string {
	return "Nothing to speak yet."
}

func LineSpeechUnavailable() string {
	return "Speech output is not available on this system."
}

// ── Recognition ──────────────────────────────────────────────────

func LineMicUnavailable() string {
	return "Speech recognition is not available on this system."
}

func LineMicFailed(err error) string {
	return fmt.Sprintf("Speech recognition failed: %v", err)
}

func LineNothingHeard() string {
	return "Didn't catch that."
}
