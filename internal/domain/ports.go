package domain

import "context"

// Requester sends one user input to the language-model endpoint and
// returns the extracted reply text. Implementations decide how reply text
// is pulled out of the response body.
type Requester interface {
	Respond(ctx context.Context, input string) (string, error)
}

// Transcript is the append-only render surface the controller writes to.
type Transcript interface {
	AppendUser(text string) string
	AppendReply() ReplyBubble
}

// ReplyBubble is a handle on one assistant entry of the transcript. It is
// also the target of the reveal animation.
type ReplyBubble interface {
	SetText(text string)
	ClearTyping()
	SetSpeaking(on bool)
	Fail(message string)
	MarkComplete()
}

// Speaker owns at most one active utterance. Speak supersedes whatever
// was playing; Stop is idempotent.
type Speaker interface {
	Speak(ctx context.Context, text string, voice *VoiceCandidate, rate float64) error
	Stop()
	Voices() []VoiceCandidate
}

// Recognizer runs one speech-to-text session and returns the best-guess
// transcript. Stop ends a running session early.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
	Stop()
}

// InputSink is the input field of the render surface. Recognized speech
// replaces its content; the listening affordance is toggled around a
// recognition session.
type InputSink interface {
	SetInput(text string)
	SetListening(on bool)
}

// Notifier delivers user-visible notices, such as a capability being
// unavailable at the point of use.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// PreferenceSource exposes the current user preferences.
type PreferenceSource interface {
	Current() Preferences
}
