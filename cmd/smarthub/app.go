package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/smarthub/internal/chat"
	"github.com/hammamikhairi/smarthub/internal/conversation"
	"github.com/hammamikhairi/smarthub/internal/display"
	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
	"github.com/hammamikhairi/smarthub/internal/settings"
)

// Speech rate bounds accepted by /rate.
const (
	minSpeechRate = 0.5
	maxSpeechRate = 2.0
)

// screen is the part of the display the command loop talks to.
type screen interface {
	InputChan() <-chan string
	PrintHint(text string)
	Refresh()
}

type cliApp struct {
	ctl    *chat.Controller
	parser *conversation.CommandParser
	store  *settings.Store
	ui     screen
	log    *logger.Logger
}

// run reads input lines until the input closes, ctx ends or the user
// quits.
func (a *cliApp) run(ctx context.Context) {
	in := a.ui.InputChan()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-in:
			if !ok {
				return
			}
			cmd := a.parser.Parse(line)
			a.log.Debug("command: %s (arg=%q)", cmd.Type, cmd.Arg)
			if !a.handle(ctx, cmd) {
				return
			}
		}
	}
}

// handle executes one command. It returns false when the app should exit.
func (a *cliApp) handle(ctx context.Context, cmd domain.Command) bool {
	switch cmd.Type {
	case domain.CommandMessage:
		a.submit(ctx, cmd.Arg)
	case domain.CommandTheme:
		a.setTheme(ctx, cmd.Arg)
	case domain.CommandAutoSpeak:
		on, ok := conversation.ParseToggle(cmd.Arg, a.store.Current().AutoSpeak)
		if !ok {
			a.ui.PrintHint("usage: /autospeak [on|off]")
			return true
		}
		a.store.SetAutoSpeak(ctx, on)
		a.ui.PrintHint("auto-speak " + onOff(on))
	case domain.CommandVoice:
		a.setVoice(ctx, cmd.Arg)
	case domain.CommandRevealSpeed:
		ms, err := strconv.Atoi(cmd.Arg)
		if err != nil || ms <= 0 {
			a.ui.PrintHint("usage: /speed <milliseconds per character>")
			return true
		}
		a.store.SetRevealSpeed(ctx, ms)
		a.ui.PrintHint(fmt.Sprintf("reveal speed %d ms", ms))
	case domain.CommandSpeechRate:
		rate, err := strconv.ParseFloat(strings.Replace(cmd.Arg, ",", ".", 1), 64)
		if err != nil || rate < minSpeechRate || rate > maxSpeechRate {
			a.ui.PrintHint(fmt.Sprintf("usage: /rate <%.1f..%.1f>", minSpeechRate, maxSpeechRate))
			return true
		}
		a.store.SetSpeechRate(ctx, rate)
		a.ui.PrintHint(fmt.Sprintf("speech rate %.2f", rate))
	case domain.CommandSpeakLast:
		a.ctl.SpeakLast(ctx)
	case domain.CommandStopSpeech:
		a.ctl.StopSpeech()
	case domain.CommandMic:
		if a.ctl.Listening() {
			a.ctl.StopListening()
		} else {
			a.ctl.Listen(ctx)
		}
	case domain.CommandSettings:
		a.showSettings()
	case domain.CommandHelp:
		for _, line := range conversation.HelpText() {
			a.ui.PrintHint(line)
		}
	case domain.CommandQuit:
		return false
	case domain.CommandUnknown:
		a.ui.PrintHint(fmt.Sprintf("unknown command /%s, try /help", cmd.Arg))
	}
	return true
}

func (a *cliApp) submit(ctx context.Context, text string) {
	_, err := a.ctl.Submit(ctx, text)
	switch {
	case errors.Is(err, domain.ErrTurnInFlight):
		a.ui.PrintHint("still answering, wait for the reply to finish")
	case err != nil:
		a.log.Error("submit: %v", err)
	}
}

func (a *cliApp) setTheme(ctx context.Context, theme string) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !display.ValidTheme(theme) {
		a.ui.PrintHint("usage: /theme dark|light")
		return
	}
	a.store.SetTheme(ctx, theme)
	a.ui.Refresh()
}

func (a *cliApp) setVoice(ctx context.Context, arg string) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg != string(domain.GenderFemale) && arg != string(domain.GenderMale) {
		a.ui.PrintHint("usage: /voice female|male")
		return
	}
	p := a.store.SetVoiceGender(ctx, domain.ParseGender(arg))
	a.ui.PrintHint("voice " + string(p.VoiceGender))
}

func (a *cliApp) showSettings() {
	p := a.store.Current()
	a.ui.PrintHint("theme        " + p.Theme)
	a.ui.PrintHint("autospeak    " + onOff(p.AutoSpeak))
	a.ui.PrintHint("voice        " + string(p.VoiceGender))
	a.ui.PrintHint(fmt.Sprintf("speed        %d ms", p.RevealSpeedMs))
	a.ui.PrintHint(fmt.Sprintf("rate         %.2f", p.SpeechRate))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
