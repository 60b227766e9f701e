// SmartHub is a terminal chat client for a language-model endpoint, with
// a character-by-character reveal, spoken replies and push-to-talk input.
//
// Usage:
//
//	smarthub [-verbose] [-quiet] [-no-speech] [-no-persist]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/smarthub/internal/chat"
	"github.com/hammamikhairi/smarthub/internal/config"
	"github.com/hammamikhairi/smarthub/internal/conversation"
	"github.com/hammamikhairi/smarthub/internal/display"
	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/gpt"
	"github.com/hammamikhairi/smarthub/internal/logger"
	"github.com/hammamikhairi/smarthub/internal/reveal"
	"github.com/hammamikhairi/smarthub/internal/settings"
	"github.com/hammamikhairi/smarthub/internal/speech"
	"github.com/hammamikhairi/smarthub/internal/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file to write logs to (use \"stderr\" to log to console)")
	flag.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "language-model endpoint URL")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "model identifier sent with every request")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "request timeout per message")
	flag.BoolVar(&cfg.NoSpeech, "no-speech", cfg.NoSpeech, "disable text-to-speech even if Azure keys are set")
	flag.BoolVar(&cfg.DiskCache, "disk-cache", cfg.DiskCache, "persist TTS audio cache to disk")
	flag.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "directory for persistent TTS audio cache")
	flag.BoolVar(&cfg.NoPersist, "no-persist", cfg.NoPersist, "keep settings in memory only")
	flag.StringVar(&cfg.SettingsDB, "settings-db", cfg.SettingsDB, "SQLite file holding the settings")
	flag.StringVar(&cfg.WhisperBin, "whisper-bin", cfg.WhisperBin, "path to the whisper-cpp CLI binary")
	flag.StringVar(&cfg.WhisperModel, "whisper-model", cfg.WhisperModel, "path to the Whisper GGML model file")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the TUI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// The whisper transcriber logs through the standard library; keep it
	// off the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settings.
	kv := openSettings(cfg, log)
	defer kv.Close()
	store := settings.NewStore(kv, log.Named("settings"))
	prefs := store.Load(ctx)
	log.Info("settings loaded: %+v", prefs)

	// Chat pipeline.
	tr := transcript.New()
	ui := display.NewUI(tr, store, log.Named("display"))
	client := gpt.NewClient(cfg.Endpoint, log.Named("gpt"),
		gpt.WithModel(cfg.Model),
		gpt.WithAPIKey(cfg.APIKey),
		gpt.WithHTTPTimeout(cfg.RequestTimeout),
	)
	animator := reveal.New(log.Named("reveal"))

	speaker, mouth := buildSpeaker(cfg, log.Named("tts"))
	recognizer := buildRecognizer(cfg, log.Named("stt"))

	ctl := chat.New(client, tr, animator, store, log.Named("chat"),
		chat.WithRequestTimeout(cfg.RequestTimeout),
		chat.WithSpeaker(speaker),
		chat.WithRecognizer(recognizer),
		chat.WithNotifier(ui),
		chat.WithInputSink(ui),
		chat.WithLanguage(cfg.Language),
	)

	if mouth != nil {
		go func() {
			if err := mouth.RefreshVoices(ctx); err != nil {
				log.Warn("voice list unavailable, using default voice: %v", err)
			}
		}()
	}

	app := &cliApp{
		ctl:    ctl,
		parser: conversation.NewCommandParser(log.Named("parser")),
		store:  store,
		ui:     ui,
		log:    log,
	}

	ui.PrintBanner()
	ui.PrintHint("Type a message and press Enter. /help for commands, /quit to exit.")
	ui.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()

	ctl.StopSpeech()
	ctl.StopListening()
	ctl.Wait()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	store.Flush(flushCtx)
	flushCancel()
	log.Info("bye")
}

// openSettings returns the SQLite backend, or an in-memory one when
// persistence is off or the database cannot be opened.
func openSettings(cfg *config.Config, log *logger.Logger) settings.KV {
	if cfg.NoPersist {
		return settings.NewMemoryKV(log.Named("settings-mem"))
	}
	kv, err := settings.OpenSQLite(cfg.SettingsDB, log.Named("settings-db"))
	if err != nil {
		log.Error("settings database unavailable, settings will not persist: %v", err)
		return settings.NewMemoryKV(log.Named("settings-mem"))
	}
	return kv
}

// buildSpeaker wires Azure synthesis and local playback. The returned
// Mouth is nil when speech is unavailable.
func buildSpeaker(cfg *config.Config, log *logger.Logger) (domain.Speaker, *speech.Mouth) {
	if !cfg.SpeechConfigured() {
		if !cfg.NoSpeech {
			log.Info("TTS disabled: set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION to enable")
		}
		return speech.NewNoOp(log), nil
	}

	var opts []speech.AzureOption
	if cfg.Voice != "" {
		opts = append(opts, speech.WithVoice(cfg.Voice))
	}
	tts := speech.NewAzureClient(cfg.AzureKey, cfg.AzureRegion, log, opts...)

	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return speech.NewNoOp(log), nil
	}

	mouth := speech.NewMouth(tts, player, log,
		speech.WithCache(speech.NewAudioCache(cfg.CacheDir, cfg.DiskCache, log)),
	)
	log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), cfg.AzureRegion)
	return mouth, mouth
}

func buildRecognizer(cfg *config.Config, log *logger.Logger) domain.Recognizer {
	ear := speech.NewEar(cfg.WhisperBin, cfg.WhisperModel, log,
		speech.WithMaxDuration(cfg.MaxRecord),
		speech.WithLanguage(cfg.Language),
	)
	if !ear.Available() {
		log.Info("voice input disabled: whisper binary or model missing")
		return speech.NewNoOp(log)
	}
	log.Info("voice input enabled (bin=%s, model=%s)", cfg.WhisperBin, cfg.WhisperModel)
	return ear
}
