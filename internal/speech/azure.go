package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the voice used when a request names none.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the regional endpoint root,
// e.g. "https://westeurope.tts.speech.microsoft.com".
func WithBaseURL(u string) AzureOption {
	return func(c *AzureClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// AzureClient talks to the Azure Speech REST API: synthesis and the
// voice list.
type AzureClient struct {
	subscriptionKey string
	baseURL         string
	voice           string
	format          string
	httpClient      *http.Client
	log             *logger.Logger
}

// Compile-time interface check.
var _ Synthesizer = (*AzureClient)(nil)

// NewAzureClient creates an Azure TTS client with the given credentials.
func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		subscriptionKey: key,
		baseURL:         fmt.Sprintf("https://%s.tts.speech.microsoft.com", region),
		voice:           DefaultVoice,
		format:          DefaultAudioFormat,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the default voice name.
func (c *AzureClient) Voice() string { return c.voice }

// Synthesize converts text to speech audio data (WAV bytes).
func (c *AzureClient) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	ssml, err := c.buildSSML(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug("azure tts: synthesizing %d chars (voice=%s lang=%s rate=%.2f)", len(req.Text), c.voiceFor(req), req.Lang, req.Rate)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cognitiveservices/v1", strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("azure: creating request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", c.format)
	httpReq.Header.Set("User-Agent", "SmartHub/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure: tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure: tts error %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure: reading audio data: %w", err)
	}

	c.log.Debug("azure tts: got %d bytes of audio", len(audioData))
	return audioData, nil
}

// ListVoices fetches the voices available in the configured region.
func (c *AzureClient) ListVoices(ctx context.Context) ([]domain.VoiceCandidate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cognitiveservices/voices/list", nil)
	if err != nil {
		return nil, fmt.Errorf("azure: creating request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure: voices request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure: reading voices: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure: voices error %d: %s", resp.StatusCode, string(body))
	}
	return parseVoiceList(body)
}

// parseVoiceList maps the voices/list JSON array onto candidates.
func parseVoiceList(body []byte) ([]domain.VoiceCandidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("azure: voices: invalid json")
	}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return nil, fmt.Errorf("azure: voices: expected an array")
	}

	var out []domain.VoiceCandidate
	list.ForEach(func(_, v gjson.Result) bool {
		id := v.Get("ShortName").String()
		if id == "" {
			return true
		}
		name := v.Get("DisplayName").String()
		if name == "" {
			name = id
		}
		out = append(out, domain.VoiceCandidate{
			ID:     id,
			Name:   name,
			Lang:   v.Get("Locale").String(),
			Gender: v.Get("Gender").String(),
		})
		return true
	})
	return out, nil
}

func (c *AzureClient) voiceFor(req SynthesisRequest) string {
	if req.Voice != "" {
		return req.Voice
	}
	return c.voice
}

// buildSSML creates the SSML document for a synthesis request. Text and
// attribute values are XML-escaped; the rate is a prosody multiplier.
func (c *AzureClient) buildSSML(req SynthesisRequest) (string, error) {
	lang := req.Lang
	if lang == "" {
		lang = domain.FallbackLang
	}
	rate := req.Rate
	if rate <= 0 {
		rate = domain.DefaultSpeechRate
	}

	text, err := escapeXML(req.Text)
	if err != nil {
		return "", fmt.Errorf("azure: escaping text: %w", err)
	}
	langAttr, err := escapeXML(lang)
	if err != nil {
		return "", fmt.Errorf("azure: escaping lang: %w", err)
	}
	voiceAttr, err := escapeXML(c.voiceFor(req))
	if err != nil {
		return "", fmt.Errorf("azure: escaping voice: %w", err)
	}

	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'><prosody rate='%s'>%s</prosody></voice></speak>`,
		langAttr, langAttr, voiceAttr, strconv.FormatFloat(rate, 'f', 2, 64), text,
	), nil
}

// escapeXML escapes s for text content and quoted attributes alike.
func escapeXML(s string) (string, error) {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}
