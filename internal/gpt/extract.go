package gpt

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/hammamikhairi/smarthub/internal/domain"
)

// FallbackReply is rendered when the body parses but matches no known shape.
const FallbackReply = "server returned an unexpected response"

// Extractor pulls reply text out of a JSON body. ok is false when the body
// does not have the extractor's shape.
type Extractor struct {
	Name    string
	Extract func(body []byte) (text string, ok bool)
}

// pathExtractor matches when the gjson path resolves to a non-empty string.
func pathExtractor(name, path string) Extractor {
	return Extractor{
		Name: name,
		Extract: func(body []byte) (string, bool) {
			r := gjson.GetBytes(body, path)
			if r.Type != gjson.String || r.Str == "" {
				return "", false
			}
			return r.Str, true
		},
	}
}

// Extractors is the ordered chain; the first match wins. The order encodes
// compatibility with the upstream shapes and must not change:
//
//  1. responses API convenience field      output_text
//  2. responses API structured output      output[0].content[0].text
//  3. chat-completions                     choices[0].message.content
var Extractors = []Extractor{
	pathExtractor("output_text", "output_text"),
	pathExtractor("output", "output.0.content.0.text"),
	pathExtractor("chat_completion", "choices.0.message.content"),
}

// ParseReply validates body as JSON and runs the extractor chain over it.
func ParseReply(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", fmt.Errorf("gpt: parse response: %w", domain.ErrEmptyResponse)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("gpt: parse response: body is not valid JSON")
	}
	if text, ok := extract(body, Extractors); ok {
		return text, nil
	}
	return FallbackReply, nil
}

func extract(body []byte, chain []Extractor) (string, bool) {
	for _, ex := range chain {
		if text, ok := ex.Extract(body); ok {
			return text, true
		}
	}
	return "", false
}
