package speech

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hammamikhairi/smarthub/internal/logger"
)

// wav builds a minimal RIFF file with an optional odd-sized extra chunk
// before the data chunk.
func wav(pcm []byte, extra []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString("WAVE")

	fmtChunk := make([]byte, 16)
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(len(fmtChunk)))
	b.Write(fmtChunk)

	if extra != nil {
		b.WriteString("LIST")
		binary.Write(&b, binary.LittleEndian, uint32(len(extra)))
		b.Write(extra)
		if len(extra)%2 != 0 {
			b.WriteByte(0)
		}
	}

	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestExtractPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name    string
		in      []byte
		want    []byte
		wantErr bool
	}{
		{"plain", wav(pcm, nil), pcm, false},
		{"odd extra chunk is padded", wav(pcm, []byte{9, 9, 9}), pcm, false},
		{"too short", []byte("RIFF"), nil, true},
		{"not riff", append([]byte("JUNK"), make([]byte, 60)...), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPCM(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAudioCacheDiskTier(t *testing.T) {
	dir := t.TempDir()
	req := SynthesisRequest{Text: "кэш", Voice: "v", Lang: "ru-RU", Rate: 1}

	writer := NewAudioCache(dir, true, logger.Nop())
	writer.Put(req, []byte("audio"))

	// A fresh cache reading the same directory starts warm.
	reader := NewAudioCache(dir, false, logger.Nop())
	got, ok := reader.Get(req)
	if !ok || string(got) != "audio" {
		t.Fatalf("disk hit failed: ok=%v got=%q", ok, got)
	}

	faster := req
	faster.Rate = 1.5
	if _, ok := reader.Get(faster); ok {
		t.Fatal("rate must be part of the cache key")
	}
}
