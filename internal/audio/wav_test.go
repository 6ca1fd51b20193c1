package audio

import (
	"errors"
	"testing"
)

func TestEncodeWAV_HeaderRoundTrip(t *testing.T) {
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.25
	}

	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if len(data) != WAVHeaderSize+len(samples)*2 {
		t.Fatalf("Expected %d bytes, got %d", WAVHeaderSize+len(samples)*2, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("Expected RIFF/WAVE magic")
	}

	info, err := ParseWAVHeader(data)
	if err != nil {
		t.Fatalf("ParseWAVHeader failed: %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}
	if info.NumSamples != uint32(len(samples)) {
		t.Errorf("Expected %d samples, got %d", len(samples), info.NumSamples)
	}
	if info.Duration != 0.1 {
		t.Errorf("Expected duration 0.1s, got %f", info.Duration)
	}
}

func TestEncodeWAV_Empty(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); !errors.Is(err, ErrEmptyChunk) {
		t.Errorf("Expected ErrEmptyChunk, got %v", err)
	}
	if _, err := EncodeWAV([]float32{0.1}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestDecodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5}
	data, err := EncodeWAV(samples, 8000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	info, pcm, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if info.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", info.SampleRate)
	}

	decoded, err := DecodePCM16(pcm)
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}
	if len(decoded) != 3 || decoded[2] != -0.5 {
		t.Errorf("Expected decoded samples [0 ~0.5 -0.5], got %v", decoded)
	}
}

func TestParseWAVHeader_Invalid(t *testing.T) {
	if _, err := ParseWAVHeader([]byte("RIFF")); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Expected ErrInvalidWAV for short data, got %v", err)
	}

	data, _ := EncodeWAV([]float32{0.1, 0.2}, 16000)
	bad := append([]byte(nil), data...)
	copy(bad[0:4], "RIFX")
	if _, err := ParseWAVHeader(bad); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Expected ErrInvalidWAV for bad magic, got %v", err)
	}

	truncated := data[:len(data)-1]
	if _, _, err := DecodeWAV(truncated); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Expected ErrInvalidWAV for truncated data, got %v", err)
	}
}
