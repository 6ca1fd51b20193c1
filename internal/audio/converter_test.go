package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestDecodePCM16(t *testing.T) {
	raw := []int16{0, 16384, -16384, 32767, -32768}
	pcm := make([]byte, len(raw)*2)
	for i, s := range raw {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	samples, err := DecodePCM16(pcm)
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}

	expected := []float32{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	if len(samples) != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), len(samples))
	}
	for i, exp := range expected {
		if samples[i] != exp {
			t.Errorf("Expected %f at index %d, got %f", exp, i, samples[i])
		}
	}
}

func TestDecodePCM16_Malformed(t *testing.T) {
	if _, err := DecodePCM16(nil); err == nil {
		t.Error("Expected error for empty PCM data")
	}
	if _, err := DecodePCM16([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for odd-length PCM data")
	}
}

func TestEncodePCM16_ClampAndScale(t *testing.T) {
	pcm := EncodePCM16([]float32{1, -1, 2, -2, 0.5, -0.5, 0})

	got := make([]int16, len(pcm)/2)
	for i := range got {
		got[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	expected := []int16{32767, -32768, 32767, -32768, 16383, -16384, 0}
	for i, exp := range expected {
		if got[i] != exp {
			t.Errorf("Expected %d at index %d, got %d", exp, i, got[i])
		}
	}
}

func TestPCM16_RoundTrip(t *testing.T) {
	raw := []int16{-32768, -1000, -1, 0, 1, 1000, 32000}
	pcm := make([]byte, len(raw)*2)
	for i, s := range raw {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	samples, err := DecodePCM16(pcm)
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}
	back := EncodePCM16(samples)

	for i, exp := range raw {
		got := int16(binary.LittleEndian.Uint16(back[i*2:]))
		diff := int(got) - int(exp)
		if diff < -1 || diff > 1 {
			t.Errorf("Round-trip drift at index %d: expected %d, got %d", i, exp, got)
		}
	}
}

func TestResample(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i) / 100
	}

	up := Resample(samples, 8000, 16000)
	if len(up) < 180 || len(up) > 220 {
		t.Errorf("Expected resampled length around 200, got %d", len(up))
	}

	down := Resample(samples, 16000, 8000)
	if len(down) < 40 || len(down) > 60 {
		t.Errorf("Expected resampled length around 50, got %d", len(down))
	}

	same := Resample(samples, 16000, 16000)
	if len(same) != len(samples) {
		t.Errorf("Expected unchanged length %d, got %d", len(samples), len(same))
	}
}

func TestCalculateRMS(t *testing.T) {
	samples := []float32{0.1, -0.1, 0.2, -0.2}
	rms := CalculateRMS(samples)

	expected := math.Sqrt((0.01 + 0.01 + 0.04 + 0.04) / 4.0)
	if math.Abs(rms-expected) > 1e-6 {
		t.Errorf("Expected RMS %.6f, got %.6f", expected, rms)
	}

	if CalculateRMS(nil) != 0 {
		t.Error("Expected RMS 0 for empty slice")
	}
}

func TestSamplesDuration(t *testing.T) {
	if d := SamplesDuration(16000, 16000); d != time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}
	if d := SamplesDuration(320, 16000); d != 20*time.Millisecond {
		t.Errorf("Expected 20ms, got %v", d)
	}
	if d := SamplesDuration(100, 0); d != 0 {
		t.Errorf("Expected 0 for zero rate, got %v", d)
	}
}
