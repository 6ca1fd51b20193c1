package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// WAVHeaderSize is the size of the canonical PCM WAV header
const WAVHeaderSize = 44

var (
	// ErrEmptyChunk is returned when asked to encode no samples
	ErrEmptyChunk = errors.New("cannot encode empty audio samples")

	// ErrInvalidWAV is returned for malformed containers
	ErrInvalidWAV = errors.New("invalid WAV data")
)

// wavHeader is the 44-byte RIFF/WAVE header for mono 16-bit PCM
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// WAVInfo is the decoded header of a container
type WAVInfo struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumSamples    uint32  `json:"num_samples"`
	Duration      float64 `json:"duration_seconds"`
}

// EncodeWAV packages normalized samples as a mono 16-bit PCM WAV file
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyChunk
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	const (
		numChannels   = uint16(1)
		bitsPerSample = uint16(16)
	)
	dataSize := uint32(len(samples) * 2)

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, WAVHeaderSize+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	buf.Write(EncodePCM16(samples))

	return buf.Bytes(), nil
}

// ParseWAVHeader validates the canonical header and returns its fields
func ParseWAVHeader(data []byte) (*WAVInfo, error) {
	if len(data) < WAVHeaderSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidWAV, WAVHeaderSize, len(data))
	}

	var h wavHeader
	if err := binary.Read(bytes.NewReader(data[:WAVHeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	switch {
	case string(h.ChunkID[:]) != "RIFF":
		return nil, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	case string(h.Format[:]) != "WAVE":
		return nil, fmt.Errorf("%w: missing WAVE format", ErrInvalidWAV)
	case string(h.Subchunk1ID[:]) != "fmt ":
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	case string(h.Subchunk2ID[:]) != "data":
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	case h.AudioFormat != 1:
		return nil, fmt.Errorf("%w: unsupported audio format %d (only PCM)", ErrInvalidWAV, h.AudioFormat)
	case h.BitsPerSample != 16:
		return nil, fmt.Errorf("%w: unsupported bit depth %d (only 16-bit)", ErrInvalidWAV, h.BitsPerSample)
	case h.NumChannels == 0 || h.SampleRate == 0:
		return nil, fmt.Errorf("%w: zero channels or sample rate", ErrInvalidWAV)
	}

	frameBytes := uint32(h.NumChannels) * 2
	numSamples := h.Subchunk2Size / frameBytes

	return &WAVInfo{
		SampleRate:    h.SampleRate,
		Channels:      h.NumChannels,
		BitsPerSample: h.BitsPerSample,
		DataSize:      h.Subchunk2Size,
		NumSamples:    numSamples,
		Duration:      float64(numSamples) / float64(h.SampleRate),
	}, nil
}

// DecodeWAV returns the header and the PCM payload (mono only)
func DecodeWAV(data []byte) (*WAVInfo, []byte, error) {
	info, err := ParseWAVHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if info.Channels != 1 {
		return nil, nil, fmt.Errorf("%w: only mono is supported, got %d channels", ErrInvalidWAV, info.Channels)
	}

	end := WAVHeaderSize + int(info.DataSize)
	if end > len(data) {
		return nil, nil, fmt.Errorf("%w: data chunk truncated (%d of %d bytes)", ErrInvalidWAV, len(data)-WAVHeaderSize, info.DataSize)
	}

	return info, data[WAVHeaderSize:end], nil
}
