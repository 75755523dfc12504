package ringer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidWAV = errors.New("ringer: invalid wav data")

// Format describes little-endian signed PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// parseWAV returns the format and raw PCM of a RIFF/WAVE file.
func parseWAV(data []byte) (Format, []byte, error) {
	reader := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(reader, header); err != nil {
		return Format{}, nil, fmt.Errorf("%w: short header", ErrInvalidWAV)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Format{}, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrInvalidWAV)
	}

	var format Format
	var haveFormat bool
	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			return Format{}, nil, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
		}
		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return Format{}, nil, fmt.Errorf("%w: truncated chunk", ErrInvalidWAV)
		}

		switch string(chunkID) {
		case "fmt ":
			if chunkSize < 16 {
				return Format{}, nil, fmt.Errorf("%w: fmt chunk too small", ErrInvalidWAV)
			}
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return Format{}, nil, fmt.Errorf("%w: truncated fmt chunk", ErrInvalidWAV)
			}
			if fmtChunk.AudioFormat != 1 {
				return Format{}, nil, fmt.Errorf("%w: unsupported encoding %d", ErrInvalidWAV, fmtChunk.AudioFormat)
			}
			format = Format{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.NumChannels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			haveFormat = true
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := reader.Seek(extra, io.SeekCurrent); err != nil {
					return Format{}, nil, err
				}
			}
		case "data":
			if !haveFormat {
				return Format{}, nil, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			size := int64(chunkSize)
			if remaining := int64(reader.Len()); size > remaining {
				size = remaining
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(reader, pcm); err != nil {
				return Format{}, nil, fmt.Errorf("%w: truncated data", ErrInvalidWAV)
			}
			return format, pcm, nil
		default:
			skip := int64(chunkSize)
			if chunkSize%2 == 1 {
				skip++
			}
			if _, err := reader.Seek(skip, io.SeekCurrent); err != nil {
				return Format{}, nil, err
			}
		}
	}
}

// encodeWAV wraps 16-bit PCM samples in a minimal RIFF/WAVE container.
func encodeWAV(format Format, pcm []byte) []byte {
	blockAlign := format.Channels * format.BitDepth / 8
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(format.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(format.BitDepth))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
