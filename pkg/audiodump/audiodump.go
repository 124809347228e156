// Package audiodump writes the APU's float32 sample stream out as a PCM
// WAV file for headless runs and regression capture. No repo in the
// example corpus depends on an audio-file library (the teacher streams
// samples straight to an SDL audio device instead of ever serializing
// them); the RIFF/WAVE container format is small and fixed enough that
// spelling it out against encoding/binary, in the teacher's own
// low-ceremony io.Writer style, is the pragmatic choice here (see
// DESIGN.md).
package audiodump

import (
	"encoding/binary"
	"io"
)

const (
	sampleRate    = 44100
	bitsPerSample = 16
	numChannels   = 1
)

// Writer converts float32 samples to 16-bit PCM and writes them to the WAV
// file as WriteSamples receives them; Close patches the final sizes into
// the header.
type Writer struct {
	w       io.WriteSeeker
	samples int
}

// New writes a placeholder WAV header to w (patched with the final sample
// count on Close) and returns a Writer ready for WriteSamples.
func New(w io.WriteSeeker) (*Writer, error) {
	if err := writeHeader(w, 0); err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

// WriteSamples appends APU output samples, converting each from [-1,1]
// float32 to a 16-bit signed PCM frame.
func (wr *Writer) WriteSamples(samples []float32) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(s*32767)))
	}
	if _, err := wr.w.Write(buf); err != nil {
		return err
	}
	wr.samples += len(samples)
	return nil
}

// Close rewrites the RIFF/data chunk sizes now that the final sample count
// is known.
func (wr *Writer) Close() error {
	return writeHeader(wr.w, wr.samples)
}

func writeHeader(w io.WriteSeeker, samples int) error {
	dataBytes := samples * (bitsPerSample / 8)
	byteRate := sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataBytes))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataBytes))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Seek(0, io.SeekEnd)
	return err
}
