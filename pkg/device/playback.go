package device

import (
	"errors"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

// playbackReadSize is one 20 ms period of 16 kHz 16-bit mono audio.
const playbackReadSize = PlaybackSampleRate * bytesPerSample * PlaybackChannels * periodMs / 1000

// prebufferBytes is the audio held back before playback starts, 100 ms.
const prebufferBytes = PlaybackSampleRate * bytesPerSample * PlaybackChannels / 10

// Playback plays PCM drained from an AudioSource on the default output device.
type Playback struct {
	device    audioDevice
	buffer    *playbackBuffer
	done      chan struct{}
	err       error
	closeOnce sync.Once
}

// StartPlayback opens the default playback device and starts reading source on a
// separate goroutine. Done is closed once source reported end of audio or an error
// and everything read was played.
func StartPlayback(c *Context, source AudioSource) (*Playback, error) {
	buffer := newPlaybackBuffer(prebufferBytes)
	dev, err := startDevice(c, deviceConfig(malgo.Playback, PlaybackSampleRate, PlaybackChannels),
		func(outputSamples, _ []byte, _ uint32) {
			buffer.fill(outputSamples)
		})
	if err != nil {
		return nil, err
	}

	p := &Playback{device: dev, buffer: buffer, done: make(chan struct{})}
	go p.drain(source)
	return p, nil
}

func (p *Playback) drain(source AudioSource) {
	defer close(p.done)
	p.err = feed(source, p.buffer)
	if p.err != nil {
		log.Printf("[Playback] source read failed: %v", p.err)
	}
	<-p.buffer.drained()
}

// feed copies source into buffer until source ends.
func feed(source AudioSource, buffer *playbackBuffer) error {
	defer buffer.end()
	for {
		data, err := source.Read(playbackReadSize)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		if err := buffer.write(data); err != nil {
			// Playback was closed.
			return nil
		}
	}
}

// Done is closed when playback has finished.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Err returns the source error that ended playback, if any. Valid after Done.
func (p *Playback) Err() error {
	return p.err
}

// Close stops the device. A drain blocked in source.Read keeps running until the
// source is closed by its owner. Only the first call does anything.
func (p *Playback) Close() {
	p.closeOnce.Do(func() {
		if err := p.device.Stop(); err != nil {
			log.Printf("[Playback] failed to stop device: %v", err)
		}
		p.device.Uninit()
		p.buffer.end()
	})
}

var errBufferEnded = errors.New("playback buffer ended")

// playbackBuffer is the jitter buffer between the reader goroutine and the device
// callback. It outputs silence until prebuffer bytes arrived or the source ended.
type playbackBuffer struct {
	mu        sync.Mutex
	data      []byte
	prebuffer int
	buffering bool
	ended     bool
	empty     chan struct{}
}

func newPlaybackBuffer(prebuffer int) *playbackBuffer {
	return &playbackBuffer{
		prebuffer: prebuffer,
		buffering: prebuffer > 0,
		empty:     make(chan struct{}),
	}
}

func (b *playbackBuffer) write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ended {
		return errBufferEnded
	}
	b.data = append(b.data, data...)
	if b.buffering && len(b.data) >= b.prebuffer {
		b.buffering = false
	}
	return nil
}

// end marks the source finished. Remaining audio is still played.
func (b *playbackBuffer) end() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ended {
		return
	}
	b.ended = true
	b.buffering = false
	b.checkDrained()
}

// fill copies the next len(out) bytes into out, padding with silence.
func (b *playbackBuffer) fill(out []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	if !b.buffering {
		n = copy(out, b.data)
		b.data = b.data[n:]
	}
	clear(out[n:])
	b.checkDrained()
}

func (b *playbackBuffer) checkDrained() {
	if b.ended && len(b.data) == 0 {
		select {
		case <-b.empty:
		default:
			close(b.empty)
		}
	}
}

func (b *playbackBuffer) drained() <-chan struct{} {
	return b.empty
}
