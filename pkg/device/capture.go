package device

import (
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

const captureQueueSize = 50

// Capture records the default microphone as 16 kHz 16-bit mono PCM and writes it to
// a sink. The device callback only queues; a separate goroutine writes.
type Capture struct {
	device    audioDevice
	pump      *capturePump
	closeOnce sync.Once
}

// StartCapture opens the default capture device and starts feeding sink.
func StartCapture(c *Context, sink AudioSink) (*Capture, error) {
	pump := newCapturePump(sink)
	dev, err := startDevice(c, deviceConfig(malgo.Capture, CaptureSampleRate, CaptureChannels),
		func(_, inputSamples []byte, _ uint32) {
			pump.push(inputSamples)
		})
	if err != nil {
		pump.stop()
		return nil, err
	}
	return &Capture{device: dev, pump: pump}, nil
}

// Errors reports sink write failures. It is closed by Close.
func (c *Capture) Errors() <-chan error {
	return c.pump.errs
}

// Close stops the device and waits until queued audio was written. Only the first
// call does anything.
func (c *Capture) Close() {
	c.closeOnce.Do(func() {
		if err := c.device.Stop(); err != nil {
			log.Printf("[Capture] failed to stop device: %v", err)
		}
		c.device.Uninit()
		c.pump.stop()
	})
}

// capturePump decouples the real-time device callback from sink writes.
type capturePump struct {
	sink   AudioSink
	queue  chan []byte
	errs   chan error
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newCapturePump(sink AudioSink) *capturePump {
	p := &capturePump{
		sink:  sink,
		queue: make(chan []byte, captureQueueSize),
		errs:  make(chan error, 1),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// push copies samples; the device reuses its buffer after the callback returns.
func (p *capturePump) push(samples []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	data := make([]byte, len(samples))
	copy(data, samples)
	select {
	case p.queue <- data:
	default:
		log.Printf("[Capture] queue full, dropping %d bytes", len(data))
	}
}

func (p *capturePump) run() {
	defer p.wg.Done()
	for data := range p.queue {
		if err := p.sink.Write(data); err != nil {
			select {
			case p.errs <- err:
			default:
			}
		}
	}
}

func (p *capturePump) stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.errs)
}
