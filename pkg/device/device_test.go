package device

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-ai/speech-sdk-go/pkg/audio"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

type recordingSink struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (s *recordingSink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = append(s.data, data...)
	return nil
}

func TestCapturePump_CopiesAndForwards(t *testing.T) {
	sink := &recordingSink{}
	pump := newCapturePump(sink)

	frame := []byte{1, 2, 3, 4}
	pump.push(frame)
	frame[0] = 9 // the device reuses its buffer
	pump.push([]byte{5, 6})
	pump.stop()

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, sink.data)
}

func TestCapturePump_PushAfterStop(t *testing.T) {
	sink := &recordingSink{}
	pump := newCapturePump(sink)
	pump.stop()
	pump.stop()

	pump.push([]byte{1})
	assert.Empty(t, sink.data)
}

func TestCapturePump_ReportsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("stream closed")}
	pump := newCapturePump(sink)

	pump.push([]byte{1})
	pump.push([]byte{2})
	pump.stop()

	var errs []error
	for err := range pump.errs {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "stream closed")
}

func TestCapturePump_IntoPushStream(t *testing.T) {
	engine := native.NewMockEngine()
	prev := native.SetDefault(engine)
	t.Cleanup(func() { native.SetDefault(prev) })

	stream, err := audio.CreatePushAudioInputStream()
	require.NoError(t, err)
	defer stream.Close()

	pump := newCapturePump(stream)
	pump.push([]byte{7, 7})
	pump.stop()

	assert.Equal(t, []byte{7, 7}, engine.PushedData(stream.GetHandle()))
}

func TestPlaybackBuffer_Prebuffering(t *testing.T) {
	b := newPlaybackBuffer(4)
	out := []byte{0xFF, 0xFF, 0xFF}

	require.NoError(t, b.write([]byte{1, 2}))
	b.fill(out)
	assert.Equal(t, []byte{0, 0, 0}, out, "silence while buffering")

	require.NoError(t, b.write([]byte{3, 4, 5}))
	b.fill(out)
	assert.Equal(t, []byte{1, 2, 3}, out)

	b.fill(out)
	assert.Equal(t, []byte{4, 5, 0}, out, "underrun padded with silence")
}

func TestPlaybackBuffer_EndFlushesPrebuffer(t *testing.T) {
	b := newPlaybackBuffer(100)
	require.NoError(t, b.write([]byte{1, 2}))
	b.end()

	out := make([]byte, 4)
	b.fill(out)
	assert.Equal(t, []byte{1, 2, 0, 0}, out)

	select {
	case <-b.drained():
	default:
		t.Fatal("buffer should be drained")
	}
	assert.ErrorIs(t, b.write([]byte{3}), errBufferEnded)
}

func TestFeed_FromPullStream(t *testing.T) {
	engine := native.NewMockEngine()
	prev := native.SetDefault(engine)
	t.Cleanup(func() { native.SetDefault(prev) })

	stream, err := audio.CreatePullAudioOutputStream()
	require.NoError(t, err)
	defer stream.Close()

	pcm := bytes.Repeat([]byte{1, 2}, playbackReadSize)
	engine.FeedPullStream(stream.GetHandle(), pcm)
	engine.EndPullStream(stream.GetHandle())

	buffer := newPlaybackBuffer(0)
	require.NoError(t, feed(stream, buffer))

	out := make([]byte, len(pcm))
	buffer.fill(out)
	assert.Equal(t, pcm, out)
	select {
	case <-buffer.drained():
	case <-time.After(time.Second):
		t.Fatal("buffer should be drained")
	}
}

func TestFeed_SourceError(t *testing.T) {
	engine := native.NewMockEngine()
	prev := native.SetDefault(engine)
	t.Cleanup(func() { native.SetDefault(prev) })

	stream, err := audio.CreatePullAudioOutputStream()
	require.NoError(t, err)
	stream.Close()

	buffer := newPlaybackBuffer(0)
	assert.Error(t, feed(stream, buffer))
	assert.ErrorIs(t, buffer.write([]byte{1}), errBufferEnded)
}

type fakeDevice struct {
	stops   int
	uninits int
}

func (d *fakeDevice) Stop() error {
	d.stops++
	return nil
}

func (d *fakeDevice) Uninit() {
	d.uninits++
}

func TestCapture_CloseTwice(t *testing.T) {
	dev := &fakeDevice{}
	c := &Capture{device: dev, pump: newCapturePump(&recordingSink{})}

	c.Close()
	c.Close()

	assert.Equal(t, 1, dev.stops)
	assert.Equal(t, 1, dev.uninits)
	_, open := <-c.Errors()
	assert.False(t, open)
}

func TestPlayback_CloseTwice(t *testing.T) {
	dev := &fakeDevice{}
	p := &Playback{device: dev, buffer: newPlaybackBuffer(0), done: make(chan struct{})}

	p.Close()
	p.Close()

	assert.Equal(t, 1, dev.stops)
	assert.Equal(t, 1, dev.uninits)
	assert.ErrorIs(t, p.buffer.write([]byte{1}), errBufferEnded)
}

func TestContext_CloseWithoutBackend(t *testing.T) {
	c := &Context{}
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
