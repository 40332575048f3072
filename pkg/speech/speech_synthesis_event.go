package speech

import (
	"time"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// synthesisTextCapacity fits a word, a viseme animation frame or a bookmark name
// without a retry in the common case.
const synthesisTextCapacity = 256

// SpeechSynthesisEventArgs is delivered for synthesis started, synthesizing,
// completed and canceled events.
type SpeechSynthesisEventArgs struct {
	handle *common.SmartHandle
	Result SpeechSynthesisResult
}

// NewSpeechSynthesisEventArgsFromHandle builds a SpeechSynthesisEventArgs and takes
// ownership of handle.
func NewSpeechSynthesisEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechSynthesisEventArgs, error) {
	sh := common.NewSmartHandle("SpeechSynthesisEventArgs", handle, engine.EventRelease)
	resultHandle, status := engine.SynthesisEventGetResult(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisEventArgs.Result"); err != nil {
		sh.Close()
		return nil, err
	}
	result, err := NewSpeechSynthesisResultFromHandle(engine, resultHandle)
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SpeechSynthesisEventArgs{handle: sh, Result: *result}, nil
}

// Close releases the result and the native event.
func (e SpeechSynthesisEventArgs) Close() {
	e.Result.Close()
	if e.handle != nil {
		e.handle.Close()
	}
}

// SpeechSynthesisWordBoundaryEventArgs reports where a word of the input starts in the
// synthesized audio.
type SpeechSynthesisWordBoundaryEventArgs struct {
	handle *common.SmartHandle
	// AudioOffset is in ticks of 100 ns from the start of the audio.
	AudioOffset  uint64
	Duration     time.Duration
	TextOffset   uint
	WordLength   uint
	Text         string
	BoundaryType common.SpeechSynthesisBoundaryType
}

// NewSpeechSynthesisWordBoundaryEventArgsFromHandle builds a
// SpeechSynthesisWordBoundaryEventArgs and takes ownership of handle.
func NewSpeechSynthesisWordBoundaryEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechSynthesisWordBoundaryEventArgs, error) {
	sh := common.NewSmartHandle("SpeechSynthesisWordBoundaryEventArgs", handle, engine.EventRelease)
	values, status := engine.WordBoundaryEventGetValues(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisWordBoundaryEventArgs.Values"); err != nil {
		sh.Close()
		return nil, err
	}
	text, err := synthesisEventText(engine, handle, "SpeechSynthesisWordBoundaryEventArgs.Text")
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SpeechSynthesisWordBoundaryEventArgs{
		handle:       sh,
		AudioOffset:  values.AudioOffset,
		Duration:     time.Duration(values.Duration) * 100,
		TextOffset:   uint(values.TextOffset),
		WordLength:   uint(values.WordLength),
		Text:         text,
		BoundaryType: common.SpeechSynthesisBoundaryType(values.BoundaryType),
	}, nil
}

// Close releases the native event.
func (e SpeechSynthesisWordBoundaryEventArgs) Close() {
	if e.handle != nil {
		e.handle.Close()
	}
}

// SpeechSynthesisVisemeEventArgs carries a mouth position for lip sync.
type SpeechSynthesisVisemeEventArgs struct {
	handle      *common.SmartHandle
	AudioOffset uint64
	VisemeID    uint
	// Animation is the SVG or blend shape frame, when one was requested.
	Animation string
}

// NewSpeechSynthesisVisemeEventArgsFromHandle builds a SpeechSynthesisVisemeEventArgs
// and takes ownership of handle.
func NewSpeechSynthesisVisemeEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechSynthesisVisemeEventArgs, error) {
	sh := common.NewSmartHandle("SpeechSynthesisVisemeEventArgs", handle, engine.EventRelease)
	values, status := engine.VisemeEventGetValues(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisVisemeEventArgs.Values"); err != nil {
		sh.Close()
		return nil, err
	}
	animation, err := synthesisEventText(engine, handle, "SpeechSynthesisVisemeEventArgs.Animation")
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SpeechSynthesisVisemeEventArgs{
		handle:      sh,
		AudioOffset: values.AudioOffset,
		VisemeID:    uint(values.VisemeID),
		Animation:   animation,
	}, nil
}

// Close releases the native event.
func (e SpeechSynthesisVisemeEventArgs) Close() {
	if e.handle != nil {
		e.handle.Close()
	}
}

// SpeechSynthesisBookmarkEventArgs reports that synthesis reached an SSML bookmark.
type SpeechSynthesisBookmarkEventArgs struct {
	handle      *common.SmartHandle
	AudioOffset uint64
	Text        string
}

// NewSpeechSynthesisBookmarkEventArgsFromHandle builds a
// SpeechSynthesisBookmarkEventArgs and takes ownership of handle.
func NewSpeechSynthesisBookmarkEventArgsFromHandle(engine native.Engine, handle native.Handle) (*SpeechSynthesisBookmarkEventArgs, error) {
	sh := common.NewSmartHandle("SpeechSynthesisBookmarkEventArgs", handle, engine.EventRelease)
	offset, status := engine.BookmarkEventGetOffset(handle)
	if err := common.CheckStatus(status, "SpeechSynthesisBookmarkEventArgs.AudioOffset"); err != nil {
		sh.Close()
		return nil, err
	}
	text, err := synthesisEventText(engine, handle, "SpeechSynthesisBookmarkEventArgs.Text")
	if err != nil {
		sh.Close()
		return nil, err
	}
	return &SpeechSynthesisBookmarkEventArgs{handle: sh, AudioOffset: offset, Text: text}, nil
}

// Close releases the native event.
func (e SpeechSynthesisBookmarkEventArgs) Close() {
	if e.handle != nil {
		e.handle.Close()
	}
}

func synthesisEventText(engine native.Engine, handle native.Handle, op string) (string, error) {
	return common.CopyString(op, synthesisTextCapacity, func(buf []byte) (uint32, native.Status) {
		return engine.SynthesisEventGetText(handle, buf)
	})
}
