package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeechSynthesisOutputFormat_SampleRate(t *testing.T) {
	assert.Equal(t, 16000, Raw16Khz16BitMonoPcm.SampleRate())
	assert.Equal(t, 24000, Raw24Khz16BitMonoPcm.SampleRate())
	assert.Equal(t, 48000, Raw48Khz16BitMonoPcm.SampleRate())
	assert.Zero(t, Riff24Khz16BitMonoPcm.SampleRate())
	assert.Zero(t, Audio16Khz32KBitRateMonoMp3.SampleRate())
}

func TestSpeechSynthesisBoundaryType_String(t *testing.T) {
	assert.Equal(t, "Word", WordBoundary.String())
	assert.Equal(t, "Sentence", SentenceBoundary.String())
	assert.Equal(t, "SpeechSynthesisBoundaryType(7)", SpeechSynthesisBoundaryType(7).String())
}
