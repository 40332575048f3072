package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

func newTestCollection(t *testing.T) (*native.MockEngine, *PropertyCollection) {
	t.Helper()
	engine := native.NewMockEngine()
	key, _ := NewCString("key")
	region, _ := NewCString("westus")
	config, status := engine.SpeechConfigFromSubscription(key, region)
	require.Equal(t, native.StatusOK, status)
	bag, status := engine.SpeechConfigGetPropertyBag(config)
	require.Equal(t, native.StatusOK, status)
	return engine, NewPropertyCollection(engine, bag)
}

func TestPropertyCollection_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"ascii", "SPEECH-EnableAudioLogging", "true"},
		{"non-ascii value", "greeting", "こんにちは, grüß dich 👋"},
		{"non-ascii name", "schlüssel", "wert"},
		{"empty value", "empty", ""},
	}

	_, props := newTestCollection(t)
	defer props.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, props.SetPropertyByString(tt.key, tt.value))
			got, err := props.GetPropertyByString(tt.key, "default")
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestPropertyCollection_LongValue(t *testing.T) {
	_, props := newTestCollection(t)
	defer props.Close()

	long := make([]byte, 4*propertyValueCapacity)
	for i := range long {
		long[i] = 'a' + byte(i%26)
	}
	require.NoError(t, props.SetPropertyByString("long", string(long)))

	got, err := props.GetPropertyByString("long", "")
	require.NoError(t, err)
	assert.Equal(t, string(long), got)
}

func TestPropertyCollection_ByID(t *testing.T) {
	_, props := newTestCollection(t)
	defer props.Close()

	region, err := props.GetProperty(SpeechServiceConnectionRegion, "")
	require.NoError(t, err)
	assert.Equal(t, "westus", region)

	require.NoError(t, props.SetProperty(SpeechServiceConnectionRecoLanguage, "zh-CN"))
	lang, err := props.GetProperty(SpeechServiceConnectionRecoLanguage, "")
	require.NoError(t, err)
	assert.Equal(t, "zh-CN", lang)
}

func TestPropertyCollection_Default(t *testing.T) {
	_, props := newTestCollection(t)
	defer props.Close()

	got, err := props.GetPropertyByString("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestPropertyCollection_EmbeddedNulMakesNoNativeCall(t *testing.T) {
	engine, props := newTestCollection(t)
	defer props.Close()

	before := len(engine.Calls())

	err := props.SetPropertyByString("bad\x00name", "value")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = props.SetPropertyByString("name", "bad\x00value")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = props.GetPropertyByString("bad\x00name", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = props.GetPropertyByString("name", "bad\x00default")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, before, len(engine.Calls()))
}

func TestPropertyCollection_NativeFailure(t *testing.T) {
	engine, props := newTestCollection(t)
	defer props.Close()

	engine.Fail("PropertyBagSetString", native.StatusInvalidState)
	err := props.SetPropertyByString("k", "v")
	assert.ErrorIs(t, err, ErrNative)
	assert.Equal(t, native.StatusInvalidState, StatusOf(err))
}

func TestPropertyCollection_Close(t *testing.T) {
	engine, props := newTestCollection(t)

	props.Close()
	props.Close()
	assert.Equal(t, 1, engine.Released(native.KindPropertyBag))

	err := props.SetPropertyByString("k", "v")
	assert.ErrorIs(t, err, ErrAlreadyReleased)
}
