package speech

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// KeywordRecognitionModel is a compiled keyword model, as produced by the keyword
// authoring tools (a .table file).
type KeywordRecognitionModel struct {
	engine native.Engine
	handle *common.SmartHandle
}

// NewKeywordRecognitionModelFromFile loads a keyword model from filename.
func NewKeywordRecognitionModelFromFile(filename string) (*KeywordRecognitionModel, error) {
	name, err := common.NewCString(filename)
	if err != nil {
		return nil, err
	}
	engine, err := common.DefaultEngine()
	if err != nil {
		return nil, err
	}
	h, status := engine.KeywordModelFromFile(name)
	if err := common.CheckStatus(status, "KeywordRecognitionModel.FromFile"); err != nil {
		return nil, err
	}
	return &KeywordRecognitionModel{
		engine: engine,
		handle: common.NewSmartHandle("KeywordRecognitionModel", h, engine.KeywordModelRelease),
	}, nil
}

// Close releases the model.
func (m *KeywordRecognitionModel) Close() {
	m.handle.Close()
}
