package common

import (
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// propertyValueCapacity is the first buffer size tried when reading a property.
const propertyValueCapacity = 256

// PropertyCollection is a key/value string store backed by a native property bag.
// It lives exactly as long as the object that created it.
type PropertyCollection struct {
	engine native.Engine
	handle *SmartHandle
}

// NewPropertyCollection takes ownership of bag.
func NewPropertyCollection(engine native.Engine, bag native.Handle) *PropertyCollection {
	return &PropertyCollection{
		engine: engine,
		handle: NewSmartHandle("PropertyCollection", bag, engine.PropertyBagRelease),
	}
}

// SetPropertyByString sets a property by its string name.
func (p *PropertyCollection) SetPropertyByString(name, value string) error {
	return p.set(0, name, value, "PropertyCollection.SetPropertyByString")
}

// GetPropertyByString returns the value of the named property, or defaultValue if it
// is not set.
func (p *PropertyCollection) GetPropertyByString(name, defaultValue string) (string, error) {
	return p.get(0, name, defaultValue, "PropertyCollection.GetPropertyByString")
}

// SetProperty sets a property by id.
func (p *PropertyCollection) SetProperty(id PropertyID, value string) error {
	return p.set(int(id), "", value, "PropertyCollection.SetProperty")
}

// GetProperty returns the value of a property by id, or defaultValue if it is not set.
func (p *PropertyCollection) GetProperty(id PropertyID, defaultValue string) (string, error) {
	return p.get(int(id), "", defaultValue, "PropertyCollection.GetProperty")
}

func (p *PropertyCollection) set(id int, name, value, context string) error {
	args, err := NewCStrings(name, value)
	if err != nil {
		return err
	}
	return p.handle.Use(func(bag native.Handle) error {
		return CheckStatus(p.engine.PropertyBagSetString(bag, id, args[0], args[1]), context)
	})
}

func (p *PropertyCollection) get(id int, name, defaultValue, context string) (string, error) {
	args, err := NewCStrings(name, defaultValue)
	if err != nil {
		return "", err
	}
	var value string
	err = p.handle.Use(func(bag native.Handle) error {
		var err error
		value, err = CopyString(context, propertyValueCapacity, func(buf []byte) (uint32, native.Status) {
			return p.engine.PropertyBagGetString(bag, id, args[0], args[1], buf)
		})
		return err
	})
	return value, err
}

// Take moves the collection into a new value; the receiver behaves as closed.
func (p *PropertyCollection) Take() *PropertyCollection {
	return &PropertyCollection{engine: p.engine, handle: p.handle.Transfer()}
}

// Close releases the native property bag.
func (p *PropertyCollection) Close() {
	p.handle.Close()
}
