package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// mapProvider feeds an in-memory map to koanf. Dotted keys
// ("canvas.width") and nested maps merge the same way.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(maps.Copy(m), "."), nil
}
