package store

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// encode serializes a diagram for storage.
func encode(d diagram.Diagram) ([]byte, error) {
	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "encode diagram")
	}
	return data, nil
}

// decode deserializes a stored blob. A corrupt blob is a store error, not a
// silent miss: callers should know their persisted state is damaged.
func decode(data []byte) (diagram.Diagram, bool, error) {
	d, err := diagram.Unmarshal(data)
	if err != nil {
		return diagram.Diagram{}, false, errors.Wrap(errors.ErrCodeStore, err, "decode stored diagram")
	}
	return d, true, nil
}
