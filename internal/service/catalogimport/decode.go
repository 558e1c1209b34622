package catalogimport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ignite/software-catalog/internal/datanorm"
)

var errNotRowArray = fmt.Errorf("%w: expected a JSON array of row objects", ErrInvalidInput)

// DecodeRows parses a request body that must be a JSON array of flat row
// objects. A non-array body, or an element that is not an object, is
// ErrInvalidInput; an empty array is ErrNoData.
func DecodeRows(body []byte) ([]datanorm.Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, errNotRowArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotRowArray, err)
	}
	if len(elems) == 0 {
		return nil, ErrNoData
	}

	rows := make([]datanorm.Row, len(elems))
	for i, el := range elems {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", errNotRowArray, i+1)
		}
		if err := json.Unmarshal(el, &rows[i]); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", errNotRowArray, i+1, err)
		}
	}
	return rows, nil
}

var errNotDemoObject = fmt.Errorf("%w: expected a demo dataset object with a software list", ErrInvalidInput)

// DecodeDemo parses a demo dataset document.
func DecodeDemo(body []byte) (*DemoDataset, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errNotDemoObject
	}
	var ds DemoDataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotDemoObject, err)
	}
	return &ds, nil
}
