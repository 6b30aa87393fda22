package service

import (
	"fmt"

	"github.com/d5/tengo/v2"
)

// TransformEngine runs a merchant-supplied Tengo script over a customer-app
// payload before upsert. The script receives and mutates a "record" variable.
type TransformEngine struct{}

func NewTransformEngine() *TransformEngine {
	return &TransformEngine{}
}

// Apply executes the script against the record and returns the transformed
// map. A compile or runtime failure leaves the original record untouched.
func (e *TransformEngine) Apply(scriptContent string, record map[string]interface{}) (map[string]interface{}, error) {
	if scriptContent == "" {
		return record, nil
	}

	// Compile the script
	script := tengo.NewScript([]byte(scriptContent))

	// Set variables accessible to the script
	if err := script.Add("record", record); err != nil {
		return nil, fmt.Errorf("failed to bind record: %w", err)
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("failed to run script: %w", err)
	}

	out, ok := compiled.Get("record").Value().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("script did not leave record as a map")
	}

	return out, nil
}
