package node

import "github.com/sirosfoundation/go-credential-nodes/internal/state"

// Projection maps output attribute names to the state keys their values
// are read from. It builds the data object for credential issue and
// update calls.
type Projection map[string]string

// Build returns the payload containing only the entries whose source key
// is present in the bag. Absent or blank sources are skipped, not
// defaulted.
func (p Projection) Build(bag state.Bag) map[string]any {
	data := make(map[string]any, len(p))
	for attr, sourceKey := range p {
		v, ok := bag[sourceKey]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		data[attr] = v
	}
	return data
}
