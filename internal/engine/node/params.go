package node

import "maps"

// Params are named values broadcast down the tree, such as shading settings.
type Params map[string]any

// Merge returns inherited values overlaid with own. Own keys win. The result
// may alias either input when the other is empty, so it must not be mutated.
func (p Params) Merge(own Params) Params {
	switch {
	case len(own) == 0:
		return p
	case len(p) == 0:
		return own
	}
	merged := make(Params, len(p)+len(own))
	maps.Copy(merged, p)
	maps.Copy(merged, own)
	return merged
}

// Float returns the value for key as a float32 when it holds a number.
func (p Params) Float(key string) (float32, bool) {
	switch v := p[key].(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	default:
		return 0, false
	}
}
