package types

// Declaration is a supplier's answers to a framework declaration, keyed by
// question id. Values hold decoded JSON: string, bool, float64, []any or nil.
type Declaration map[string]any

func (d Declaration) Clone() Declaration {
	out := make(Declaration, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
