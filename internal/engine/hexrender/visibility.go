package hexrender

import (
	"fmt"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

// Visibility records which layers and whether features are drawn. The zero
// value hides everything; use AllVisible.
type Visibility struct {
	layers   [hexmap.LayerCount]bool
	features bool
}

// AllVisible shows every layer and the features.
func AllVisible() Visibility {
	v := Visibility{features: true}
	for i := range v.layers {
		v.layers[i] = true
	}
	return v
}

// ParseVisibility starts from AllVisible and hides the named layers. The
// name "features" hides feature props.
func ParseVisibility(hidden []string) (Visibility, error) {
	v := AllVisible()
	for _, name := range hidden {
		if name == "features" {
			v.features = false
			continue
		}
		l, ok := hexmap.ParseLayer(name)
		if !ok {
			return Visibility{}, fmt.Errorf("unknown layer %q", name)
		}
		v.layers[l] = false
	}
	return v, nil
}

// Layer reports whether l is drawn.
func (v Visibility) Layer(l hexmap.Layer) bool {
	if l < 0 || int(l) >= hexmap.LayerCount {
		return false
	}
	return v.layers[l]
}

// Features reports whether feature props are drawn.
func (v Visibility) Features() bool { return v.features }

// ToggleLayer flips l and returns its new state.
func (v *Visibility) ToggleLayer(l hexmap.Layer) bool {
	if l < 0 || int(l) >= hexmap.LayerCount {
		return false
	}
	v.layers[l] = !v.layers[l]
	return v.layers[l]
}

// ToggleFeatures flips feature drawing and returns the new state.
func (v *Visibility) ToggleFeatures() bool {
	v.features = !v.features
	return v.features
}

// Hidden lists the hidden layer names, features last.
func (v Visibility) Hidden() []string {
	var out []string
	for _, l := range hexmap.Layers {
		if !v.layers[l] {
			out = append(out, l.String())
		}
	}
	if !v.features {
		out = append(out, "features")
	}
	return out
}
