// Package poses defines the fixed, ordered sequence of head poses the
// enrollment wizard walks through. The sequence is loaded once at process
// start from an embedded YAML file and never mutated.
package poses

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed poses.yaml
var posesYAML []byte

// Pose is one head orientation prompt in the capture sequence.
type Pose struct {
	Key         string `yaml:"key"`
	Instruction string `yaml:"instruction"`
}

var sequence []Pose

func init() {
	var doc struct {
		Poses []Pose `yaml:"poses"`
	}
	if err := yaml.Unmarshal(posesYAML, &doc); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded poses.yaml: " + err.Error())
	}
	if len(doc.Poses) == 0 {
		panic("embedded poses.yaml defines no poses")
	}
	sequence = doc.Poses
}

// Count returns the number of poses in the capture sequence.
func Count() int {
	return len(sequence)
}

// At returns the pose at the given step index. It panics on an
// out-of-range index - step bounds are the wizard's responsibility.
func At(i int) Pose {
	return sequence[i]
}

// Sequence returns a copy of the full pose sequence in capture order.
func Sequence() []Pose {
	out := make([]Pose, len(sequence))
	copy(out, sequence)
	return out
}

// Keys returns the pose keys in capture order.
func Keys() []string {
	keys := make([]string, len(sequence))
	for i, p := range sequence {
		keys[i] = p.Key
	}
	return keys
}
