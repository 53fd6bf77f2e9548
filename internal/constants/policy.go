package constants

// EligibilityPolicy decides what happens to eligibility traces of synapses
// that are outside the active context during a learning pass.
type EligibilityPolicy string

const (
	// EligibilityPreserve leaves out-of-context traces untouched until their
	// context recurs.
	EligibilityPreserve EligibilityPolicy = "preserve"

	// EligibilityDecay decays out-of-context traces every tick without changing weights.
	EligibilityDecay EligibilityPolicy = "decay"
)

// Valid returns true if the policy is a recognized value.
func (p EligibilityPolicy) Valid() bool {
	switch p {
	case EligibilityPreserve, EligibilityDecay:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p EligibilityPolicy) String() string {
	return string(p)
}
