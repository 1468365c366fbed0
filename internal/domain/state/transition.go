package state

// TransitionPolicy is the configurable matrix of allowed single-state
// transitions enforced at the API boundary for ChangeState. Add/Remove on
// the multi-state set are not subject to it; only wholesale replacement is.
type TransitionPolicy struct {
	allowed map[string][]string
}

// NewTransitionPolicy builds a policy from a from -> allowed-targets matrix.
func NewTransitionPolicy(matrix map[string][]string) *TransitionPolicy {
	return &TransitionPolicy{allowed: matrix}
}

// DefaultTransitionPolicy mirrors the front-desk flow: confirmed guests get
// seated or drop out, terminal states stay terminal except that a no-show
// can be corrected back to seated when the guest turns up late.
func DefaultTransitionPolicy() *TransitionPolicy {
	return NewTransitionPolicy(map[string][]string{
		CodeConfirmed: {CodeSeated, CodeCancelled, CodeNoShow, CodeReleased},
		CodeSeated:    {CodeReleased, CodeCancelled},
		CodeNoShow:    {CodeSeated},
		CodeCancelled: {},
		CodeReleased:  {},
	})
}

// CanTransition reports whether a wholesale change from → to is allowed.
// States missing from the matrix accept any target, since custom-configured
// states ship without transition rules until an operator adds them.
func (p *TransitionPolicy) CanTransition(from, to string) bool {
	targets, ok := p.allowed[from]
	if !ok {
		return true
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}
