package state

// Canonical state codes seeded into every installation. The full set of
// states is configuration; these five always exist and the engine only
// hardcodes their codes for seeding and defaults.
const (
	CodeConfirmed = "confirmed"
	CodeSeated    = "seated"
	CodeCancelled = "cancelled"
	CodeNoShow    = "no_show"
	CodeReleased  = "released"
)

// State describes one configured reservation state. Releasing states give
// the assigned furniture back to the pool; a reservation only holds its
// furniture while it carries at least one non-releasing state.
type State struct {
	Code            string `json:"code"`
	DisplayPriority int    `json:"display_priority"`
	Releasing       bool   `json:"is_availability_releasing"`
	CreatesIncident bool   `json:"creates_incident"`
	System          bool   `json:"is_system"`
	Default         bool   `json:"is_default"`
}

// Seed returns the five canonical states every installation starts with.
func Seed() []State {
	return []State{
		{Code: CodeConfirmed, DisplayPriority: 10, System: true, Default: true},
		{Code: CodeSeated, DisplayPriority: 20, System: true},
		{Code: CodeCancelled, DisplayPriority: 30, Releasing: true, System: true},
		{Code: CodeNoShow, DisplayPriority: 40, Releasing: true, CreatesIncident: true, System: true},
		{Code: CodeReleased, DisplayPriority: 50, Releasing: true, System: true},
	}
}

// Registry is an in-memory view of the configured states, loaded fresh from
// the repository by callers that need releasing/default lookups.
type Registry struct {
	byCode      map[string]State
	defaultCode string
}

// NewRegistry builds a Registry from the configured states.
func NewRegistry(states []State) *Registry {
	r := &Registry{byCode: make(map[string]State, len(states))}
	for _, s := range states {
		r.byCode[s.Code] = s
		if s.Default {
			r.defaultCode = s.Code
		}
	}
	if r.defaultCode == "" {
		r.defaultCode = CodeConfirmed
	}
	return r
}

// Lookup returns the state for code.
func (r *Registry) Lookup(code string) (State, bool) {
	s, ok := r.byCode[code]
	return s, ok
}

// DefaultCode returns the code of the configured default state.
func (r *Registry) DefaultCode() string {
	return r.defaultCode
}

// Holds reports whether a reservation carrying the given state set still
// occupies its furniture: true iff at least one state is non-releasing.
// Unknown codes are treated as holding, so a misconfigured state can never
// silently release furniture.
func (r *Registry) Holds(set Set) bool {
	for _, code := range set.Codes() {
		s, ok := r.byCode[code]
		if !ok || !s.Releasing {
			return true
		}
	}
	return false
}

// IncidentCodes returns the codes in set whose state creates an incident.
func (r *Registry) IncidentCodes(set Set) []string {
	var out []string
	for _, code := range set.Codes() {
		if s, ok := r.byCode[code]; ok && s.CreatesIncident {
			out = append(out, code)
		}
	}
	return out
}
