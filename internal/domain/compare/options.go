package compare

import "net/url"

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithEligibility sets the check used when adding ids.
func WithEligibility(e Eligibility) Option {
	return func(s *Selector) {
		if e != nil {
			s.eligible = e
		}
	}
}

// WithPersist registers a callback receiving the serialized state after every
// transition.
func WithPersist(write func(url.Values)) Option {
	return func(s *Selector) {
		if write != nil {
			s.persist = func(st State) { write(Serialize(st)) }
		}
	}
}
