package evaluation

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithSummaryLimit sets the number of runes kept before a summary is truncated.
func WithSummaryLimit(limit int) Option {
	return func(d *Deriver) {
		if limit > 0 {
			d.summaryLimit = limit
		}
	}
}

// WithEllipsis sets the marker appended to truncated summaries.
func WithEllipsis(marker string) Option {
	return func(d *Deriver) {
		d.ellipsis = marker
	}
}
