package casesheet

// Merge builds the export view of a case: a per-section union of the freshly
// fetched server document and the locally cached full snapshot. For a section
// present in both, the server value replaces the cached one wholesale — the
// merge is deliberately shallow, so a sub-field the clinician cleared on the
// server can never be resurrected from a stale cache. Sections present only in
// the cache are carried over to fill gaps left by lighter endpoints.
func Merge(server, cached Document) Document {
	if server == nil && cached == nil {
		return nil
	}

	merged := make(Document, len(server)+len(cached))
	for section, raw := range cached {
		merged[section] = raw
	}
	for section, raw := range server {
		merged[section] = raw
	}
	return merged
}
