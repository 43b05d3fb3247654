package subject

// Index answers repeated requirement lookups against one student's
// subjects. Student names are normalized once when the index is built and
// each distinct required name once on first use. An Index is not safe for
// concurrent use.
type Index struct {
	subjects []Subject
	entries  []indexEntry
	required map[string]indexEntry
}

type indexEntry struct {
	canonical string
	language  Language
}

func newIndexEntry(name string) indexEntry {
	canonical := Normalize(name)
	return indexEntry{canonical: canonical, language: parseLanguage(canonical)}
}

// NewIndex normalizes subjects for lookup. The slice is not copied.
func NewIndex(subjects []Subject) *Index {
	x := &Index{
		subjects: subjects,
		entries:  make([]indexEntry, len(subjects)),
		required: make(map[string]indexEntry),
	}
	for i, s := range subjects {
		x.entries[i] = newIndexEntry(s.Name)
	}
	return x
}

// Subjects returns the indexed subjects.
func (x *Index) Subjects() []Subject {
	return x.subjects
}

// Canonical returns the canonical name of the i-th subject.
func (x *Index) Canonical(i int) string {
	return x.entries[i].canonical
}

// Find returns the first subject whose canonical name equals the required
// one, falling back to the first language-compatible subject.
func (x *Index) Find(required string) (Subject, bool) {
	want, ok := x.required[required]
	if !ok {
		want = newIndexEntry(required)
		x.required[required] = want
	}
	if want.canonical == "" {
		return Subject{}, false
	}

	for i, e := range x.entries {
		if e.canonical == want.canonical {
			return x.subjects[i], true
		}
	}
	for i, e := range x.entries {
		if e.language.covers(want.language) {
			return x.subjects[i], true
		}
	}
	return Subject{}, false
}
