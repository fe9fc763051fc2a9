package transcript

// Kind tags the shape of a raw transcript payload.
type Kind int

// Raw transcript shapes.
const (
	// KindText is a plain string, possibly with inline [MM:SS] markers.
	KindText Kind = iota
	// KindRecords is an array of loosely-typed segment records.
	KindRecords
	// KindOpaque is anything else; it degrades to a single untimed
	// pseudo-segment rather than failing.
	KindOpaque
)

// Raw is a transcript payload as it arrives, before normalization.
// Construct with Text, Records, Opaque, or DecodeRaw.
type Raw struct {
	kind    Kind
	text    string
	records []map[string]any
	opaque  any
}

// Text wraps a plain-string transcript.
func Text(s string) Raw {
	return Raw{kind: KindText, text: s}
}

// Records wraps an array of segment records.
func Records(recs []map[string]any) Raw {
	return Raw{kind: KindRecords, records: recs}
}

// Opaque wraps an unrecognized payload.
func Opaque(v any) Raw {
	return Raw{kind: KindOpaque, opaque: v}
}

// Kind returns the payload shape tag.
func (r Raw) Kind() Kind {
	return r.kind
}

// DecodeRaw classifies a decoded JSON value into a Raw transcript.
// Strings become KindText; arrays whose elements are all objects become
// KindRecords; everything else, including arrays of non-objects, is
// KindOpaque.
func DecodeRaw(v any) Raw {
	switch payload := v.(type) {
	case string:
		return Text(payload)
	case []any:
		recs := make([]map[string]any, 0, len(payload))
		for _, item := range payload {
			rec, ok := item.(map[string]any)
			if !ok {
				return Opaque(v)
			}
			recs = append(recs, rec)
		}
		return Records(recs)
	case []map[string]any:
		return Records(payload)
	default:
		return Opaque(v)
	}
}
