// Package tempo maps a BPM value to its classical tempo marking.
package tempo

const (
	MinBPM = 30
	MaxBPM = 300

	// Unclassified is returned for BPM values outside MinBPM..MaxBPM.
	Unclassified = "unclassified"
)

// Range is a named tempo marking covering Low..High BPM, both inclusive.
type Range struct {
	Name string
	Low  int
	High int
}

func (r Range) Contains(bpm int) bool {
	return bpm >= r.Low && bpm <= r.High
}

// Table is ordered by tempo and covers MinBPM..MaxBPM without gaps.
var Table = []Range{
	{"grave", 30, 40},
	{"largo", 41, 49},
	{"adagio", 50, 66},
	{"lento", 67, 71},
	{"andante", 72, 80},
	{"andante moderato", 81, 108},
	{"moderato", 109, 120},
	{"allegro", 121, 147},
	{"allegro vivace", 148, 156},
	{"vivace", 157, 171},
	{"presto", 172, 200},
	{"prestissimo", 201, 300},
}

// Lookup returns the first range in Table containing bpm.
func Lookup(bpm int) (Range, bool) {
	for _, r := range Table {
		if r.Contains(bpm) {
			return r, true
		}
	}
	return Range{}, false
}

// Name returns the tempo marking for bpm, or Unclassified.
func Name(bpm int) string {
	if r, ok := Lookup(bpm); ok {
		return r.Name
	}
	return Unclassified
}
