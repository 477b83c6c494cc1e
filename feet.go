package scansion

// HexameterFeet is the number of feet in a well-formed line.
const HexameterFeet = 6

// ScanFeet returns a copy of syls grouped into feet, the number of feet
// opened, and any diagnostics. A foot must open on a long syllable; a long
// second syllable closes a spondee, a short one closes a trochee at the end of
// the line or a dactyl when the next syllable is short too. Any other shape
// halts the scan; syllables already scanned keep their annotation.
func ScanFeet(raw string, syls []Syllable) ([]Syllable, int, []error) {
	out := append([]Syllable(nil), syls...)
	if len(out) == 0 {
		return out, 0, []error{issuef(ErrEmptyLine, raw, "nothing to scan")}
	}
	var issues []error
	foot := -1
	slot := 0
scan:
	for i := 0; i < len(out); i++ {
		s := &out[i]
		s.FootPosition = slot
		if slot == 0 {
			foot++
			s.FootIndex = foot
			s.FootStart = true
			if i > 0 {
				out[i-1].FootEnd = true
			}
			if !s.Long {
				issues = append(issues, syllableIssue(ErrFootStartsShort, raw, out, i))
				break scan
			}
			slot = 1
			continue
		}

		s.FootIndex = foot
		switch {
		case s.Long:
			out[i-1].Foot, s.Foot = Spondee, Spondee
		case i == len(out)-1:
			out[i-1].Foot, s.Foot = Trochee, Trochee
		case out[i+1].Long:
			issues = append(issues, syllableIssue(ErrIllegalEnding, raw, out, i))
			break scan
		default:
			next := &out[i+1]
			out[i-1].Foot, s.Foot, next.Foot = Dactyl, Dactyl, Dactyl
			next.FootPosition = 2
			next.FootIndex = foot
			i++
		}
		slot = 0
	}

	last := &out[len(out)-1]
	last.FootEnd = true
	last.FootIndex = foot

	feet := foot + 1
	if feet != HexameterFeet {
		issues = append(issues, issuef(ErrFootCount, raw, "%d feet", feet))
	}
	return out, feet, issues
}
