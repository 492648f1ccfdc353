package wildlife

import "strings"

// NormalizeDetection cleans a parsed detection in place: species records
// without a common name are dropped, and confidence values outside the
// high/medium/low vocabulary collapse to medium.
func NormalizeDetection(d *DetectionResult) {
	kept := d.SpeciesDetected[:0]
	for _, s := range d.SpeciesDetected {
		s.CommonName = strings.TrimSpace(s.CommonName)
		if s.CommonName == "" {
			continue
		}
		switch s.Confidence {
		case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		default:
			s.Confidence = ConfidenceMedium
		}
		kept = append(kept, s)
	}
	d.SpeciesDetected = kept
	if d.Count < len(d.SpeciesDetected) {
		d.Count = len(d.SpeciesDetected)
	}
}
