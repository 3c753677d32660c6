package core

import "fmt"

// MisalignedExtractionError is returned when the name scan and the segmenter
// disagree on how many notices a document holds. No records are produced,
// since positional pairing can no longer be trusted.
type MisalignedExtractionError struct {
	NameCount    int
	SegmentCount int
}

func (e *MisalignedExtractionError) Error() string {
	return fmt.Sprintf("misaligned extraction: %d names for %d notice segments", e.NameCount, e.SegmentCount)
}
