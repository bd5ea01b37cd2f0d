package service

import (
	"crypto/rand"
	"fmt"
)

// Tracking ids are short codes residents quote over the phone, so the
// charset drops easily-confused characters (0/O, 1/I).
const (
	trackingIDLength  = 8
	trackingIDCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func generateTrackingID() (string, error) {
	buf := make([]byte, trackingIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tracking id: %w", err)
	}
	for i, b := range buf {
		buf[i] = trackingIDCharset[int(b)%len(trackingIDCharset)]
	}
	return string(buf), nil
}

// newTrackingID loops until the generated code does not collide with a
// persisted report. Collisions are negligible but possible, so the
// contract is retry, not fail.
func (s *ReportService) newTrackingID() (string, error) {
	for {
		id, err := generateTrackingID()
		if err != nil {
			return "", err
		}

		exists, err := s.reports.ExistsTrackingID(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}
