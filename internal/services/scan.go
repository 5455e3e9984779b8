package services

import (
	"log"

	"github.com/DropShort/Short-File-Service/internal/blob"
	clamd "github.com/dutchcoders/go-clamd"
)

// Scanner checks stored blobs against ClamAV. Detection only: blobs are
// immutable and never deleted, so an infected blob is reported, not
// removed.
type Scanner struct {
	clam   *clamd.Clamd
	blobs  blob.Store
	events *EventPublisher
}

// NewScanner wires a scanner against the given ClamAV address
// (e.g. "tcp://localhost:3310"). events may be nil.
func NewScanner(clamAvURL string, blobs blob.Store, events *EventPublisher) *Scanner {
	return &Scanner{
		clam:   clamd.NewClamd(clamAvURL),
		blobs:  blobs,
		events: events,
	}
}

// ScanBlob streams the blob to ClamAV. Run it in its own goroutine; scan
// results never block or fail an upload.
func (s *Scanner) ScanBlob(md5sum, filename string) {
	if s == nil {
		return
	}

	rc, err := s.blobs.Get(md5sum)
	if err != nil {
		log.Printf("[SCAN] failed to read blob %s: %v", md5sum, err)
		return
	}
	defer rc.Close()

	response, err := s.clam.ScanStream(rc, make(chan bool))
	if err != nil {
		log.Printf("[SCAN] scan failed for %s: %v", md5sum, err)
		return
	}

	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("[SCAN] virus detected in %s (%s): %s", md5sum, filename, res.Description)

			if err := s.events.PublishEvent("links.infected", map[string]interface{}{
				"md5sum":      md5sum,
				"filename":    filename,
				"description": res.Description,
			}); err != nil {
				log.Printf("[SCAN] warning: failed to publish links.infected event: %v", err)
			}
			return
		}
	}

	log.Printf("[SCAN] %s clean", md5sum)
}
