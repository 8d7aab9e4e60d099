package index

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []Status{StatusActual, StatusIrrelevant, StatusBanned, StatusRemoved}

func (s Status) String() string {
	switch s {
	case StatusActual:
		return "ACTUAL"
	case StatusIrrelevant:
		return "IRRELEVANT"
	case StatusBanned:
		return "BANNED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts the upper-case status names printed by String.
func ParseStatus(s string) (Status, error) {
	switch strings.TrimSpace(s) {
	case "ACTUAL":
		return StatusActual, nil
	case "IRRELEVANT":
		return StatusIrrelevant, nil
	case "BANNED":
		return StatusBanned, nil
	case "REMOVED":
		return StatusRemoved, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, "invalid status %q", s)
	}
}

// Document is the metadata stored per indexed document.
type Document struct {
	ID     int
	Status Status
	Rating int
}

// Posting is one document's term frequency for a word.
type Posting struct {
	DocID    int
	TermFreq float64
}

type PostingList []Posting
