// Package filter defines the inclusion rules that decide which documents may
// contribute to a query's results.
package filter

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
)

// Predicate is the caller-supplied form of a rule.
type Predicate func(docID int, status index.Status, rating int) bool

// Rule accepts or rejects a document. Key identifies rules that can be
// compared by value; ok is false for rules wrapping arbitrary code.
type Rule interface {
	Accept(docID int, status index.Status, rating int) bool
	Key() (key string, ok bool)
}

type statusRule struct {
	statuses map[index.Status]struct{}
}

// Actual is the default rule: only ACTUAL documents.
func Actual() Rule {
	return Status(index.StatusActual)
}

func Status(status index.Status) Rule {
	return Statuses(status)
}

// Statuses accepts documents whose status is any of the given ones.
func Statuses(statuses ...index.Status) Rule {
	set := make(map[index.Status]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return statusRule{statuses: set}
}

func (r statusRule) Accept(_ int, status index.Status, _ int) bool {
	_, ok := r.statuses[status]
	return ok
}

func (r statusRule) Key() (string, bool) {
	names := make([]string, 0, len(r.statuses))
	for s := range r.statuses {
		names = append(names, s.String())
	}
	sort.Strings(names)
	return "status=" + strings.Join(names, ","), true
}

type anyRule struct{}

func Any() Rule {
	return anyRule{}
}

func (anyRule) Accept(int, index.Status, int) bool { return true }

func (anyRule) Key() (string, bool) { return "any", true }

type customRule struct {
	fn Predicate
}

func Custom(fn Predicate) Rule {
	return customRule{fn: fn}
}

func (r customRule) Accept(docID int, status index.Status, rating int) bool {
	return r.fn(docID, status, rating)
}

func (customRule) Key() (string, bool) { return "", false }

// OrDefault returns rule, or Actual when rule is nil.
func OrDefault(rule Rule) Rule {
	if rule == nil {
		return Actual()
	}
	return rule
}
