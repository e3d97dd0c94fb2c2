package services

import (
	"math"
	"strings"
)

// PageSize is the fixed number of rows per listing page.
const PageSize = 6

// Page is a 1-based page number.
type Page int

// maxPage keeps Offset within int.
const maxPage = math.MaxInt / PageSize

// NewPage clamps n into [1, maxPage].
func NewPage(n int) Page {
	switch {
	case n < 1:
		return 1
	case n > maxPage:
		return maxPage
	}
	return Page(n)
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int { return (int(NewPage(int(p))) - 1) * PageSize }

// PageCount returns ceil(total / PageSize); zero matches yields zero pages.
func PageCount(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + PageSize - 1) / PageSize)
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern; pair it with
// LOWER(column) LIKE ? ESCAPE '\'.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

const likeEscape = ` ESCAPE '\'`
