package services

import (
	"math"
	"testing"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCountBounds(t *testing.T) {
	assert.Equal(t, 0, PageCount(0))
	for matches := int64(1); matches <= 50; matches++ {
		pages := int64(PageCount(matches))
		assert.GreaterOrEqual(t, pages*PageSize, matches, "matches=%d", matches)
		assert.GreaterOrEqual(t, matches, (pages-1)*PageSize+1, "matches=%d", matches)
	}
	assert.Equal(t, 3, PageCount(13))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(0).Offset())
	assert.Equal(t, 0, NewPage(-4).Offset())
	assert.Equal(t, 0, NewPage(1).Offset())
	assert.Equal(t, 12, NewPage(3).Offset())
	assert.Equal(t, 0, Page(0).Offset())
}

func TestPageOffsetHugePage(t *testing.T) {
	assert.Positive(t, NewPage(math.MaxInt).Offset())
	assert.Positive(t, Page(math.MaxInt).Offset())
	assert.Equal(t, NewPage(math.MaxInt), NewPage(math.MaxInt-1))

	conn := setupTestDB(t)
	svc := NewInvoiceService(conn)
	c := seedCustomer(t, conn, "Ada Lovelace", "ada@example.com")
	p := seedProduct(t, conn, "Keyboard", 1500)
	_, err := svc.Create(ctx, InvoiceInput{CustomerID: c.ID, ProductIDs: ids(p), Status: models.InvoiceStatusPending})
	require.NoError(t, err)

	rows, err := svc.FetchFiltered(ctx, "", math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, rows, "a page past the end lists nothing")
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ada%", containsPattern("  Ada "))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_OFF"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
	assert.Equal(t, "%%", containsPattern(""))
}
