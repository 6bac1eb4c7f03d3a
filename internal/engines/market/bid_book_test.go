package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/models"
)

func TestBidBook(t *testing.T) {
	t.Run("one bid per plant and year", func(t *testing.T) {
		book := NewBidBook()

		first, replaced := book.Upsert(models.YearlyBid{ID: "bid-1", PlantID: "A", Year: 2025, PeakQuantity: 100, PeakPrice: 30})
		assert.False(t, replaced)
		assert.Equal(t, "bid-1", first.ID)

		second, replaced := book.Upsert(models.YearlyBid{ID: "bid-2", PlantID: "A", Year: 2025, PeakQuantity: 80, PeakPrice: 45})
		assert.True(t, replaced)
		assert.Equal(t, "bid-1", second.ID, "replacement keeps the original id")

		stored, ok := book.Get("A", 2025)
		require.True(t, ok)
		assert.Equal(t, 80.0, stored.PeakQuantity)
		assert.Equal(t, 45.0, stored.PeakPrice)
		assert.Equal(t, 1, book.Len())
	})

	t.Run("years are separate", func(t *testing.T) {
		book := NewBidBook()
		book.Upsert(models.YearlyBid{ID: "1", PlantID: "A", Year: 2025})
		book.Upsert(models.YearlyBid{ID: "2", PlantID: "A", Year: 2026})

		assert.Len(t, book.ForYear(2025), 1)
		assert.Len(t, book.ForYear(2026), 1)
		assert.Empty(t, book.ForYear(2027))

		_, ok := book.Get("A", 2027)
		assert.False(t, ok)
	})

	t.Run("replacement moves to the back of submission order", func(t *testing.T) {
		book := NewBidBook()
		book.Upsert(models.YearlyBid{ID: "1", PlantID: "A", Year: 2025})
		book.Upsert(models.YearlyBid{ID: "2", PlantID: "B", Year: 2025})
		book.Upsert(models.YearlyBid{ID: "3", PlantID: "C", Year: 2025})
		book.Upsert(models.YearlyBid{ID: "4", PlantID: "A", Year: 2025})

		bids := book.ForYear(2025)

		require.Len(t, bids, 3)
		assert.Equal(t, []string{"B", "C", "A"}, []string{bids[0].PlantID, bids[1].PlantID, bids[2].PlantID})
		assert.Equal(t, "1", bids[2].ID)
	})
}
