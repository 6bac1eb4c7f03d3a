package market

import (
	"sort"

	"capacitymarket/internal/models"
)

type bidKey struct {
	plantID string
	year    int
}

type bookEntry struct {
	bid models.YearlyBid
	seq uint64 // submission order, bumped on replacement
}

// BidBook holds at most one bid per (plant, year) for a single session.
// It does no locking; callers serialise access per session.
type BidBook struct {
	entries map[bidKey]*bookEntry
	seq     uint64
}

// NewBidBook creates an empty bid book
func NewBidBook() *BidBook {
	return &BidBook{
		entries: make(map[bidKey]*bookEntry),
	}
}

// Upsert stores bid, replacing any earlier bid for the same plant and year.
// A replacement keeps the original bid ID but moves to the back of the
// submission order. It returns the stored bid and whether one was replaced.
func (b *BidBook) Upsert(bid models.YearlyBid) (models.YearlyBid, bool) {
	key := bidKey{plantID: bid.PlantID, year: bid.Year}
	b.seq++

	existing, replaced := b.entries[key]
	if replaced {
		bid.ID = existing.bid.ID
		bid.CreatedAt = existing.bid.CreatedAt
	}
	b.entries[key] = &bookEntry{bid: bid, seq: b.seq}
	return bid, replaced
}

// Get returns the bid for a plant and year
func (b *BidBook) Get(plantID string, year int) (models.YearlyBid, bool) {
	entry, ok := b.entries[bidKey{plantID: plantID, year: year}]
	if !ok {
		return models.YearlyBid{}, false
	}
	return entry.bid, true
}

// ForYear returns all bids for year in submission order
func (b *BidBook) ForYear(year int) []models.YearlyBid {
	entries := make([]*bookEntry, 0)
	for key, entry := range b.entries {
		if key.year == year {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	bids := make([]models.YearlyBid, len(entries))
	for i, entry := range entries {
		bids[i] = entry.bid
	}
	return bids
}

// Len returns the number of bids across all years
func (b *BidBook) Len() int {
	return len(b.entries)
}
