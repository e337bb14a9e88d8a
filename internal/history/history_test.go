package history

import (
	"context"
	"testing"
)

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, amount := range []int64{10, 20, 30} {
		err := repo.Append(ctx, Record{Kind: KindCharge, CardID: "NFC001", Amount: amount})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := repo.ListByCard(ctx, "NFC001", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []int64{30, 20, 10} {
		if records[i].Amount != want {
			t.Fatalf("record %d: expected amount %d, got %d", i, want, records[i].Amount)
		}
		if records[i].ID == "" || records[i].CreatedAt.IsZero() {
			t.Fatalf("record %d missing id or timestamp", i)
		}
	}
}

func TestMemoryRepositoryPagination(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		if err := repo.Append(ctx, Record{Kind: KindTopUp, CardID: "NFC001", Amount: i}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	page, err := repo.ListByCard(ctx, "NFC001", 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}
	if page[0].Amount != 3 || page[1].Amount != 2 {
		t.Fatalf("unexpected page contents: %d, %d", page[0].Amount, page[1].Amount)
	}

	empty, err := repo.ListByCard(ctx, "NFC001", 10, 10)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d records", len(empty))
	}
}

func TestMemoryRepositoryIsolatesCards(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Append(ctx, Record{Kind: KindCharge, CardID: "NFC001", Amount: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	records, err := repo.ListByCard(ctx, "NFC002", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records for other card, got %d", len(records))
	}
}
