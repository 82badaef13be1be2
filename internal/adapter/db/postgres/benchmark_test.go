package postgres

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"samaj-directory/internal/domain/directory"
)

func BenchmarkCollectionRepo_ListWalk(b *testing.B) {
	db := setupTestDB(b)
	seedFamilies(b, db, 90)
	repo := NewFamilyRepo(db, zap.NewNop())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := directory.PageRequest{First: 30}
		for {
			p, err := repo.List(ctx, req)
			if err != nil {
				b.Fatal(err)
			}
			if !p.HasNextPage {
				break
			}
			req.After = p.EndCursor
		}
	}
}

func BenchmarkCollectionRepo_Search(b *testing.B) {
	db := setupTestDB(b)
	seedFamilies(b, db, 90)
	repo := NewFamilyRepo(db, zap.NewNop())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.Search(ctx, "family 4", directory.PageRequest{First: 30}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCursorRoundTrip(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := encodeCursor(base, "fam-42")
		if _, _, err := decodeCursor(c); err != nil {
			b.Fatal(err)
		}
	}
}
