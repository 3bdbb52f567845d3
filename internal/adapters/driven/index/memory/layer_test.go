package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

func rec(id, name string) domain.IndexableRecord {
	return domain.IndexableRecord{ID: id, Name: name, Coordinate: domain.NewPoint(0, 0)}
}

func ids(records []domain.IndexableRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestLayer_NameAndPriority(t *testing.T) {
	l := NewLayer("favorites", 10)
	assert.Equal(t, "favorites", l.Name())
	assert.Equal(t, 10, l.Priority())

	viaFactory := Factory("history", 5)
	assert.Equal(t, "history", viaFactory.Name())
}

func TestLayer_UpsertGetRemove(t *testing.T) {
	l := NewLayer("x", 0)
	l.Upsert(rec("1", "Home"), rec("2", "Work"))

	got, ok := l.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Home", got.Name)
	assert.Equal(t, 2, l.Size())

	l.Upsert(rec("1", "New Home"))
	got, _ = l.Get("1")
	assert.Equal(t, "New Home", got.Name)
	assert.Equal(t, 2, l.Size())

	l.Remove("1", "missing")
	_, ok = l.Get("1")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Size())

	l.Clear()
	assert.Zero(t, l.Size())
}

func TestLayer_Records_SortedByID(t *testing.T) {
	l := NewLayer("x", 0)
	l.Upsert(rec("b", "B"), rec("a", "A"))
	assert.Equal(t, []string{"a", "b"}, ids(l.Records()))
}

func TestLayer_Search_Ranking(t *testing.T) {
	l := NewLayer("x", 0)
	l.Upsert(
		rec("1", "Central Park Zoo"),
		rec("2", "Central Park"),
		rec("3", "Park Central Hotel"),
		rec("4", "Union Square"),
	)

	got := l.Search("central park", 0)

	assert.Equal(t, []string{"2", "1", "3"}, ids(got))
}

func TestLayer_Search_FoldsCaseAndAccents(t *testing.T) {
	l := NewLayer("x", 0)
	l.Upsert(rec("1", "Café Müller"))

	assert.Len(t, l.Search("cafe mul", 0), 1)
	assert.Len(t, l.Search("CAFÉ", 0), 1)
}

func TestLayer_Search_IndexTokens(t *testing.T) {
	l := NewLayer("x", 0)
	r := rec("1", "Home")
	r.IndexTokens = []string{"house", "apartment"}
	l.Upsert(r)

	assert.Len(t, l.Search("apart", 0), 1)
}

func TestLayer_Search_LimitAndEmptyQuery(t *testing.T) {
	l := NewLayer("x", 0)
	l.Upsert(rec("1", "Bar One"), rec("2", "Bar Two"), rec("3", "Bar Three"))

	assert.Len(t, l.Search("bar", 2), 2)
	assert.Nil(t, l.Search("   ", 0))
}

func TestLayer_ConcurrentAccess(t *testing.T) {
	l := NewLayer("x", 0)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Upsert(rec(string(rune('a'+i)), "Place"))
		}()
		go func() {
			defer wg.Done()
			l.Search("place", 0)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, l.Size())
}
