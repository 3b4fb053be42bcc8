package verses

import (
	"testing"

	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type works map[int]corpus.Work

func (w works) Work(id int) (corpus.Work, bool) {
	x, ok := w[id]
	return x, ok
}

func loc(s string) *string { return &s }

func TestPrimaryKey(t *testing.T) {
	assert.Equal(t, "whole", PrimaryKey(nil))
	assert.Equal(t, "13", PrimaryKey(loc("13-17")))
	assert.Equal(t, "7", PrimaryKey(loc("7")))
	assert.Equal(t, "xyz", PrimaryKey(loc("xyz")))
	assert.Equal(t, "4", PrimaryKey(loc("4a")))
	assert.Equal(t, "", PrimaryKey(loc("")))
}

func TestGroupByVerseOrdering(t *testing.T) {
	ws := works{1: {ID: 1, Category: "Nicene"}}
	cites := []corpus.Citation{
		{WorkID: 1, Verse: loc("10")},
		{WorkID: 1, Verse: loc("9")},
		{WorkID: 1, Verse: nil},
		{WorkID: 1, Verse: loc("2")},
	}
	groups := GroupByVerse(cites, ws, filter.NewCategories("Nicene"))
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"whole", "2", "9", "10"}, keys)
}

func TestGroupByVerseFiltering(t *testing.T) {
	ws := works{
		1: {ID: 1, Category: "Nicene"},
		2: {ID: 2, Category: "Ante-Nicene"},
	}
	cites := []corpus.Citation{
		{WorkID: 1, Verse: loc("13"), PassageID: "a"},
		{WorkID: 2, Verse: loc("13-17"), PassageID: "b"},
		{WorkID: 1, Verse: loc("13"), PassageID: "c"},
		{WorkID: 99, Verse: loc("13"), PassageID: "unresolved"},
		{WorkID: 1, Verse: loc("xyz"), PassageID: "d"},
	}

	groups := GroupByVerse(cites, ws, filter.NewCategories("Nicene", "Ante-Nicene"))
	require.Len(t, groups, 2)
	assert.Equal(t, "13", groups[0].Key)
	assert.Len(t, groups[0].Citations, 3)
	assert.Equal(t, "a", groups[0].Citations[0].PassageID, "input order is kept within a group")
	assert.Equal(t, "xyz", groups[1].Key, "opaque keys sort after numeric ones")

	groups = GroupByVerse(cites, ws, filter.NewCategories("Ante-Nicene"))
	require.Len(t, groups, 1)
	assert.Equal(t, map[string]int{"13": 1}, Counts(groups))

	assert.Empty(t, GroupByVerse(cites, ws, filter.NewCategories()))
}

func TestSortKeys(t *testing.T) {
	keys := []string{"b", "100", "whole", "20", "a", "3"}
	SortKeys(keys)
	assert.Equal(t, []string{"whole", "3", "20", "100", "a", "b"}, keys)
}

func TestFind(t *testing.T) {
	groups := []Group{{Key: "whole"}, {Key: "3"}}
	g, ok := Find(groups, "3")
	assert.True(t, ok)
	assert.Equal(t, "3", g.Key)
	_, ok = Find(groups, "4")
	assert.False(t, ok)
}
