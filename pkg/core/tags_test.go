package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/core"
)

func TestReconcile(t *testing.T) {
	vocab := []core.Tag{{ID: "1", Name: "work"}, {ID: "2", Name: "home"}, {ID: "3", Name: "misc"}}
	notes := []core.Note{
		{ID: "a", Tags: []string{"misc"}},
		{ID: "b", Tags: []string{"work"}},
	}

	got := core.Reconcile(notes, vocab)
	assert.Equal(t, []core.Tag{{ID: "1", Name: "work"}, {ID: "3", Name: "misc"}}, got)
	assert.Len(t, vocab, 3, "input must not be modified")

	assert.Empty(t, core.Reconcile(nil, vocab))
}

func TestEnsureTag(t *testing.T) {
	ids := 0
	newID := func() string { ids++; return "t" + string(rune('0'+ids)) }

	vocab, tag, added := core.EnsureTag("  go  ", nil, newID)
	require.True(t, added)
	assert.Equal(t, core.Tag{ID: "t1", Name: "go"}, tag)
	assert.Len(t, vocab, 1)

	again, tag2, added := core.EnsureTag("go", vocab, newID)
	assert.False(t, added)
	assert.Equal(t, tag, tag2)
	assert.Equal(t, vocab, again)

	blank, zero, added := core.EnsureTag("   ", vocab, newID)
	assert.False(t, added)
	assert.Equal(t, core.Tag{}, zero)
	assert.Len(t, blank, 1)
	assert.Equal(t, 1, ids)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, core.NormalizeTags([]string{" a", "", "b", "a ", "  "}))
	assert.Equal(t, []string{}, core.NormalizeTags(nil))
}
