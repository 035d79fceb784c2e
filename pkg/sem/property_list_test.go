package sem

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
)

func TestUpdatePropertyDefKeepsIndex(t *testing.T) {
	sels := buildTestSelectors(t, "x", "y")
	x, _ := sels.LookupByName("x")
	y, _ := sels.LookupByName("y")

	pl := NewPropertyList()
	assert.Equal(t, 0, pl.UpdatePropertyDef("x", x, codegen.Int(1)))
	assert.Equal(t, 1, pl.UpdatePropertyDef("y", y, codegen.Int(2)))
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0, pl.UpdatePropertyDef("x", x, codegen.Int(10+i)))
	}
	assert.Equal(t, 2, pl.Len())

	entry, ok := pl.LookupByName("x")
	require.True(t, ok)
	assert.Equal(t, codegen.Int(12), entry.Value)

	bySel, ok := pl.LookupBySelector(y.Num())
	require.True(t, ok)
	assert.Equal(t, "y", bySel.Name)
	assert.Equal(t, 1, bySel.Index)
}

func TestPropertyListCloneIsIndependent(t *testing.T) {
	sels := buildTestSelectors(t, "x", "y", "z")
	x, _ := sels.LookupByName("x")
	y, _ := sels.LookupByName("y")
	z, _ := sels.LookupByName("z")

	pl := NewPropertyList()
	pl.UpdatePropertyDef("x", x, codegen.Int(1))
	pl.UpdatePropertyDef("y", y, codegen.Int(2))

	clone := pl.Clone()
	require.Equal(t, pl.Entries(), clone.Entries(), "clone differs:\n%s", spew.Sdump(pl.Entries(), clone.Entries()))

	clone.UpdatePropertyDef("x", x, codegen.Int(100))
	clone.UpdatePropertyDef("z", z, codegen.Int(3))

	orig, _ := pl.LookupByName("x")
	assert.Equal(t, codegen.Int(1), orig.Value)
	assert.Equal(t, 2, pl.Len())
	_, ok := pl.LookupByName("z")
	assert.False(t, ok)
	_, ok = pl.LookupBySelector(z.Num())
	assert.False(t, ok)
}

func TestPropertyListEntriesAreCopies(t *testing.T) {
	sels := buildTestSelectors(t, "x")
	x, _ := sels.LookupByName("x")

	pl := NewPropertyList()
	pl.UpdatePropertyDef("x", x, codegen.Int(1))
	entries := pl.Entries()
	entries[0].Value = codegen.Int(99)

	e, _ := pl.LookupByName("x")
	assert.Equal(t, codegen.Int(1), e.Value)
}
