package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/notifybarrier/internal/attest"
)

func TestGroupStages(t *testing.T) {
	g := &Group{Name: "Test Group", Summary: "Only for tests."}
	g.AddStage("first", "First stage", func() *attest.Suite { return attest.New() })
	g.AddStage("second", "Second stage", func() *attest.Suite { return attest.New() })

	RegisterGroup("test-group", g)
	t.Cleanup(func() { delete(groups, "test-group") })

	got, err := GetGroup("test-group")
	require.NoError(t, err)
	assert.Equal(t, "test-group", got.Key)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"first", "second"}, got.StageOrder)
	assert.Contains(t, GroupKeys(), "test-group")

	stage, err := got.GetStage("second")
	require.NoError(t, err)
	assert.Equal(t, "Second stage", stage.Name)

	_, err = got.GetStage("third")
	assert.Error(t, err)

	desc := got.Describe()
	assert.Contains(t, desc, "Only for tests.")
	assert.Contains(t, desc, "2. second")

	_, err = GetGroup("missing")
	assert.Error(t, err)
}
