package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleBitMasks(t *testing.T) {
	tests := []struct {
		name   string
		single bool
		got    bool
	}{
		{"lun", true, ObjectTypeLUN.Single()},
		{"zero object type", false, ObjectType(0).Single()},
		{"two object types", false, (ObjectTypeLUN | ObjectTypeRaidGroup).Single()},
		{"object wildcard", false, ObjectTypeAll.Single()},
		{"unsupported object bit", false, ObjectType(1 << 40).Single()},
		{"ready", true, TypeLifecycleReady.Single()},
		{"zero type", false, Type(0).Single()},
		{"two types", false, (TypeLifecycleReady | TypeLifecycleFail).Single()},
		{"type wildcard", false, TypeAll.Single()},
		{"unsupported type bit", false, Type(1 << 50).Single()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.single, tt.got)
		})
	}
}

func TestObjectIDUsable(t *testing.T) {
	assert.True(t, ObjectID(5).Usable())
	assert.False(t, ObjectID(0).Usable())
	assert.False(t, ObjectIDInvalid.Usable())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "LUN", ObjectTypeLUN.String())
	assert.Equal(t, "ALL", ObjectTypeAll.String())
	assert.Equal(t, "INVALID", ObjectType(0).String())
	assert.Equal(t, "LIFECYCLE_STATE_READY|JOB_ACTION_STATE_CHANGED",
		(TypeLifecycleReady | TypeJobOutcome).String())
	assert.Equal(t, "SPA", NodeA.String())
	assert.Equal(t, NodeB, NodeA.Peer())
	assert.Equal(t, NodeA, NodeB.Peer())
}

func TestParse(t *testing.T) {
	ot, err := ParseObjectType("raid_group")
	require.NoError(t, err)
	assert.Equal(t, ObjectTypeRaidGroup, ot)

	typ, err := ParseType("data_reconstruction")
	require.NoError(t, err)
	assert.Equal(t, TypeDataReconstruction, typ)

	_, err = ParseType("nope")
	assert.Error(t, err)
}
