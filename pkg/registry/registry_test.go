// pkg/registry/registry_test.go
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "analyze-query", TaskType: "analyze-query", Category: "intake"},
			{ID: "file-application", TaskType: "file-application", Category: "filing"},
		},
	}
}

func TestActivityRegistry_FindByTaskType(t *testing.T) {
	reg := testRegistry()

	activity, ok := reg.FindByTaskType("file-application")
	require.True(t, ok)
	assert.Equal(t, "filing", activity.Category)

	_, ok = reg.FindByTaskType("unknown-task")
	assert.False(t, ok)
}

func TestActivityRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActivityRegistry)
		wantErr bool
	}{
		{
			name:    "valid registry",
			mutate:  func(r *ActivityRegistry) {},
			wantErr: false,
		},
		{
			name: "duplicate id",
			mutate: func(r *ActivityRegistry) {
				r.Activities = append(r.Activities, Activity{ID: "analyze-query", TaskType: "other", Category: "intake"})
			},
			wantErr: true,
		},
		{
			name: "duplicate task type",
			mutate: func(r *ActivityRegistry) {
				r.Activities = append(r.Activities, Activity{ID: "other", TaskType: "analyze-query", Category: "intake"})
			},
			wantErr: true,
		},
		{
			name: "missing category",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].Category = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
