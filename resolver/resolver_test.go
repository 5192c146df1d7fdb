package resolver_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/db/query"
	"github.com/webhookx-io/eventsvc/normalizer"
	"github.com/webhookx-io/eventsvc/resolver"
	"github.com/webhookx-io/eventsvc/test/mocks"
	"go.uber.org/mock/gomock"
)

func draft(raw map[string]interface{}) *normalizer.Draft {
	d, _ := normalizer.Normalize(raw, nil)
	return d
}

func TestNewCriteria(t *testing.T) {
	q, ok := resolver.NewCriteria(draft(map[string]interface{}{
		"name":     "Launch",
		"schedule": "2024-01-01",
	}), "abc")
	require.True(t, ok)
	assert.Equal(t, "Launch", q.Name)
	assert.True(t, q.At.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", q.ISO)
	assert.Equal(t, "2024-01-01", q.Raw)
	assert.Equal(t, "2024-01-01", q.RawText)
	assert.Equal(t, "abc", q.ExcludeID)

	q, ok = resolver.NewCriteria(draft(map[string]interface{}{
		"name":     "Launch",
		"schedule": json.Number("1704067200000"),
	}), "")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", q.ISO)
	assert.Equal(t, "1704067200000", q.RawText)
}

func TestFindDuplicateSkipsStore(t *testing.T) {
	tests := []struct {
		scenario string
		raw      map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"schedule": "2024-01-01"}},
		{"empty name", map[string]interface{}{"name": "", "schedule": "2024-01-01"}},
		{"missing schedule", map[string]interface{}{"name": "Launch"}},
		{"unparsable schedule", map[string]interface{}{"name": "Launch", "schedule": "someday"}},
		{"blank schedule", map[string]interface{}{"name": "Launch", "schedule": "   "}},
		{"boolean schedule", map[string]interface{}{"name": "Launch", "schedule": true}},
	}
	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			finder := mocks.NewMockFinder(ctrl)
			finder.EXPECT().Exists(gomock.Any(), gomock.Any()).Times(0)

			dup, err := resolver.New(finder).FindDuplicate(context.TODO(), draft(test.raw), "")
			assert.NoError(t, err)
			assert.False(t, dup)
		})
	}

	dup, err := resolver.New(nil).FindDuplicate(context.TODO(), nil, "")
	assert.NoError(t, err)
	assert.False(t, dup)
}

func TestFindDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	finder.EXPECT().
		Exists(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, q *query.DuplicateQuery) (bool, error) {
			assert.Equal(t, "Launch", q.Name)
			assert.Equal(t, "2024-01-01T00:00:00.000Z", q.ISO)
			assert.Equal(t, "id-1", q.ExcludeID)
			return true, nil
		})

	dup, err := resolver.New(finder).FindDuplicate(context.TODO(), draft(map[string]interface{}{
		"name":     "Launch",
		"schedule": "2024-01-01T00:00:00Z",
	}), "id-1")
	assert.NoError(t, err)
	assert.True(t, dup)
}

func TestFindDuplicateStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockFinder(ctrl)
	storeErr := errors.New("connection refused")
	finder.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, storeErr)

	dup, err := resolver.New(finder).FindDuplicate(context.TODO(), draft(map[string]interface{}{
		"name":     "Launch",
		"schedule": "2024-01-01",
	}), "")
	assert.False(t, dup)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "connection refused")
}
