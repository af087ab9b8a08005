package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

func TestRun_VisitsEveryIndex(t *testing.T) {
	n := 200
	var count int64
	err := Run(n, 4, func(i int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	err := Run(10, 2, func(i int) error {
		if i == 5 {
			return fuserr.Runtimef("boom at %d", i)
		}
		return nil
	})
	require.Error(t, err)
}

func TestRun_ZeroItemsIsNoop(t *testing.T) {
	err := Run(0, 4, func(i int) error {
		t.Fatal("should not be called")
		return nil
	})
	require.NoError(t, err)
}
