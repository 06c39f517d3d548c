package sql

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }

func requirePartitionColumn(t *testing.T, o *Options, name string, ok bool) {
	t.Helper()
	got, gotOk := o.PartitionColumn()
	require.Equal(t, ok, gotOk)
	require.Equal(t, name, got)
}

func TestOptionsPartitionColumn(t *testing.T) {
	o := NewOptions()
	requirePartitionColumn(t, o, DefaultPartitionColumn, true)

	o.SetPartitionColumn(nil)
	requirePartitionColumn(t, o, "", false)

	name := "PT"
	o.SetPartitionColumn(&name)
	name = "changed"
	requirePartitionColumn(t, o, "PT", true)
}

func TestOptionsWithPartitionColumn(t *testing.T) {
	testCases := []struct {
		name     string
		previous *string
		value    *string
		inner    string
		innerOk  bool
		err      error
	}{
		{"set", nil, stringPtr("PT"), "PT", true, nil},
		{"unset", stringPtr("PT"), nil, "", false, nil},
		{"replace", stringPtr("PT"), stringPtr("other"), "other", true, nil},
		{"set with error", nil, stringPtr("PT"), "PT", true, errors.New("boom")},
		{"unset with error", stringPtr("PT"), nil, "", false, errors.New("boom")},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			o := NewOptions()
			o.SetPartitionColumn(tt.previous)

			var called bool
			err := o.WithPartitionColumn(tt.value, func() error {
				called = true
				requirePartitionColumn(t, o, tt.inner, tt.innerOk)
				return tt.err
			})
			require.True(called)
			require.Equal(tt.err, err)

			if tt.previous == nil {
				requirePartitionColumn(t, o, "", false)
			} else {
				requirePartitionColumn(t, o, *tt.previous, true)
			}
		})
	}
}

func TestOptionsWithPartitionColumnNested(t *testing.T) {
	require := require.New(t)

	o := NewOptions()
	err := o.WithPartitionColumn(nil, func() error {
		requirePartitionColumn(t, o, "", false)
		return o.WithPartitionColumn(stringPtr("inner"), func() error {
			requirePartitionColumn(t, o, "inner", true)
			return nil
		})
	})
	require.NoError(err)
	requirePartitionColumn(t, o, DefaultPartitionColumn, true)
}

func TestOptionsWithPartitionColumnPanic(t *testing.T) {
	o := NewOptions()
	require.Panics(t, func() {
		_ = o.WithPartitionColumn(nil, func() error {
			panic("boom")
		})
	})
	requirePartitionColumn(t, o, DefaultPartitionColumn, true)
}

func TestOptionsClone(t *testing.T) {
	o := NewOptions()
	clone := o.Clone()

	o.SetPartitionColumn(nil)
	requirePartitionColumn(t, clone, DefaultPartitionColumn, true)

	clone.SetPartitionColumn(stringPtr("PT"))
	requirePartitionColumn(t, o, "", false)
}

func TestOptionsConcurrentAccess(t *testing.T) {
	o := NewOptions()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.SetPartitionColumn(stringPtr("PT"))
			o.PartitionColumn()
			o.Clone()
		}()
	}
	wg.Wait()

	requirePartitionColumn(t, o, "PT", true)
}
