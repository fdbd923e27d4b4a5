package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type spilled struct {
	OCID    string
	Payload []byte
}

func TestFileSpill(t *testing.T) {
	t.Run("NewFileSpill honours the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "spill")

		spill, err := NewFileSpill[int](WithDir(dir), WithPattern("releases-*.gob"))
		require.NoError(t, err)
		defer spill.Remove()

		require.Equal(t, dir, filepath.Dir(spill.Path()))
		require.Contains(t, filepath.Base(spill.Path()), "releases-")
	})

	t.Run("Append and Get", func(t *testing.T) {
		spill, err := NewFileSpill[string](WithDir(t.TempDir()))
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append("first"))
		require.NoError(t, spill.Append("second"))

		val, err := spill.Get(1)
		require.NoError(t, err)
		require.Equal(t, "second", val)

		val, err = spill.Get(0)
		require.NoError(t, err)
		require.Equal(t, "first", val)

		val, err = spill.Get(3)
		require.Error(t, err)
		require.Equal(t, "", val)
	})

	t.Run("Len counts appended items", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()))
		require.NoError(t, err)
		defer spill.Remove()

		require.Equal(t, uint64(0), spill.Len())
		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))
		require.Equal(t, uint64(3), spill.Len())
	})

	t.Run("Range preserves order and struct payloads", func(t *testing.T) {
		spill, err := NewFileSpill[spilled](WithDir(t.TempDir()))
		require.NoError(t, err)
		defer spill.Remove()

		items := []spilled{
			{OCID: "ocds-1", Payload: []byte(`{"a":1}`)},
			{OCID: "ocds-2", Payload: []byte(`{"b":2}`)},
			{OCID: "ocds-3"},
		}
		require.NoError(t, spill.AppendBatch(items))

		var got []spilled

		err = spill.Range(func(index uint64, item spilled) error {
			require.Equal(t, uint64(len(got)), index)
			got = append(got, item)

			return nil
		})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, "ocds-2", got[1].OCID)
		require.Equal(t, `{"a":1}`, string(got[0].Payload))
	})

	t.Run("Range stops on callback error", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()))
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))

		stop := errors.New("stop")
		calls := 0

		err = spill.Range(func(_ uint64, _ int) error {
			calls++
			return stop
		})
		require.ErrorIs(t, err, stop)
		require.Equal(t, 1, calls)
	})

	t.Run("items stay readable after Close", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()))
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append(42))
		require.NoError(t, spill.Close())
		require.NoError(t, spill.Close())
		require.Error(t, spill.Append(1))

		val, err := spill.Get(0)
		require.NoError(t, err)
		require.Equal(t, 42, val)
	})

	t.Run("Remove deletes the file", func(t *testing.T) {
		spill, err := NewFileSpill[int](WithDir(t.TempDir()))
		require.NoError(t, err)

		require.NoError(t, spill.Append(1))
		require.NoError(t, spill.Remove())

		_, err = os.Stat(spill.Path())
		require.True(t, os.IsNotExist(err))
		require.NoError(t, spill.Remove())
	})

	t.Run("unwritable directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))

		_, err := NewFileSpill[int](WithDir(filepath.Join(file, "sub")))
		require.Error(t, err)
	})
}
