package bootcode_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/gidefdisk/internal/bootcode"
	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	std := filepath.Join(dir, "ldboot.bin")
	require.NoError(t, os.WriteFile(std, []byte{0xC3, 1, 2}, 0644))

	l, err := bootcode.Load(std, "")
	require.NoError(t, err)
	require.Equal(t, []byte{0xC3, 1, 2}, l.For(disk.MethodStandard))
	require.Nil(t, l.For(disk.MethodExtendedBios))

	_, err = bootcode.Load("", filepath.Join(dir, "missing.bin"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
