package shm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCreate(t *testing.T) {
	r, err := Create(4096)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 4096, r.Size())
	assert.Len(t, r.Data(), 4096)
	assert.GreaterOrEqual(t, r.FD(), 0)

	// Writes through the mapping land in the backing file.
	r.Data()[0] = 0xab
	r.Data()[4095] = 0xcd
	buf := make([]byte, 1)
	_, err = unix.Pread(r.FD(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), buf[0])
}

func TestCreateRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Create(size)
		assert.Error(t, err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r, err := Create(1024)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}
