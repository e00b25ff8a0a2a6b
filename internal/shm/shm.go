// Package shm creates the anonymous shared memory regions whose contents
// the compositor reads directly for presentation.
package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a memory-mapped anonymous file shared with the compositor.
type Region struct {
	fd   int
	size int
	data []byte
}

// Create allocates an anonymous file of the given size and maps it
// read-write. The file descriptor stays open so it can be handed to the
// compositor; Close releases both the mapping and the descriptor.
//
// memfd_create is tried first and sealed against shrinking, so the
// compositor can trust the region's size. When memfd is unavailable the
// allocation falls back to an unlinked file in XDG_RUNTIME_DIR.
func Create(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid region size %d", size)
	}

	fd, err := memfd(size)
	if err != nil {
		fd, err = runtimeFile(size)
		if err != nil {
			return nil, fmt.Errorf("shm: cannot create anonymous file: %w", err)
		}
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap failed: %w", err)
	}

	return &Region{fd: fd, size: size, data: data}, nil
}

func memfd(size int) (int, error) {
	fd, err := unix.MemfdCreate("waydash-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return -1, err
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return -1, err
	}
	// Seal the size so the mapping can never be shrunk under the
	// compositor's feet.
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func runtimeFile(size int) (int, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "waydash-shm-*")
	if err != nil {
		return -1, err
	}
	name := f.Name()
	fd, err := unix.Dup(int(f.Fd()))
	f.Close()
	os.Remove(name)
	if err != nil {
		return -1, err
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// FD returns the file descriptor backing the region.
func (r *Region) FD() int { return r.fd }

// Size returns the size of the region in bytes.
func (r *Region) Size() int { return r.size }

// Data returns the mapped bytes. The slice aliases shared memory: the
// compositor reads it in place, so callers must respect the buffer
// release protocol before writing.
func (r *Region) Data() []byte { return r.data }

// Close unmaps the region and closes its descriptor. Safe to call more
// than once.
func (r *Region) Close() error {
	var first error
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			first = err
		}
		r.data = nil
	}
	if r.fd >= 0 {
		if err := unix.Close(r.fd); err != nil && first == nil {
			first = err
		}
		r.fd = -1
	}
	return first
}
