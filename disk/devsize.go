package disk

import "io"

// maxHostDevices bounds the numbered device nodes probed on macOS and Windows.
const maxHostDevices = 64

// seekSize measures a device by seeking to its end, then rewinds it.
func seekSize(s io.Seeker) (uint64, error) {
	size, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return uint64(size), nil
}
