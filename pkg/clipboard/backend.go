package clipboard

import (
	"errors"
	"strings"
	"sync"

	atottoClip "github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available on this system.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// Backend is the OS clipboard slot. It holds exactly one text value.
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemBackend is the OS clipboard reached through atotto/clipboard.
// On Linux it shells out to xclip, xsel or wl-clipboard.
type SystemBackend struct{}

// NewSystemBackend returns a backend bound to the OS clipboard
func NewSystemBackend() *SystemBackend {
	return &SystemBackend{}
}

func (b *SystemBackend) ReadAll() (string, error) {
	if atottoClip.Unsupported {
		return "", ErrUnsupported
	}
	text, err := atottoClip.ReadAll()
	if err != nil {
		// xclip exits 1 when nothing owns the selection
		if strings.Contains(err.Error(), "exit status 1") {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

func (b *SystemBackend) WriteAll(text string) error {
	if atottoClip.Unsupported {
		return ErrUnsupported
	}
	return atottoClip.WriteAll(text)
}

// MemoryBackend is an in-process clipboard slot for headless environments.
type MemoryBackend struct {
	mu   sync.Mutex
	text string
}

// NewMemoryBackend returns an empty in-memory clipboard
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) ReadAll() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, nil
}

func (b *MemoryBackend) WriteAll(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	return nil
}
