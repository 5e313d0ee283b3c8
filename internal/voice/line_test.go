package voice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineRecognizer_Transcript(t *testing.T) {
	input := "~hel\nhello\n\n~wor\nworld\r\n"
	c := NewCapture(NewReaderRecognizer(strings.NewReader(input)), nil)

	transcript, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello world", transcript)
}

func TestLineRecognizer_ErrorLine(t *testing.T) {
	input := "partial\n!network\nnever seen\n"
	c := NewCapture(NewReaderRecognizer(strings.NewReader(input)), nil)

	_, err := c.Run(context.Background())

	var recErr *RecognitionError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, CodeNetwork, recErr.Code)
}

func TestLineRecognizer_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte("ship it\n"), 0o644))

	c := NewCapture(NewLineRecognizer(path), FileMicrophone{Path: path})
	transcript, err := c.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ship it", transcript)
}

func TestFileMicrophone_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope")

	err := FileMicrophone{Path: path}.Request(context.Background())
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = NewLineRecognizer(path).Start(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	assert.NoError(t, FileMicrophone{Path: "-"}.Request(context.Background()))
}

func TestParseLine_InterimDisabled(t *testing.T) {
	_, ok := parseLine("~maybe", false)
	assert.False(t, ok)

	ev, ok := parseLine("~maybe", true)
	assert.True(t, ok)
	assert.Equal(t, []Result{{Transcript: "maybe"}}, ev.Results)
}
