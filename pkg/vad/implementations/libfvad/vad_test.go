//go:build !no_libfvad
// +build !no_libfvad

package libfvad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

func TestSilenceIsNotVoice(t *testing.T) {
	v, err := NewVAD(16000, 3)
	require.NoError(t, err)
	defer v.Close()

	for i := 0; i < 10; i++ {
		isVoice, err := v.IsVoice(context.Background(), make(pcm.Frame, 512))
		require.NoError(t, err)
		assert.False(t, isVoice)
	}
	v.Reset()
	isVoice, err := v.IsVoice(context.Background(), make(pcm.Frame, 100))
	require.NoError(t, err)
	assert.False(t, isVoice)
}

func TestUnsupportedParameters(t *testing.T) {
	_, err := NewVAD(44100, 3)
	require.Error(t, err)

	_, err = NewVAD(16000, 7)
	require.Error(t, err)
}
