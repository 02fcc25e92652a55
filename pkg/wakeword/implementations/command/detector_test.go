package command

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
)

func shell(t *testing.T, script string) []string {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no POSIX shell available")
	}
	// the script receives the flags as positional arguments, "--" makes
	// them start from $1
	return []string{sh, "-c", script, "--"}
}

func TestWakeIsReported(t *testing.T) {
	ctx := context.Background()
	d, err := New(ctx, shell(t, `
echo '{"event":"ready"}'
head -c 1024 >/dev/null
echo '{"event":"wake","keyword":"hey ditto","score":0.9}'
cat >/dev/null
`), wakeword.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	var ev *wakeword.Event
	require.Eventually(t, func() bool {
		var err error
		ev, err = d.ProcessFrame(ctx, make(pcm.Frame, 512))
		return err == nil && ev != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "hey ditto", ev.Keyword)
	assert.Equal(t, 0.9, ev.Score)

	ev, err = d.ProcessFrame(ctx, make(pcm.Frame, 512))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestActivationKeyError(t *testing.T) {
	_, err := New(context.Background(), shell(t, `
echo '{"event":"error","reason":"activation_throttled","message":"too many devices"}'
exit 1
`), wakeword.DefaultConfig())
	var keyErr activation.ErrActivationKey
	require.True(t, errors.As(err, &keyErr), "%v", err)
	assert.Equal(t, "activation_throttled", keyErr.Reason)
}

func TestOtherStartupError(t *testing.T) {
	_, err := New(context.Background(), shell(t, `
echo '{"event":"error","reason":"io","message":"no model"}'
`), wakeword.DefaultConfig())
	require.Error(t, err)
	var keyErr activation.ErrActivationKey
	assert.False(t, errors.As(err, &keyErr))
}

func TestExitBeforeReady(t *testing.T) {
	_, err := New(context.Background(), shell(t, `exit 3`), wakeword.DefaultConfig())
	require.Error(t, err)
}

func TestReadyTimeout(t *testing.T) {
	_, err := New(context.Background(), shell(t, `cat >/dev/null`), wakeword.DefaultConfig(),
		OptionReadyTimeout(100*time.Millisecond),
		OptionStopTimeout(100*time.Millisecond),
	)
	require.Error(t, err)
}

func TestRuntimeErrorIsTransient(t *testing.T) {
	ctx := context.Background()
	d, err := New(ctx, shell(t, `
echo '{"event":"ready"}'
echo '{"event":"error","reason":"io","message":"audio glitch"}'
cat >/dev/null
`), wakeword.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	require.Eventually(t, func() bool {
		_, err := d.ProcessFrame(ctx, make(pcm.Frame, 512))
		var transient activation.ErrTransientSignal
		return errors.As(err, &transient)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestArgs(t *testing.T) {
	cfg := wakeword.Config{
		Keywords:        []string{"hey ditto", "computer"},
		Sensitivity:     0.7,
		ModelPath:       "/models/porcupine.pv",
		RequireEndpoint: true,
	}
	assert.Equal(t, []string{
		"--sensitivity", "0.7",
		"--keyword", "hey ditto",
		"--keyword", "computer",
		"--model", "/models/porcupine.pv",
		"--require-endpoint",
	}, Args(cfg))
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"event":"wake","keyword":"computer","index":1}`))
	require.NoError(t, err)
	assert.Equal(t, EventTypeWake, msg.Event)
	assert.Equal(t, 1, msg.Index)

	_, err = ParseMessage([]byte(`{"event":"sneeze"}`))
	require.Error(t, err)
	_, err = ParseMessage([]byte(`not json`))
	require.Error(t, err)
}

func TestExitedDetectorDropsFrames(t *testing.T) {
	ctx := context.Background()
	d, err := New(ctx, shell(t, `
echo '{"event":"ready"}'
exit 5
`), wakeword.DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	require.Eventually(t, d.isExited, 5*time.Second, 10*time.Millisecond)

	var firstErr error
	for i := 0; i < 30; i++ {
		ev, err := d.ProcessFrame(ctx, make(pcm.Frame, 512))
		assert.Nil(t, ev)
		var transient activation.ErrTransientSignal
		require.True(t, errors.As(err, &transient), "%v", err)
		var exited ErrExited
		require.True(t, errors.As(err, &exited), "%v", err)
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "%v", err)
		assert.Equal(t, 5, exitErr.ExitCode())
		if firstErr == nil {
			firstErr = err
		}
		assert.Equal(t, firstErr.Error(), err.Error())
	}
	assert.True(t, d.IsExitLogged)
}
