package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/engine"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newEngine(script string, timeout time.Duration) *engine.ProcessEngine {
	return engine.NewProcessEngine(config.EngineConfig{
		Interpreter: "/bin/sh",
		Script:      script,
		Timeout:     timeout,
	}, nil)
}

func TestProcessEngine_Run_Success(t *testing.T) {
	script := writeScript(t, `echo "Engine starting"
echo '{"full_text":"Policy Number: AB123456"}'
echo "warming up" >&2
echo "Done"
`)

	out, err := newEngine(script, 0).Run(context.Background(), "scan.png")
	require.NoError(t, err)

	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "Engine starting\n{\"full_text\":\"Policy Number: AB123456\"}\nDone\n", out.Stdout)
	assert.Equal(t, "warming up\n", out.Stderr)
}

func TestProcessEngine_Run_PassesAbsoluteImagePath(t *testing.T) {
	script := writeScript(t, `echo "$#:$1"`)

	out, err := newEngine(script, 0).Run(context.Background(), "uploads/scan.png")
	require.NoError(t, err)

	want, _ := filepath.Abs("uploads/scan.png")
	assert.Equal(t, "1:"+want, strings.TrimSpace(out.Stdout))
}

func TestProcessEngine_Run_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "model load failed" >&2
exit 1
`)

	out, err := newEngine(script, 0).Run(context.Background(), "scan.png")
	require.Error(t, err)
	assert.Nil(t, out)

	var exitErr *domain.ProcessExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "model load failed", exitErr.Stderr)
	assert.False(t, exitErr.TimedOut)
	assert.False(t, errors.Is(err, domain.ErrEngineTimeout))
}

func TestProcessEngine_Run_LargeOutput(t *testing.T) {
	script := writeScript(t, `i=0
while [ $i -lt 5000 ]; do
  echo "line $i of noisy engine output"
  echo "progress $i" >&2
  i=$((i+1))
done
echo '{"full_text":"ok"}'
`)

	out, err := newEngine(script, 0).Run(context.Background(), "scan.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Stdout, "{\"full_text\":\"ok\"}\n"))
	assert.Contains(t, out.Stderr, "progress 4999")
}

func TestProcessEngine_Run_MissingScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	missing := filepath.Join(t.TempDir(), "nope.py")

	_, err := newEngine(missing, 0).Run(context.Background(), "scan.png")

	var spawnErr *domain.ProcessSpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestProcessEngine_Run_MissingInterpreter(t *testing.T) {
	script := writeScript(t, `echo hi`)
	eng := engine.NewProcessEngine(config.EngineConfig{
		Interpreter: "definitely-not-a-real-interpreter-binary",
		Script:      script,
	}, nil)

	_, err := eng.Run(context.Background(), "scan.png")

	var spawnErr *domain.ProcessSpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Contains(t, spawnErr.Error(), "definitely-not-a-real-interpreter-binary")
}

func TestProcessEngine_Run_Timeout(t *testing.T) {
	script := writeScript(t, `echo "loading" >&2
exec sleep 10
`)

	start := time.Now()
	_, err := newEngine(script, 200*time.Millisecond).Run(context.Background(), "scan.png")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEngineTimeout))
	var exitErr *domain.ProcessExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.TimedOut)
	assert.Equal(t, -1, exitErr.Code)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestProcessEngine_Run_DescendantHoldsOutputAfterExit(t *testing.T) {
	script := writeScript(t, `echo '{"full_text":"ok"}'
sleep 10 &
`)

	start := time.Now()
	out, err := newEngine(script, time.Minute).Run(context.Background(), "scan.png")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "{\"full_text\":\"ok\"}\n", out.Stdout)
	assert.Less(t, elapsed, 8*time.Second)
}

func TestProcessEngine_Run_TimeoutWithDescendant(t *testing.T) {
	script := writeScript(t, `sleep 10 &
sleep 10
`)

	start := time.Now()
	_, err := newEngine(script, 200*time.Millisecond).Run(context.Background(), "scan.png")
	elapsed := time.Since(start)

	assert.True(t, errors.Is(err, domain.ErrEngineTimeout))
	assert.Less(t, elapsed, 8*time.Second)
}

func TestProcessEngine_Run_CallerCancel(t *testing.T) {
	script := writeScript(t, `exec sleep 10`)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newEngine(script, time.Minute).Run(ctx, "scan.png")
	assert.True(t, errors.Is(err, domain.ErrEngineTimeout))
}

func TestProcessEngine_Check(t *testing.T) {
	script := writeScript(t, `echo hi`)
	assert.NoError(t, newEngine(script, 0).Check(context.Background()))

	err := newEngine(filepath.Join(t.TempDir(), "missing.py"), 0).Check(context.Background())
	var spawnErr *domain.ProcessSpawnError
	assert.True(t, errors.As(err, &spawnErr))
}
