package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Every external call carries a hard deadline. A probe or encode that
// runs past its deadline is killed, not abandoned.
const (
	probeTimeout     = 10 * time.Second
	thumbnailTimeout = 30 * time.Second
	encodeTimeout    = 1800 * time.Second
	versionTimeout   = 5 * time.Second
)

// runs the binary with the provided args under the timeout and returns
// (stdout, stderr, error). On deadline the child process is killed by
// CommandContext and the returned error wraps context.DeadlineExceeded.
func run(ctx context.Context, timeout time.Duration, bin string, args ...string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Infoln(bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	if err != nil {
		log.Errorf("%s error: %v", bin, err)
		log.Debugln("stderr:", stderr.String())
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// Version reports the installed ffmpeg version banner, for status pages.
func Version(ctx context.Context) (string, error) {
	stdout, _, err := run(ctx, versionTimeout, "ffmpeg", "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return line, nil
}
