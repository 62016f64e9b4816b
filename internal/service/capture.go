package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

var ErrCapture = errors.New("frame capture failed")

// FrameCapturer grabs a single frame from a live stream. Implementations
// must be time-bounded; the service layer never blocks on a stream beyond
// the configured deadline.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, rtspURL string) ([]byte, error)
}

// FFmpegCapturer shells out to ffmpeg to read one frame from an RTSP source
// and encode it as JPEG on stdout.
type FFmpegCapturer struct {
	binPath string
	timeout time.Duration
	log     zerolog.Logger
}

func NewFFmpegCapturer(binPath string, timeout time.Duration, log zerolog.Logger) *FFmpegCapturer {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegCapturer{
		binPath: binPath,
		timeout: timeout,
		log:     log,
	}
}

func (c *FFmpegCapturer) CaptureFrame(ctx context.Context, rtspURL string) ([]byte, error) {
	if rtspURL == "" {
		return nil, fmt.Errorf("%w: rtsp_url is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binPath,
		"-rtsp_transport", "tcp",
		"-i", rtspURL,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		c.log.Error().
			Err(err).
			Str("rtsp_url", rtspURL).
			Str("ffmpeg_output", lastLine(stderr.Bytes())).
			Msg("frame capture failed")
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: stream produced no frame", ErrCapture)
	}

	c.log.Debug().Str("rtsp_url", rtspURL).Int("bytes", stdout.Len()).Msg("captured frame")
	return stdout.Bytes(), nil
}

func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
