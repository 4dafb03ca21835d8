package log_test

import (
	"bytes"
	"testing"

	"culld/internal/log"

	"github.com/stretchr/testify/assert"
)

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(&bytes.Buffer{})

	log.SetDebug(false)
	log.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.SetDebug(true)
	defer log.SetDebug(false)
	log.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestLevelsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(&bytes.Buffer{})

	log.Infof("loaded %d images", 5)
	log.Warnf("slow folder: %s", "/tmp/x")
	log.Errorf("trash failed: %v", "denied")

	out := buf.String()
	assert.Contains(t, out, "loaded 5 images")
	assert.Contains(t, out, "slow folder")
	assert.Contains(t, out, "trash failed")
}
