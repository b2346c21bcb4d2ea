package logger_test

import (
	"bytes"
	"testing"

	"github.com/nikolayk812/cartstore-demo/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var out bytes.Buffer

	log := logger.New(logger.Options{Level: "debug", Format: "json", Output: &out})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Debug("hello")
	assert.Contains(t, out.String(), `"msg":"hello"`)
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := logger.New(logger.Options{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
