package util

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		" debug ": logrus.DebugLevel,
		"other":   logrus.InfoLevel,
		"":        logrus.InfoLevel,
	}

	for input, expected := range cases {
		logger := logrus.New()
		SetLogLevel(logger, input)
		assert.Equal(t, expected, logger.GetLevel(), "level %q", input)
	}
}
