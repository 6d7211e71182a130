// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFailureSignalsOnce(t *testing.T) {
	signal := &recordingSignal{}
	errorLog := &bytes.Buffer{}
	cause := errors.New("open config: no such file")

	err := reportFailure(signal, errorLog, cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, signal.failures)
	assert.Zero(t, signal.successes)
	assert.Equal(t, "redoxerd: open config: no such file\n", errorLog.String())
}
