// SPDX-License-Identifier: GPL-3.0-or-later

package tlssession

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newObservedConn returns a net.Conn implementation.
func TestNewObservedConn(t *testing.T) {
	cfg := NewConfig()
	mockConn := newMinimalConn()

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	require.NotNil(t, observed)
	var _ net.Conn = observed
}

// Read delegates to the underlying connection and returns the data.
func TestObservedConnRead(t *testing.T) {
	cfg := NewConfig()

	readData := []byte("hello world")
	mockConn := newMinimalConn()
	mockConn.ReadFunc = func(b []byte) (int, error) {
		copy(b, readData)
		return len(readData), nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	buf := make([]byte, 100)
	n, err := observed.Read(buf)

	require.NoError(t, err)
	assert.Equal(t, len(readData), n)
	assert.Equal(t, readData, buf[:n])
}

// Read propagates errors from the underlying connection.
func TestObservedConnReadError(t *testing.T) {
	cfg := NewConfig()
	wantErr := errors.New("read error")

	mockConn := newMinimalConn()
	mockConn.ReadFunc = func(b []byte) (int, error) {
		return 0, wantErr
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	buf := make([]byte, 100)
	_, err := observed.Read(buf)

	require.ErrorIs(t, err, wantErr)
}

// Write delegates to the underlying connection and sends the data.
func TestObservedConnWrite(t *testing.T) {
	cfg := NewConfig()

	var writtenData []byte
	mockConn := newMinimalConn()
	mockConn.WriteFunc = func(b []byte) (int, error) {
		writtenData = append(writtenData, b...)
		return len(b), nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	data := []byte("test data")
	n, err := observed.Write(data)

	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, writtenData)
}

// Write propagates errors from the underlying connection.
func TestObservedConnWriteError(t *testing.T) {
	cfg := NewConfig()
	wantErr := errors.New("write error")

	mockConn := newMinimalConn()
	mockConn.WriteFunc = func(b []byte) (int, error) {
		return 0, wantErr
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	_, err := observed.Write([]byte("test"))

	require.ErrorIs(t, err, wantErr)
}

// Second Close returns net.ErrClosed without calling the underlying Close again.
func TestObservedConnCloseOnce(t *testing.T) {
	cfg := NewConfig()

	closeCount := 0
	mockConn := newMinimalConn()
	mockConn.CloseFunc = func() error {
		closeCount++
		return nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err1 := observed.Close()
	require.NoError(t, err1)
	assert.Equal(t, 1, closeCount)

	err2 := observed.Close()
	require.ErrorIs(t, err2, net.ErrClosed)
	assert.Equal(t, 1, closeCount)
}

// LocalAddr delegates to the underlying connection.
func TestObservedConnLocalAddr(t *testing.T) {
	cfg := NewConfig()
	wantAddr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}

	mockConn := newMinimalConn()
	mockConn.LocalAddrFunc = func() net.Addr { return wantAddr }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	assert.Equal(t, wantAddr, observed.LocalAddr())
}

// RemoteAddr delegates to the underlying connection.
func TestObservedConnRemoteAddr(t *testing.T) {
	cfg := NewConfig()
	wantAddr := &net.TCPAddr{IP: net.IPv4(93, 184, 216, 34), Port: 443}

	mockConn := newMinimalConn()
	mockConn.RemoteAddrFunc = func() net.Addr { return wantAddr }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	assert.Equal(t, wantAddr, observed.RemoteAddr())
}

// SetDeadline delegates to the underlying connection.
func TestObservedConnSetDeadline(t *testing.T) {
	cfg := NewConfig()
	wantDeadline := time.Now().Add(time.Hour)
	var gotDeadline time.Time

	mockConn := newMinimalConn()
	mockConn.SetDeadlineFunc = func(t time.Time) error {
		gotDeadline = t
		return nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err := observed.SetDeadline(wantDeadline)

	require.NoError(t, err)
	assert.Equal(t, wantDeadline, gotDeadline)
}

// SetReadDeadline delegates to the underlying connection.
func TestObservedConnSetReadDeadline(t *testing.T) {
	cfg := NewConfig()
	wantDeadline := time.Now().Add(time.Hour)
	var gotDeadline time.Time

	mockConn := newMinimalConn()
	mockConn.SetReadDeadFunc = func(t time.Time) error {
		gotDeadline = t
		return nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err := observed.SetReadDeadline(wantDeadline)

	require.NoError(t, err)
	assert.Equal(t, wantDeadline, gotDeadline)
}

// SetWriteDeadline delegates to the underlying connection.
func TestObservedConnSetWriteDeadline(t *testing.T) {
	cfg := NewConfig()
	wantDeadline := time.Now().Add(time.Hour)
	var gotDeadline time.Time

	mockConn := newMinimalConn()
	mockConn.SetWriteDeaFunc = func(t time.Time) error {
		gotDeadline = t
		return nil
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err := observed.SetWriteDeadline(wantDeadline)

	require.NoError(t, err)
	assert.Equal(t, wantDeadline, gotDeadline)
}

// Close emits tlsSessionCloseStart/tlsSessionCloseDone log events.
func TestObservedConnCloseLogging(t *testing.T) {
	cfg := NewConfig()
	logger, records := newCapturingLogger()

	mockConn := newMinimalConn()
	mockConn.CloseFunc = func() error { return nil }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, logger, cfg.TimeNow)

	_ = observed.Close()

	require.Len(t, *records, 2)
	assert.Equal(t, "tlsSessionCloseStart", (*records)[0].Message)
	assert.Equal(t, "tlsSessionCloseDone", (*records)[1].Message)
}

// Read emits tlsSessionReadStart/tlsSessionReadDone log events.
func TestObservedConnReadLogging(t *testing.T) {
	cfg := NewConfig()
	logger, records := newCapturingLogger()

	mockConn := newMinimalConn()
	mockConn.ReadFunc = func(b []byte) (int, error) { return 0, nil }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, logger, cfg.TimeNow)

	buf := make([]byte, 10)
	_, _ = observed.Read(buf)

	require.Len(t, *records, 2)
	assert.Equal(t, "tlsSessionReadStart", (*records)[0].Message)
	assert.Equal(t, "tlsSessionReadDone", (*records)[1].Message)
}

// Write emits tlsSessionWriteStart/tlsSessionWriteDone log events.
func TestObservedConnWriteLogging(t *testing.T) {
	cfg := NewConfig()
	logger, records := newCapturingLogger()

	mockConn := newMinimalConn()
	mockConn.WriteFunc = func(b []byte) (int, error) { return len(b), nil }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, logger, cfg.TimeNow)

	_, _ = observed.Write([]byte("test"))

	require.Len(t, *records, 2)
	assert.Equal(t, "tlsSessionWriteStart", (*records)[0].Message)
	assert.Equal(t, "tlsSessionWriteDone", (*records)[1].Message)
}

// SetDeadline propagates errors from the underlying connection.
func TestObservedConnSetDeadlineError(t *testing.T) {
	cfg := NewConfig()
	wantErr := errors.New("set deadline error")

	mockConn := newMinimalConn()
	mockConn.SetDeadlineFunc = func(time.Time) error {
		return wantErr
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err := observed.SetDeadline(time.Now().Add(time.Hour))

	require.ErrorIs(t, err, wantErr)
}

// Close propagates errors from the underlying connection on the first call.
func TestObservedConnCloseError(t *testing.T) {
	cfg := NewConfig()
	wantErr := errors.New("close error")

	mockConn := newMinimalConn()
	mockConn.CloseFunc = func() error {
		return wantErr
	}

	observed := newObservedConn(mockConn, cfg.ErrClassifier, DefaultSLogger(), cfg.TimeNow)

	err := observed.Close()

	require.ErrorIs(t, err, wantErr)
}

// SetDeadline emits a tlsSessionSetDeadline log event.
func TestObservedConnSetDeadlineLogging(t *testing.T) {
	cfg := NewConfig()
	logger, records := newCapturingLogger()

	mockConn := newMinimalConn()
	mockConn.SetDeadlineFunc = func(time.Time) error { return nil }

	observed := newObservedConn(mockConn, cfg.ErrClassifier, logger, cfg.TimeNow)

	_ = observed.SetDeadline(time.Now().Add(time.Hour))

	require.Len(t, *records, 1)
	assert.Equal(t, "tlsSessionSetDeadline", (*records)[0].Message)
}
