package terminal

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("Berlin\nlast"), &out)

	got, err := p.ReadLine(context.Background(), "Geburtsort (ex: Berlin):")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", got)
	assert.Equal(t, "Geburtsort (ex: Berlin): ", out.String())

	got, err = p.ReadLine(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.ReadLine(context.Background(), "x")
	assert.Error(t, err)
}

func TestChoose_RetriesUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("abc\n7\n1\n"), &out)

	i, err := p.Choose(context.Background(), "Available patients are:", "For which patient do you want to book a slot?",
		[]string{"Ada Lovelace", "Alan Turing"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "* [0] Ada Lovelace\n* [1] Alan Turing\n")
}

func TestReadLine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(strings.NewReader("x\n"), &bytes.Buffer{}).ReadLine(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBell(t *testing.T) {
	var out bytes.Buffer
	Bell{Out: &out}.Notify()
	assert.Equal(t, "\a", out.String())
	Bell{}.Notify()
}

func TestPassword_ReadsInjectedInput(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("s3cret\n"), &out)
	assert.Equal(t, -1, p.fd)

	got, err := p.Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Equal(t, "Password: ", out.String())
}

func TestPassword_PipeIsNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = w.WriteString("hunter2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	p := New(r, &bytes.Buffer{})
	assert.Equal(t, int(r.Fd()), p.fd)

	got, err := p.Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}
