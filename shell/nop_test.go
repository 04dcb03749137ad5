package shell

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var c Console = &Nop{}
	n := c.(*Nop)

	_, err := c.Read(make([]byte, 8))
	assert.ErrorIs(t, err, io.EOF)

	_, err = c.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = c.Write([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), n.Written())

	require.NoError(t, c.Resize(120, 40))
	cols, rows := n.Size()
	assert.Equal(t, uint16(120), cols)
	assert.Equal(t, uint16(40), rows)

	require.NoError(t, c.Close())
	_, err = c.Write([]byte("d"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, []byte("abc"), n.Written())
}
