package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameOfCurrentProcess(t *testing.T) {
	name, err := Name(int32(os.Getpid()))
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestNameInvalidPID(t *testing.T) {
	tests := []int32{0, -1}
	for _, pid := range tests {
		_, err := Name(pid)
		assert.Error(t, err, "pid %d", pid)
	}
}
