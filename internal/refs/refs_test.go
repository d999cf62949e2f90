package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "Rqs1000", Format(RequestPrefix, 1000))
	assert.Equal(t, "Emp7", Format(EmployeePrefix, 7))
	assert.Equal(t, "Prj42", Format(ProjectPrefix, 42))
}

func TestParse(t *testing.T) {
	n, err := Parse(RequestPrefix, "Rqs1042")
	require.NoError(t, err)
	assert.Equal(t, uint64(1042), n)
}

func TestParse_WrongPrefix(t *testing.T) {
	_, err := Parse(RequestPrefix, "Emp1042")
	require.Error(t, err)
}

func TestParse_NotANumber(t *testing.T) {
	_, err := Parse(RequestPrefix, "Rqsabc")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 999, 1000, 123456789} {
		ref := Format(RequestPrefix, n)
		got, err := Parse(RequestPrefix, ref)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}
