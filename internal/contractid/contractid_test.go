package contractid

import (
	"errors"
	"testing"

	"contracthub/internal/builtin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestValidate(t *testing.T) {
	for _, id := range []string{"", "  ", "ipfs://undefined", "undefined"} {
		err := Validate(id)
		require.Error(t, err, "id %q", id)
		assert.True(t, errors.Is(err, ErrInvalidContractID))
	}
	assert.NoError(t, Validate("drop-erc721"))
	assert.NoError(t, Validate("ipfs://"+sampleCID))
}

func TestToIPFSHash(t *testing.T) {
	reg := builtin.Default()
	assert.Equal(t, "drop-erc721", ToIPFSHash("drop-erc721", reg))
	assert.Equal(t, "ipfs://"+sampleCID, ToIPFSHash("ipfs://"+sampleCID, reg))
	assert.Equal(t, "ipfs://"+sampleCID, ToIPFSHash(sampleCID, reg))
	assert.Equal(t, "ipfs://drop-erc721", ToIPFSHash("drop-erc721", nil))
}

func TestIsBuiltIn(t *testing.T) {
	reg := builtin.Default()
	assert.True(t, IsBuiltIn("drop-erc721", reg))
	assert.False(t, IsBuiltIn("Drop-ERC721", reg))
	assert.False(t, IsBuiltIn("drop-erc721", nil))
}

func TestParseURI(t *testing.T) {
	c, path, err := ParseURI("ipfs://" + sampleCID + "/0")
	require.NoError(t, err)
	assert.Equal(t, sampleCID, c.String())
	assert.Equal(t, "0", path)
	assert.Equal(t, "ipfs://"+sampleCID+"/0", Canonical(c, path))

	c, path, err = ParseURI("ipfs://ipfs/" + sampleCID)
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, "ipfs://"+sampleCID, Canonical(c, path))

	for _, bad := range []string{sampleCID, "ipfs://", "ipfs://!!!/x"} {
		_, _, err := ParseURI(bad)
		assert.ErrorIs(t, err, ErrInvalidContractID, "uri %q", bad)
	}
}
