package contractabi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenABI = `[
	{"type":"constructor","inputs":[{"name":"_name","type":"string"},{"name":"_owner","type":"address"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,
	 "inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

const tokenMetadata = `{
	"compiler":{"version":"0.8.17+commit.8df45f5f"},
	"language":"Solidity",
	"output":{
		"abi":[],
		"userdoc":{
			"notice":"A simple token",
			"methods":{"mint(address,uint256)":{"notice":"Mints tokens"}},
			"events":{"Transfer(address,address,uint256)":{"notice":"Emitted on transfer"}}
		},
		"devdoc":{
			"title":"Token","author":"thirdweb","details":"ERC20 with minting",
			"methods":{
				"balanceOf(address)":{"details":"Returns balance","params":{"owner":"holder"}},
				"safeTransferFrom(address,address,uint256,bytes)":{"details":"with data"}
			}
		}
	},
	"settings":{"compilationTarget":{"contracts/Token.sol":"Token"}},
	"sources":{
		"contracts/Token.sol":{"license":"MIT"},
		"lib/Ownable.sol":{"license":"Apache-2.0"},
		"lib/Context.sol":{"license":"MIT"},
		"lib/Unlicensed.sol":{}
	}
}`

func TestConstructorAndFunctionParams(t *testing.T) {
	parsed, err := Parse([]byte(tokenABI))
	require.NoError(t, err)

	assert.Equal(t, []Param{{Name: "_name", Type: "string"}, {Name: "_owner", Type: "address"}}, ConstructorParams(parsed))
	assert.Equal(t, []Param{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}}, FunctionParams(parsed, "mint"))
	assert.Len(t, FunctionParams(parsed, "safeTransferFrom"), 3)
	assert.Empty(t, FunctionParams(parsed, "burn"))
}

func TestFunctionsSortedWithComments(t *testing.T) {
	parsed, err := Parse([]byte(tokenABI))
	require.NoError(t, err)
	meta, err := ParseMetadata([]byte(tokenMetadata))
	require.NoError(t, err)

	fns := Functions(parsed, meta)
	require.Len(t, fns, 4)
	sigs := make([]string, 0, len(fns))
	for _, fn := range fns {
		sigs = append(sigs, fn.Signature)
	}
	assert.Equal(t, []string{
		"balanceOf(address)",
		"mint(address,uint256)",
		"safeTransferFrom(address,address,uint256)",
		"safeTransferFrom(address,address,uint256,bytes)",
	}, sigs)

	assert.Equal(t, "Returns balance", fns[0].Comment)
	assert.Equal(t, "view", fns[0].StateMutability)
	assert.Equal(t, "Mints tokens", fns[1].Comment)
	assert.Equal(t, "safeTransferFrom", fns[2].Name)
	assert.Equal(t, "with data", fns[2].Comment)

	bare := Functions(parsed, nil)
	assert.Empty(t, bare[1].Comment)
}

func TestEvents(t *testing.T) {
	parsed, err := Parse([]byte(tokenABI))
	require.NoError(t, err)
	meta, err := ParseMetadata([]byte(tokenMetadata))
	require.NoError(t, err)

	events := Events(parsed, meta)
	require.Len(t, events, 1)
	assert.Equal(t, "Transfer", events[0].Name)
	assert.Equal(t, "Emitted on transfer", events[0].Comment)
	assert.True(t, events[0].Inputs[0].Indexed)
	assert.False(t, events[0].Inputs[2].Indexed)
}

func TestMetadataHelpers(t *testing.T) {
	meta, err := ParseMetadata([]byte(tokenMetadata))
	require.NoError(t, err)
	assert.Equal(t, "Token", meta.ContractName())
	assert.Equal(t, []string{"Apache-2.0", "MIT"}, meta.Licenses())
	assert.Equal(t, "Token", meta.Output.Devdoc.Title)

	var nilMeta *CompilerMetadata
	assert.Empty(t, nilMeta.ContractName())
	assert.Nil(t, nilMeta.Licenses())

	_, err = ParseMetadata([]byte("{"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, Functions(parsed, nil))

	_, err = Parse([]byte(`{"not":"an abi"}`))
	assert.Error(t, err)
}
