package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"contracthub/internal/builtin"
	"contracthub/internal/contractid"
	"contracthub/internal/ens"
	"contracthub/internal/query"
	"contracthub/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContent struct {
	mu    sync.Mutex
	docs  map[string]string
	calls []string
}

func newFakeContent(docs map[string]string) *fakeContent {
	return &fakeContent{docs: docs}
}

func (f *fakeContent) Fetch(_ context.Context, uri string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, uri)
	doc, ok := f.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrFetch, uri)
	}
	return []byte(doc), nil
}

func (f *fakeContent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResolver struct {
	ids   map[string]ens.Identity
	err   error
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, addressOrName string) (ens.Identity, error) {
	r.calls++
	if r.err != nil {
		return ens.Identity{}, r.err
	}
	id, ok := r.ids[addressOrName]
	if !ok {
		return ens.Identity{}, ens.ErrUnresolved
	}
	return id, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func abiJSON(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf(`{"type":"function","name":%q,"stateMutability":"view","inputs":[],"outputs":[]}`, n))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

var tokenABI = abiJSON("totalSupply", "balanceOf", "allowance", "transfer", "approve", "transferFrom", "burn", "burnFrom")

func compilerMetadata(abi string) string {
	return `{
		"compiler":{"version":"0.8.17"},
		"language":"Solidity",
		"output":{
			"abi":` + abi + `,
			"userdoc":{"methods":{"burn()":{"notice":"Burns tokens"}}},
			"devdoc":{"title":"Foo"}
		},
		"settings":{"compilationTarget":{"contracts/Foo.sol":"Foo"}},
		"sources":{"contracts/Foo.sol":{"license":"MIT"},"lib/Bar.sol":{"license":"Apache-2.0"}}
	}`
}

func predeployDocs() map[string]string {
	return map[string]string{
		"ipfs://QmPredeploy": `{
			"name":"FooPredeploy",
			"metadataUri":"ipfs://QmCompiler",
			"bytecodeUri":"ipfs://QmBytecode",
			"analytics":{"command":"deploy","cliVersion":null,"contractType":""}
		}`,
		"ipfs://QmCompiler": compilerMetadata(tokenABI),
	}
}

func TestBuiltInRecordNeedsNoIO(t *testing.T) {
	content := newFakeContent(nil)
	svc := New(builtin.Default(), content, WithLogger(quietLogger()))

	rec, err := svc.FetchPublishMetadataFromURI(context.Background(), "drop-erc721")
	require.NoError(t, err)
	assert.Equal(t, "/assets/tw-icons/nft-drop.svg", rec.Image)
	assert.Equal(t, "NFT Drop", rec.Name)
	require.NotNil(t, rec.Description)
	assert.Equal(t, "Release collection of unique NFTs for a set price", *rec.Description)
	require.NotNil(t, rec.DeployDisabled)
	assert.False(t, *rec.DeployDisabled)
	assert.Zero(t, content.callCount())
}

func TestExternalFailureDegradesToFallback(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(nil), WithLogger(quietLogger()))

	rec, err := svc.FetchPublishMetadataFromURI(context.Background(), "QmMissing")
	require.NoError(t, err)
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"","image":"custom"}`, string(raw))
}

func TestInvalidIdentifierIsAnError(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(nil), WithLogger(quietLogger()))
	for _, id := range []string{"", "ipfs://undefined"} {
		_, err := svc.FetchPublishMetadataFromURI(context.Background(), id)
		assert.ErrorIs(t, err, contractid.ErrInvalidContractID, id)
	}
}

func TestExternalRecordIsNormalised(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(predeployDocs()), WithLogger(quietLogger()))

	rec, err := svc.FetchPublishMetadataFromURI(context.Background(), "QmPredeploy")
	require.NoError(t, err)
	assert.Equal(t, "Foo", rec.Name)
	assert.Equal(t, DefaultImage, rec.Image)
	require.NotNil(t, rec.Description)
	assert.Equal(t, "Foo", *rec.Description)
	assert.Equal(t, Fields{"title": "Foo"}, rec.Info)
	assert.Equal(t, Fields{"command": "deploy", "contractType": ""}, rec.Analytics)
	assert.Equal(t, []string{"Apache-2.0", "MIT"}, rec.Licenses)
	assert.NotEmpty(t, rec.ABI)
	assert.NotEmpty(t, rec.CompilerMetadata)
	assert.Nil(t, rec.DeployDisabled)
}

func TestRecordDoesNotAliasCachedMetadata(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(predeployDocs()),
		WithLogger(quietLogger()), WithQueryClient(query.NewClient(0, 0)))
	ctx := context.Background()

	first, err := svc.FetchPublishMetadataFromURI(ctx, "QmPredeploy")
	require.NoError(t, err)
	wantABI := string(first.ABI)
	wantMeta := string(first.CompilerMetadata)

	first.ABI[0] = 'X'
	first.CompilerMetadata[0] = 'X'
	first.Licenses[0] = "changed"

	second, err := svc.FetchPublishMetadataFromURI(ctx, "QmPredeploy")
	require.NoError(t, err)
	assert.Equal(t, wantABI, string(second.ABI))
	assert.Equal(t, wantMeta, string(second.CompilerMetadata))
	assert.Equal(t, []string{"Apache-2.0", "MIT"}, second.Licenses)
}

func TestCompositionIsIdempotent(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(predeployDocs()), WithLogger(quietLogger()))

	for _, id := range []string{"QmPredeploy", "drop-erc721", "QmMissing"} {
		first, err := svc.FetchPublishMetadataFromURI(context.Background(), id)
		require.NoError(t, err)
		second, err := svc.FetchPublishMetadataFromURI(context.Background(), id)
		require.NoError(t, err)
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		assert.Equal(t, string(a), string(b), id)
	}
}

func TestStripAbsentKeepsFalsyValues(t *testing.T) {
	in := Fields{"title": "Foo", "subtitle": nil, "flag": false, "count": 0, "empty": ""}
	out := in.StripAbsent()
	assert.Equal(t, Fields{"title": "Foo", "flag": false, "count": 0, "empty": ""}, out)
	assert.Len(t, in, 5)

	var absent Fields
	assert.Empty(t, absent.StripAbsent())
}

func TestFullPublishMetadataEnrichesPublisher(t *testing.T) {
	const addr = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	docs := map[string]string{
		"ipfs://QmNamed":    `{"name":"Foo","version":"1.0.0","publisher":"` + addr + `"}`,
		"ipfs://QmNoPub":    `{"name":"Foo"}`,
		"ipfs://QmBadPub":   `{"name":"Foo","publisher":"unknown.eth"}`,
		"ipfs://QmAddrOnly": `{"name":"Foo","publisher":"bare.eth"}`,
	}
	resolver := &fakeResolver{ids: map[string]ens.Identity{
		addr:       {Address: addr, ENSName: "vitalik.eth"},
		"bare.eth": {Address: addr},
	}}
	svc := New(builtin.Default(), newFakeContent(docs),
		WithResolver(resolver), WithQueryClient(query.NewClient(0, 0)), WithLogger(quietLogger()))
	ctx := context.Background()

	meta, err := svc.FetchFullPublishMetadata(ctx, "QmNamed")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", meta.Publisher)
	assert.Equal(t, "1.0.0", meta.Version)

	meta, err = svc.FetchFullPublishMetadata(ctx, "ipfs://QmAddrOnly")
	require.NoError(t, err)
	assert.Equal(t, addr, meta.Publisher)

	meta, err = svc.FetchFullPublishMetadata(ctx, "QmBadPub")
	require.NoError(t, err)
	assert.Equal(t, "unknown.eth", meta.Publisher)

	calls := resolver.calls
	meta, err = svc.FetchFullPublishMetadata(ctx, "QmNoPub")
	require.NoError(t, err)
	assert.Empty(t, meta.Publisher)
	assert.Equal(t, calls, resolver.calls)

	// cached identity is reused
	_, err = svc.FetchFullPublishMetadata(ctx, "QmNamed")
	require.NoError(t, err)
	assert.Equal(t, calls, resolver.calls)

	_, err = svc.FetchFullPublishMetadata(ctx, "drop-erc721")
	assert.ErrorIs(t, err, ErrBuiltIn)

	_, err = svc.FetchFullPublishMetadata(ctx, "QmMissing")
	assert.ErrorIs(t, err, storage.ErrFetch)
}

type fakePublisher struct {
	all      []PublishedContract
	versions map[string][]PublishedContract
	profiles map[string]string
	err      error
}

func (p *fakePublisher) GetAll(_ context.Context, _ string) ([]PublishedContract, error) {
	return p.all, p.err
}

func (p *fakePublisher) GetAllVersions(_ context.Context, _ string, id string) ([]PublishedContract, error) {
	return p.versions[id], p.err
}

func (p *fakePublisher) GetPublisherProfileURI(_ context.Context, publisher string) (string, error) {
	return p.profiles[publisher], p.err
}

const publisherAddr = "0xdd99b75f095d0c4d5112aCe938e4e6ed962fb024"

func TestFetchAllVersionsNewestFirst(t *testing.T) {
	docs := map[string]string{
		"ipfs://QmV1": `{"name":"Drop","version":"1.0.0","displayName":"Drop v1"}`,
		"ipfs://QmV2": `{"name":"Drop","version":"2.0.0","audit":"ipfs://QmAudit","logo":"ipfs://QmLogo"}`,
	}
	pub := &fakePublisher{versions: map[string][]PublishedContract{
		"Drop": {
			{ID: "Drop", Timestamp: "100", MetadataURI: "ipfs://QmV1"},
			{ID: "Drop", Timestamp: "200", MetadataURI: "ipfs://QmV2"},
		},
	}}
	svc := New(builtin.Default(), newFakeContent(docs), WithPublisher(pub), WithLogger(quietLogger()))

	versions, err := svc.FetchAllVersions(context.Background(), publisherAddr, "Drop")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "2.0.0", versions[0].Version)
	assert.Equal(t, "200", versions[0].Timestamp)
	assert.Equal(t, "ipfs://QmAudit", versions[0].Audit)
	assert.Equal(t, "1.0.0", versions[1].Version)
	assert.Equal(t, "Drop v1", versions[1].DisplayName)

	_, err = svc.FetchAllVersions(context.Background(), publisherAddr, "")
	assert.Error(t, err)
	_, err = svc.FetchAllVersions(context.Background(), "nobody", "Drop")
	assert.ErrorIs(t, err, ens.ErrInvalidIdentity)
}

func TestFetchPublishedContractsDegradesPerItem(t *testing.T) {
	docs := map[string]string{
		"ipfs://QmA": `{"name":"A","publisher":"` + publisherAddr + `"}`,
		"ipfs://QmC": `{"name":"C"}`,
	}
	pub := &fakePublisher{all: []PublishedContract{
		{ID: "A", Timestamp: "1", MetadataURI: "ipfs://QmA"},
		{ID: "", Timestamp: "2", MetadataURI: "ipfs://QmIgnored"},
		{ID: "B", Timestamp: "3", MetadataURI: "ipfs://QmBroken"},
		{ID: "C", Timestamp: "4", MetadataURI: "ipfs://QmC"},
	}}
	resolver := &fakeResolver{ids: map[string]ens.Identity{
		publisherAddr: {Address: publisherAddr, ENSName: "deployer.thirdweb.eth"},
	}}
	svc := New(builtin.Default(), newFakeContent(docs), WithPublisher(pub), WithResolver(resolver), WithLogger(quietLogger()))

	var mu sync.Mutex
	seen := map[string]bool{}
	list, err := svc.WatchPublishedContracts(context.Background(), publisherAddr, func(_ int, d PublishedContractDetails) {
		mu.Lock()
		seen[d.ID] = true
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "A", list[0].ID)
	assert.Equal(t, "deployer.thirdweb.eth", list[0].Metadata.Publisher)
	assert.Equal(t, "B", list[1].ID)
	assert.Equal(t, FullPublishMetadata{}, list[1].Metadata)
	assert.Equal(t, "C", list[2].Metadata.Name)
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, seen)
}

func TestFetchPublishedContractsResolvesENSPublisher(t *testing.T) {
	pub := &fakePublisher{}
	resolver := &fakeResolver{ids: map[string]ens.Identity{
		"deployer.thirdweb.eth": {Address: publisherAddr, ENSName: "deployer.thirdweb.eth"},
	}}
	svc := New(builtin.Default(), newFakeContent(nil), WithPublisher(pub), WithResolver(resolver), WithLogger(quietLogger()))

	list, err := svc.FetchPublishedContracts(context.Background(), "thirdweb.eth")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.FetchPublishedContracts(context.Background(), "missing.eth")
	assert.ErrorIs(t, err, ens.ErrUnresolved)
}

func TestRegistryUnavailable(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(nil), WithLogger(quietLogger()))
	_, err := svc.FetchPublishedContracts(context.Background(), publisherAddr)
	assert.ErrorIs(t, err, ErrRegistryUnavailable)
	_, err = svc.FetchPublisherProfile(context.Background(), publisherAddr)
	assert.ErrorIs(t, err, ErrRegistryUnavailable)
}

func TestFetchPublisherProfile(t *testing.T) {
	docs := map[string]string{
		"ipfs://QmProfile": `{"name":"thirdweb","bio":"builders","twitter":"https://twitter.com/thirdweb"}`,
	}
	pub := &fakePublisher{profiles: map[string]string{publisherAddr: "ipfs://QmProfile"}}
	svc := New(builtin.Default(), newFakeContent(docs), WithPublisher(pub), WithLogger(quietLogger()))

	profile, err := svc.FetchPublisherProfile(context.Background(), publisherAddr)
	require.NoError(t, err)
	assert.Equal(t, "thirdweb", profile.Name)
	assert.Equal(t, "builders", profile.Bio)

	empty, err := svc.FetchPublisherProfile(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, ProfileMetadata{}, empty)

	pub.err = errors.New("rpc down")
	_, err = svc.FetchPublisherProfile(context.Background(), publisherAddr)
	assert.Error(t, err)
}

func TestABIViews(t *testing.T) {
	svc := New(builtin.Default(), newFakeContent(predeployDocs()), WithLogger(quietLogger()))
	ctx := context.Background()

	fns, err := svc.Functions(ctx, "QmPredeploy")
	require.NoError(t, err)
	require.Len(t, fns, 8)
	assert.Equal(t, "allowance", fns[0].Name)
	for _, fn := range fns {
		if fn.Name == "burn" {
			assert.Equal(t, "Burns tokens", fn.Comment)
		}
	}

	events, err := svc.Events(ctx, "QmPredeploy")
	require.NoError(t, err)
	assert.Empty(t, events)

	params, err := svc.ConstructorParams(ctx, "drop-erc721")
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = svc.FunctionParams(ctx, "QmPredeploy", "burn")
	require.NoError(t, err)
	assert.Empty(t, params)

	_, result, err := svc.Extensions(ctx, "QmPredeploy")
	require.NoError(t, err)
	var enabled []string
	for _, n := range result.EnabledExtensions {
		enabled = append(enabled, n.Name)
	}
	assert.Equal(t, []string{"ERC20", "ERC20Burnable"}, enabled)

	_, err = svc.Functions(ctx, "ipfs://undefined")
	assert.ErrorIs(t, err, contractid.ErrInvalidContractID)
}
