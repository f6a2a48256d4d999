package extension

// Definition describes a detectable feature: the functions an ABI must
// expose for it to be enabled, and its nested sub-features.
type Definition struct {
	Name      string
	Namespace string
	Functions []string
	Features  []Definition
}

// Catalog returns the feature definitions in detection order.
func Catalog() []Definition {
	return []Definition{
		{
			Name:      "ERC20",
			Namespace: "token",
			Functions: []string{"totalSupply", "balanceOf", "allowance", "transfer", "approve", "transferFrom"},
			Features: []Definition{
				{Name: "ERC20Burnable", Namespace: "token.burn", Functions: []string{"burn", "burnFrom"}},
				{
					Name:      "ERC20Mintable",
					Namespace: "token.mint",
					Functions: []string{"mintTo"},
					Features: []Definition{
						{Name: "ERC20BatchMintable", Namespace: "token.mint.batch", Functions: []string{"multicall"}},
					},
				},
				{Name: "ERC20SignatureMintable", Namespace: "token.signature", Functions: []string{"mintWithSignature", "verify"}},
				{Name: "ERC20ClaimConditions", Namespace: "token.drop.claim", Functions: []string{"claim", "setClaimConditions", "getActiveClaimConditionId"}},
			},
		},
		{
			Name:      "ERC721",
			Namespace: "nft",
			Functions: []string{"balanceOf", "ownerOf", "safeTransferFrom", "transferFrom", "approve", "setApprovalForAll", "getApproved", "isApprovedForAll"},
			Features: []Definition{
				{Name: "ERC721Burnable", Namespace: "nft.burn", Functions: []string{"burn"}},
				{
					Name:      "ERC721Supply",
					Namespace: "nft.query",
					Functions: []string{"totalSupply"},
					Features: []Definition{
						{Name: "ERC721Enumerable", Namespace: "nft.query.owned", Functions: []string{"tokenOfOwnerByIndex"}},
					},
				},
				{
					Name:      "ERC721Mintable",
					Namespace: "nft.mint",
					Functions: []string{"mintTo"},
					Features: []Definition{
						{Name: "ERC721BatchMintable", Namespace: "nft.mint.batch", Functions: []string{"multicall"}},
					},
				},
				{Name: "ERC721LazyMintable", Namespace: "nft.drop", Functions: []string{"lazyMint"}},
				{Name: "ERC721SignatureMint", Namespace: "nft.signature", Functions: []string{"mintWithSignature", "verify"}},
				{Name: "ERC721ClaimConditions", Namespace: "nft.drop.claim", Functions: []string{"claim", "setClaimConditions", "getActiveClaimConditionId"}},
				{Name: "ERC721Revealable", Namespace: "nft.drop.revealer", Functions: []string{"reveal", "encryptDecrypt"}},
			},
		},
		{
			Name:      "ERC1155",
			Namespace: "edition",
			Functions: []string{"balanceOf", "balanceOfBatch", "safeTransferFrom", "safeBatchTransferFrom", "setApprovalForAll", "isApprovedForAll"},
			Features: []Definition{
				{Name: "ERC1155Burnable", Namespace: "edition.burn", Functions: []string{"burn", "burnBatch"}},
				{Name: "ERC1155Enumerable", Namespace: "edition.query", Functions: []string{"nextTokenIdToMint"}},
				{
					Name:      "ERC1155Mintable",
					Namespace: "edition.mint",
					Functions: []string{"mintTo"},
					Features: []Definition{
						{Name: "ERC1155BatchMintable", Namespace: "edition.mint.batch", Functions: []string{"multicall"}},
					},
				},
				{Name: "ERC1155LazyMintable", Namespace: "edition.drop", Functions: []string{"lazyMint"}},
				{Name: "ERC1155SignatureMintable", Namespace: "edition.signature", Functions: []string{"mintWithSignature", "verify"}},
				{Name: "ERC1155ClaimConditions", Namespace: "edition.drop.claim", Functions: []string{"claim", "setClaimConditions", "getActiveClaimConditionId"}},
			},
		},
		{Name: "ContractMetadata", Namespace: "metadata", Functions: []string{"contractURI", "setContractURI"}},
		{
			Name:      "Permissions",
			Namespace: "roles",
			Functions: []string{"hasRole", "getRoleAdmin", "grantRole", "revokeRole", "renounceRole"},
			Features: []Definition{
				{Name: "PermissionsEnumerable", Namespace: "roles.enumerable", Functions: []string{"getRoleMember", "getRoleMemberCount"}},
			},
		},
		{Name: "Ownable", Namespace: "owner", Functions: []string{"owner", "setOwner"}},
		{Name: "Royalty", Namespace: "royalties", Functions: []string{"royaltyInfo", "getDefaultRoyaltyInfo", "setDefaultRoyaltyInfo"}},
		{Name: "PlatformFee", Namespace: "platformFees", Functions: []string{"getPlatformFeeInfo", "setPlatformFeeInfo"}},
		{Name: "PrimarySale", Namespace: "sales", Functions: []string{"primarySaleRecipient", "setPrimarySaleRecipient"}},
	}
}
