package query

import "time"

// Identity and profile lookups change rarely.
const (
	ENSStaleTime     = time.Hour
	ProfileStaleTime = time.Hour
)

func PublishMetadataKey(contractID string) Key {
	return Key{"publish-metadata", contractID}
}

func PrePublishMetadataKey(uri string) Key {
	return Key{"pre-publish-metadata", uri}
}

func FullPublishMetadataKey(uri string) Key {
	return Key{"full-publish-metadata", uri}
}

func ENSKey(addressOrName string) Key {
	return Key{"ens", addressOrName}
}

func PublisherProfileKey(address string) Key {
	return Key{"releaser-profile", address}
}

func AllVersionsKey(publisher, contractName string) Key {
	return Key{"all-releases", publisher, contractName}
}

func PublishedContractsKey(publisher string) Key {
	return Key{"published-contracts", publisher}
}

// PublishedContractKey identifies one registry entry; every version of a
// contract has its own metadata URI.
func PublishedContractKey(contractID, metadataURI string) Key {
	return Key{"released-contract", contractID, metadataURI}
}
