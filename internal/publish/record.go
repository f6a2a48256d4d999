package publish

import "encoding/json"

// DefaultImage is shown for contracts that carry no image of their own.
const DefaultImage = "custom"

// Fields is a free-form metadata object such as info or analytics.
type Fields map[string]any

// StripAbsent returns a shallow copy without keys whose value is absent
// (nil). Falsy values such as "", false and 0 are kept.
func (f Fields) StripAbsent() Fields {
	out := Fields{}
	for k, v := range f {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// PublishMetadataRecord is the display-ready metadata of a contract.
// Optional fields are omitted from the encoding when absent.
type PublishMetadataRecord struct {
	Image            string          `json:"image"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	ABI              json.RawMessage `json:"abi,omitempty"`
	DeployDisabled   *bool           `json:"deployDisabled,omitempty"`
	Info             Fields          `json:"info,omitempty"`
	Licenses         []string        `json:"licenses,omitempty"`
	CompilerMetadata json.RawMessage `json:"compilerMetadata,omitempty"`
	Analytics        Fields          `json:"analytics,omitempty"`
	Publisher        string          `json:"publisher,omitempty"`
}

// fallbackRecord is served when external metadata cannot be resolved.
func fallbackRecord() PublishMetadataRecord {
	return PublishMetadataRecord{Name: "", Image: DefaultImage}
}

// PreDeployMetadata is what the publishing CLI uploads before a contract is
// published: the predeploy document plus the compiler output it points at.
type PreDeployMetadata struct {
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	MetadataURI string          `json:"metadataUri"`
	BytecodeURI string          `json:"bytecodeUri,omitempty"`
	Analytics   Fields          `json:"analytics,omitempty"`
	ABI         json.RawMessage `json:"abi,omitempty"`
	Info        Fields          `json:"info,omitempty"`
	Licenses    []string        `json:"licenses,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// FullPublishMetadata is the document written when a contract is published.
type FullPublishMetadata struct {
	Name                   string          `json:"name"`
	Version                string          `json:"version,omitempty"`
	DisplayName            string          `json:"displayName,omitempty"`
	Description            string          `json:"description,omitempty"`
	Readme                 string          `json:"readme,omitempty"`
	Changelog              string          `json:"changelog,omitempty"`
	Tags                   []string        `json:"tags,omitempty"`
	Audit                  string          `json:"audit,omitempty"`
	Logo                   string          `json:"logo,omitempty"`
	Publisher              string          `json:"publisher,omitempty"`
	IsDeployableViaFactory bool            `json:"isDeployableViaFactory,omitempty"`
	IsDeployableViaProxy   bool            `json:"isDeployableViaProxy,omitempty"`
	FactoryDeploymentData  json.RawMessage `json:"factoryDeploymentData,omitempty"`
	ConstructorParams      json.RawMessage `json:"constructorParams,omitempty"`
	MetadataURI            string          `json:"metadataUri,omitempty"`
	BytecodeURI            string          `json:"bytecodeUri,omitempty"`
	Analytics              Fields          `json:"analytics,omitempty"`
}

// PublishedContract is one entry of a publisher's on-chain registry.
type PublishedContract struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	MetadataURI string `json:"metadataUri"`
}

type PublishedContractInfo struct {
	Name               string              `json:"name"`
	PublishedTimestamp string              `json:"publishedTimestamp"`
	PublishedMetadata  FullPublishMetadata `json:"publishedMetadata"`
}

// PublishedVersion is a registry entry annotated with its metadata.
type PublishedVersion struct {
	PublishedContract
	Version     string `json:"version"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Publisher   string `json:"publisher"`
	Audit       string `json:"audit"`
	Logo        string `json:"logo"`
}

type PublishedContractDetails struct {
	PublishedContract
	Metadata FullPublishMetadata `json:"metadata"`
}

type ProfileMetadata struct {
	Name     string `json:"name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Facebook string `json:"facebook,omitempty"`
	Github   string `json:"github,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Reddit   string `json:"reddit,omitempty"`
	Discord  string `json:"discord,omitempty"`
}
